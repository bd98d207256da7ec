// Copyright © 2026 elcaja5
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/elcaja5/nvim-strudel-sub002/internal/dirt"
)

var (
	sendCPS   float64
	sendDur   float64
	sendBegin float64
)

// sendCmd maps one ad-hoc event through the full parameter pipeline and
// sends it immediately.
var sendCmd = &cobra.Command{
	Use:   "send [name=value]...",
	Short: "Map one pattern event and send it to SuperDirt",
	Long: `Map one pattern event and send it to SuperDirt.

Arguments are name=value pairs; values that parse as numbers are sent as
floats, everything else as strings. For example:

  nvim-strudel-dirt send s=bd bank=tr909 gain=0.9`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := hapFromArgs(args)
		if err != nil {
			return err
		}
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		if err := d.Open(cmd.Context(), flagHost, flagPort); err != nil {
			return errors.Wrap(err, "opening connection")
		}
		defer d.Close()

		d.SetClockOrigin(dirt.Now())
		d.Send(h, 0, sendCPS)
		return nil
	},
}

func init() {
	sendCmd.Flags().Float64Var(&sendCPS, "cps", 1, "tempo in cycles per second")
	sendCmd.Flags().Float64Var(&sendDur, "dur", 1, "event duration in cycles")
	sendCmd.Flags().Float64Var(&sendBegin, "begin", 0, "event position in the cycle")
	RootCmd.AddCommand(sendCmd)
}

// hapFromArgs builds a hap from name=value command line arguments.
func hapFromArgs(args []string) (dirt.Hap, error) {
	values := make(map[string]dirt.Value, len(args))
	for _, arg := range args {
		name, raw, found := strings.Cut(arg, "=")
		if !found || name == "" {
			return dirt.Hap{}, errors.Errorf("expected name=value, got %q", arg)
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			values[name] = dirt.Num(f)
		} else {
			values[name] = dirt.Str(raw)
		}
	}
	return dirt.Hap{Value: values, Begin: sendBegin, Duration: sendDur}, nil
}
