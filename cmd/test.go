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
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var testHandshake bool

// testCmd sends a single hard-coded hit to SuperDirt.
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a single test hit to SuperDirt",
	Long:  `Send a single test hit to SuperDirt, optionally handshaking first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		if err := d.Open(cmd.Context(), flagHost, flagPort); err != nil {
			return errors.Wrap(err, "opening connection")
		}
		defer d.Close()

		if testHandshake {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()
			if err := d.Handshake(ctx); err != nil {
				return errors.Wrap(err, "handshaking with SuperDirt")
			}
		}
		d.SendTest()
		return nil
	},
}

func init() {
	testCmd.Flags().BoolVar(&testHandshake, "handshake", false, "handshake with SuperDirt before sending")
	RootCmd.AddCommand(testCmd)
}
