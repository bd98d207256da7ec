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
	"log"

	"github.com/pkg/errors"
	"github.com/scgolang/syncclient"
	"github.com/scgolang/syncosc"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/elcaja5/nvim-strudel-sub002/internal/dirt"
)

var syncMaster string

// syncCmd slaves the bridge to an oscsync master and sends one test hit at
// every bar boundary, which makes clock drift between the two audible.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Follow an oscsync master and send one test hit per bar",
	Long:  `Follow an oscsync master and send one test hit to SuperDirt per bar.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		if err := d.Open(cmd.Context(), flagHost, flagPort); err != nil {
			return errors.Wrap(err, "opening connection")
		}
		defer d.Close()
		d.SetClockOrigin(dirt.Now())

		var (
			g, ctx = errgroup.WithContext(cmd.Context())
			pulses = make(chan syncosc.Pulse, 8)
		)
		g.Go(func() error {
			return errors.Wrap(syncclient.Connect(ctx, pulseRelay(pulses), syncMaster), "following oscsync master")
		})
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case p := <-pulses:
					if p.Count%syncosc.PulsesPerBar == 0 {
						if flagVerbose {
							log.Printf("bar %d at %f bpm", p.Count/syncosc.PulsesPerBar, p.Tempo)
						}
						d.SendTest()
					}
				}
			}
		})
		return g.Wait()
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncMaster, "master", "127.0.0.1", "oscsync master host name")
	RootCmd.AddCommand(syncCmd)
}

// pulseRelay forwards master pulses onto a channel.
type pulseRelay chan syncosc.Pulse

// Pulse implements syncclient's slave interface.
func (pr pulseRelay) Pulse(p syncosc.Pulse) error {
	pr <- p
	return nil
}
