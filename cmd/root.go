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
	"github.com/spf13/cobra"

	"github.com/elcaja5/nvim-strudel-sub002/internal/banks"
	"github.com/elcaja5/nvim-strudel-sub002/internal/dirt"
)

var (
	flagHost    string
	flagPort    int
	flagBanks   string
	flagVerbose bool
)

// RootCmd is the base command for the bridge CLI.
var RootCmd = &cobra.Command{
	Use:   "nvim-strudel-dirt",
	Short: "Bridge Strudel pattern events to SuperDirt over OSC",
	Long: `nvim-strudel-dirt sends timestamped /dirt/play messages to a running
SuperDirt instance. The subcommands exist to verify connectivity and timing
without a pattern engine attached.`,
}

// Execute runs the root command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&flagHost, "host", "127.0.0.1", "SuperDirt host")
	RootCmd.PersistentFlags().IntVar(&flagPort, "port", 57120, "SuperDirt port")
	RootCmd.PersistentFlags().StringVar(&flagBanks, "banks", "", "path to a TOML bank alias table")
	RootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log every outgoing message")
}

// newDispatcher builds a dispatcher from the persistent flags.
func newDispatcher() (*dirt.Dispatcher, error) {
	var resolver dirt.BankResolver
	if flagBanks != "" {
		table, err := banks.Load(flagBanks)
		if err != nil {
			return nil, errors.Wrap(err, "loading bank table")
		}
		resolver = table
	}
	return dirt.NewDispatcher(dirt.Config{
		Banks:   resolver,
		Logger:  log.Default(),
		Verbose: flagVerbose,
	}), nil
}
