/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilalexander/mailmesh/internal/config"
	"github.com/neilalexander/mailmesh/internal/nice"
	"github.com/neilalexander/mailmesh/internal/scenario"
	"github.com/neilalexander/mailmesh/internal/storage"
)

var runStrict bool

var runCmd = &cobra.Command{
	Use:   "run SCRIPT",
	Short: "Run a scenario script against the configured network",
	Long: "Run the steps of a YAML scenario script in order. A failing step is\n" +
		"reported with its error kind and the script continues.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, err := scenario.Load(args[0])
		if err != nil {
			return err
		}
		network, err := config.Build(cfg, log)
		if err != nil {
			return fmt.Errorf("build network: %w", err)
		}
		if cfg.Journal.Driver != "none" {
			journal, err := storage.Open(cfg.Journal.Driver, cfg.Journal.DSN)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer journal.Close()
			network.OnDeliver(storage.Recorder(journal, log))
		}

		printer := nice.NewPrinter(cmd.OutOrStdout())
		runner := &scenario.Runner{Network: network, Printer: printer}
		results := runner.Run(script)
		failed := scenario.Failed(results)
		fmt.Fprintf(cmd.OutOrStdout(), "%d step(s), %d failed\n", len(results), failed)
		if runStrict && failed > 0 {
			return fmt.Errorf("%d step(s) failed", failed)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "Exit with an error if any step fails")
	rootCmd.AddCommand(runCmd)
}
