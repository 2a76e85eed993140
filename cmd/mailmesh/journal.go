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

	"github.com/neilalexander/mailmesh/internal/nice"
	"github.com/neilalexander/mailmesh/internal/storage"
	"github.com/neilalexander/mailmesh/internal/storage/types"
)

var (
	journalDriver string
	journalDSN    string
	journalServer string
	journalUser   string
	journalLimit  int
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recorded deliveries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, dsn := cfg.Journal.Driver, cfg.Journal.DSN
		if journalDriver != "" {
			driver = journalDriver
		}
		if journalDSN != "" {
			dsn = journalDSN
		}
		if driver == "none" {
			return fmt.Errorf("the journal is disabled")
		}

		journal, err := storage.Open(driver, dsn)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer journal.Close()

		rows, err := journal.JournalList(types.Query{
			Server: journalServer,
			User:   journalUser,
			Limit:  journalLimit,
		})
		if err != nil {
			return fmt.Errorf("list journal: %w", err)
		}
		nice.NewPrinter(cmd.OutOrStdout()).Journal(rows)
		return nil
	},
}

func init() {
	journalCmd.Flags().StringVar(&journalDriver, "driver", "", "Journal driver (default: journal.driver from the config)")
	journalCmd.Flags().StringVar(&journalDSN, "dsn", "", "Journal DSN (default: journal.dsn from the config)")
	journalCmd.Flags().StringVar(&journalServer, "server", "", "Only deliveries sent from or to this server")
	journalCmd.Flags().StringVar(&journalUser, "user", "", "Only deliveries sent from or to this user")
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 0, "Show at most this many deliveries")
	rootCmd.AddCommand(journalCmd)
}
