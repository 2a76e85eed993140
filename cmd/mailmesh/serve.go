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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neilalexander/mailmesh"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the network with its SMTP gateway and IMAP view",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mm := mailmesh.New(cfg)
		mm.Output = cmd.ErrOrStderr()
		if err := mm.Start(); err != nil {
			return fmt.Errorf("start: %w", err)
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)

		select {
		case <-sigs:
			mm.Stop()
		case <-mm.Done():
		}
		if mm.GetState() == mailmesh.Error {
			return fmt.Errorf("mailmesh stopped after an error")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
