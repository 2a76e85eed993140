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

	"github.com/neilalexander/mailmesh/internal/smtpsender"
)

var (
	sendAddr   string
	sendBody   string
	sendUrgent bool
)

var sendCmd = &cobra.Command{
	Use:   "send FROM TO [TO...]",
	Short: "Submit a message to a running gateway",
	Example: "  mailmesh send alice@gmail bob@outlook --body \"hola, como estas\"\n" +
		"  mailmesh send gmail:alice outlook:bob --urgent --body \"call me\"",
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := sendAddr
		if addr == "" {
			addr = cfg.SMTP.Listen
		}
		sender := smtpsender.NewSender(addr, log)
		if err := sender.Send(args[0], args[1:], sendBody, sendUrgent); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent to %d recipient(s) via %s\n", len(args)-1, addr)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendAddr, "addr", "", "Gateway address (default: smtp.listen from the config)")
	sendCmd.Flags().StringVarP(&sendBody, "body", "b", "", "Message body")
	sendCmd.Flags().BoolVarP(&sendUrgent, "urgent", "u", false, "Mark the message urgent")
	rootCmd.AddCommand(sendCmd)
}
