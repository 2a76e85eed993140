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
)

var routeCmd = &cobra.Command{
	Use:   "route FROM TO",
	Short: "Print the shortest route between two configured servers",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := config.Build(cfg, log)
		if err != nil {
			return fmt.Errorf("build network: %w", err)
		}
		route, err := network.Route(args[0], args[1])
		if err != nil {
			return fmt.Errorf("route %s to %s: %w", args[0], args[1], err)
		}
		nice.NewPrinter(cmd.OutOrStdout()).Route(route)
		return nil
	},
}

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "List the configured servers, their links and their users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := config.Build(cfg, log)
		if err != nil {
			return fmt.Errorf("build network: %w", err)
		}
		printer := nice.NewPrinter(cmd.OutOrStdout())
		servers := network.Servers()
		printer.Topology(servers, func(s string) []string {
			peers, _ := network.Neighbors(s)
			return peers
		})
		for _, s := range servers {
			users, err := network.ListUsers(s)
			if err != nil {
				return err
			}
			printer.Users(s, users)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(topologyCmd)
}
