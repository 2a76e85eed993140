/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config

import (
	"fmt"

	gologme "github.com/gologme/log"

	"github.com/neilalexander/mailmesh/internal/filter"
	"github.com/neilalexander/mailmesh/internal/mailserver"
)

// Build creates the network described by cfg. Servers are added first,
// then their users, then the links in the order they are listed, which
// fixes the neighbour order used to break route ties.
func Build(cfg *Config, log *gologme.Logger, opts ...mailserver.Option) (*mailserver.Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	filters, err := filter.New(cfg.Rules())
	if err != nil {
		return nil, fmt.Errorf("filter.New: %w", err)
	}
	network := mailserver.NewNetwork(log, filters, opts...)
	for _, s := range cfg.Network.Servers {
		if err := network.AddServer(s.Name); err != nil {
			return nil, fmt.Errorf("network.AddServer: %w", err)
		}
	}
	for _, s := range cfg.Network.Servers {
		for _, u := range s.Users {
			if err := network.RegisterUser(s.Name, u); err != nil {
				return nil, fmt.Errorf("network.RegisterUser: %w", err)
			}
		}
	}
	for _, s := range cfg.Network.Servers {
		for _, p := range s.Peers {
			if err := network.Connect(s.Name, p); err != nil {
				return nil, fmt.Errorf("network.Connect: %w", err)
			}
		}
	}
	return network, nil
}
