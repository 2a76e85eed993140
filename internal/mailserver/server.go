/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mailserver

import (
	"fmt"
	"strings"

	"github.com/neilalexander/mailmesh/internal/mailbox"
	"github.com/neilalexander/mailmesh/internal/message"
)

// Server hosts the users of one mail server. Its methods expect the owning
// Network to hold its lock.
type Server struct {
	id      string
	network *Network
	users   map[string]*mailbox.Mailbox
	order   []string
}

func newServer(id string, network *Network) *Server {
	return &Server{
		id:      id,
		network: network,
		users:   make(map[string]*mailbox.Mailbox),
	}
}

func (s *Server) ID() string { return s.id }

// RegisterUser creates an empty mailbox for name.
func (s *Server) RegisterUser(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "@ \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidUser, name)
	}
	if _, ok := s.users[name]; ok {
		return fmt.Errorf("%w: %q on %q", ErrUserAlreadyExists, name, s.id)
	}
	s.users[name] = mailbox.New(name, s.network.filters)
	s.order = append(s.order, name)
	return nil
}

// Users returns the usernames in registration order.
func (s *Server) Users() []string {
	return append([]string{}, s.order...)
}

func (s *Server) Mailbox(name string) (*mailbox.Mailbox, bool) {
	mb, ok := s.users[name]
	return mb, ok
}

// Send delivers body from sender on this server to destUser on destServer.
// Everything is checked before anything is changed: the sender, then the
// destination server, then the recipient, then the route.
func (s *Server) Send(sender, destServer, destUser, body string, urgent bool) (*Receipt, error) {
	from, ok := s.users[sender]
	if !ok {
		return nil, fmt.Errorf("%w: %q on %q", ErrSenderNotFound, sender, s.id)
	}
	dest, ok := s.network.servers[destServer]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServerNotFound, destServer)
	}
	to, ok := dest.users[destUser]
	if !ok {
		return nil, fmt.Errorf("%w: %q on %q", ErrRecipientNotFound, destUser, destServer)
	}
	route, err := s.network.graph.Route(s.id, destServer)
	if err != nil {
		return nil, fmt.Errorf("s.network.graph.Route: %w", err)
	}

	m := message.New(message.Envelope{
		Sender:          sender,
		SenderServer:    s.id,
		Recipient:       destUser,
		RecipientServer: destServer,
	}, body, urgent, s.network.now())

	from.RecordSent(m)
	folder := to.Receive(m)
	return &Receipt{
		Route:   route,
		Message: m,
		Folder:  folder,
	}, nil
}
