/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package imapserver exposes user mailboxes as read-only IMAP folders.
package imapserver

import (
	"net"

	"github.com/emersion/go-imap/server"
	gologme "github.com/gologme/log"

	"github.com/neilalexander/mailmesh/internal/config"
	"github.com/neilalexander/mailmesh/internal/mailserver"
)

type IMAPServer struct {
	server  *server.Server
	backend *Backend
	notify  *IMAPNotify
}

// NewIMAPServer prepares an IMAP server for network and subscribes it to
// deliveries so that selected folders see new mail as it arrives.
func NewIMAPServer(cfg config.IMAPConfig, network *mailserver.Network, log *gologme.Logger) *IMAPServer {
	backend := NewBackend(network, log)
	s := &IMAPServer{
		server:  server.New(backend),
		backend: backend,
	}
	s.notify = NewIMAPNotify(backend, log)
	network.OnDeliver(s.notify.Delivered)
	s.server.Addr = cfg.Listen
	// There are no passwords to protect, logins only name a mailbox.
	s.server.AllowInsecureAuth = true
	s.server.ErrorLog = log
	return s
}

func (s *IMAPServer) ListenAndServe() error {
	return s.server.ListenAndServe()
}

func (s *IMAPServer) Serve(l net.Listener) error {
	return s.server.Serve(l)
}

func (s *IMAPServer) Close() error {
	return s.server.Close()
}
