/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package smtpserver accepts mail submissions over SMTP and hands them to
// the network for delivery.
package smtpserver

import (
	"net"
	"time"

	"github.com/emersion/go-smtp"
	gologme "github.com/gologme/log"

	"github.com/neilalexander/mailmesh/internal/config"
	"github.com/neilalexander/mailmesh/internal/mailserver"
)

type SMTPServer struct {
	server  *smtp.Server
	backend *Backend
}

func NewSMTPServer(cfg config.SMTPConfig, network *mailserver.Network, log *gologme.Logger) *SMTPServer {
	backend := &Backend{
		Log:     log,
		Network: network,
	}
	server := smtp.NewServer(backend)
	server.Addr = cfg.Listen
	server.Domain = cfg.Domain
	server.MaxMessageBytes = cfg.MaxMessageBytes
	server.MaxRecipients = cfg.MaxRecipients
	server.AllowInsecureAuth = true
	server.AuthDisabled = true
	server.ReadTimeout = time.Minute
	server.WriteTimeout = time.Minute
	server.ErrorLog = log
	return &SMTPServer{
		server:  server,
		backend: backend,
	}
}

func (s *SMTPServer) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Serve accepts connections on l until Close is called.
func (s *SMTPServer) Serve(l net.Listener) error {
	return s.server.Serve(l)
}

func (s *SMTPServer) Close() error {
	return s.server.Close()
}

// Delivered counts the messages accepted for delivery, one per recipient.
func (s *SMTPServer) Delivered() uint64 {
	return s.backend.delivered.Load()
}
