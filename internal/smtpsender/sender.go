/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package smtpsender submits mail to a running SMTP gateway.
package smtpsender

import (
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-smtp"
	gologme "github.com/gologme/log"

	"github.com/neilalexander/mailmesh/internal/message"
	"github.com/neilalexander/mailmesh/internal/utils"
)

type Sender struct {
	Addr     string
	Hostname string
	Timeout  time.Duration
	Log      *gologme.Logger
}

func NewSender(addr string, log *gologme.Logger) *Sender {
	return &Sender{
		Addr:     addr,
		Hostname: "localhost",
		Timeout:  30 * time.Second,
		Log:      log,
	}
}

// Send submits body from one address to each of the recipients in a single
// SMTP transaction.
func (s *Sender) Send(from string, rcpts []string, body string, urgent bool) error {
	if len(rcpts) == 0 {
		return fmt.Errorf("no recipients")
	}
	user, server, err := utils.ParseAddress(from)
	if err != nil {
		return fmt.Errorf("utils.ParseAddress: %w", err)
	}
	toUser, toServer, err := utils.ParseAddress(rcpts[0])
	if err != nil {
		return fmt.Errorf("utils.ParseAddress: %w", err)
	}
	m := message.New(message.Envelope{
		Sender:          user,
		SenderServer:    server,
		Recipient:       toUser,
		RecipientServer: toServer,
	}, body, urgent, time.Now())
	content, err := message.Encode(m)
	if err != nil {
		return fmt.Errorf("message.Encode: %w", err)
	}

	conn, err := net.DialTimeout("tcp", s.Addr, s.Timeout)
	if err != nil {
		s.Log.Warnf("Failed to dial %s: %s\n", s.Addr, err)
		return fmt.Errorf("net.DialTimeout: %w", err)
	}
	defer conn.Close()

	host, _, _ := net.SplitHostPort(s.Addr)
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("smtp.NewClient: %w", err)
	}
	defer client.Close()

	if err := client.Hello(s.Hostname); err != nil {
		return fmt.Errorf("client.Hello: %w", err)
	}
	if err := client.Mail(m.From(), nil); err != nil {
		s.Log.Warnf("Gateway did not accept MAIL FROM %s: %s\n", m.From(), err)
		return fmt.Errorf("client.Mail: %w", err)
	}
	for _, rcpt := range rcpts {
		rcptUser, rcptServer, err := utils.ParseAddress(rcpt)
		if err != nil {
			return fmt.Errorf("utils.ParseAddress: %w", err)
		}
		to := utils.CreateAddress(rcptUser, rcptServer)
		if err := client.Rcpt(to); err != nil {
			s.Log.Warnf("Gateway did not accept RCPT TO %s: %s\n", to, err)
			return fmt.Errorf("client.Rcpt: %w", err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("client.Data: %w", err)
	}
	if _, err := writer.Write(content); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writer.Write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("writer.Close: %w", err)
	}
	s.Log.Infof("Submitted mail from %s to %d recipient(s)\n", m.From(), len(rcpts))
	return client.Quit()
}
