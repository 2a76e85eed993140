/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package smtpserver

import (
	"fmt"
	"io"

	"github.com/emersion/go-smtp"

	"github.com/neilalexander/mailmesh/internal/mailserver"
	"github.com/neilalexander/mailmesh/internal/message"
	"github.com/neilalexander/mailmesh/internal/utils"
)

type address struct {
	user   string
	server string
}

func (a address) String() string {
	return utils.CreateAddress(a.user, a.server)
}

func parseAddress(email string) (address, error) {
	user, server, err := utils.ParseAddress(email)
	if err != nil {
		return address{}, &smtp.SMTPError{
			Code:         501,
			EnhancedCode: smtp.EnhancedCode{5, 1, 3},
			Message:      err.Error(),
		}
	}
	return address{user: user, server: server}, nil
}

type Session struct {
	backend *Backend
	state   *smtp.ConnectionState
	id      uint64
	from    *address
	rcpt    []address
}

func (s *Session) Mail(from string, opts smtp.MailOptions) error {
	s.Reset()
	addr, err := parseAddress(from)
	if err != nil {
		return err
	}
	if !s.backend.Network.HasServer(addr.server) {
		return replyFor(fmt.Errorf("%w: %q", mailserver.ErrServerNotFound, addr.server))
	}
	if !s.backend.Network.HasUser(addr.server, addr.user) {
		return replyFor(fmt.Errorf("%w: %q", mailserver.ErrSenderNotFound, addr))
	}
	s.from = &addr
	return nil
}

// Rcpt runs the same checks as delivery so that a bad recipient is refused
// before the client sends any data.
func (s *Session) Rcpt(to string) error {
	if s.from == nil {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "MAIL FROM required before RCPT TO",
		}
	}
	addr, err := parseAddress(to)
	if err != nil {
		return err
	}
	network := s.backend.Network
	if !network.HasServer(addr.server) {
		return replyFor(fmt.Errorf("%w: %q", mailserver.ErrServerNotFound, addr.server))
	}
	if !network.HasUser(addr.server, addr.user) {
		return replyFor(fmt.Errorf("%w: %q", mailserver.ErrRecipientNotFound, addr))
	}
	if _, err := network.Route(s.from.server, addr.server); err != nil {
		return replyFor(err)
	}
	s.rcpt = append(s.rcpt, addr)
	return nil
}

func (s *Session) Data(r io.Reader) error {
	if s.from == nil || len(s.rcpt) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No valid recipients",
		}
	}
	submission, err := message.Decode(r)
	if err != nil {
		s.backend.Log.Warnf("SMTP session %d sent an unreadable message: %s\n", s.id, err)
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Message could not be parsed",
		}
	}

	var failed error
	for _, rcpt := range s.rcpt {
		receipt, err := s.backend.Network.Send(s.from.server, s.from.user, rcpt.server, rcpt.user, submission.Body, submission.Urgent)
		if err != nil {
			s.backend.Log.Warnf("SMTP session %d failed to deliver to %s: %s\n", s.id, rcpt, err)
			if failed == nil {
				failed = err
			}
			continue
		}
		s.backend.delivered.Inc()
		s.backend.Log.Infof("SMTP session %d delivered message %d to %s (%s)\n", s.id, receipt.Message.ID(), rcpt, receipt.Folder)
	}
	if failed != nil {
		return replyFor(failed)
	}
	return nil
}

func (s *Session) Reset() {
	s.from = nil
	s.rcpt = s.rcpt[:0]
}

func (s *Session) Logout() error {
	s.backend.Log.Debugf("SMTP session %d closed\n", s.id)
	return nil
}
