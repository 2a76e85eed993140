/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package smtpserver

import (
	"errors"

	"github.com/emersion/go-smtp"
	gologme "github.com/gologme/log"
	"go.uber.org/atomic"

	"github.com/neilalexander/mailmesh/internal/mailserver"
)

type Backend struct {
	Log       *gologme.Logger
	Network   *mailserver.Network
	sessions  atomic.Uint64
	delivered atomic.Uint64
}

// Login is refused: submission is anonymous and the sender is checked
// against the network instead.
func (b *Backend) Login(state *smtp.ConnectionState, username, password string) (smtp.Session, error) {
	return nil, smtp.ErrAuthUnsupported
}

func (b *Backend) AnonymousLogin(state *smtp.ConnectionState) (smtp.Session, error) {
	id := b.sessions.Inc()
	b.Log.Infof("Incoming SMTP session %d from %s\n", id, state.RemoteAddr)
	return &Session{
		backend: b,
		state:   state,
		id:      id,
	}, nil
}

// replyFor turns a network error into the SMTP reply sent to the client.
func replyFor(err error) *smtp.SMTPError {
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		return smtpErr
	}
	code, enhanced, text := 451, smtp.EnhancedCode{4, 3, 0}, "Local error in processing"
	switch mailserver.Kind(err) {
	case "SenderNotFound", "UserNotFound":
		code, enhanced, text = 553, smtp.EnhancedCode{5, 1, 8}, "Sender is not a registered user"
	case "RecipientNotFound":
		code, enhanced, text = 550, smtp.EnhancedCode{5, 1, 1}, "No such user here"
	case "ServerNotFound":
		code, enhanced, text = 550, smtp.EnhancedCode{5, 1, 2}, "Destination server not found"
	case "NoRouteFound":
		code, enhanced, text = 554, smtp.EnhancedCode{5, 4, 4}, "No route to destination server"
	case "InvalidServer", "InvalidUser":
		code, enhanced, text = 501, smtp.EnhancedCode{5, 1, 3}, "Bad address syntax"
	}
	return &smtp.SMTPError{
		Code:         code,
		EnhancedCode: enhanced,
		Message:      text,
	}
}
