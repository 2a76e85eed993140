/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package imapserver

import (
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/backend"
	gologme "github.com/gologme/log"

	"github.com/neilalexander/mailmesh/internal/mailserver"
	"github.com/neilalexander/mailmesh/internal/utils"
)

type Backend struct {
	Log         *gologme.Logger
	Network     *mailserver.Network
	uidValidity uint32
	updates     chan backend.Update
}

func NewBackend(network *mailserver.Network, log *gologme.Logger) *Backend {
	return &Backend{
		Log:     log,
		Network: network,
		// Mailboxes start empty on every run, so UIDs are only valid for
		// the life of the process.
		uidValidity: uint32(time.Now().Unix()),
		updates:     make(chan backend.Update, 64),
	}
}

// Login accepts "user@server" or "server:user" for any registered user.
// The password is not checked.
func (b *Backend) Login(conn *imap.ConnInfo, username, password string) (backend.User, error) {
	user, server, err := utils.ParseAddress(username)
	if err != nil {
		b.Log.Warnf("Rejected IMAP login %q: %s\n", username, err)
		return nil, backend.ErrInvalidCredentials
	}
	if !b.Network.HasUser(server, user) {
		b.Log.Warnf("Rejected IMAP login for unknown user %q\n", username)
		return nil, backend.ErrInvalidCredentials
	}
	remote := "unknown"
	if conn != nil && conn.RemoteAddr != nil {
		remote = conn.RemoteAddr.String()
	}
	b.Log.Infof("IMAP login from %s as %s\n", remote, utils.CreateAddress(user, server))
	return &User{
		backend: b,
		server:  server,
		name:    user,
	}, nil
}

// Updates feeds unilateral responses to the IMAP server. The channel is
// never closed.
func (b *Backend) Updates() <-chan backend.Update {
	return b.updates
}

// push queues an update without blocking delivery. Updates are dropped when
// nobody is draining the channel.
func (b *Backend) push(u backend.Update) {
	select {
	case b.updates <- u:
	default:
		b.Log.Debugf("Dropped IMAP update for %s\n", u.Username())
	}
}
