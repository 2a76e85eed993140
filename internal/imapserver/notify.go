/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package imapserver

import (
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/backend"
	gologme "github.com/gologme/log"

	"github.com/neilalexander/mailmesh/internal/mailbox"
	"github.com/neilalexander/mailmesh/internal/mailserver"
	"github.com/neilalexander/mailmesh/internal/utils"
)

// IMAPNotify turns deliveries into EXISTS responses for connections that
// have the affected folder selected.
type IMAPNotify struct {
	backend *Backend
	log     *gologme.Logger
}

func NewIMAPNotify(b *Backend, log *gologme.Logger) *IMAPNotify {
	return &IMAPNotify{
		backend: b,
		log:     log,
	}
}

// Delivered is registered as a network delivery observer.
func (ext *IMAPNotify) Delivered(r *mailserver.Receipt) {
	m := r.Message
	// The urgent queue has no IMAP folder.
	if r.Folder != mailbox.Urgent {
		ext.notifyNew(m.RecipientServer(), m.Recipient(), r.Folder)
	}
	ext.notifyNew(m.SenderServer(), m.Sender(), mailbox.Sent)
}

func (ext *IMAPNotify) notifyNew(server, user, folder string) {
	msgs, err := ext.backend.Network.ListFolder(server, user, folder)
	if err != nil {
		ext.log.Debugf("No IMAP update for %s@%s/%s: %s\n", user, server, folder, err)
		return
	}
	name := imapName(folder)
	status := imap.NewMailboxStatus(name, []imap.StatusItem{imap.StatusMessages})
	status.Messages = uint32(len(msgs))
	ext.backend.push(&backend.MailboxUpdate{
		Update:        backend.NewUpdate(utils.CreateAddress(user, server), name),
		MailboxStatus: status,
	})
}
