/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package imapserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emersion/go-imap/backend"

	"github.com/neilalexander/mailmesh/internal/mailbox"
	"github.com/neilalexander/mailmesh/internal/utils"
)

var ErrReadOnly = errors.New("folders are read-only")

const inboxName = "INBOX"

// imapName maps a mailbox folder name to the name shown over IMAP.
func imapName(folder string) string {
	if strings.EqualFold(folder, mailbox.Inbox) {
		return inboxName
	}
	return folder
}

type User struct {
	backend *Backend
	server  string
	name    string
}

func (u *User) Username() string {
	return utils.CreateAddress(u.name, u.server)
}

func (u *User) ListMailboxes(subscribed bool) ([]backend.Mailbox, error) {
	names, err := u.backend.Network.FolderNames(u.server, u.name)
	if err != nil {
		return nil, fmt.Errorf("u.backend.Network.FolderNames: %w", err)
	}
	mailboxes := make([]backend.Mailbox, 0, len(names))
	for _, name := range names {
		mailboxes = append(mailboxes, &Mailbox{
			backend: u.backend,
			user:    u,
			name:    imapName(name),
			folder:  name,
		})
	}
	return mailboxes, nil
}

func (u *User) GetMailbox(name string) (backend.Mailbox, error) {
	names, err := u.backend.Network.FolderNames(u.server, u.name)
	if err != nil {
		return nil, fmt.Errorf("u.backend.Network.FolderNames: %w", err)
	}
	for _, folder := range names {
		if strings.EqualFold(folder, name) || strings.EqualFold(imapName(folder), name) {
			return &Mailbox{
				backend: u.backend,
				user:    u,
				name:    imapName(folder),
				folder:  folder,
			}, nil
		}
	}
	return nil, backend.ErrNoSuchMailbox
}

func (u *User) CreateMailbox(name string) error {
	return ErrReadOnly
}

func (u *User) DeleteMailbox(name string) error {
	return ErrReadOnly
}

func (u *User) RenameMailbox(existingName, newName string) error {
	return ErrReadOnly
}

func (u *User) Logout() error {
	return nil
}
