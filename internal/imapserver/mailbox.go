/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package imapserver

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/backend/backendutil"
	gomessage "github.com/emersion/go-message"
	"github.com/emersion/go-message/textproto"

	"github.com/neilalexander/mailmesh/internal/message"
)

// Mailbox is one folder of a user. Folders only grow, so a message's
// sequence number and UID are both its position plus one.
type Mailbox struct {
	backend *Backend
	user    *User
	name    string // as shown over IMAP
	folder  string // as known to the mailbox
}

func (mbox *Mailbox) messages() ([]*message.Message, error) {
	msgs, err := mbox.backend.Network.ListFolder(mbox.user.server, mbox.user.name, mbox.folder)
	if err != nil {
		return nil, fmt.Errorf("mbox.backend.Network.ListFolder: %w", err)
	}
	return msgs, nil
}

func (mbox *Mailbox) Name() string {
	return mbox.name
}

func (mbox *Mailbox) Info() (*imap.MailboxInfo, error) {
	info := &imap.MailboxInfo{
		Attributes: []string{imap.NoInferiorsAttr},
		Delimiter:  "/",
		Name:       mbox.name,
	}
	if mbox.name == "Sent" {
		info.Attributes = append(info.Attributes, imap.SentAttr)
	}
	return info, nil
}

func (mbox *Mailbox) Status(items []imap.StatusItem) (*imap.MailboxStatus, error) {
	msgs, err := mbox.messages()
	if err != nil {
		return nil, err
	}
	status := imap.NewMailboxStatus(mbox.name, items)
	status.Flags = []string{}
	status.PermanentFlags = []string{}
	status.ReadOnly = true

	for _, name := range items {
		switch name {
		case imap.StatusMessages:
			status.Messages = uint32(len(msgs))
		case imap.StatusUidNext:
			status.UidNext = uint32(len(msgs) + 1)
		case imap.StatusUidValidity:
			status.UidValidity = mbox.backend.uidValidity
		case imap.StatusRecent:
			status.Recent = 0
		case imap.StatusUnseen:
			status.Unseen = 0
		}
	}
	return status, nil
}

func (mbox *Mailbox) SetSubscribed(subscribed bool) error {
	return nil
}

func (mbox *Mailbox) Check() error {
	return nil
}

func (mbox *Mailbox) ListMessages(uid bool, seqSet *imap.SeqSet, items []imap.FetchItem, ch chan<- *imap.Message) error {
	defer close(ch)

	msgs, err := mbox.messages()
	if err != nil {
		return err
	}
	for i, m := range msgs {
		id := uint32(i + 1)
		if !seqSet.Contains(id) {
			continue
		}
		fetched, err := fetch(m, id, items)
		if err != nil {
			mbox.backend.Log.Warnf("Failed to fetch message %d from %s: %s\n", m.ID(), mbox.name, err)
			continue
		}
		ch <- fetched
	}
	return nil
}

func fetch(m *message.Message, id uint32, items []imap.FetchItem) (*imap.Message, error) {
	raw, err := message.Encode(m)
	if err != nil {
		return nil, fmt.Errorf("message.Encode: %w", err)
	}
	get := func() (io.Reader, textproto.Header, error) {
		bodyreader := bufio.NewReader(bytes.NewReader(raw))
		hdr, err := textproto.ReadHeader(bodyreader)
		if err != nil {
			return nil, textproto.Header{}, fmt.Errorf("textproto.ReadHeader: %w", err)
		}
		return bodyreader, hdr, nil
	}

	fetched := imap.NewMessage(id, items)
	fetched.Uid = id
	for _, item := range items {
		switch item {
		case imap.FetchEnvelope:
			_, hdr, err := get()
			if err != nil {
				return nil, err
			}
			if fetched.Envelope, err = backendutil.FetchEnvelope(hdr); err != nil {
				return nil, fmt.Errorf("backendutil.FetchEnvelope: %w", err)
			}

		case imap.FetchBody, imap.FetchBodyStructure:
			bodyreader, hdr, err := get()
			if err != nil {
				return nil, err
			}
			if fetched.BodyStructure, err = backendutil.FetchBodyStructure(hdr, bodyreader, item == imap.FetchBodyStructure); err != nil {
				return nil, fmt.Errorf("backendutil.FetchBodyStructure: %w", err)
			}

		case imap.FetchFlags:
			fetched.Flags = []string{}

		case imap.FetchInternalDate:
			fetched.InternalDate = m.Created()

		case imap.FetchRFC822Size:
			fetched.Size = uint32(len(raw))

		case imap.FetchUid:
			fetched.Uid = id

		default:
			section, err := imap.ParseBodySectionName(item)
			if err != nil {
				continue
			}
			bodyreader, hdr, err := get()
			if err != nil {
				return nil, err
			}
			l, err := backendutil.FetchBodySection(hdr, bodyreader, section)
			if err != nil {
				continue
			}
			fetched.Body[section] = l
		}
	}
	return fetched, nil
}

func (mbox *Mailbox) SearchMessages(uid bool, criteria *imap.SearchCriteria) ([]uint32, error) {
	msgs, err := mbox.messages()
	if err != nil {
		return nil, err
	}
	var ids []uint32
	for i, m := range msgs {
		id := uint32(i + 1)
		raw, err := message.Encode(m)
		if err != nil {
			return nil, fmt.Errorf("message.Encode: %w", err)
		}
		e, err := gomessage.Read(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("message.Read: %w", err)
		}
		ok, err := backendutil.Match(e, id, id, m.Created(), nil, criteria)
		if err != nil {
			return nil, fmt.Errorf("backendutil.Match: %w", err)
		}
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (mbox *Mailbox) CreateMessage(flags []string, date time.Time, body imap.Literal) error {
	return ErrReadOnly
}

func (mbox *Mailbox) UpdateMessagesFlags(uid bool, seqSet *imap.SeqSet, op imap.FlagsOp, flags []string) error {
	return ErrReadOnly
}

func (mbox *Mailbox) CopyMessages(uid bool, seqSet *imap.SeqSet, destName string) error {
	return ErrReadOnly
}

func (mbox *Mailbox) Expunge() error {
	return ErrReadOnly
}
