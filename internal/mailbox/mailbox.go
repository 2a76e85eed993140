/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package mailbox stores and classifies the mail of a single user.
package mailbox

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neilalexander/mailmesh/internal/filter"
	"github.com/neilalexander/mailmesh/internal/message"
)

const (
	Inbox  = "Inbox"
	Sent   = "Sent"
	Urgent = "Urgent"
)

var ErrNoSuchFolder = errors.New("no such folder")

// Folder is an append-only list of messages in arrival order.
type Folder struct {
	name     string
	messages []*message.Message
}

func newFolder(name string) *Folder {
	return &Folder{name: name}
}

func (f *Folder) Name() string { return f.name }

func (f *Folder) Len() int { return len(f.messages) }

func (f *Folder) append(m *message.Message) {
	f.messages = append(f.messages, m)
}

// Messages returns the folder contents. The slice is a copy, the messages
// are the shared originals.
func (f *Folder) Messages() []*message.Message {
	return append([]*message.Message(nil), f.messages...)
}

// Mailbox holds the folders and urgent queue of one user.
type Mailbox struct {
	owner   string
	filters *filter.Engine
	inbox   *Folder
	sent    *Folder
	folders map[string]*Folder // lower-cased category -> folder
	order   []*Folder          // filter folders in rule order
	urgent  *fifoQueue
}

// New creates an empty mailbox with one folder per filter category.
func New(owner string, filters *filter.Engine) *Mailbox {
	mb := &Mailbox{
		owner:   owner,
		filters: filters,
		inbox:   newFolder(Inbox),
		sent:    newFolder(Sent),
		folders: make(map[string]*Folder),
		urgent:  newFIFOQueue(),
	}
	for _, category := range filters.Categories() {
		f := newFolder(category)
		mb.folders[strings.ToLower(category)] = f
		mb.order = append(mb.order, f)
	}
	return mb
}

func (mb *Mailbox) Owner() string { return mb.owner }

// Receive files an incoming message and returns the name of the folder it
// went to. Urgent mail goes to the urgent queue without being classified.
func (mb *Mailbox) Receive(m *message.Message) string {
	if m.Urgent() {
		mb.urgent.push(m)
		return Urgent
	}
	if category := mb.filters.Classify(m.Body()); category != filter.None {
		if f, ok := mb.folders[strings.ToLower(category)]; ok {
			f.append(m)
			return f.Name()
		}
	}
	mb.inbox.append(m)
	return Inbox
}

// RecordSent appends an outgoing message to the Sent folder.
func (mb *Mailbox) RecordSent(m *message.Message) {
	mb.sent.append(m)
}

// DrainUrgent returns every queued urgent message, oldest first, and empties
// the queue. Reading urgent mail consumes it.
func (mb *Mailbox) DrainUrgent() []*message.Message {
	return mb.urgent.drain()
}

// PendingUrgent counts urgent messages without consuming them.
func (mb *Mailbox) PendingUrgent() int {
	return mb.urgent.len()
}

// Folder looks up Inbox, Sent or a filter folder, ignoring case.
func (mb *Mailbox) Folder(name string) (*Folder, error) {
	switch key := strings.ToLower(name); key {
	case strings.ToLower(Inbox):
		return mb.inbox, nil
	case strings.ToLower(Sent):
		return mb.sent, nil
	default:
		if f, ok := mb.folders[key]; ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSuchFolder, name)
}

// ListFolder returns the messages of a folder in insertion order.
func (mb *Mailbox) ListFolder(name string) ([]*message.Message, error) {
	f, err := mb.Folder(name)
	if err != nil {
		return nil, err
	}
	return f.Messages(), nil
}

func (mb *Mailbox) ListSent() []*message.Message {
	return mb.sent.Messages()
}

// FolderNames lists Inbox, Sent and then the filter folders in rule order.
func (mb *Mailbox) FolderNames() []string {
	names := []string{Inbox, Sent}
	for _, f := range mb.order {
		names = append(names, f.Name())
	}
	return names
}

// FolderView is a named list of messages taken from a mailbox.
type FolderView struct {
	Name     string
	Messages []*message.Message
}

// Snapshot is a point-in-time copy of a mailbox. Taking one does not touch
// the urgent queue.
type Snapshot struct {
	Owner         string
	Inbox         []*message.Message
	Sent          []*message.Message
	Folders       []FolderView
	PendingUrgent int
}

func (mb *Mailbox) Snapshot() *Snapshot {
	s := &Snapshot{
		Owner:         mb.owner,
		Inbox:         mb.inbox.Messages(),
		Sent:          mb.sent.Messages(),
		PendingUrgent: mb.urgent.len(),
	}
	for _, f := range mb.order {
		s.Folders = append(s.Folders, FolderView{
			Name:     f.Name(),
			Messages: f.Messages(),
		})
	}
	return s
}

// Folder returns the named filter folder of the snapshot, or nil.
func (s *Snapshot) Folder(name string) []*message.Message {
	for _, f := range s.Folders {
		if strings.EqualFold(f.Name, name) {
			return f.Messages
		}
	}
	return nil
}
