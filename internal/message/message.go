/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package message holds the immutable mail value shared between folders.
package message

import (
	"time"

	"go.uber.org/atomic"

	"github.com/neilalexander/mailmesh/internal/utils"
)

var lastID atomic.Uint64

// Message is one piece of mail. It is never modified after New returns, so
// the same pointer is stored in the sender's Sent folder and in whichever
// folder the recipient's mailbox chose.
type Message struct {
	id              uint64
	sender          string
	senderServer    string
	recipient       string
	recipientServer string
	body            string
	urgent          bool
	created         time.Time
}

// Envelope names both ends of a message.
type Envelope struct {
	Sender          string
	SenderServer    string
	Recipient       string
	RecipientServer string
}

func New(env Envelope, body string, urgent bool, created time.Time) *Message {
	return &Message{
		id:              lastID.Inc(),
		sender:          env.Sender,
		senderServer:    env.SenderServer,
		recipient:       env.Recipient,
		recipientServer: env.RecipientServer,
		body:            body,
		urgent:          urgent,
		created:         created,
	}
}

// ID is unique within the process and increases with creation order.
func (m *Message) ID() uint64 { return m.id }

func (m *Message) Sender() string          { return m.sender }
func (m *Message) SenderServer() string    { return m.senderServer }
func (m *Message) Recipient() string       { return m.recipient }
func (m *Message) RecipientServer() string { return m.recipientServer }
func (m *Message) Body() string            { return m.body }
func (m *Message) Urgent() bool            { return m.urgent }
func (m *Message) Created() time.Time      { return m.created }

// From returns the sender's address, user@server.
func (m *Message) From() string {
	return utils.CreateAddress(m.sender, m.senderServer)
}

// To returns the recipient's address, user@server.
func (m *Message) To() string {
	return utils.CreateAddress(m.recipient, m.recipientServer)
}

func (m *Message) Envelope() Envelope {
	return Envelope{
		Sender:          m.sender,
		SenderServer:    m.senderServer,
		Recipient:       m.recipient,
		RecipientServer: m.recipientServer,
	}
}
