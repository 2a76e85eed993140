/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package nice renders messages, mailboxes and routes for the terminal.
package nice

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/neilalexander/mailmesh/internal/mailbox"
	"github.com/neilalexander/mailmesh/internal/mailserver"
	"github.com/neilalexander/mailmesh/internal/message"
	"github.com/neilalexander/mailmesh/internal/storage/types"
)

const (
	timeLayout = "02/01/2006 15:04:05"
	arrow      = " → "
	empty      = "(no messages)"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// Printer writes human readable output. Colour follows color.NoColor.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// Route joins server names with arrows, "gmail → outlook".
func Route(route []string) string {
	return strings.Join(route, arrow)
}

func (p *Printer) Message(m *message.Message) {
	header := fmt.Sprintf("[%s] %s%s%s", m.Created().Format(timeLayout), m.From(), arrow, m.To())
	if m.Urgent() {
		header += " " + red("URGENT")
	}
	p.printf("%s\n", header)
	body := strings.ReplaceAll(m.Body(), "\n", "\n            ")
	p.printf("   Message: %s\n", body)
}

func (p *Printer) Folder(name string, msgs []*message.Message) {
	p.printf("%s (%d)\n", bold(name), len(msgs))
	if len(msgs) == 0 {
		p.printf("   %s\n", empty)
		return
	}
	for _, m := range msgs {
		p.Message(m)
	}
}

// Mailbox prints Inbox, Sent and the filter folders, then the number of
// urgent messages still waiting.
func (p *Printer) Mailbox(address string, s *mailbox.Snapshot) {
	p.printf("%s %s\n", bold("Mailbox of"), cyan(address))
	p.Folder(mailbox.Inbox, s.Inbox)
	p.Folder(mailbox.Sent, s.Sent)
	for _, f := range s.Folders {
		p.Folder(f.Name, f.Messages)
	}
	if s.PendingUrgent > 0 {
		p.printf("%s %d\n", red("Pending urgent:"), s.PendingUrgent)
	}
}

func (p *Printer) Urgent(address string, msgs []*message.Message) {
	p.printf("%s %s\n", bold("Urgent mail for"), cyan(address))
	if len(msgs) == 0 {
		p.printf("   %s\n", empty)
		return
	}
	for _, m := range msgs {
		p.Message(m)
	}
}

func (p *Printer) Route(route []string) {
	p.printf("%s %s\n", bold("Route:"), Route(route))
}

// Receipt shows the route first and then where the message landed.
func (p *Printer) Receipt(r *mailserver.Receipt) {
	p.Route(r.Route)
	p.printf("%s %s to %s in %s\n", green("Delivered"), r.Message.From(), r.Message.To(), yellow(r.Folder))
}

func (p *Printer) Users(server string, users []string) {
	p.printf("%s %s\n", bold("Users on"), cyan(server))
	if len(users) == 0 {
		p.printf("   (no users)\n")
		return
	}
	for _, u := range users {
		p.printf("   %s\n", u)
	}
}

// Topology lists every server with the servers it links to.
func (p *Printer) Topology(servers []string, neighbors func(string) []string) {
	for _, s := range servers {
		peers := neighbors(s)
		if len(peers) == 0 {
			p.printf("%s: %s\n", cyan(s), "(no links)")
			continue
		}
		p.printf("%s: %s\n", cyan(s), strings.Join(peers, ", "))
	}
}

func (p *Printer) Journal(rows []types.Delivery) {
	if len(rows) == 0 {
		p.printf("(no deliveries)\n")
		return
	}
	for _, d := range rows {
		line := fmt.Sprintf("#%d [%s] %s@%s%s%s@%s via %s into %s",
			d.ID, d.Delivered.Format(timeLayout),
			d.Sender, d.SenderServer, arrow, d.Recipient, d.RecipientServer,
			Route(d.Route), d.Folder)
		if d.Subject != "" {
			line += fmt.Sprintf(": %q", d.Subject)
		}
		p.printf("%s\n", line)
	}
}

// Error prints a failed operation with its error kind when it has one.
func (p *Printer) Error(op string, err error) {
	if kind := mailserver.Kind(err); kind != "" {
		p.printf("%s %s: %s (%s)\n", red("Error"), op, err, kind)
		return
	}
	p.printf("%s %s: %s\n", red("Error"), op, err)
}
