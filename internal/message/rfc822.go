/*
 *  Copyright (c) 2021 Neil Alexander
 *
 *  This Source Code Form is subject to the terms of the Mozilla Public
 *  License, v. 2.0. If a copy of the MPL was not distributed with this
 *  file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package message

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	gomessage "github.com/emersion/go-message"

	"github.com/neilalexander/mailmesh/internal/utils"
)

const subjectLength = 64

// Submission is what the SMTP gateway extracts from a DATA stream.
type Submission struct {
	Subject string
	Body    string
	Urgent  bool
}

// Encode renders the message as an RFC 5322 text/plain mail. The output only
// depends on the message, so encoding the same message twice gives the same
// bytes.
func Encode(m *Message) ([]byte, error) {
	var hdr gomessage.Header
	hdr.Set("Date", m.Created().Format(time.RFC1123Z))
	hdr.Set("From", m.From())
	hdr.Set("To", m.To())
	hdr.SetText("Subject", Subject(m.Body()))
	hdr.Set("Message-Id", fmt.Sprintf("<%d.%d@%s.%s>", m.ID(), m.Created().UnixNano(), m.SenderServer(), utils.Domain))
	if m.Urgent() {
		hdr.Set("X-Priority", "1 (Highest)")
		hdr.Set("Importance", "high")
	}
	hdr.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	hdr.Set("Content-Transfer-Encoding", "quoted-printable")

	var b bytes.Buffer
	w, err := gomessage.CreateWriter(&b, hdr)
	if err != nil {
		return nil, fmt.Errorf("message.CreateWriter: %w", err)
	}
	if _, err := io.WriteString(w, m.Body()); err != nil {
		return nil, fmt.Errorf("w.Write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("w.Close: %w", err)
	}
	return b.Bytes(), nil
}

// Decode reads a submitted mail. For multipart mail the first text/plain part
// is used as the body.
func Decode(r io.Reader) (*Submission, error) {
	e, err := gomessage.Read(r)
	if err != nil && !gomessage.IsUnknownCharset(err) {
		return nil, fmt.Errorf("message.Read: %w", err)
	}

	sub := &Submission{
		Urgent: IsUrgent(e.Header),
	}
	if subject, err := e.Header.Text("Subject"); err == nil {
		sub.Subject = subject
	} else {
		sub.Subject = e.Header.Get("Subject")
	}

	var body io.Reader
	if mr := e.MultipartReader(); mr != nil {
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			} else if err != nil && !gomessage.IsUnknownCharset(err) {
				return nil, fmt.Errorf("mr.NextPart: %w", err)
			}
			if t, _, _ := p.Header.ContentType(); t == "" || t == "text/plain" {
				body = p.Body
				break
			}
		}
	} else {
		body = e.Body
	}

	if body != nil {
		b, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("io.ReadAll: %w", err)
		}
		sub.Body = normalise(string(b))
	}
	return sub, nil
}

// IsUrgent reports whether the headers ask for urgent delivery: X-Priority 1
// or 2, Importance high, or Priority urgent.
func IsUrgent(h gomessage.Header) bool {
	if p := strings.TrimSpace(h.Get("X-Priority")); p != "" {
		if p[0] == '1' || p[0] == '2' {
			return true
		}
	}
	if strings.EqualFold(strings.TrimSpace(h.Get("Importance")), "high") {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(h.Get("Priority")), "urgent")
}

// Subject is the first non-blank line of the body, shortened to a header
// friendly length.
func Subject(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > subjectLength {
			runes := []rune(line)
			line = string(runes[:subjectLength-3]) + "..."
		}
		return line
	}
	return ""
}

func normalise(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.TrimRight(body, "\n")
}
