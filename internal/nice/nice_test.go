package nice

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/neilalexander/mailmesh/internal/filter"
	"github.com/neilalexander/mailmesh/internal/logging"
	"github.com/neilalexander/mailmesh/internal/mailserver"
	"github.com/neilalexander/mailmesh/internal/message"
	"github.com/neilalexander/mailmesh/internal/storage/types"
)

func init() {
	color.NoColor = true
}

var when = time.Date(2024, 3, 1, 9, 5, 7, 0, time.UTC)

func newMessage(body string, urgent bool) *message.Message {
	return message.New(message.Envelope{
		Sender: "alice", SenderServer: "gmail",
		Recipient: "bob", RecipientServer: "outlook",
	}, body, urgent, when)
}

func TestMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewPrinter(&buf).Message(newMessage("hola", false))
	want := "[01/03/2024 09:05:07] alice@gmail → bob@outlook\n   Message: hola\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	NewPrinter(&buf).Message(newMessage("line one\nline two", true))
	if !strings.Contains(buf.String(), "URGENT") || !strings.Contains(buf.String(), "line one\n            line two") {
		t.Errorf("got %q", buf.String())
	}
}

func TestRoute(t *testing.T) {
	t.Parallel()

	if got := Route([]string{"gmail", "outlook", "yahoo"}); got != "gmail → outlook → yahoo" {
		t.Errorf("got %q", got)
	}
	if got := Route([]string{"gmail"}); got != "gmail" {
		t.Errorf("got %q", got)
	}
}

func TestMailbox(t *testing.T) {
	t.Parallel()

	n := mailserver.NewNetwork(logging.Discard(), filter.MustNew(filter.DefaultRules()),
		mailserver.WithClock(func() time.Time { return when }))
	for _, err := range []error{
		n.AddServer("gmail"), n.AddServer("outlook"), n.Connect("gmail", "outlook"),
		n.RegisterUser("gmail", "alice"), n.RegisterUser("outlook", "bob"),
	} {
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	receipt, err := n.Send("gmail", "alice", "outlook", "bob", "Hola, una oferta", false)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := n.Send("gmail", "alice", "outlook", "bob", "now", true); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Receipt(receipt)
	snap, _ := n.ListMailbox("outlook", "bob")
	p.Mailbox("bob@outlook", snap)
	out := buf.String()

	for _, want := range []string{
		"Route: gmail → outlook\n",
		"Delivered alice@gmail to bob@outlook in promotions\n",
		"Mailbox of bob@outlook\n",
		"Inbox (0)\n   (no messages)\n",
		"Sent (0)\n   (no messages)\n",
		"promotions (1)\n[01/03/2024 09:05:07] alice@gmail → bob@outlook\n   Message: Hola, una oferta\n",
		"work (0)\n",
		"Pending urgent: 1\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	drained, _ := n.DrainUrgent("outlook", "bob")
	p.Urgent("bob@outlook", drained)
	if !strings.Contains(buf.String(), "Message: now") {
		t.Errorf("got %q", buf.String())
	}
	buf.Reset()
	p.Urgent("bob@outlook", nil)
	if !strings.Contains(buf.String(), "(no messages)") {
		t.Errorf("got %q", buf.String())
	}
}

func TestUsersTopologyJournalError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Users("gmail", []string{"alice", "carol"})
	p.Users("outlook", nil)
	p.Topology([]string{"gmail", "island"}, func(s string) []string {
		if s == "gmail" {
			return []string{"outlook", "yahoo"}
		}
		return nil
	})
	p.Journal([]types.Delivery{{
		ID: 3, Sender: "alice", SenderServer: "gmail", Recipient: "bob", RecipientServer: "outlook",
		Route: []string{"gmail", "outlook"}, Folder: "Inbox", Subject: "hi", Delivered: when,
	}})
	p.Journal(nil)
	p.Error("send", fmt.Errorf("wrapped: %w", mailserver.ErrNoRouteFound))
	p.Error("load", errors.New("boom"))

	want := "Users on gmail\n   alice\n   carol\n" +
		"Users on outlook\n   (no users)\n" +
		"gmail: outlook, yahoo\n" +
		"island: (no links)\n" +
		"#3 [01/03/2024 09:05:07] alice@gmail → bob@outlook via gmail → outlook into Inbox: \"hi\"\n" +
		"(no deliveries)\n" +
		"Error send: wrapped: no route found (NoRouteFound)\n" +
		"Error load: boom\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}
