package mailbox

import (
	"errors"
	"testing"
	"time"

	"github.com/neilalexander/mailmesh/internal/filter"
	"github.com/neilalexander/mailmesh/internal/message"
)

func newMessage(body string, urgent bool) *message.Message {
	return message.New(message.Envelope{
		Sender:          "alice",
		SenderServer:    "gmail",
		Recipient:       "bob",
		RecipientServer: "outlook",
	}, body, urgent, time.Now())
}

func newMailbox() *Mailbox {
	return New("bob", filter.MustNew(filter.DefaultRules()))
}

func TestReceiveClassifies(t *testing.T) {
	t.Parallel()

	mb := newMailbox()
	tests := []struct {
		body   string
		folder string
	}{
		{body: "Gran oferta", folder: "promotions"},
		{body: "entrevista el lunes", folder: "work"},
		{body: "hola!", folder: "personal"},
		{body: "nada especial", folder: Inbox},
	}
	for _, tt := range tests {
		m := newMessage(tt.body, false)
		if got := mb.Receive(m); got != tt.folder {
			t.Errorf("Receive(%q): got %q, want %q", tt.body, got, tt.folder)
		}
		msgs, err := mb.ListFolder(tt.folder)
		if err != nil {
			t.Fatalf("ListFolder(%q): %v", tt.folder, err)
		}
		if len(msgs) != 1 || msgs[0] != m {
			t.Errorf("folder %q: got %d messages, want exactly the received one", tt.folder, len(msgs))
		}
	}
}

func TestUrgentBypassesFilters(t *testing.T) {
	t.Parallel()

	mb := newMailbox()
	urgent := newMessage("oferta urgente, hola", true)
	if got := mb.Receive(urgent); got != Urgent {
		t.Fatalf("Receive: got %q, want %q", got, Urgent)
	}

	for _, name := range mb.FolderNames() {
		msgs, err := mb.ListFolder(name)
		if err != nil {
			t.Fatalf("ListFolder(%q): %v", name, err)
		}
		if len(msgs) != 0 {
			t.Errorf("urgent message leaked into %q", name)
		}
	}
	if mb.PendingUrgent() != 1 {
		t.Errorf("PendingUrgent: got %d, want 1", mb.PendingUrgent())
	}

	drained := mb.DrainUrgent()
	if len(drained) != 1 || drained[0] != urgent {
		t.Fatalf("DrainUrgent: got %d messages", len(drained))
	}
	if again := mb.DrainUrgent(); len(again) != 0 {
		t.Errorf("second DrainUrgent: got %d messages, want 0", len(again))
	}
}

func TestDrainUrgentArrivalOrder(t *testing.T) {
	t.Parallel()

	mb := newMailbox()
	var want []*message.Message
	for _, body := range []string{"first", "second", "third"} {
		m := newMessage(body, true)
		want = append(want, m)
		mb.Receive(m)
	}
	got := mb.DrainUrgent()
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i].Body(), want[i].Body())
		}
	}
}

func TestDrainUrgentEmpty(t *testing.T) {
	t.Parallel()

	got := newMailbox().DrainUrgent()
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want an empty non-nil slice", got)
	}
}

func TestListingIsNonDestructive(t *testing.T) {
	t.Parallel()

	mb := newMailbox()
	m := newMessage("plain", false)
	mb.Receive(m)
	mb.RecordSent(m)

	for i := 0; i < 2; i++ {
		if inbox, _ := mb.ListFolder(Inbox); len(inbox) != 1 {
			t.Errorf("pass %d: inbox has %d messages", i, len(inbox))
		}
		if sent := mb.ListSent(); len(sent) != 1 || sent[0] != m {
			t.Errorf("pass %d: sent has %d messages", i, len(sent))
		}
	}

	listed := mb.ListSent()
	listed[0] = nil
	if mb.ListSent()[0] != m {
		t.Error("changing a listed slice changed the folder")
	}
}

func TestFolderLookup(t *testing.T) {
	t.Parallel()

	mb := newMailbox()
	for _, name := range []string{"inbox", "INBOX", "sent", "Promotions", "WORK"} {
		if _, err := mb.Folder(name); err != nil {
			t.Errorf("Folder(%q): %v", name, err)
		}
	}
	if _, err := mb.ListFolder("spam"); !errors.Is(err, ErrNoSuchFolder) {
		t.Errorf("ListFolder(spam): got %v, want ErrNoSuchFolder", err)
	}
	if _, err := mb.Folder(Urgent); !errors.Is(err, ErrNoSuchFolder) {
		t.Errorf("Folder(Urgent): got %v, want ErrNoSuchFolder", err)
	}
}

func TestFolderNames(t *testing.T) {
	t.Parallel()

	names := newMailbox().FolderNames()
	want := []string{Inbox, Sent, "promotions", "work", "personal"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d]: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	mb := newMailbox()
	promo := newMessage("oferta", false)
	plain := newMessage("plain", false)
	mb.Receive(promo)
	mb.Receive(plain)
	mb.Receive(newMessage("urgent", true))
	mb.RecordSent(plain)

	s := mb.Snapshot()
	if s.Owner != "bob" {
		t.Errorf("Owner: got %q", s.Owner)
	}
	if len(s.Inbox) != 1 || s.Inbox[0] != plain {
		t.Errorf("Inbox: got %d messages", len(s.Inbox))
	}
	if len(s.Sent) != 1 {
		t.Errorf("Sent: got %d messages", len(s.Sent))
	}
	if got := s.Folder("promotions"); len(got) != 1 || got[0] != promo {
		t.Errorf("promotions: got %d messages", len(got))
	}
	if got := s.Folder("missing"); got != nil {
		t.Errorf("missing folder: got %v", got)
	}
	if len(s.Folders) != 3 {
		t.Errorf("Folders: got %d, want 3", len(s.Folders))
	}
	if s.PendingUrgent != 1 {
		t.Errorf("PendingUrgent: got %d", s.PendingUrgent)
	}
	if mb.PendingUrgent() != 1 {
		t.Error("Snapshot consumed urgent mail")
	}
}

func TestFIFOQueue(t *testing.T) {
	t.Parallel()

	q := newFIFOQueue()
	if q.len() != 0 {
		t.Fatalf("len: got %d", q.len())
	}
	a, b := newMessage("a", true), newMessage("b", true)
	q.push(a)
	q.push(b)
	if q.len() != 2 {
		t.Fatalf("len: got %d", q.len())
	}
	got := q.drain()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("drain: got %v", got)
	}
	if q.len() != 0 {
		t.Errorf("len after drain: got %d", q.len())
	}
}
