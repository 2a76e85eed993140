package scenario

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/neilalexander/mailmesh/internal/filter"
	"github.com/neilalexander/mailmesh/internal/logging"
	"github.com/neilalexander/mailmesh/internal/mailserver"
	"github.com/neilalexander/mailmesh/internal/nice"
)

func init() {
	color.NoColor = true
}

const script = `
steps:
  - server: {name: gmail}
  - server: {name: outlook}
  - server: {name: yahoo}
  - connect: {a: gmail, b: outlook}
  - connect: {a: outlook, b: yahoo}
  - register: {server: gmail, user: alice}
  - register: {server: yahoo, user: carol}
  - register: {server: yahoo, user: carol}
  - send: {from: alice@gmail, to: carol@yahoo, body: "Gran oferta de verano"}
  - send: {from: alice@gmail, to: carol@yahoo, body: "Llamame ya", urgent: true}
  - send: {from: alice@gmail, to: dave@yahoo, body: "hola"}
  - route: {from: gmail, to: yahoo}
  - users: {server: yahoo}
  - show: {user: carol@yahoo}
  - drain: {user: "yahoo:carol"}
  - drain: {user: carol@yahoo}
`

func TestParse(t *testing.T) {
	t.Parallel()

	s, err := Parse(strings.NewReader(script))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(s.Steps) != 16 {
		t.Fatalf("got %d steps", len(s.Steps))
	}
	if op, _ := s.Steps[9].Op(); op != "send" || !s.Steps[9].Send.Urgent {
		t.Errorf("step 10: %q %+v", op, s.Steps[9].Send)
	}
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"two ops":     "steps:\n  - server: {name: a}\n    users: {server: a}\n",
		"no op":       "steps:\n  - {}\n",
		"unknown key": "steps:\n  - launch: {name: a}\n",
		"bad field":   "steps:\n  - server: {title: a}\n",
	}
	for name, body := range tests {
		if _, err := Parse(strings.NewReader(body)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if _, err := Parse(strings.NewReader("steps:\n  - {}\n")); !errors.Is(err, ErrBadStep) {
		t.Errorf("got %v, want ErrBadStep", err)
	}
	if s, err := Parse(strings.NewReader("")); err != nil || len(s.Steps) != 0 {
		t.Errorf("empty script: %v, %v", s, err)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	s, err := Parse(strings.NewReader(script))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var buf bytes.Buffer
	r := &Runner{
		Network: mailserver.NewNetwork(logging.Discard(), filter.MustNew(filter.DefaultRules())),
		Printer: nice.NewPrinter(&buf),
	}
	results := r.Run(s)
	if len(results) != 16 {
		t.Fatalf("got %d results", len(results))
	}

	failures := map[int]string{}
	for _, res := range results {
		if res.Err != nil {
			failures[res.Step] = res.Kind
		}
	}
	want := map[int]string{8: "UserAlreadyExists", 11: "RecipientNotFound"}
	if len(failures) != len(want) {
		t.Fatalf("failures: got %v, want %v", failures, want)
	}
	for step, kind := range want {
		if failures[step] != kind {
			t.Errorf("step %d: got %q, want %q", step, failures[step], kind)
		}
	}
	if Failed(results) != 2 {
		t.Errorf("Failed: got %d", Failed(results))
	}

	out := buf.String()
	for _, want := range []string{
		"Route: gmail → outlook → yahoo\n",
		"Delivered alice@gmail to carol@yahoo in promotions\n",
		"Error step 11 (send):",
		"Users on yahoo\n   carol\n",
		"Mailbox of carol@yahoo\n",
		"Pending urgent: 1\n",
		"Message: Llamame ya\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
	// The second drain finds nothing left.
	if strings.Count(out, "Message: Llamame ya") != 1 {
		t.Errorf("urgent message shown more than once:\n%s", out)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Steps) != 16 {
		t.Errorf("got %d steps", len(s.Steps))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}
