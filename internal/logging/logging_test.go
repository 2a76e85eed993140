package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestNewFiltersByLevel(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		level string
		want  []string
		skip  []string
	}{
		{level: "error", want: []string{"E1"}, skip: []string{"W1", "I1", "D1"}},
		{level: "warn", want: []string{"E1", "W1"}, skip: []string{"I1", "D1"}},
		{level: "info", want: []string{"E1", "W1", "I1"}, skip: []string{"D1"}},
		{level: "DEBUG", want: []string{"E1", "W1", "I1", "D1"}},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		log, err := New(&buf, "Test", tt.level)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.level, err)
		}
		log.Errorf("E1")
		log.Warnf("W1")
		log.Infof("I1")
		log.Debugf("D1")

		out := buf.String()
		for _, w := range tt.want {
			if !strings.Contains(out, w) {
				t.Errorf("level %s: expected %s in output %q", tt.level, w, out)
			}
		}
		for _, s := range tt.skip {
			if strings.Contains(out, s) {
				t.Errorf("level %s: unexpected %s in output %q", tt.level, s, out)
			}
		}
		if !strings.Contains(out, "[ Test ] ") {
			t.Errorf("level %s: prefix missing from %q", tt.level, out)
		}
	}
}

func TestUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(&bytes.Buffer{}, "Test", "loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
	if Valid("loud") {
		t.Error("Valid accepted an unknown level")
	}
	if !Valid(" Info ") {
		t.Error("Valid rejected a padded level")
	}
}
