package filter

import (
	"errors"
	"testing"
)

func TestClassifyDefaultRules(t *testing.T) {
	t.Parallel()

	e := MustNew(DefaultRules())

	tests := []struct {
		body string
		want string
	}{
		{body: "Gran OFERTA de verano", want: "promotions"},
		{body: "te envio mi curriculum", want: "work"},
		{body: "holaquetal", want: "personal"},
		{body: "Como Estas?", want: "personal"},
		{body: "reunion a las 5", want: None},
		{body: "", want: None},
		// promotions comes before personal, so it wins when both match
		{body: "hola, mira esta oferta", want: "promotions"},
		// work comes before personal
		{body: "hola, tengo una entrevista", want: "work"},
	}

	for _, tt := range tests {
		if got := e.Classify(tt.body); got != tt.want {
			t.Errorf("Classify(%q): got %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestClassifyRespectsConfiguredOrder(t *testing.T) {
	t.Parallel()

	e := MustNew([]Rule{
		{Category: "personal", Keywords: []string{"hola"}},
		{Category: "promotions", Keywords: []string{"oferta"}},
	})
	if got := e.Classify("hola, mira esta oferta"); got != "personal" {
		t.Errorf("got %q, want personal", got)
	}
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	t.Parallel()

	e := MustNew([]Rule{{Category: "alerts", Keywords: []string{"DownTime"}}})
	if got := e.Classify("planned downtime tonight"); got != "alerts" {
		t.Errorf("got %q, want alerts", got)
	}
	if got := e.Rules()[0].Keywords[0]; got != "downtime" {
		t.Errorf("keyword not normalised: %q", got)
	}
}

func TestEmptyEngine(t *testing.T) {
	t.Parallel()

	e, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	if got := e.Classify("oferta"); got != None {
		t.Errorf("got %q, want %q", got, None)
	}
	if len(e.Categories()) != 0 {
		t.Errorf("Categories: got %v", e.Categories())
	}
}

func TestNewRejectsInvalidRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules []Rule
	}{
		{name: "empty category", rules: []Rule{{Category: " ", Keywords: []string{"x"}}}},
		{name: "no keywords", rules: []Rule{{Category: "work"}}},
		{name: "empty keyword", rules: []Rule{{Category: "work", Keywords: []string{"job", ""}}}},
		{name: "duplicate", rules: []Rule{
			{Category: "work", Keywords: []string{"job"}},
			{Category: "Work", Keywords: []string{"cv"}},
		}},
		{name: "reserved inbox", rules: []Rule{{Category: "Inbox", Keywords: []string{"x"}}}},
		{name: "reserved sent", rules: []Rule{{Category: "sent", Keywords: []string{"x"}}}},
		{name: "reserved urgent", rules: []Rule{{Category: "URGENT", Keywords: []string{"x"}}}},
		{name: "reserved none", rules: []Rule{{Category: "none", Keywords: []string{"x"}}}},
	}

	for _, tt := range tests {
		if _, err := New(tt.rules); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("%s: got %v, want ErrInvalidRule", tt.name, err)
		}
	}
}

func TestCategoriesAndRulesAreCopies(t *testing.T) {
	t.Parallel()

	e := MustNew(DefaultRules())
	categories := e.Categories()
	want := []string{"promotions", "work", "personal"}
	if len(categories) != len(want) {
		t.Fatalf("Categories: got %v", categories)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Errorf("Categories[%d]: got %q, want %q", i, categories[i], want[i])
		}
	}

	rules := e.Rules()
	rules[0].Keywords[0] = "changed"
	if e.Classify("oferta") != "promotions" {
		t.Error("mutating Rules() changed the engine")
	}
}
