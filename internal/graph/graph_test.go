package graph

import (
	"errors"
	"reflect"
	"testing"
)

func build(t *testing.T, nodes []string, links [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, n := range nodes {
		if !g.Add(n) {
			t.Fatalf("Add(%q) failed", n)
		}
	}
	for _, l := range links {
		if err := g.Connect(l[0], l[1]); err != nil {
			t.Fatalf("Connect(%q, %q): %v", l[0], l[1], err)
		}
	}
	return g
}

func TestAdd(t *testing.T) {
	t.Parallel()

	g := New()
	if !g.Add("gmail") {
		t.Fatal("first Add failed")
	}
	if g.Add("gmail") {
		t.Error("duplicate Add succeeded")
	}
	if g.Add("") {
		t.Error("empty Add succeeded")
	}
	if !g.Has("gmail") || g.Has("outlook") {
		t.Error("Has gives wrong answers")
	}
	if got := g.Nodes(); !reflect.DeepEqual(got, []string{"gmail"}) {
		t.Errorf("Nodes: got %v", got)
	}
}

func TestConnectIsSymmetricAndIdempotent(t *testing.T) {
	t.Parallel()

	g := build(t, []string{"a", "b", "c"}, nil)
	for i := 0; i < 2; i++ {
		if err := g.Connect("a", "b"); err != nil {
			t.Fatalf("Connect: %v", err)
		}
		if err := g.Connect("b", "a"); err != nil {
			t.Fatalf("Connect reversed: %v", err)
		}
	}

	na, _ := g.Neighbors("a")
	nb, _ := g.Neighbors("b")
	if !reflect.DeepEqual(na, []string{"b"}) {
		t.Errorf("Neighbors(a): got %v", na)
	}
	if !reflect.DeepEqual(nb, []string{"a"}) {
		t.Errorf("Neighbors(b): got %v", nb)
	}
	if !g.Connected("a", "b") || !g.Connected("b", "a") {
		t.Error("Connected is not symmetric")
	}
	if g.Connected("a", "c") {
		t.Error("a and c should not be connected")
	}
}

func TestConnectRejectsUnknownAndSelf(t *testing.T) {
	t.Parallel()

	g := build(t, []string{"a"}, nil)
	if err := g.Connect("a", "zz"); !errors.Is(err, ErrInvalidServer) {
		t.Errorf("unknown peer: got %v", err)
	}
	if err := g.Connect("zz", "a"); !errors.Is(err, ErrInvalidServer) {
		t.Errorf("unknown source: got %v", err)
	}
	if err := g.Connect("a", "a"); !errors.Is(err, ErrInvalidServer) {
		t.Errorf("self link: got %v", err)
	}
	if n, _ := g.Neighbors("a"); len(n) != 0 {
		t.Errorf("failed connects changed adjacency: %v", n)
	}
	if _, err := g.Neighbors("zz"); !errors.Is(err, ErrInvalidServer) {
		t.Errorf("Neighbors(unknown): got %v", err)
	}
}

func TestNeighborsInsertionOrder(t *testing.T) {
	t.Parallel()

	g := build(t, []string{"hub", "x", "y", "z"}, [][2]string{
		{"hub", "z"}, {"x", "hub"}, {"hub", "y"},
	})
	got, _ := g.Neighbors("hub")
	if !reflect.DeepEqual(got, []string{"z", "x", "y"}) {
		t.Errorf("got %v", got)
	}

	got[0] = "changed"
	again, _ := g.Neighbors("hub")
	if again[0] != "z" {
		t.Error("Neighbors returned the internal slice")
	}
}

func TestRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		nodes []string
		links [][2]string
		src   string
		dst   string
		want  []string
	}{
		{
			name:  "same server",
			nodes: []string{"a"},
			src:   "a", dst: "a",
			want: []string{"a"},
		},
		{
			name:  "direct",
			nodes: []string{"gmail", "outlook"},
			links: [][2]string{{"gmail", "outlook"}},
			src:   "gmail", dst: "outlook",
			want: []string{"gmail", "outlook"},
		},
		{
			name:  "chain",
			nodes: []string{"a", "b", "c"},
			links: [][2]string{{"a", "b"}, {"b", "c"}},
			src:   "a", dst: "c",
			want: []string{"a", "b", "c"},
		},
		{
			name:  "chain reversed",
			nodes: []string{"a", "b", "c"},
			links: [][2]string{{"a", "b"}, {"b", "c"}},
			src:   "c", dst: "a",
			want: []string{"c", "b", "a"},
		},
		{
			name:  "diamond takes first linked branch",
			nodes: []string{"a", "b", "c", "d"},
			links: [][2]string{{"a", "c"}, {"a", "b"}, {"b", "d"}, {"c", "d"}},
			src:   "a", dst: "d",
			want: []string{"a", "c", "d"},
		},
		{
			name:  "shortcut beats long way",
			nodes: []string{"a", "b", "c", "d", "e"},
			links: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "e"}, {"a", "e"}},
			src:   "a", dst: "d",
			want: []string{"a", "e", "d"},
		},
		{
			name:  "cycle terminates",
			nodes: []string{"a", "b", "c", "d"},
			links: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}},
			src:   "b", dst: "d",
			want: []string{"b", "c", "d"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := build(t, tt.nodes, tt.links)
			got, err := g.Route(tt.src, tt.dst)
			if err != nil {
				t.Fatalf("Route: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRouteDisconnected(t *testing.T) {
	t.Parallel()

	g := build(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"c", "d"}, {"d", "c"}})
	if _, err := g.Route("a", "d"); !errors.Is(err, ErrNoRoute) {
		t.Errorf("got %v, want ErrNoRoute", err)
	}
	if _, err := g.Route("a", "nowhere"); !errors.Is(err, ErrInvalidServer) {
		t.Errorf("unknown destination: got %v, want ErrInvalidServer", err)
	}
	if _, err := g.Route("nowhere", "a"); !errors.Is(err, ErrInvalidServer) {
		t.Errorf("unknown source: got %v, want ErrInvalidServer", err)
	}
}

func TestRouteOnGrid(t *testing.T) {
	t.Parallel()

	// 3x3 grid, links added row-major so the route prefers moving right
	// before moving down.
	name := func(r, c int) string { return string(rune('a'+r)) + string(rune('0'+c)) }
	g := New()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			g.Add(name(r, c))
		}
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if c < 2 {
				_ = g.Connect(name(r, c), name(r, c+1))
			}
			if r < 2 {
				_ = g.Connect(name(r, c), name(r+1, c))
			}
		}
	}
	got, err := g.Route("a0", "c2")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("route %v is not a shortest path", got)
	}
	want := []string{"a0", "a1", "a2", "b2", "c2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
