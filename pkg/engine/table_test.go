package engine

import "testing"

func TestTableStoreProbe(t *testing.T) {
	tt := NewTranspositionTable(16)
	d3, _ := ParseMove("d3")
	want := Entry{Depth: 3, Score: -42, Bound: LowerBound, BestMove: d3}

	if _, ok := tt.Probe(7); ok {
		t.Fatal("Empty table should miss")
	}
	if !tt.Store(7, want) {
		t.Fatal("Store rejected")
	}
	got, ok := tt.Probe(7)
	if !ok || got != want {
		t.Errorf("Probe = %+v, %v; want %+v", got, ok, want)
	}

	stats := tt.Stats()
	if stats.Lookups != 2 || stats.Hits != 1 || stats.Stores != 1 || stats.Entries != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if rate := tt.HitRate(); rate != 50 {
		t.Errorf("HitRate = %f, want 50", rate)
	}
}

func TestTableCapacityCap(t *testing.T) {
	tt := NewTranspositionTable(2)
	tt.Store(1, Entry{Score: 1})
	tt.Store(2, Entry{Score: 2})

	if tt.Store(3, Entry{Score: 3}) {
		t.Error("Store beyond capacity should be rejected")
	}
	if tt.Store(1, Entry{Score: 100}) {
		t.Error("A full table accepts no writes, not even overwrites")
	}
	if e, _ := tt.Probe(1); e.Score != 1 {
		t.Errorf("Entry changed to %d", e.Score)
	}
	if tt.Len() != 2 {
		t.Errorf("Len = %d, want 2", tt.Len())
	}
	if tt.Stats().Rejected != 2 {
		t.Errorf("Rejected = %d, want 2", tt.Stats().Rejected)
	}
}

func TestTableKeepsDeeperEntry(t *testing.T) {
	tt := NewTranspositionTable(8)
	tt.Store(1, Entry{Depth: 5, Score: 10, Bound: LowerBound})

	if tt.Store(1, Entry{Depth: 2, Score: 99, Bound: Exact}) {
		t.Error("A shallower entry should not replace a deeper one")
	}
	if e, _ := tt.Probe(1); e.Depth != 5 || e.Score != 10 {
		t.Errorf("Entry = %+v, want the depth 5 one", e)
	}

	for _, depth := range []int{5, 7} {
		if !tt.Store(1, Entry{Depth: depth, Score: depth}) {
			t.Errorf("Depth %d entry should replace the stored one", depth)
		}
	}
	if e, _ := tt.Probe(1); e.Depth != 7 {
		t.Errorf("Depth = %d, want 7", e.Depth)
	}
	if tt.Len() != 1 {
		t.Errorf("Len = %d, want 1", tt.Len())
	}
}

func TestTableClear(t *testing.T) {
	tt := NewTranspositionTable(4)
	tt.Store(1, Entry{})
	tt.Probe(1)
	tt.Clear()

	if tt.Len() != 0 {
		t.Errorf("Len after Clear = %d", tt.Len())
	}
	if s := tt.Stats(); s.Lookups != 0 || s.Hits != 0 || s.Stores != 0 {
		t.Errorf("Counters not reset: %+v", s)
	}
	if !tt.Store(1, Entry{}) {
		t.Error("Cleared table should accept writes again")
	}
}

func TestTableZeroCapacity(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		tt := NewTranspositionTable(capacity)
		if tt.Store(1, Entry{}) {
			t.Errorf("capacity %d: Store should be rejected", capacity)
		}
		if _, ok := tt.Probe(1); ok {
			t.Errorf("capacity %d: Probe should miss", capacity)
		}
	}
}

func TestBoundString(t *testing.T) {
	tests := []struct {
		b    Bound
		want string
	}{
		{Exact, "exact"},
		{LowerBound, "lower"},
		{UpperBound, "upper"},
		{Bound(9), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.b.String(); got != tc.want {
			t.Errorf("Bound(%d).String() = %q, want %q", tc.b, got, tc.want)
		}
	}
}
