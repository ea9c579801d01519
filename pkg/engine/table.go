package engine

import (
	"sync"
	"sync/atomic"

	"github.com/yourusername/othelloengine/internal/board"
)

// DefaultTableCapacity is the number of entries kept when no capacity is configured
const DefaultTableCapacity = 1 << 20

// Bound tells how a stored score relates to the true value of a position
type Bound uint8

const (
	Exact      Bound = iota // score is the true value
	LowerBound              // true value is at least score (fail-high)
	UpperBound              // true value is at most score (fail-low)
)

func (b Bound) String() string {
	switch b {
	case Exact:
		return "exact"
	case LowerBound:
		return "lower"
	case UpperBound:
		return "upper"
	}
	return "unknown"
}

// Entry is one transposition table record
type Entry struct {
	Depth    int
	Score    int
	Bound    Bound
	BestMove board.Move
}

// TableStats are the counters reported by Stats
type TableStats struct {
	Entries  int    `json:"entries"`
	Capacity int    `json:"capacity"`
	Lookups  uint64 `json:"lookups"`
	Hits     uint64 `json:"hits"`
	Stores   uint64 `json:"stores"`
	Rejected uint64 `json:"rejected"`
}

// TranspositionTable maps position fingerprints to search results.
//
// Entries are written only while the table holds fewer than its capacity.
// Once full, it keeps serving reads and drops every write until Clear.
// A table with capacity 0 never stores anything.
type TranspositionTable struct {
	mu       sync.RWMutex
	entries  map[uint64]Entry
	capacity int

	lookups  atomic.Uint64
	hits     atomic.Uint64
	stores   atomic.Uint64
	rejected atomic.Uint64
}

// NewTranspositionTable creates a table holding at most capacity entries.
// A negative capacity is treated as 0.
func NewTranspositionTable(capacity int) *TranspositionTable {
	if capacity < 0 {
		capacity = 0
	}
	return &TranspositionTable{
		entries:  make(map[uint64]Entry),
		capacity: capacity,
	}
}

// Probe returns the entry stored for key
func (t *TranspositionTable) Probe(key uint64) (Entry, bool) {
	t.lookups.Add(1)

	t.mu.RLock()
	e, ok := t.entries[key]
	t.mu.RUnlock()

	if ok {
		t.hits.Add(1)
	}
	return e, ok
}

// Store records e under key and reports whether it was written. A full
// table rejects every write, and an entry searched deeper than e is kept.
func (t *TranspositionTable) Store(key uint64, e Entry) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) >= t.capacity {
		t.rejected.Add(1)
		return false
	}
	if old, ok := t.entries[key]; ok && old.Depth > e.Depth {
		return false
	}
	t.entries[key] = e
	t.stores.Add(1)
	return true
}

// Clear removes all entries and resets the counters
func (t *TranspositionTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make(map[uint64]Entry)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.stores.Store(0)
	t.rejected.Store(0)
}

// Len returns the number of stored entries
func (t *TranspositionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Capacity returns the maximum number of entries
func (t *TranspositionTable) Capacity() int {
	return t.capacity
}

// Stats returns a snapshot of the table counters
func (t *TranspositionTable) Stats() TableStats {
	return TableStats{
		Entries:  t.Len(),
		Capacity: t.capacity,
		Lookups:  t.lookups.Load(),
		Hits:     t.hits.Load(),
		Stores:   t.stores.Load(),
		Rejected: t.rejected.Load(),
	}
}

// HitRate returns the probe hit rate as a percentage
func (t *TranspositionTable) HitRate() float64 {
	lookups := t.lookups.Load()
	if lookups == 0 {
		return 0
	}
	return float64(t.hits.Load()) / float64(lookups) * 100
}
