package api

import (
	"context"
	"sync/atomic"
)

// WorkerPool limits concurrent request processing.
// Fast operations (evaluate, moves, apply) share a wide pool; searches use
// a narrow one sized to the engine, which runs one search at a time.
type WorkerPool struct {
	fastSem      chan struct{} // Semaphore for fast operations
	searchSem    chan struct{} // Semaphore for searches
	queuedFast   atomic.Int64
	queuedSearch atomic.Int64
	activeFast   atomic.Int64
	activeSearch atomic.Int64
	totalFast    atomic.Int64
	totalSearch  atomic.Int64
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxFastWorkers   int // Max concurrent fast operations (default: 100)
	MaxSearchWorkers int // Max concurrent searches (default: 1)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxFastWorkers:   100,
		MaxSearchWorkers: 1,
	}
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	defaults := DefaultPoolConfig()
	if config.MaxFastWorkers <= 0 {
		config.MaxFastWorkers = defaults.MaxFastWorkers
	}
	if config.MaxSearchWorkers <= 0 {
		config.MaxSearchWorkers = defaults.MaxSearchWorkers
	}

	return &WorkerPool{
		fastSem:   make(chan struct{}, config.MaxFastWorkers),
		searchSem: make(chan struct{}, config.MaxSearchWorkers),
	}
}

// AcquireFast acquires a slot for a fast operation.
// Returns an error if the context is cancelled while waiting.
func (p *WorkerPool) AcquireFast(ctx context.Context) error {
	p.queuedFast.Add(1)
	defer p.queuedFast.Add(-1)

	select {
	case p.fastSem <- struct{}{}:
		p.activeFast.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReleaseFast releases a fast operation slot.
func (p *WorkerPool) ReleaseFast() {
	p.activeFast.Add(-1)
	p.totalFast.Add(1)
	<-p.fastSem
}

// AcquireSearch waits for the search slot.
// Returns an error if the context is cancelled while waiting.
func (p *WorkerPool) AcquireSearch(ctx context.Context) error {
	p.queuedSearch.Add(1)
	defer p.queuedSearch.Add(-1)

	select {
	case p.searchSem <- struct{}{}:
		p.activeSearch.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquireSearch takes the search slot without blocking.
// Returns true if acquired, false if a search holds it.
func (p *WorkerPool) TryAcquireSearch() bool {
	select {
	case p.searchSem <- struct{}{}:
		p.activeSearch.Add(1)
		return true
	default:
		return false
	}
}

// ReleaseSearch releases the search slot.
func (p *WorkerPool) ReleaseSearch() {
	p.activeSearch.Add(-1)
	p.totalSearch.Add(1)
	<-p.searchSem
}

// PoolStats is a snapshot of pool usage.
type PoolStats struct {
	ActiveFast   int64 `json:"active_fast"`
	ActiveSearch int64 `json:"active_search"`
	QueuedFast   int64 `json:"queued_fast"`
	QueuedSearch int64 `json:"queued_search"`
	TotalFast    int64 `json:"total_fast"`
	TotalSearch  int64 `json:"total_search"`
	MaxFast      int   `json:"max_fast"`
	MaxSearch    int   `json:"max_search"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveFast:   p.activeFast.Load(),
		ActiveSearch: p.activeSearch.Load(),
		QueuedFast:   p.queuedFast.Load(),
		QueuedSearch: p.queuedSearch.Load(),
		TotalFast:    p.totalFast.Load(),
		TotalSearch:  p.totalSearch.Load(),
		MaxFast:      cap(p.fastSem),
		MaxSearch:    cap(p.searchSem),
	}
}
