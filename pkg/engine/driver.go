package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/yourusername/othelloengine/internal/board"
)

// Search defaults
const (
	DefaultDepth     = 6
	DefaultTimeLimit = 2000 * time.Millisecond
)

// Request describes one best-move search
type Request struct {
	Board     Board
	Side      Cell          // side to move
	Depth     int           // maximum iteration depth (0 = DefaultDepth)
	TimeLimit time.Duration // wall-clock budget (0 = DefaultTimeLimit)

	// Moves restricts the root to these placements; nil searches every
	// legal move. Each one must be legal in Board.
	Moves []Move

	// ReuseTable keeps the transposition table from earlier searches.
	// By default the table is cleared first.
	ReuseTable bool

	// Progress receives snapshots during the search. Sends never block:
	// a full channel drops the snapshot. The channel is not closed.
	Progress chan<- Progress
}

// Progress is a snapshot of a running search
type Progress struct {
	Nodes     uint64
	Depth     int  // depth currently being searched
	Completed int  // last fully completed depth; equals Depth once it finishes
	BestMove  Move // best move of Completed; Pass before the first depth completes
	Score     int
	Elapsed   time.Duration
}

// Result is the outcome of a search
type Result struct {
	BestMove Move
	Label    string   // algebraic label of BestMove, or "pass"
	Flips    int      // discs BestMove turns over on the root board
	Score    int      // from the side to move's point of view
	PV       []string // principal variation of the deepest completed iteration
	Nodes    uint64
	Elapsed  time.Duration
	Depth    int // deepest completed iteration; 0 if none completed
}

// Search finds the best move for req.Side on req.Board using iterative
// deepening. Each depth runs against the same deadline; a depth interrupted
// by the deadline is discarded and the previous depth's answer is returned.
// Running out of time is not an error.
//
// Cancelling ctx stops the search and Search returns context.Canceled with
// no result. A ctx deadline only tightens the time limit. A second
// concurrent call fails with ErrBusy.
func (e *Engine) Search(ctx context.Context, req Request) (*Result, error) {
	if req.Side != Black && req.Side != White {
		return nil, ErrInvalidSide
	}
	if !e.busy.TryLock() {
		return nil, ErrBusy
	}
	defer e.busy.Unlock()

	start := time.Now()

	depth := req.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}
	if depth > MaxPly {
		depth = MaxPly
	}
	limit := req.TimeLimit
	if limit <= 0 {
		limit = DefaultTimeLimit
	}

	for _, m := range req.Moves {
		if !board.IsLegal(req.Board, m, req.Side) {
			return nil, errors.Wrapf(ErrIllegalMove, "root move %s for %s", m, req.Side)
		}
	}

	if !req.ReuseTable {
		e.table.Clear()
	}

	ordered := OrderMoves(req.Board, req.Side)
	if len(req.Moves) > 0 {
		ordered = lo.Filter(ordered, func(mi MoveInfo, _ int) bool {
			return lo.Contains(req.Moves, mi.Move)
		})
	}
	if len(ordered) == 0 {
		e.log.Debug().Str("side", req.Side.String()).Msg("no-legal-moves")
		return &Result{
			BestMove: Pass,
			Label:    board.PassLabel,
			Score:    e.eval.Evaluate(req.Board, req.Side),
			PV:       []string{},
			Elapsed:  time.Since(start),
		}, nil
	}

	deadline := start.Add(limit)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	s := &searcher{
		e:        e,
		ctx:      ctx,
		root:     req.Side,
		start:    start,
		deadline: deadline,
		progress: req.Progress,
		bestMove: Pass,
	}
	if len(req.Moves) > 0 {
		s.rootMoves = ordered
	}

	// Answer used when not even depth 1 completes
	result := &Result{
		BestMove: ordered[0].Move,
		Score:    e.eval.Evaluate(ordered[0].Board, req.Side),
		PV:       []string{ordered[0].Move.String()},
	}

	rootHash := e.zobrist.Hash(req.Board, req.Side)
	for d := 1; d <= depth; d++ {
		if s.expired() {
			break
		}
		s.current = d
		score, pv, ok := s.negamax(req.Board, d, -infinity, infinity, true, 0, rootHash)
		if !ok {
			break
		}

		result.BestMove = pv[0]
		result.Score = score
		result.PV = lo.Map(pv, func(m Move, _ int) string { return m.String() })
		result.Depth = d

		s.completed, s.bestMove, s.score = d, pv[0], score
		if s.progress != nil {
			s.report()
		}

		e.log.Debug().
			Int("depth", d).
			Str("best", pv[0].String()).
			Int("score", score).
			Uint64("nodes", s.nodes).
			Dur("elapsed", time.Since(start)).
			Msg("depth-complete")
	}

	if err := ctx.Err(); err == context.Canceled {
		e.log.Debug().Err(err).Uint64("nodes", s.nodes).Msg("search-cancelled")
		return nil, err
	}

	result.Label = result.BestMove.String()
	_, result.Flips = board.ApplyMove(req.Board, result.BestMove, req.Side)
	result.Nodes = s.nodes
	result.Elapsed = time.Since(start)

	e.log.Info().
		Str("best", result.Label).
		Int("score", result.Score).
		Int("depth", result.Depth).
		Uint64("nodes", result.Nodes).
		Dur("elapsed", result.Elapsed).
		Msg("search-returning")
	return result, nil
}
