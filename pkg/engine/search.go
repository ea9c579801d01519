package engine

import (
	"context"
	"math"
	"time"

	"github.com/yourusername/othelloengine/internal/board"
)

// Search limits
const (
	// MaxPly is the deepest recursion the search will enter. Requested
	// depths above it are clamped.
	MaxPly = 64

	// CheckInterval is the node cadence at which the deadline and the
	// context are polled
	CheckInterval = 64

	// ProgressInterval is the node cadence of in-depth progress reports
	ProgressInterval = 100

	// WinScore is added to the disc margin of a finished game so that any
	// decided result outranks every heuristic score
	WinScore = 10_000_000

	infinity = math.MaxInt32
)

// searcher carries the state of one Search call
type searcher struct {
	e        *Engine
	ctx      context.Context
	root     Cell
	start    time.Time
	deadline time.Time
	progress chan<- Progress

	// rootMoves replaces move generation at the root when set
	rootMoves []MoveInfo

	nodes   uint64
	stopped bool

	// iteration in flight and the last completed one, for progress reports
	current   int
	completed int
	bestMove  Move
	score     int
}

// expired polls the deadline and the context
func (s *searcher) expired() bool {
	if s.ctx.Err() != nil {
		return true
	}
	return !time.Now().Before(s.deadline)
}

// terminal scores a finished game for the side to move
func terminal(b Board, side Cell) int {
	diff := board.Count(b, side) - board.Count(b, side.Opponent())
	switch {
	case diff > 0:
		return WinScore + diff
	case diff < 0:
		return -WinScore + diff
	}
	return 0
}

// negamax searches b to the given depth and returns the score for the side
// to move together with the principal variation. maximizing is true when the
// root side is to move; leaf evaluations are always taken from the root
// side's view and negated on the opponent's plies.
//
// ok is false when the search was stopped by the deadline or the context;
// the score is then meaningless and must be discarded by every caller.
func (s *searcher) negamax(b Board, depth, alpha, beta int, maximizing bool, ply int, hash uint64) (score int, pv []Move, ok bool) {
	if ply > MaxPly {
		panic("engine: search exceeded MaxPly")
	}

	s.nodes++
	if s.nodes%CheckInterval == 0 && s.expired() {
		s.stopped = true
	}
	if s.stopped {
		return 0, nil, false
	}
	if s.progress != nil && s.nodes%ProgressInterval == 0 {
		s.report()
	}

	side := s.root
	if !maximizing {
		side = s.root.Opponent()
	}

	// A bound that does not cut leaves the window untouched
	if ply > 0 {
		if entry, found := s.e.table.Probe(hash); found && entry.Depth >= depth {
			switch {
			case entry.Bound == Exact,
				entry.Bound == LowerBound && entry.Score >= beta,
				entry.Bound == UpperBound && entry.Score <= alpha:
				return entry.Score, entryPV(entry), true
			}
		}
	}
	alphaOrig := alpha

	if depth == 0 {
		score = s.e.eval.Evaluate(b, s.root)
		if !maximizing {
			score = -score
		}
		return score, nil, true
	}

	var children []MoveInfo
	if ply == 0 && s.rootMoves != nil {
		children = s.rootMoves
	} else {
		children = OrderMoves(b, side)
	}
	if len(children) == 0 {
		if !board.HasLegalMove(b, side.Opponent()) {
			return terminal(b, side), nil, true
		}
		// Forced pass: same board, other side, one ply deeper
		score, pv, ok = s.negamax(b, depth-1, -beta, -alpha, !maximizing, ply+1, s.e.zobrist.TogglePass(hash))
		if !ok {
			return 0, nil, false
		}
		return -score, append([]Move{Pass}, pv...), true
	}

	best := -infinity
	bestMove := children[0].Move
	for _, c := range children {
		childHash := s.e.zobrist.Update(hash, c.Move, side, c.Flipped)
		childScore, childPV, ok := s.negamax(c.Board, depth-1, -beta, -alpha, !maximizing, ply+1, childHash)
		if !ok {
			return 0, nil, false
		}
		childScore = -childScore
		if childScore > best {
			best = childScore
			bestMove = c.Move
			pv = append([]Move{c.Move}, childPV...)
		}
		alpha = max(alpha, best)
		if beta <= alpha {
			break
		}
	}

	bound := Exact
	if best <= alphaOrig {
		bound = UpperBound
	} else if best >= beta {
		bound = LowerBound
	}
	// A restricted root score is not the position's value
	if ply > 0 || s.rootMoves == nil {
		s.e.table.Store(hash, Entry{Depth: depth, Score: best, Bound: bound, BestMove: bestMove})
	}

	return best, pv, true
}

func entryPV(e Entry) []Move {
	if e.BestMove.IsPass() {
		return nil
	}
	return []Move{e.BestMove}
}

// report sends a progress snapshot without blocking
func (s *searcher) report() {
	p := Progress{
		Nodes:     s.nodes,
		Depth:     s.current,
		Completed: s.completed,
		BestMove:  s.bestMove,
		Score:     s.score,
		Elapsed:   time.Since(s.start),
	}
	select {
	case s.progress <- p:
	default:
	}
}
