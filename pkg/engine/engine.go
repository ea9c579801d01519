package engine

import (
	"math"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/yourusername/othelloengine/internal/board"
	"github.com/yourusername/othelloengine/internal/eval"
	"github.com/yourusername/othelloengine/internal/zobrist"
)

var (
	// ErrBusy is returned when a search is requested while another one runs
	ErrBusy = errors.New("engine: search already in progress")
	// ErrInvalidSide is returned for a side to move other than black or white
	ErrInvalidSide = errors.New("engine: side must be black or white")
	// ErrIllegalMove is returned when a move is not legal in the position
	ErrIllegalMove = errors.New("engine: illegal move")
)

// Weights are the evaluator coefficients
type Weights = eval.Weights

// Breakdown holds the unweighted evaluation sub-scores
type Breakdown = eval.Breakdown

// DefaultWeights returns the standard evaluator coefficients
func DefaultWeights() Weights {
	return eval.DefaultWeights()
}

// Engine is the main search engine. It owns the evaluator, the Zobrist
// constants and the transposition table, and runs one search at a time.
type Engine struct {
	eval    *eval.Evaluator
	zobrist *zobrist.Table
	table   *TranspositionTable
	log     zerolog.Logger

	// held for the duration of a search
	busy sync.Mutex
}

// EngineOptions configures the engine
type EngineOptions struct {
	TableCapacity int             // Transposition table entries (0 = default, negative = disabled)
	HashSeed      uint64          // Seed for the Zobrist constants (0 = random)
	Weights       *Weights        // Evaluator weights (nil = defaults)
	Logger        *zerolog.Logger // nil = no logging
}

// NewEngine creates a new search engine with the given options
func NewEngine(opts EngineOptions) (*Engine, error) {
	e := &Engine{log: zerolog.Nop()}
	if opts.Logger != nil {
		e.log = *opts.Logger
	}

	weights := eval.DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	if err := checkWeights(weights); err != nil {
		return nil, err
	}
	e.eval = eval.New(weights)

	if opts.HashSeed != 0 {
		e.zobrist = zobrist.New(opts.HashSeed)
	} else {
		e.zobrist = zobrist.NewRandom()
	}

	capacity := opts.TableCapacity
	if capacity == 0 {
		capacity = DefaultTableCapacity
	}
	e.table = NewTranspositionTable(capacity)

	e.log.Debug().
		Int("table-capacity", e.table.Capacity()).
		Bool("seeded", opts.HashSeed != 0).
		Msg("engine-created")
	return e, nil
}

func checkWeights(w Weights) error {
	for name, v := range map[string]float64{
		"piece_square": w.PieceSquare,
		"mobility":     w.Mobility,
		"frontier":     w.Frontier,
		"stability":    w.Stability,
		"disc_diff":    w.DiscDiff,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("engine: weight %s is not finite", name)
		}
	}
	return nil
}

// Evaluate returns the static score of b for side; positive favors side
func (e *Engine) Evaluate(b Board, side Cell) int {
	return e.eval.Evaluate(b, side)
}

// Analyze returns the unweighted sub-scores of b for side
func (e *Engine) Analyze(b Board, side Cell) Breakdown {
	return eval.Analyze(b, side)
}

// Weights returns the evaluator coefficients in use
func (e *Engine) Weights() Weights {
	return e.eval.Weights()
}

// Hash returns the fingerprint of (b, side) under the engine's constants
func (e *Engine) Hash(b Board, side Cell) uint64 {
	return e.zobrist.Hash(b, side)
}

// Table returns the engine's transposition table
func (e *Engine) Table() *TranspositionTable {
	return e.table
}

// ClearTable empties the transposition table. It fails with ErrBusy while a
// search is running.
func (e *Engine) ClearTable() error {
	if !e.busy.TryLock() {
		return ErrBusy
	}
	defer e.busy.Unlock()
	e.table.Clear()
	return nil
}

// Apply plays m for side on b. A pass is only legal when side has no
// placement available.
func Apply(b Board, side Cell, m Move) (Board, []Move, error) {
	if side != Black && side != White {
		return b, nil, ErrInvalidSide
	}
	if m.IsPass() {
		if board.HasLegalMove(b, side) {
			return b, nil, errors.Wrap(ErrIllegalMove, "cannot pass with moves available")
		}
		return b, nil, nil
	}
	if !board.IsLegal(b, m, side) {
		return b, nil, errors.Wrapf(ErrIllegalMove, "%s for %s", m, side)
	}
	next, flipped := board.ApplyMoveFlips(b, m, side)
	return next, flipped, nil
}
