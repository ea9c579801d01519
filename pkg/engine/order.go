package engine

import (
	"sort"

	"github.com/yourusername/othelloengine/internal/board"
)

// MoveInfo describes one legal move and the position it leads to
type MoveInfo struct {
	Move        Move
	Board       Board
	Flipped     []Move
	OppMobility int // legal replies available to the opponent
}

// Flips returns the number of discs the move turns over
func (m MoveInfo) Flips() int {
	return len(m.Flipped)
}

// OrderMoves returns the legal moves of side in search order: corners first,
// then more flips, then fewer opponent replies. Ties keep the row-major
// order of move generation, so the result is deterministic.
func OrderMoves(b Board, side Cell) []MoveInfo {
	moves := board.LegalMoves(b, side)
	if len(moves) == 0 {
		return nil
	}

	scored := make([]MoveInfo, len(moves))
	for i, m := range moves {
		next, flipped := board.ApplyMoveFlips(b, m, side)
		scored[i] = MoveInfo{
			Move:        m,
			Board:       next,
			Flipped:     flipped,
			OppMobility: board.MoveCount(next, side.Opponent()),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if ac, bc := a.Move.IsCorner(), b.Move.IsCorner(); ac != bc {
			return ac
		}
		if len(a.Flipped) != len(b.Flipped) {
			return len(a.Flipped) > len(b.Flipped)
		}
		return a.OppMobility < b.OppMobility
	})
	return scored
}
