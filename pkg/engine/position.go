// Package engine provides the public API for the Othello search engine.
package engine

import (
	"github.com/yourusername/othelloengine/internal/board"
)

// Board is an 8x8 grid of cells, row 0 at the top
type Board = board.Board

// Cell is the content of one square; also used to name the side to move
type Cell = board.Cell

// Move is a square placement or Pass
type Move = board.Move

const (
	Empty = board.Empty
	Black = board.Black
	White = board.White
)

// Pass is the move played when the side to move has no legal placement
var Pass = board.Pass

// StartingPosition returns the standard opening board; black moves first
func StartingPosition() Board {
	return board.Start()
}

// ParseBoard reads the 8-line text form of a board
func ParseBoard(s string) (Board, error) {
	return board.Parse(s)
}

// ParseMove reads an algebraic move label such as "d3" or "pass"
func ParseMove(s string) (Move, bool) {
	return board.ParseMove(s)
}

// ParseSide reads a side name such as "black" or "w"
func ParseSide(s string) (Cell, bool) {
	return board.ParseSide(s)
}
