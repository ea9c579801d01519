// Package board implements the Othello position model: cells, the 8x8 board,
// moves, legal-move generation and move application with disc flipping.
//
// Boards are plain arrays and therefore values: assigning or passing a Board
// copies it, so every move application produces a new Board owned by the caller.
package board

// Size is the number of rows and columns on the board
const Size = 8

// NumSquares is the total number of squares
const NumSquares = Size * Size

// Cell is the content of a square, or the owner of a move
type Cell uint8

const (
	Empty Cell = iota
	Black
	White
)

// Opponent returns the other side. Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

// Valid reports whether c is one of the three cell values
func (c Cell) Valid() bool {
	return c <= White
}

func (c Cell) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "empty"
}

// ParseSide accepts "black"/"b"/"1" or "white"/"w"/"2" in any case
func ParseSide(s string) (Cell, bool) {
	switch s {
	case "black", "Black", "BLACK", "b", "B", "1":
		return Black, true
	case "white", "White", "WHITE", "w", "W", "2":
		return White, true
	}
	return Empty, false
}

// Board is the 8x8 grid, row-major, row 0 at the top, column 0 at the left
type Board [Size][Size]Cell

// directions holds the 8 ray directions as (dRow, dCol)
var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Start returns the standard opening position
func Start() Board {
	var b Board
	b[3][3] = White // d4
	b[4][4] = White // e5
	b[3][4] = Black // e4
	b[4][3] = Black // d5
	return b
}

// InBounds reports whether (row, col) is on the board
func InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// At returns the cell at the given square
func (b *Board) At(row, col int) Cell {
	return b[row][col]
}

// Set returns a copy of the board with the square set to c.
// Used by setup editing; search code never calls it.
func (b Board) Set(row, col int, c Cell) Board {
	b[row][col] = c
	return b
}

// Count returns the number of discs of color c
func Count(b Board, c Cell) int {
	n := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b[row][col] == c {
				n++
			}
		}
	}
	return n
}

// Counts returns the number of black and white discs
func Counts(b Board) (black, white int) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			switch b[row][col] {
			case Black:
				black++
			case White:
				white++
			}
		}
	}
	return black, white
}

// Empties returns the number of empty squares
func Empties(b Board) int {
	return Count(b, Empty)
}

// flanks returns the length of the opponent run starting next to (row, col)
// in direction d that is terminated by a disc of side, or 0 if there is none.
func flanks(b *Board, row, col int, d [2]int, side Cell) int {
	opp := side.Opponent()
	r, c := row+d[0], col+d[1]
	run := 0
	for InBounds(r, c) && b[r][c] == opp {
		r += d[0]
		c += d[1]
		run++
	}
	if run == 0 || !InBounds(r, c) || b[r][c] != side {
		return 0
	}
	return run
}

// isLegal checks an empty square against all 8 directions
func isLegal(b *Board, row, col int, side Cell) bool {
	if b[row][col] != Empty {
		return false
	}
	for _, d := range directions {
		if flanks(b, row, col, d, side) > 0 {
			return true
		}
	}
	return false
}

// LegalMoves returns every legal placement for side in row-major order.
// The result is empty when side is Empty or has no placement; it never
// contains Pass.
func LegalMoves(b Board, side Cell) []Move {
	if side != Black && side != White {
		return nil
	}
	moves := make([]Move, 0, 16)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if isLegal(&b, row, col, side) {
				moves = append(moves, NewMove(row, col))
			}
		}
	}
	return moves
}

// MoveCount returns len(LegalMoves(b, side)) without allocating
func MoveCount(b Board, side Cell) int {
	if side != Black && side != White {
		return 0
	}
	n := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if isLegal(&b, row, col, side) {
				n++
			}
		}
	}
	return n
}

// HasLegalMove reports whether side has at least one placement
func HasLegalMove(b Board, side Cell) bool {
	if side != Black && side != White {
		return false
	}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if isLegal(&b, row, col, side) {
				return true
			}
		}
	}
	return false
}

// IsLegal reports whether m is a legal placement for side
func IsLegal(b Board, m Move, side Cell) bool {
	if m.IsPass() || !m.Valid() || (side != Black && side != White) {
		return false
	}
	return isLegal(&b, int(m.Row), int(m.Col), side)
}

// GameOver reports whether neither side can place a disc
func GameOver(b Board) bool {
	return !HasLegalMove(b, Black) && !HasLegalMove(b, White)
}

// ApplyMove places side at m and flips every bracketed opponent run.
// A pass returns an unmodified copy and 0 flips.
//
// The target square must be empty; callers only apply moves taken from
// LegalMoves or from a replay of previously legal moves.
func ApplyMove(b Board, m Move, side Cell) (Board, int) {
	if m.IsPass() {
		return b, 0
	}
	flips := apply(&b, m, side, nil)
	return b, flips
}

// ApplyMoveFlips is ApplyMove that also reports the flipped squares
func ApplyMoveFlips(b Board, m Move, side Cell) (Board, []Move) {
	if m.IsPass() {
		return b, nil
	}
	flipped := make([]Move, 0, 20)
	apply(&b, m, side, &flipped)
	return b, flipped
}

func apply(b *Board, m Move, side Cell, flipped *[]Move) int {
	row, col := int(m.Row), int(m.Col)
	total := 0
	for _, d := range directions {
		run := flanks(b, row, col, d, side)
		r, c := row, col
		for i := 0; i < run; i++ {
			r += d[0]
			c += d[1]
			b[r][c] = side
			if flipped != nil {
				*flipped = append(*flipped, NewMove(r, c))
			}
		}
		total += run
	}
	b[row][col] = side
	return total
}
