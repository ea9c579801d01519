package eval

import "github.com/yourusername/othelloengine/internal/board"

// axes pairs each direction with its opposite
var axes = [4][2][2]int{
	{{0, -1}, {0, 1}},
	{{-1, 0}, {1, 0}},
	{{-1, -1}, {1, 1}},
	{{-1, 1}, {1, -1}},
}

var corners = [4][2]int{{0, 0}, {0, board.Size - 1}, {board.Size - 1, 0}, {board.Size - 1, board.Size - 1}}

// Stable marks discs that can never be flipped again.
//
// Occupied corners seed the set. A disc joins it once every one of the four
// lines through it is protected: either the line is completely filled, or on
// one side of the disc every square up to the edge holds a stable disc of the
// same color (an edge square is trivially protected on that side). The scan is
// repeated until a full pass adds nothing. The result under-approximates true
// stability and never contains a disc that could still be flipped.
func Stable(b board.Board) [board.Size][board.Size]bool {
	var stable [board.Size][board.Size]bool
	for _, c := range corners {
		if b[c[0]][c[1]] != board.Empty {
			stable[c[0]][c[1]] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for row := 0; row < board.Size; row++ {
			for col := 0; col < board.Size; col++ {
				if stable[row][col] || b[row][col] == board.Empty {
					continue
				}
				if protected(&b, &stable, row, col) {
					stable[row][col] = true
					changed = true
				}
			}
		}
	}
	return stable
}

func protected(b *board.Board, stable *[board.Size][board.Size]bool, row, col int) bool {
	for _, axis := range axes {
		if lineFull(b, row, col, axis) {
			continue
		}
		if !anchored(b, stable, row, col, axis[0]) && !anchored(b, stable, row, col, axis[1]) {
			return false
		}
	}
	return true
}

// anchored reports whether every square from (row, col) towards the edge in
// direction d holds a stable disc of the same color
func anchored(b *board.Board, stable *[board.Size][board.Size]bool, row, col int, d [2]int) bool {
	color := b[row][col]
	for r, c := row+d[0], col+d[1]; board.InBounds(r, c); r, c = r+d[0], c+d[1] {
		if b[r][c] != color || !stable[r][c] {
			return false
		}
	}
	return true
}

func lineFull(b *board.Board, row, col int, axis [2][2]int) bool {
	for _, d := range axis {
		for r, c := row+d[0], col+d[1]; board.InBounds(r, c); r, c = r+d[0], c+d[1] {
			if b[r][c] == board.Empty {
				return false
			}
		}
	}
	return true
}

// StableCount returns the number of stable discs of each color
func StableCount(b board.Board, side board.Cell) (mine, theirs int) {
	stable := Stable(b)
	opp := side.Opponent()
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			if !stable[row][col] {
				continue
			}
			switch b[row][col] {
			case side:
				mine++
			case opp:
				theirs++
			}
		}
	}
	return mine, theirs
}
