package external

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/yourusername/othelloengine/internal/board"
	"github.com/yourusername/othelloengine/pkg/engine"
)

// ErrOBF is returned for malformed one-line positions
var ErrOBF = errors.New("external: invalid position")

// ParseOBF parses a one-line position: 64 squares in row-major order
// ('X' or '*' black, 'O' white, '-' or '.' empty) followed by the side to
// move ('X' or 'O'). Spaces between the squares and the side and a
// trailing ';' are ignored.
func ParseOBF(s string) (engine.Board, engine.Cell, error) {
	var b engine.Board
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")
	s = strings.ReplaceAll(s, " ", "")
	if len(s) != board.NumSquares+1 {
		return b, engine.Empty, errors.Wrapf(ErrOBF, "expected %d characters, got %d", board.NumSquares+1, len(s))
	}

	for i := 0; i < board.NumSquares; i++ {
		var c engine.Cell
		switch s[i] {
		case 'X', 'x', '*':
			c = engine.Black
		case 'O', 'o':
			c = engine.White
		case '-', '.':
			c = engine.Empty
		default:
			return b, engine.Empty, errors.Wrapf(ErrOBF, "bad square %q at %s", s[i], board.MoveAt(i))
		}
		b[i/board.Size][i%board.Size] = c
	}

	switch s[board.NumSquares] {
	case 'X', 'x', '*':
		return b, engine.Black, nil
	case 'O', 'o':
		return b, engine.White, nil
	}
	return b, engine.Empty, errors.Wrapf(ErrOBF, "bad side %q", s[board.NumSquares])
}

// FormatOBF writes b and side in the form ParseOBF reads
func FormatOBF(b engine.Board, side engine.Cell) string {
	var sb strings.Builder
	sb.Grow(board.NumSquares + 2)
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			sb.WriteByte(obfChar(b[row][col]))
		}
	}
	sb.WriteByte(' ')
	sb.WriteByte(obfChar(side))
	return sb.String()
}

func obfChar(c engine.Cell) byte {
	switch c {
	case engine.Black:
		return 'X'
	case engine.White:
		return 'O'
	}
	return '-'
}
