package board

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrFormat is returned for malformed board text
var ErrFormat = errors.New("board: malformed text")

// Characters of the plain-text board format
const (
	EmptyChar = '.'
	BlackChar = 'B'
	WhiteChar = 'W'
)

func cellChar(c Cell) byte {
	switch c {
	case Black:
		return BlackChar
	case White:
		return WhiteChar
	}
	return EmptyChar
}

// String serializes the board as 8 newline-joined rows of 8 characters
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(Size*(Size+1) - 1)
	for row := 0; row < Size; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < Size; col++ {
			sb.WriteByte(cellChar(b[row][col]))
		}
	}
	return sb.String()
}

// Parse decodes the plain-text format produced by Board.String.
// Any other row count, row length or character is an ErrFormat.
func Parse(s string) (Board, error) {
	var b Board
	rows := strings.Split(s, "\n")
	if len(rows) != Size {
		return b, errors.Wrapf(ErrFormat, "expected %d rows, got %d", Size, len(rows))
	}
	for row, line := range rows {
		if len(line) != Size {
			return b, errors.Wrapf(ErrFormat, "row %d: expected %d characters, got %d", row+1, Size, len(line))
		}
		for col := 0; col < Size; col++ {
			switch line[col] {
			case EmptyChar:
				b[row][col] = Empty
			case BlackChar:
				b[row][col] = Black
			case WhiteChar:
				b[row][col] = White
			default:
				return b, errors.Wrapf(ErrFormat, "row %d col %d: invalid character %q", row+1, col+1, line[col])
			}
		}
	}
	return b, nil
}

// MarshalText implements encoding.TextMarshaler
func (b Board) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *Board) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
