package board

// Move is a placement at (Row, Col), or Pass
type Move struct {
	Row int8
	Col int8
}

// Pass is the move that places nothing
var Pass = Move{Row: -1, Col: -1}

// PassLabel is the algebraic token for Pass
const PassLabel = "pass"

// NewMove returns the placement at (row, col)
func NewMove(row, col int) Move {
	return Move{Row: int8(row), Col: int8(col)}
}

// MoveAt returns the placement for a square index 0..63
func MoveAt(index int) Move {
	return NewMove(index/Size, index%Size)
}

// IsPass reports whether m is the pass sentinel
func (m Move) IsPass() bool {
	return m == Pass
}

// Valid reports whether m is a square on the board
func (m Move) Valid() bool {
	return InBounds(int(m.Row), int(m.Col))
}

// Index returns the square index row*8+col. Undefined for Pass.
func (m Move) Index() int {
	return int(m.Row)*Size + int(m.Col)
}

// IsCorner reports whether m is one of the four corners
func (m Move) IsCorner() bool {
	return (m.Row == 0 || m.Row == Size-1) && (m.Col == 0 || m.Col == Size-1)
}

// String returns the algebraic label: column letter then row digit, e.g. "d3"
func (m Move) String() string {
	if m.IsPass() {
		return PassLabel
	}
	if !m.Valid() {
		return "?"
	}
	return string([]byte{'a' + byte(m.Col), '1' + byte(m.Row)})
}

// ParseMove decodes an algebraic label. "pass" decodes to Pass.
// Malformed labels decode to no move: ok is false.
func ParseMove(s string) (m Move, ok bool) {
	if s == PassLabel {
		return Pass, true
	}
	if len(s) != 2 {
		return Pass, false
	}
	col := int(s[0]) - 'a'
	row := int(s[1]) - '1'
	if !InBounds(row, col) {
		return Pass, false
	}
	return NewMove(row, col), true
}

// Labels converts moves to algebraic labels
func Labels(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}
