// Package record keeps Othello game records: a starting position, the side
// to move in it and the moves played since. Records round-trip through JSON
// and a compact move transcript, and replay validates every move.
package record

import (
	"github.com/pkg/errors"

	"github.com/yourusername/othelloengine/internal/board"
	"github.com/yourusername/othelloengine/pkg/engine"
)

// ErrRecord is returned for records that cannot be decoded or replayed
var ErrRecord = errors.New("record: invalid game record")

// Record is the persisted form of a game
type Record struct {
	Board   string `json:"board"` // starting position, 8 text rows
	Side    string `json:"side"`  // side to move in the starting position
	Black   string `json:"black,omitempty"`
	White   string `json:"white,omitempty"`
	Event   string `json:"event,omitempty"`
	Date    string `json:"date,omitempty"`
	History []Step `json:"history"`
}

// Step is one ply of the history
type Step struct {
	Move  string `json:"move"` // algebraic label or "pass"
	Side  string `json:"side"`
	Flips int    `json:"flips"`
}

// Game is a game in progress with undo and redo
type Game struct {
	start     engine.Board
	startSide engine.Cell

	board engine.Board
	side  engine.Cell

	played []Step
	undone []Step // most recently undone last

	// Metadata carried into Record
	Black string
	White string
	Event string
	Date  string
}

// NewGame starts a game from b with side to move
func NewGame(b engine.Board, side engine.Cell) (*Game, error) {
	if side != engine.Black && side != engine.White {
		return nil, engine.ErrInvalidSide
	}
	return &Game{
		start:     b,
		startSide: side,
		board:     b,
		side:      side,
		played:    make([]Step, 0),
	}, nil
}

// NewStandardGame starts a game from the opening position, black to move
func NewStandardGame() *Game {
	g, _ := NewGame(engine.StartingPosition(), engine.Black)
	return g
}

// Board returns the current position
func (g *Game) Board() engine.Board {
	return g.board
}

// Side returns the side to move
func (g *Game) Side() engine.Cell {
	return g.side
}

// Over reports whether neither side can move
func (g *Game) Over() bool {
	return board.GameOver(g.board)
}

// History returns the plies played so far
func (g *Game) History() []Step {
	out := make([]Step, len(g.played))
	copy(out, g.played)
	return out
}

// Score returns the disc counts of the current position
func (g *Game) Score() (black, white int) {
	return board.Counts(g.board)
}

// Winner returns the side with more discs once the game is over, or Empty
// for a draw or an unfinished game
func (g *Game) Winner() engine.Cell {
	if !g.Over() {
		return engine.Empty
	}
	black, white := g.Score()
	switch {
	case black > white:
		return engine.Black
	case white > black:
		return engine.White
	}
	return engine.Empty
}

// Play plays m for the side to move. Playing clears the redo list.
func (g *Game) Play(m engine.Move) (Step, error) {
	step, err := g.play(m)
	if err != nil {
		return Step{}, err
	}
	g.undone = g.undone[:0]
	return step, nil
}

// Pass passes for the side to move; legal only without placements
func (g *Game) Pass() error {
	_, err := g.Play(engine.Pass)
	return err
}

func (g *Game) play(m engine.Move) (Step, error) {
	next, flipped, err := engine.Apply(g.board, g.side, m)
	if err != nil {
		return Step{}, err
	}
	step := Step{Move: m.String(), Side: g.side.String(), Flips: len(flipped)}
	g.board = next
	g.side = g.side.Opponent()
	g.played = append(g.played, step)
	return step, nil
}

// Undo takes back the last ply. It reports false when nothing was played.
func (g *Game) Undo() bool {
	if len(g.played) == 0 {
		return false
	}
	last := g.played[len(g.played)-1]
	history := g.played[:len(g.played)-1]

	g.board, g.side = g.start, g.startSide
	g.played = make([]Step, 0, len(history))
	for _, s := range history {
		m, _ := engine.ParseMove(s.Move)
		// Every step was legal when it was first played
		g.play(m)
	}
	g.undone = append(g.undone, last)
	return true
}

// Redo replays the most recently undone ply. It reports false when there is
// nothing to redo.
func (g *Game) Redo() bool {
	if len(g.undone) == 0 {
		return false
	}
	last := g.undone[len(g.undone)-1]
	m, _ := engine.ParseMove(last.Move)
	if _, err := g.play(m); err != nil {
		return false
	}
	g.undone = g.undone[:len(g.undone)-1]
	return true
}

// CanRedo reports whether an undone ply is available
func (g *Game) CanRedo() bool {
	return len(g.undone) > 0
}

// Record returns the persisted form of the game
func (g *Game) Record() *Record {
	return &Record{
		Board:   g.start.String(),
		Side:    g.startSide.String(),
		Black:   g.Black,
		White:   g.White,
		Event:   g.Event,
		Date:    g.Date,
		History: g.History(),
	}
}

// Replay rebuilds a game from a record. Every step must name the side to
// move and a legal move; a recorded flip count must match the replay.
func Replay(r *Record) (*Game, error) {
	start, err := board.Parse(r.Board)
	if err != nil {
		return nil, errors.Wrap(ErrRecord, err.Error())
	}
	side, ok := board.ParseSide(r.Side)
	if !ok {
		return nil, errors.Wrapf(ErrRecord, "bad side %q", r.Side)
	}
	g, err := NewGame(start, side)
	if err != nil {
		return nil, err
	}
	g.Black, g.White, g.Event, g.Date = r.Black, r.White, r.Event, r.Date

	for i, s := range r.History {
		m, ok := engine.ParseMove(s.Move)
		if !ok {
			return nil, errors.Wrapf(ErrRecord, "step %d: bad move %q", i+1, s.Move)
		}
		if s.Side != "" {
			stepSide, ok := board.ParseSide(s.Side)
			if !ok || stepSide != g.side {
				return nil, errors.Wrapf(ErrRecord, "step %d: %s is not to move", i+1, s.Side)
			}
		}
		played, err := g.play(m)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", i+1)
		}
		if s.Flips != 0 && s.Flips != played.Flips {
			return nil, errors.Wrapf(ErrRecord, "step %d: %s flips %d, recorded %d", i+1, s.Move, played.Flips, s.Flips)
		}
	}
	return g, nil
}
