// Package zobrist implements 64-bit Zobrist fingerprints of Othello positions.
//
// A Table holds one random constant per (square, color) pair plus one for
// "black to move". Tables are values owned by whoever hashes with them; a
// fingerprint is only meaningful together with the Table that produced it.
package zobrist

import (
	"encoding/binary"

	"lukechampine.com/frand"

	"github.com/yourusername/othelloengine/internal/board"
)

// chacha rounds and buffer size for the key generator
const (
	rngRounds  = 12
	rngBufSize = 1024
)

// Table holds the random constants
type Table struct {
	squares     [board.NumSquares][2]uint64
	blackToMove uint64
}

// New builds a table from a fixed seed. The same seed always yields the same
// constants, which keeps fingerprints reproducible across test runs.
func New(seed uint64) *Table {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], ^seed)
	return fromRNG(frand.NewCustom(key[:], rngBufSize, rngRounds))
}

// NewRandom builds a table from system entropy
func NewRandom() *Table {
	key := frand.Entropy256()
	return fromRNG(frand.NewCustom(key[:], rngBufSize, rngRounds))
}

func fromRNG(rng *frand.RNG) *Table {
	t := &Table{}
	for sq := 0; sq < board.NumSquares; sq++ {
		for c := 0; c < 2; c++ {
			t.squares[sq][c] = nonZero(rng)
		}
	}
	t.blackToMove = nonZero(rng)
	return t
}

// nonZero draws a 64-bit constant; zero would make its XOR a no-op
func nonZero(rng *frand.RNG) uint64 {
	var buf [8]byte
	for {
		rng.Read(buf[:])
		if v := binary.LittleEndian.Uint64(buf[:]); v != 0 {
			return v
		}
	}
}

// Piece returns the constant for color c on square index sq.
// Empty has no constant and yields 0.
func (t *Table) Piece(sq int, c board.Cell) uint64 {
	switch c {
	case board.Black:
		return t.squares[sq][0]
	case board.White:
		return t.squares[sq][1]
	}
	return 0
}

// SideKey returns the "black to move" constant
func (t *Table) SideKey() uint64 {
	return t.blackToMove
}

// Hash computes the fingerprint of (b, side) from scratch
func (t *Table) Hash(b board.Board, side board.Cell) uint64 {
	var h uint64
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			c := b[row][col]
			if c == board.Empty {
				continue
			}
			h ^= t.Piece(row*board.Size+col, c)
		}
	}
	if side == board.Black {
		h ^= t.blackToMove
	}
	return h
}

// Update returns the fingerprint after mover played m and flipped the given
// squares, with the opponent to move. It equals Hash of the resulting board.
func (t *Table) Update(h uint64, m board.Move, mover board.Cell, flipped []board.Move) uint64 {
	if m.IsPass() {
		return t.TogglePass(h)
	}
	h ^= t.Piece(m.Index(), mover)
	opp := mover.Opponent()
	for _, f := range flipped {
		sq := f.Index()
		h ^= t.Piece(sq, opp)
		h ^= t.Piece(sq, mover)
	}
	// Remove the old mover's side term and add the new one's. Exactly one of
	// them is Black, so this is a single toggle.
	return h ^ t.blackToMove
}

// TogglePass returns the fingerprint of the same board with the other side to move
func (t *Table) TogglePass(h uint64) uint64 {
	return h ^ t.blackToMove
}
