package zobrist

import (
	"math/rand"
	"testing"

	"github.com/yourusername/othelloengine/internal/board"
)

func TestHashIndependentOfConstruction(t *testing.T) {
	z := New(42)

	a := board.Start()
	b, err := board.Parse(board.Start().String())
	if err != nil {
		t.Fatal(err)
	}
	if z.Hash(a, board.Black) != z.Hash(b, board.Black) {
		t.Error("Identical boards must hash identically")
	}
	if z.Hash(a, board.Black) == z.Hash(a, board.White) {
		t.Error("Side to move must change the hash")
	}
}

func TestHashTransposition(t *testing.T) {
	z := New(1)
	d3, _ := board.ParseMove("d3")
	played, _ := board.ApplyMove(board.Start(), d3, board.Black)

	// Same placement set up square by square, bottom-right first
	var edited board.Board
	for row := board.Size - 1; row >= 0; row-- {
		for col := board.Size - 1; col >= 0; col-- {
			edited = edited.Set(row, col, played[row][col])
		}
	}

	if z.Hash(played, board.White) != z.Hash(edited, board.White) {
		t.Error("How a position was reached must not affect the hash")
	}
}

func TestSeededTablesReproducible(t *testing.T) {
	a, b := New(7), New(7)
	if a.Hash(board.Start(), board.Black) != b.Hash(board.Start(), board.Black) {
		t.Error("Same seed should give the same table")
	}
	c := New(8)
	if a.Hash(board.Start(), board.Black) == c.Hash(board.Start(), board.Black) {
		t.Error("Different seeds should give different tables")
	}
	r := NewRandom()
	if r.SideKey() == 0 {
		t.Error("Random table produced a zero side key")
	}
}

func TestIncrementalMatchesFullHash(t *testing.T) {
	z := New(99)
	rng := rand.New(rand.NewSource(3))
	positions := 0

	for game := 0; game < 30; game++ {
		b := board.Start()
		side := board.Black
		h := z.Hash(b, side)
		for !board.GameOver(b) {
			moves := board.LegalMoves(b, side)
			if len(moves) == 0 {
				h = z.Update(h, board.Pass, side, nil)
				side = side.Opponent()
			} else {
				m := moves[rng.Intn(len(moves))]
				next, flipped := board.ApplyMoveFlips(b, m, side)
				h = z.Update(h, m, side, flipped)
				b = next
				side = side.Opponent()
			}
			positions++
			if want := z.Hash(b, side); h != want {
				t.Fatalf("Incremental hash %x != full hash %x after %d positions", h, want, positions)
			}
		}
	}
	if positions < 300 {
		t.Errorf("Only checked %d positions", positions)
	}
}

func TestEmptyPieceIsZero(t *testing.T) {
	z := New(5)
	if z.Piece(0, board.Empty) != 0 {
		t.Error("Empty should have no constant")
	}
	var empty board.Board
	if z.Hash(empty, board.White) != 0 {
		t.Error("Empty board with white to move hashes to 0")
	}
}
