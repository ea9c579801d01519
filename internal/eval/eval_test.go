package eval

import (
	"math/rand"
	"testing"

	"github.com/yourusername/othelloengine/internal/board"
)

func mustParse(t *testing.T, s string) board.Board {
	t.Helper()
	b, err := board.Parse(s)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return b
}

func TestEvaluateStartIsBalanced(t *testing.T) {
	e := Default()
	if s := e.Evaluate(board.Start(), board.Black); s != 0 {
		t.Errorf("Start position scores %d for black, want 0", s)
	}
	if s := e.Evaluate(board.Start(), board.White); s != 0 {
		t.Errorf("Start position scores %d for white, want 0", s)
	}
}

func TestEvaluateEmptySide(t *testing.T) {
	if s := Default().Evaluate(board.Start(), board.Empty); s != 0 {
		t.Errorf("Empty side scored %d", s)
	}
}

func TestEvaluateAntisymmetric(t *testing.T) {
	e := Default()
	rng := rand.New(rand.NewSource(5))
	for game := 0; game < 10; game++ {
		b := board.Start()
		side := board.Black
		for !board.GameOver(b) {
			black := e.Evaluate(b, board.Black)
			white := e.Evaluate(b, board.White)
			if black != -white {
				t.Fatalf("Evaluate(black)=%d, Evaluate(white)=%d on\n%s", black, white, b)
			}
			moves := board.LegalMoves(b, side)
			if len(moves) > 0 {
				b, _ = board.ApplyMove(b, moves[rng.Intn(len(moves))], side)
			}
			side = side.Opponent()
		}
	}
}

func TestCornerPreferred(t *testing.T) {
	e := Default()
	corner := mustParse(t, ""+
		"B.......\n"+
		"........\n"+
		"........\n"+
		"...WB...\n"+
		"...BW...\n"+
		"........\n"+
		"........\n"+
		"........")
	xSquare := mustParse(t, ""+
		"........\n"+
		".B......\n"+
		"........\n"+
		"...WB...\n"+
		"...BW...\n"+
		"........\n"+
		"........\n"+
		"........")
	if e.Evaluate(corner, board.Black) <= e.Evaluate(xSquare, board.Black) {
		t.Error("A corner disc should score better than an X-square disc")
	}
}

func TestMobilityBounded(t *testing.T) {
	s := Analyze(board.Start(), board.Black)
	if s.Mobility != 0 {
		t.Errorf("Start mobility = %f, want 0", s.Mobility)
	}

	// White has no discs left: black cannot move either, both counts are zero
	b := mustParse(t, ""+
		"BBBBBBBB\n"+
		"........\n"+
		"........\n"+
		"........\n"+
		"........\n"+
		"........\n"+
		"........\n"+
		"........")
	s = Analyze(b, board.Black)
	if s.Mobility != 0 {
		t.Errorf("Mobility with no moves = %f, want 0", s.Mobility)
	}
	if s.Mobility > 100 || s.Mobility < -100 {
		t.Errorf("Mobility out of range: %f", s.Mobility)
	}
}

func TestFrontierIsALiability(t *testing.T) {
	e := Default()
	// Black's discs are exposed, white's disc is walled in by black
	b := mustParse(t, ""+
		"........\n"+
		"........\n"+
		"..BBB...\n"+
		"..BWB...\n"+
		"..BBB...\n"+
		"........\n"+
		"........\n"+
		"........")
	s := Analyze(b, board.Black)
	if s.Frontier <= 0 {
		t.Fatalf("Black has more frontier discs, sub-score = %f", s.Frontier)
	}
	contribution := e.Weights().Frontier * s.Frontier
	if contribution >= 0 {
		t.Errorf("More frontier discs should lower the score, contribution = %f", contribution)
	}
}

func TestStableCorners(t *testing.T) {
	b := mustParse(t, ""+
		"B......W\n"+
		"........\n"+
		"........\n"+
		"...WB...\n"+
		"...BW...\n"+
		"........\n"+
		"........\n"+
		"........")
	mine, theirs := StableCount(b, board.Black)
	if mine != 1 || theirs != 1 {
		t.Errorf("Stable = %d/%d, want 1/1", mine, theirs)
	}
}

func TestStableEdgeRun(t *testing.T) {
	b := mustParse(t, ""+
		"BBBBBBBB\n"+
		"........\n"+
		"........\n"+
		"...WB...\n"+
		"...BW...\n"+
		"........\n"+
		"........\n"+
		"........")
	stable := Stable(b)
	for col := 0; col < board.Size; col++ {
		if !stable[0][col] {
			t.Errorf("Top edge disc %d should be stable", col)
		}
	}
	if stable[3][4] || stable[4][3] {
		t.Error("Center discs are not stable")
	}
}

func TestStableNeverMarksFlippable(t *testing.T) {
	// b2 touches the a1 corner diagonally but can be flipped along row 2
	b := mustParse(t, ""+
		"B.......\n"+
		".B......\n"+
		"........\n"+
		"........\n"+
		"........\n"+
		"........\n"+
		"........\n"+
		"........")
	stable := Stable(b)
	if !stable[0][0] {
		t.Error("Corner should be stable")
	}
	if stable[1][1] {
		t.Error("b2 must not be marked stable")
	}
}

func TestStableSoundOnRandomGames(t *testing.T) {
	// A disc marked stable must keep its color for the rest of the game
	rng := rand.New(rand.NewSource(17))
	for game := 0; game < 20; game++ {
		b := board.Start()
		side := board.Black
		var history []board.Board
		for !board.GameOver(b) {
			history = append(history, b)
			moves := board.LegalMoves(b, side)
			if len(moves) > 0 {
				b, _ = board.ApplyMove(b, moves[rng.Intn(len(moves))], side)
			}
			side = side.Opponent()
		}
		final := b
		for _, h := range history {
			stable := Stable(h)
			for r := 0; r < board.Size; r++ {
				for c := 0; c < board.Size; c++ {
					if stable[r][c] && final[r][c] != h[r][c] {
						t.Fatalf("Disc at %s marked stable but flipped later\n%s", board.NewMove(r, c), h)
					}
				}
			}
		}
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	w := Weights{PieceSquare: 2, Mobility: 3, Frontier: -4, Stability: 5, DiscDiff: 6}
	e := New(w)
	if e.Weights() != w {
		t.Error("Weights not preserved")
	}
	s := Breakdown{PieceSquare: 1, Mobility: 1, Frontier: 1, Stability: 1, DiscDiff: 1}
	if got := e.Combine(s); got != 12 {
		t.Errorf("Combine = %f, want 12", got)
	}
}
