// Package eval provides the static evaluator for Othello positions.
//
// A position is scored as a fixed weighted sum of five sub-scores, each
// computed independently from the point of view of one side:
//   - piece-square: positional table lookup, own minus opponent
//   - mobility: normalized legal-move difference
//   - frontier: normalized difference of discs next to an empty square
//   - stability: difference of discs that can never be flipped
//   - disc difference: own minus opponent disc count
package eval

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/othelloengine/internal/board"
)

// NumFeatures is the number of sub-scores
const NumFeatures = 5

// Weights are the coefficients of the sub-scores
type Weights struct {
	PieceSquare float64 `json:"piece_square"`
	Mobility    float64 `json:"mobility"`
	Frontier    float64 `json:"frontier"`
	Stability   float64 `json:"stability"`
	DiscDiff    float64 `json:"disc_diff"`
}

// DefaultWeights returns the standard weights
func DefaultWeights() Weights {
	return Weights{
		PieceSquare: 1.0,
		Mobility:    78.0,
		Frontier:    -50.0,
		Stability:   100.0,
		DiscDiff:    1.0,
	}
}

func (w Weights) vector() []float64 {
	return []float64{w.PieceSquare, w.Mobility, w.Frontier, w.Stability, w.DiscDiff}
}

// squareWeights is the positional table. Corners are prized, the squares
// touching a corner are dangerous, edges are good and the interior is
// slightly negative.
var squareWeights = [board.Size][board.Size]int{
	{100, -20, 10, 5, 5, 10, -20, 100},
	{-20, -50, -2, -2, -2, -2, -50, -20},
	{10, -2, -1, -1, -1, -1, -2, 10},
	{5, -2, -1, -1, -1, -1, -2, 5},
	{5, -2, -1, -1, -1, -1, -2, 5},
	{10, -2, -1, -1, -1, -1, -2, 10},
	{-20, -50, -2, -2, -2, -2, -50, -20},
	{100, -20, 10, 5, 5, 10, -20, 100},
}

// Breakdown holds the unweighted sub-scores of one evaluation. Frontier is
// positive when side has more exposed discs; the negative weight turns that
// into a penalty.
type Breakdown struct {
	PieceSquare float64 `json:"piece_square"`
	Mobility    float64 `json:"mobility"`
	Frontier    float64 `json:"frontier"`
	Stability   float64 `json:"stability"`
	DiscDiff    float64 `json:"disc_diff"`
}

func (b Breakdown) vector() []float64 {
	return []float64{b.PieceSquare, b.Mobility, b.Frontier, b.Stability, b.DiscDiff}
}

// Evaluator scores positions with a fixed set of weights
type Evaluator struct {
	weights Weights
	w       []float64
}

// New returns an evaluator using w
func New(w Weights) *Evaluator {
	return &Evaluator{weights: w, w: w.vector()}
}

// Default returns an evaluator using DefaultWeights
func Default() *Evaluator {
	return New(DefaultWeights())
}

// Weights returns the evaluator's weights
func (e *Evaluator) Weights() Weights {
	return e.weights
}

// Evaluate returns the score of b for side; positive favors side.
// The Empty side scores 0.
func (e *Evaluator) Evaluate(b board.Board, side board.Cell) int {
	if side != board.Black && side != board.White {
		return 0
	}
	s := Analyze(b, side)
	return int(math.Round(floats.Dot(e.w, s.vector())))
}

// Combine returns the weighted sum of a breakdown, unrounded
func (e *Evaluator) Combine(s Breakdown) float64 {
	return floats.Dot(e.w, s.vector())
}

// Analyze computes the five sub-scores of b for side
func Analyze(b board.Board, side board.Cell) Breakdown {
	if side != board.Black && side != board.White {
		return Breakdown{}
	}
	opp := side.Opponent()

	myMoves := board.MoveCount(b, side)
	oppMoves := board.MoveCount(b, opp)

	myFrontier, oppFrontier := frontier(&b, side)

	stable := Stable(b)
	myStable, oppStable := 0, 0
	myDiscs, oppDiscs := 0, 0
	ps := 0
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			switch b[row][col] {
			case side:
				ps += squareWeights[row][col]
				myDiscs++
				if stable[row][col] {
					myStable++
				}
			case opp:
				ps -= squareWeights[row][col]
				oppDiscs++
				if stable[row][col] {
					oppStable++
				}
			}
		}
	}

	return Breakdown{
		PieceSquare: float64(ps),
		Mobility:    100 * float64(myMoves-oppMoves) / float64(myMoves+oppMoves+1),
		Frontier:    50 * float64(myFrontier-oppFrontier) / float64(myFrontier+oppFrontier+1),
		Stability:   100 * float64(myStable-oppStable),
		DiscDiff:    float64(myDiscs - oppDiscs),
	}
}

var neighbours = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// frontier counts discs of each color that touch an empty square
func frontier(b *board.Board, side board.Cell) (mine, theirs int) {
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			c := b[row][col]
			if c == board.Empty || !touchesEmpty(b, row, col) {
				continue
			}
			if c == side {
				mine++
			} else {
				theirs++
			}
		}
	}
	return mine, theirs
}

func touchesEmpty(b *board.Board, row, col int) bool {
	for _, d := range neighbours {
		r, c := row+d[0], col+d[1]
		if board.InBounds(r, c) && b[r][c] == board.Empty {
			return true
		}
	}
	return false
}
