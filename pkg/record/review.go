package record

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/yourusername/othelloengine/internal/board"
	"github.com/yourusername/othelloengine/internal/positionid"
	"github.com/yourusername/othelloengine/pkg/engine"
)

// Skill grades a move by the score it gave up against the engine's choice
type Skill int

const (
	SkillBlunder    Skill = iota // loses >= SkillThresholds[0]
	SkillMistake                 // loses >= SkillThresholds[1]
	SkillInaccuracy              // loses >= SkillThresholds[2]
	SkillNone                    // best or close to it
)

// SkillThresholds are the score losses, in evaluator units, at which a move
// becomes a blunder, a mistake and an inaccuracy.
var SkillThresholds = [3]int{2000, 800, 300}

// String returns the display name of the skill.
func (s Skill) String() string {
	return [...]string{"blunder", "mistake", "inaccuracy", "none"}[s]
}

// Abbr returns the annotation symbol (??, ?, ?!).
func (s Skill) Abbr() string {
	return [...]string{"??", "?", "?!", ""}[s]
}

func (s Skill) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Skill) UnmarshalText(text []byte) error {
	for k := SkillBlunder; k <= SkillNone; k++ {
		if string(text) == k.String() {
			*s = k
			return nil
		}
	}
	return errors.Errorf("unknown skill %q", text)
}

// ClassifySkill returns the grade of a move that lost loss points
func ClassifySkill(loss int) Skill {
	switch {
	case loss >= SkillThresholds[0]:
		return SkillBlunder
	case loss >= SkillThresholds[1]:
		return SkillMistake
	case loss >= SkillThresholds[2]:
		return SkillInaccuracy
	}
	return SkillNone
}

// ReviewOptions configures ReviewGame
type ReviewOptions struct {
	Depth     int           // Search depth per position (minimum 1)
	TimeLimit time.Duration // Budget per search
}

// DefaultReviewOptions returns sensible defaults.
func DefaultReviewOptions() ReviewOptions {
	return ReviewOptions{
		Depth:     4,
		TimeLimit: 2 * time.Second,
	}
}

// MoveReview is the verdict on one ply
type MoveReview struct {
	Ply         int    `json:"ply"` // 1-based
	Side        string `json:"side"`
	Position    string `json:"position"` // Position ID before the move
	Played      string `json:"played"`
	Best        string `json:"best"`
	PlayedScore int    `json:"played_score"`
	BestScore   int    `json:"best_score"`
	Loss        int    `json:"loss"`
	Skill       Skill  `json:"skill"`
	Forced      bool   `json:"forced"` // Pass or only move; not graded
}

// PlayerReview sums the graded moves of one side
type PlayerReview struct {
	Name         string  `json:"name,omitempty"`
	Moves        int     `json:"moves"` // Graded moves
	TotalLoss    int     `json:"total_loss"`
	LossPerMove  float64 `json:"loss_per_move"`
	Blunders     int     `json:"blunders"`
	Mistakes     int     `json:"mistakes"`
	Inaccuracies int     `json:"inaccuracies"`
}

func (p *PlayerReview) add(m MoveReview) {
	p.Moves++
	p.TotalLoss += m.Loss
	p.LossPerMove = float64(p.TotalLoss) / float64(p.Moves)
	switch m.Skill {
	case SkillBlunder:
		p.Blunders++
	case SkillMistake:
		p.Mistakes++
	case SkillInaccuracy:
		p.Inaccuracies++
	}
}

// Review is the analysis of a whole game
type Review struct {
	Moves []MoveReview `json:"moves"`
	Black PlayerReview `json:"black"`
	White PlayerReview `json:"white"`
}

// ReviewGame replays g from its starting position and compares every
// unforced move with the engine's best move at the same depth. The played
// move is scored by a search restricted to it, so both scores come from
// the same tree.
func ReviewGame(ctx context.Context, e *engine.Engine, g *Game, opts ReviewOptions) (*Review, error) {
	if opts.Depth < 1 {
		opts.Depth = 1
	}

	review := &Review{
		Moves: make([]MoveReview, 0, len(g.played)),
		Black: PlayerReview{Name: g.Black},
		White: PlayerReview{Name: g.White},
	}

	b, side := g.start, g.startSide
	for i, step := range g.played {
		m, ok := engine.ParseMove(step.Move)
		if !ok {
			return nil, errors.Wrapf(ErrRecord, "ply %d: bad move %q", i+1, step.Move)
		}

		mr := MoveReview{
			Ply:      i + 1,
			Side:     side.String(),
			Position: positionid.PositionID(b, side),
			Played:   step.Move,
			Best:     step.Move,
			Forced:   m.IsPass() || board.MoveCount(b, side) < 2,
		}

		mr.Skill = SkillNone
		if !mr.Forced {
			req := engine.Request{Board: b, Side: side, Depth: opts.Depth, TimeLimit: opts.TimeLimit}
			best, err := e.Search(ctx, req)
			if err != nil {
				return nil, errors.Wrapf(err, "ply %d", i+1)
			}
			mr.Best, mr.BestScore, mr.PlayedScore = best.Label, best.Score, best.Score

			if best.BestMove != m {
				req.Moves = []engine.Move{m}
				played, err := e.Search(ctx, req)
				if err != nil {
					return nil, errors.Wrapf(err, "ply %d", i+1)
				}
				mr.PlayedScore = played.Score
			}
			mr.Loss = max(0, mr.BestScore-mr.PlayedScore)
			mr.Skill = ClassifySkill(mr.Loss)

			if side == engine.Black {
				review.Black.add(mr)
			} else {
				review.White.add(mr)
			}
		}
		review.Moves = append(review.Moves, mr)

		next, _, err := engine.Apply(b, side, m)
		if err != nil {
			return nil, errors.Wrapf(err, "ply %d", i+1)
		}
		b, side = next, side.Opponent()
	}
	return review, nil
}
