// Package api provides the HTTP/JSON and WebSocket API for the Othello engine.
package api

import (
	"time"

	"github.com/samber/lo"

	"github.com/yourusername/othelloengine/pkg/engine"
)

// ============================================================================
// Request Types
// ============================================================================

// PositionRequest names a board and the side to move.
//
// Board is the 8-row text form ('.', 'B', 'W'); rows may be separated by
// newlines or '/'. An empty board means the opening position.
// PositionID, when set, replaces both Board and Side.
type PositionRequest struct {
	Board      string `json:"board"`
	Side       string `json:"side"` // "black" or "white"
	PositionID string `json:"position_id,omitempty"`
}

// EvaluateRequest is the request body for static evaluation.
type EvaluateRequest struct {
	PositionRequest
}

// MovesRequest is the request body for listing legal moves.
type MovesRequest struct {
	PositionRequest
}

// ApplyRequest is the request body for playing one move.
type ApplyRequest struct {
	PositionRequest
	Move string `json:"move"` // algebraic label or "pass"
}

// SearchRequest is the request body for a best-move search.
type SearchRequest struct {
	PositionRequest
	Depth       int      `json:"depth,omitempty"`         // Maximum depth (default 6)
	TimeLimitMs int      `json:"time_limit_ms,omitempty"` // Time budget in ms (default 2000)
	ReuseTable  bool     `json:"reuse_table,omitempty"`   // Keep the transposition table
	Moves       []string `json:"moves,omitempty"`         // Only consider these root moves
}

// ============================================================================
// Response Types
// ============================================================================

// EvaluateResponse is the response for static evaluation.
type EvaluateResponse struct {
	Score      int              `json:"score"` // Positive favors side
	Side       string           `json:"side"`
	PositionID string           `json:"position_id"`
	Breakdown  engine.Breakdown `json:"breakdown"` // Unweighted sub-scores
	Weights    engine.Weights   `json:"weights"`
	Black      int              `json:"black"` // Disc counts
	White      int              `json:"white"`
	GameOver   bool             `json:"game_over"`
}

// MoveResponse is a single legal move, in search order.
type MoveResponse struct {
	Move        string `json:"move"`
	Flips       int    `json:"flips"`
	OppMobility int    `json:"opp_mobility"` // Replies left to the opponent
}

// MovesResponse is the response for legal moves.
type MovesResponse struct {
	Moves    []MoveResponse `json:"moves"`
	NumLegal int            `json:"num_legal"`
	MustPass bool           `json:"must_pass"` // No placement, opponent can move
	GameOver bool           `json:"game_over"`
}

// ApplyResponse is the response for a played move.
type ApplyResponse struct {
	Board      string   `json:"board"`
	Side       string   `json:"side"` // Side to move next
	PositionID string   `json:"position_id"`
	Flipped    []string `json:"flipped"`
	Flips      int      `json:"flips"`
	GameOver   bool     `json:"game_over"`
}

// SearchResponse is the response for a search.
type SearchResponse struct {
	BestMove  string   `json:"best_move"` // Algebraic label or "pass"
	Flips     int      `json:"flips"`
	Score     int      `json:"score"`
	PV        []string `json:"pv"`
	Depth     int      `json:"depth"` // Deepest completed iteration
	Nodes     uint64   `json:"nodes"`
	ElapsedMs int64    `json:"elapsed_ms"`
}

// ProgressResponse is a snapshot of a running search.
type ProgressResponse struct {
	Nodes     uint64 `json:"nodes"`
	Depth     int    `json:"depth"`               // Depth being searched
	Completed int    `json:"completed"`           // Last completed depth
	BestMove  string `json:"best_move,omitempty"` // Empty until depth 1 completes
	Score     int    `json:"score"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// TableClearResponse is the response for clearing the transposition table.
type TableClearResponse struct {
	Cleared bool              `json:"cleared"`
	Table   engine.TableStats `json:"table"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error   string `json:"error"`             // Error message
	Code    string `json:"code,omitempty"`    // Error code
	Details string `json:"details,omitempty"` // Additional details
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status  string             `json:"status"`          // "ok" or "error"
	Version string             `json:"version"`         // Engine version
	Ready   bool               `json:"ready"`           // Whether an engine is attached
	Pool    *PoolStats         `json:"pool,omitempty"`  // Worker pool statistics
	Table   *engine.TableStats `json:"table,omitempty"` // Transposition table statistics
}

// ============================================================================
// Helper Functions
// ============================================================================

func millis(d time.Duration) int64 {
	return d.Milliseconds()
}

// ResultToResponse converts an engine Result to an API response.
func ResultToResponse(r *engine.Result) *SearchResponse {
	return &SearchResponse{
		BestMove:  r.Label,
		Flips:     r.Flips,
		Score:     r.Score,
		PV:        r.PV,
		Depth:     r.Depth,
		Nodes:     r.Nodes,
		ElapsedMs: millis(r.Elapsed),
	}
}

// ProgressToResponse converts an engine Progress to an API response.
func ProgressToResponse(p engine.Progress) ProgressResponse {
	resp := ProgressResponse{
		Nodes:     p.Nodes,
		Depth:     p.Depth,
		Completed: p.Completed,
		Score:     p.Score,
		ElapsedMs: millis(p.Elapsed),
	}
	if p.Completed > 0 {
		resp.BestMove = p.BestMove.String()
	}
	return resp
}

// MovesToResponse converts ordered moves to API responses.
func MovesToResponse(infos []engine.MoveInfo) []MoveResponse {
	return lo.Map(infos, func(m engine.MoveInfo, _ int) MoveResponse {
		return MoveResponse{
			Move:        m.Move.String(),
			Flips:       m.Flips(),
			OppMobility: m.OppMobility,
		}
	})
}
