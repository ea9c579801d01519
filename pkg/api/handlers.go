package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/yourusername/othelloengine/internal/board"
	"github.com/yourusername/othelloengine/internal/positionid"
	"github.com/yourusername/othelloengine/pkg/engine"
)

// DefaultMaxTimeLimit caps the time budget a client may request.
const DefaultMaxTimeLimit = 30 * time.Second

// Handlers holds the HTTP handlers and engine reference.
type Handlers struct {
	engine       *engine.Engine
	version      string
	pool         *WorkerPool
	log          zerolog.Logger
	maxTimeLimit time.Duration
}

// NewHandlers creates a new Handlers instance without a worker pool.
func NewHandlers(e *engine.Engine, version string) *Handlers {
	return NewHandlersWithPool(e, version, nil)
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(e *engine.Engine, version string, pool *WorkerPool) *Handlers {
	return &Handlers{
		engine:       e,
		version:      version,
		pool:         pool,
		log:          zerolog.Nop(),
		maxTimeLimit: DefaultMaxTimeLimit,
	}
}

// WithLogger sets the logger used by the handlers.
func (h *Handlers) WithLogger(l zerolog.Logger) *Handlers {
	h.log = l
	return h
}

// WithMaxTimeLimit caps requested search budgets at d.
func (h *Handlers) WithMaxTimeLimit(d time.Duration) *Handlers {
	if d > 0 {
		h.maxTimeLimit = d
	}
	return h
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// parseBoard accepts the text board with newline or '/' row separators.
// An empty string is the opening position.
func parseBoard(s string) (engine.Board, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r", ""))
	if s == "" {
		return engine.StartingPosition(), nil
	}
	s = strings.ReplaceAll(s, "/", "\n")
	return board.Parse(s)
}

// parsePosition decodes the board and side of a request.
// It returns the error code to report alongside the error.
func parsePosition(p PositionRequest) (engine.Board, engine.Cell, string, error) {
	if p.PositionID != "" {
		b, side, err := positionid.BoardFromPositionID(strings.TrimSpace(p.PositionID))
		if err != nil {
			return b, engine.Empty, "INVALID_POSITION_ID", err
		}
		return b, side, "", nil
	}

	b, err := parseBoard(p.Board)
	if err != nil {
		return b, engine.Empty, "INVALID_BOARD", err
	}
	if p.Side == "" {
		return b, engine.Empty, "MISSING_SIDE", errors.New("side is required")
	}
	side, ok := engine.ParseSide(p.Side)
	if !ok {
		return b, engine.Empty, "INVALID_SIDE", errors.Errorf("invalid side %q", p.Side)
	}
	return b, side, "", nil
}

// acquireFast takes a fast slot when a pool is configured. The returned
// function releases it.
func (h *Handlers) acquireFast(w http.ResponseWriter, r *http.Request) (func(), bool) {
	if h.pool == nil {
		return func() {}, true
	}
	if err := h.pool.AcquireFast(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
		return nil, false
	}
	return h.pool.ReleaseFast, true
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Ready:   h.engine != nil,
	}

	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	if h.engine != nil {
		stats := h.engine.Table().Stats()
		resp.Table = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// Evaluate handles POST /api/evaluate
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	b, side, code, err := parsePosition(req.PositionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), code)
		return
	}

	black, white := board.Counts(b)
	writeJSON(w, http.StatusOK, EvaluateResponse{
		Score:      h.engine.Evaluate(b, side),
		Side:       side.String(),
		PositionID: positionid.PositionID(b, side),
		Breakdown:  h.engine.Analyze(b, side),
		Weights:    h.engine.Weights(),
		Black:      black,
		White:      white,
		GameOver:   board.GameOver(b),
	})
}

// Moves handles POST /api/moves
func (h *Handlers) Moves(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	var req MovesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	b, side, code, err := parsePosition(req.PositionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), code)
		return
	}

	infos := engine.OrderMoves(b, side)
	over := board.GameOver(b)
	writeJSON(w, http.StatusOK, MovesResponse{
		Moves:    MovesToResponse(infos),
		NumLegal: len(infos),
		MustPass: len(infos) == 0 && !over,
		GameOver: over,
	})
}

// Apply handles POST /api/apply
func (h *Handlers) Apply(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	b, side, code, err := parsePosition(req.PositionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), code)
		return
	}
	m, ok := engine.ParseMove(strings.ToLower(strings.TrimSpace(req.Move)))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid move "+req.Move, "INVALID_MOVE")
		return
	}

	next, flipped, err := engine.Apply(b, side, m)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "ILLEGAL_MOVE")
		return
	}
	writeJSON(w, http.StatusOK, ApplyResponse{
		Board:      next.String(),
		Side:       side.Opponent().String(),
		PositionID: positionid.PositionID(next, side.Opponent()),
		Flipped:    board.Labels(flipped),
		Flips:      len(flipped),
		GameOver:   board.GameOver(next),
	})
}

// toEngineRequest validates a search request and applies the server's
// time cap.
func (h *Handlers) toEngineRequest(req SearchRequest) (engine.Request, string, error) {
	b, side, code, err := parsePosition(req.PositionRequest)
	if err != nil {
		return engine.Request{}, code, err
	}
	if req.Depth < 0 {
		return engine.Request{}, "INVALID_DEPTH", errors.New("depth must not be negative")
	}
	if req.TimeLimitMs < 0 {
		return engine.Request{}, "INVALID_TIME_LIMIT", errors.New("time_limit_ms must not be negative")
	}
	limit := time.Duration(req.TimeLimitMs) * time.Millisecond
	if limit == 0 {
		limit = engine.DefaultTimeLimit
	}
	limit = lo.Clamp(limit, time.Millisecond, h.maxTimeLimit)

	var moves []engine.Move
	for _, label := range req.Moves {
		m, ok := engine.ParseMove(strings.ToLower(strings.TrimSpace(label)))
		if !ok || m.IsPass() {
			return engine.Request{}, "INVALID_MOVE", errors.Errorf("invalid move %q", label)
		}
		moves = append(moves, m)
	}

	return engine.Request{
		Board:      b,
		Side:       side,
		Depth:      req.Depth,
		TimeLimit:  limit,
		ReuseTable: req.ReuseTable,
		Moves:      moves,
	}, "", nil
}

// runSearch waits for the search slot and runs the search
func (h *Handlers) runSearch(ctx context.Context, req engine.Request) (*engine.Result, error) {
	if h.pool != nil {
		if err := h.pool.AcquireSearch(ctx); err != nil {
			return nil, err
		}
		defer h.pool.ReleaseSearch()
	}
	return h.engine.Search(ctx, req)
}

// searchError maps a failed search to a status code and error code
func searchError(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "CANCELLED"
	case errors.Is(err, engine.ErrBusy):
		return http.StatusConflict, "ENGINE_BUSY"
	case errors.Is(err, engine.ErrInvalidSide):
		return http.StatusBadRequest, "INVALID_SIDE"
	case errors.Is(err, engine.ErrIllegalMove):
		return http.StatusUnprocessableEntity, "ILLEGAL_MOVE"
	}
	return http.StatusInternalServerError, "SEARCH_ERROR"
}

// Search handles POST /api/search
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	ereq, code, err := h.toEngineRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), code)
		return
	}

	result, err := h.runSearch(r.Context(), ereq)
	if err != nil {
		status, code := searchError(err)
		h.log.Debug().Err(err).Str("code", code).Msg("search-failed")
		writeError(w, status, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusOK, ResultToResponse(result))
}

// ClearTable handles POST /api/table/clear
func (h *Handlers) ClearTable(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if !h.pool.TryAcquireSearch() {
			writeError(w, http.StatusConflict, "a search is running", "ENGINE_BUSY")
			return
		}
		defer h.pool.ReleaseSearch()
	}
	if err := h.engine.ClearTable(); err != nil {
		writeError(w, http.StatusConflict, err.Error(), "ENGINE_BUSY")
		return
	}
	writeJSON(w, http.StatusOK, TableClearResponse{
		Cleared: true,
		Table:   h.engine.Table().Stats(),
	})
}
