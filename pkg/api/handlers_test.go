package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/othelloengine/pkg/engine"
)

var openings = map[string]bool{"c4": true, "d3": true, "e6": true, "f5": true}

// getTestEngine returns an engine with reproducible hashing
func getTestEngine() *engine.Engine {
	eng, _ := engine.NewEngine(engine.EngineOptions{HashSeed: 1})
	return eng
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return e
}

const passBoard = "WB....../......../......../......../......../......../......../........"

// ============================================================================
// HTTP Handler Tests
// ============================================================================

func TestHealthHandler(t *testing.T) {
	h := NewHandlers(nil, "test-version")

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("Status = %q, want %q", health.Status, "ok")
	}
	if health.Version != "test-version" {
		t.Errorf("Version = %q, want %q", health.Version, "test-version")
	}
	if health.Ready {
		t.Error("Expected ready = false without an engine")
	}
}

func TestHealthHandlerReady(t *testing.T) {
	h := NewHandlersWithPool(getTestEngine(), "1.0.0", NewWorkerPool(DefaultPoolConfig()))

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest("GET", "/api/health", nil))

	var health HealthResponse
	json.NewDecoder(w.Result().Body).Decode(&health)

	if !health.Ready {
		t.Error("Expected ready = true when engine is set")
	}
	if health.Pool == nil || health.Pool.MaxSearch != 1 {
		t.Errorf("Expected pool stats, got %+v", health.Pool)
	}
	if health.Table == nil || health.Table.Capacity != engine.DefaultTableCapacity {
		t.Errorf("Expected table stats, got %+v", health.Table)
	}
}

func TestEvaluateHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")
	w := postJSON(t, h.Evaluate, "/api/evaluate", EvaluateRequest{PositionRequest{Side: "black"}})

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", w.Code, w.Body.String())
	}
	var resp EvaluateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Score != 0 || resp.Black != 2 || resp.White != 2 {
		t.Errorf("Unexpected opening evaluation %+v", resp)
	}
	if resp.Side != "black" || resp.GameOver {
		t.Errorf("Unexpected side/game over: %+v", resp)
	}
	if resp.Weights != engine.DefaultWeights() {
		t.Errorf("Unexpected weights %+v", resp.Weights)
	}
}

func TestEvaluateHandlerErrors(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	tests := []struct {
		name string
		body interface{}
		code string
	}{
		{"invalid json", "{not json", "INVALID_JSON"},
		{"bad board", EvaluateRequest{PositionRequest{Board: "BW", Side: "black"}}, "INVALID_BOARD"},
		{"missing side", EvaluateRequest{PositionRequest{}}, "MISSING_SIDE"},
		{"bad side", EvaluateRequest{PositionRequest{Side: "green"}}, "INVALID_SIDE"},
		{"bad position id", EvaluateRequest{PositionRequest{PositionID: "nope"}}, "INVALID_POSITION_ID"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, h.Evaluate, "/api/evaluate", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Status = %d, want 400", w.Code)
			}
			if e := decodeError(t, w); e.Code != tc.code {
				t.Errorf("Code = %q, want %q", e.Code, tc.code)
			}
		})
	}
}

func TestMovesHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")
	w := postJSON(t, h.Moves, "/api/moves", MovesRequest{PositionRequest{Side: "black"}})

	var resp MovesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.NumLegal != 4 || len(resp.Moves) != 4 {
		t.Fatalf("Expected 4 opening moves, got %+v", resp)
	}
	for _, m := range resp.Moves {
		if !openings[m.Move] || m.Flips != 1 {
			t.Errorf("Unexpected move %+v", m)
		}
	}
	if resp.MustPass {
		t.Error("Black can move at the start")
	}
}

func TestMovesHandlerMustPass(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")
	w := postJSON(t, h.Moves, "/api/moves", MovesRequest{PositionRequest{Board: passBoard, Side: "black"}})

	var resp MovesResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.MustPass || resp.NumLegal != 0 || resp.GameOver {
		t.Errorf("Expected a forced pass, got %+v", resp)
	}
}

func TestApplyHandler(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")
	w := postJSON(t, h.Apply, "/api/apply", ApplyRequest{PositionRequest{Side: "black"}, "D3"})

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", w.Code, w.Body.String())
	}
	var resp ApplyResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Flips != 1 || len(resp.Flipped) != 1 || resp.Flipped[0] != "d4" {
		t.Errorf("Unexpected flips %+v", resp)
	}
	if resp.Side != "white" {
		t.Errorf("Side = %q, want white", resp.Side)
	}
	if !strings.HasPrefix(resp.Board, "........\n........\n...B....") {
		t.Errorf("Unexpected board\n%s", resp.Board)
	}

	// The returned ID names the new position with white to move
	w = postJSON(t, h.Moves, "/api/moves", MovesRequest{PositionRequest{PositionID: resp.PositionID}})
	var moves MovesResponse
	json.NewDecoder(w.Body).Decode(&moves)
	if w.Code != http.StatusOK || moves.NumLegal != 3 {
		t.Errorf("Moves from position ID %q: status %d, %+v", resp.PositionID, w.Code, moves)
	}

	w = postJSON(t, h.Apply, "/api/apply", ApplyRequest{PositionRequest{Side: "black"}, "a1"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Illegal move status = %d", w.Code)
	}
	w = postJSON(t, h.Apply, "/api/apply", ApplyRequest{PositionRequest{Side: "black"}, "z0"})
	if e := decodeError(t, w); e.Code != "INVALID_MOVE" {
		t.Errorf("Code = %q, want INVALID_MOVE", e.Code)
	}
}

func TestSearchHandler(t *testing.T) {
	h := NewHandlersWithPool(getTestEngine(), "1.0.0", NewWorkerPool(DefaultPoolConfig()))
	w := postJSON(t, h.Search, "/api/search", SearchRequest{
		PositionRequest: PositionRequest{Side: "black"},
		Depth:           2,
		TimeLimitMs:     5000,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !openings[resp.BestMove] {
		t.Errorf("Unexpected best move %q", resp.BestMove)
	}
	if resp.Depth != 2 || resp.Flips != 1 || len(resp.PV) == 0 {
		t.Errorf("Unexpected result %+v", resp)
	}
}

func TestSearchHandlerPass(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")
	w := postJSON(t, h.Search, "/api/search", SearchRequest{
		PositionRequest: PositionRequest{Board: passBoard, Side: "black"},
	})

	var resp SearchResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.BestMove != "pass" || resp.Flips != 0 {
		t.Errorf("Expected pass, got %+v", resp)
	}
}

func TestSearchHandlerValidation(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")

	w := postJSON(t, h.Search, "/api/search", SearchRequest{PositionRequest: PositionRequest{Side: "black"}, Depth: -1})
	if e := decodeError(t, w); e.Code != "INVALID_DEPTH" {
		t.Errorf("Code = %q, want INVALID_DEPTH", e.Code)
	}
	w = postJSON(t, h.Search, "/api/search", SearchRequest{PositionRequest: PositionRequest{Side: "black"}, TimeLimitMs: -5})
	if e := decodeError(t, w); e.Code != "INVALID_TIME_LIMIT" {
		t.Errorf("Code = %q, want INVALID_TIME_LIMIT", e.Code)
	}
	w = postJSON(t, h.Search, "/api/search", SearchRequest{PositionRequest: PositionRequest{Side: "black"}, Moves: []string{"pass"}})
	if e := decodeError(t, w); e.Code != "INVALID_MOVE" {
		t.Errorf("Code = %q, want INVALID_MOVE", e.Code)
	}
	w = postJSON(t, h.Search, "/api/search", SearchRequest{PositionRequest: PositionRequest{Side: "black"}, Moves: []string{"a1"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Illegal root move status = %d", w.Code)
	}
	if e := decodeError(t, w); e.Code != "ILLEGAL_MOVE" {
		t.Errorf("Code = %q, want ILLEGAL_MOVE", e.Code)
	}
}

func TestSearchHandlerRootMoves(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0")
	w := postJSON(t, h.Search, "/api/search", SearchRequest{
		PositionRequest: PositionRequest{Side: "black"},
		Depth:           2,
		Moves:           []string{"C4"},
	})
	var resp SearchResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if w.Code != http.StatusOK || resp.BestMove != "c4" {
		t.Errorf("Restricted search: status %d, %+v", w.Code, resp)
	}
}

func TestSearchTimeLimitCapped(t *testing.T) {
	h := NewHandlers(getTestEngine(), "1.0.0").WithMaxTimeLimit(50 * time.Millisecond)
	req, _, err := h.toEngineRequest(SearchRequest{
		PositionRequest: PositionRequest{Side: "white"},
		TimeLimitMs:     60000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if req.TimeLimit != 50*time.Millisecond {
		t.Errorf("TimeLimit = %v, want 50ms", req.TimeLimit)
	}
	if req.Side != engine.White || req.Board != engine.StartingPosition() {
		t.Error("Position not carried over")
	}
}

func TestClearTableHandler(t *testing.T) {
	eng := getTestEngine()
	eng.Table().Store(42, engine.Entry{Depth: 1})
	h := NewHandlersWithPool(eng, "1.0.0", NewWorkerPool(DefaultPoolConfig()))

	w := postJSON(t, h.ClearTable, "/api/table/clear", "")
	var resp TableClearResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Cleared || resp.Table.Entries != 0 {
		t.Errorf("Unexpected response %+v", resp)
	}

	// A held search slot means a search is running
	h.pool.TryAcquireSearch()
	defer h.pool.ReleaseSearch()
	w = postJSON(t, h.ClearTable, "/api/table/clear", "")
	if w.Code != http.StatusConflict {
		t.Errorf("Status = %d, want 409", w.Code)
	}
}

func TestParseBoardSeparators(t *testing.T) {
	start := engine.StartingPosition()
	for _, s := range []string{
		"",
		start.String(),
		strings.ReplaceAll(start.String(), "\n", "/"),
		strings.ReplaceAll(start.String(), "\n", "\r\n") + "\n",
	} {
		b, err := parseBoard(s)
		if err != nil {
			t.Errorf("parseBoard(%q) failed: %v", s, err)
			continue
		}
		if b != start {
			t.Errorf("parseBoard(%q) is not the opening position", s)
		}
	}
}

// ============================================================================
// Router, SSE and WebSocket Tests
// ============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(getTestEngine(), DefaultConfig(), "test")
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestRouterRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Missing CORS header")
	}

	resp, err = http.Post(ts.URL+"/api/search", "application/json",
		strings.NewReader(`{"side":"black","depth":2}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var sr SearchResponse
	json.NewDecoder(resp.Body).Decode(&sr)
	if !openings[sr.BestMove] {
		t.Errorf("Unexpected best move %q", sr.BestMove)
	}

	resp, err = http.Get(ts.URL + "/api/search")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/search status = %d, want 405", resp.StatusCode)
	}
}

func TestSearchSSE(t *testing.T) {
	ts := newTestServer(t)

	q := url.Values{}
	q.Set("side", "black")
	q.Set("depth", "3")
	resp, err := http.Get(ts.URL + "/api/search/stream?" + q.Encode())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	out := string(body)
	if !strings.Contains(out, "event: progress") {
		t.Error("Missing progress events")
	}
	if !strings.Contains(out, "event: result") || !strings.Contains(out, "event: done") {
		t.Errorf("Missing result or done event:\n%s", out)
	}
	if strings.Index(out, "event: result") > strings.Index(out, "event: done") {
		t.Error("done must come last")
	}
}

func TestSearchSSEBadSide(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/search/stream?side=purple")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "event: error") {
		t.Errorf("Expected error event, got %s", body)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusSwitchingProtocols)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

// readUntil reads responses until one that is not a progress report
func readUntil(t *testing.T, ws *websocket.Conn) (WSResponse, int) {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(20 * time.Second))
	progress := 0
	for {
		var resp WSResponse
		if err := ws.ReadJSON(&resp); err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if resp.Type != "progress" {
			return resp, progress
		}
		progress++
	}
}

func searchMessage(t *testing.T, id string, req SearchRequest) WSMessage {
	t.Helper()
	payload, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	return WSMessage{Type: "search", ID: id, Payload: payload}
}

func TestWebSocketPing(t *testing.T) {
	ws := dialWS(t, newTestServer(t))

	if err := ws.WriteJSON(WSMessage{Type: "ping", ID: "test-ping-1"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp WSResponse
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if resp.Type != "pong" {
		t.Errorf("Response type = %q, want %q", resp.Type, "pong")
	}
	if resp.ID != "test-ping-1" {
		t.Errorf("Response ID = %q, want %q", resp.ID, "test-ping-1")
	}
}

func TestWebSocketIgnoresUnknownAndMalformed(t *testing.T) {
	ws := dialWS(t, newTestServer(t))

	ws.WriteMessage(websocket.TextMessage, []byte("{this is not json"))
	ws.WriteJSON(WSMessage{Type: "evaluate", ID: "x"})
	ws.WriteJSON(WSMessage{Type: "cancel", ID: "nothing-running"})
	ws.WriteJSON(WSMessage{Type: "ping", ID: "after"})

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp WSResponse
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if resp.Type != "pong" || resp.ID != "after" {
		t.Errorf("Expected only the pong, got %+v", resp)
	}
}

func TestWebSocketSearch(t *testing.T) {
	ws := dialWS(t, newTestServer(t))

	msg := searchMessage(t, "s-1", SearchRequest{
		PositionRequest: PositionRequest{Side: "black"},
		Depth:           3,
		TimeLimitMs:     10000,
	})
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatal(err)
	}

	resp, progress := readUntil(t, ws)
	if resp.Type != "result" || resp.ID != "s-1" {
		t.Fatalf("Expected result for s-1, got %+v", resp)
	}
	if progress == 0 {
		t.Error("Expected progress before the result")
	}

	data, _ := json.Marshal(resp.Payload)
	var sr SearchResponse
	json.Unmarshal(data, &sr)
	if !openings[sr.BestMove] || sr.Depth != 3 {
		t.Errorf("Unexpected result %+v", sr)
	}
}

func TestWebSocketCancel(t *testing.T) {
	ws := dialWS(t, newTestServer(t))

	msg := searchMessage(t, "long", SearchRequest{
		PositionRequest: PositionRequest{Side: "black"},
		Depth:           40,
		TimeLimitMs:     30000,
	})
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatal(err)
	}

	// Wait until the search is running
	ws.SetReadDeadline(time.Now().Add(10 * time.Second))
	var first WSResponse
	if err := ws.ReadJSON(&first); err != nil || first.Type != "progress" {
		t.Fatalf("Expected progress, got %+v (%v)", first, err)
	}

	// A second search on the same connection is refused
	ws.WriteJSON(searchMessage(t, "other", SearchRequest{PositionRequest: PositionRequest{Side: "black"}}))
	refused, _ := readUntil(t, ws)
	if refused.Type != "error" || refused.ID != "other" {
		t.Errorf("Expected error for second search, got %+v", refused)
	}

	ws.WriteJSON(WSMessage{Type: "cancel", ID: "long"})
	resp, _ := readUntil(t, ws)
	if resp.Type != "cancelled" || resp.ID != "long" {
		t.Errorf("Expected cancelled, got %+v", resp)
	}
}

func TestWebSocketSearchInvalid(t *testing.T) {
	ws := dialWS(t, newTestServer(t))

	ws.WriteJSON(WSMessage{Type: "search", ID: "bad", Payload: json.RawMessage(`{"side":"nobody"}`)})
	resp, _ := readUntil(t, ws)
	if resp.Type != "error" || resp.ID != "bad" {
		t.Errorf("Expected error, got %+v", resp)
	}
}
