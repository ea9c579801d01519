package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yourusername/othelloengine/pkg/engine"
)

// SSEEvent represents a Server-Sent Event.
type SSEEvent struct {
	Event string      `json:"event"` // Event type: "progress", "result", "error", "done"
	Data  interface{} `json:"data"`  // Event data
}

type searchOutcome struct {
	result *engine.Result
	err    error
}

// SearchSSE handles Server-Sent Events for streaming search progress.
// GET /api/search/stream?board=...&side=...&depth=...&time_limit_ms=...
//
// Board rows are separated by '/' in the query string. The stream sends
// "progress" events, then one "result" or "error", then "done".
// Disconnecting cancels the search.
func (h *Handlers) SearchSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	query := r.URL.Query()
	req := SearchRequest{
		PositionRequest: PositionRequest{
			Board:      query.Get("board"),
			Side:       query.Get("side"),
			PositionID: query.Get("position_id"),
		},
		Depth:       parseIntParam(query.Get("depth"), 0),
		TimeLimitMs: parseIntParam(query.Get("time_limit_ms"), 0),
		ReuseTable:  query.Get("reuse_table") == "true",
	}
	ereq, _, err := h.toEngineRequest(req)
	if err != nil {
		writeSSEError(w, err.Error())
		return
	}

	progress := make(chan engine.Progress, 16)
	ereq.Progress = progress
	done := make(chan searchOutcome, 1)
	go func() {
		result, err := h.runSearch(r.Context(), ereq)
		done <- searchOutcome{result, err}
	}()

	for {
		select {
		case p := <-progress:
			writeSSEEvent(w, "progress", ProgressToResponse(p))
			flusher.Flush()
		case out := <-done:
			for len(progress) > 0 {
				writeSSEEvent(w, "progress", ProgressToResponse(<-progress))
			}
			if out.err != nil {
				h.log.Debug().Err(out.err).Msg("sse-search-failed")
				writeSSEError(w, "search failed: "+out.err.Error())
			} else {
				writeSSEEvent(w, "result", ResultToResponse(out.result))
				flusher.Flush()
			}
			writeSSEEvent(w, "done", nil)
			flusher.Flush()
			return
		}
	}
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and flushes it.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	var val int
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil {
		return defaultVal
	}
	return val
}
