package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/othelloengine/pkg/engine"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsProgressInterval = 50 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a client WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // Message type: "search", "cancel", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // SearchRequest for "search"
}

// WSResponse is a server WebSocket message.
type WSResponse struct {
	Type    string      `json:"type"`              // "progress", "result", "cancelled", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
}

// WSClient represents a connected WebSocket client.
// A client runs at most one search at a time.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
	closed   chan struct{}
	wg       sync.WaitGroup

	mu        sync.Mutex
	searchID  string
	searchGen uint64
	cancel    context.CancelFunc
}

// WebSocket handles WebSocket connections for interactive searches.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws-upgrade-failed")
		return
	}
	client := &WSClient{
		conn:     conn,
		handlers: h,
		sendChan: make(chan WSResponse, 256),
		closed:   make(chan struct{}),
	}
	go client.writePump()
	client.readPump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.sendChan:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) readPump() {
	defer func() {
		close(c.closed)
		c.cancelSearch("")
		c.wg.Wait()
		close(c.sendChan)
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.handlers.log.Debug().Err(err).Msg("ws-malformed-message")
			continue
		}
		c.handleMessage(msg)
	}
}

// send queues a response unless the connection is going away
func (c *WSClient) send(resp WSResponse) {
	select {
	case c.sendChan <- resp:
	case <-c.closed:
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "search":
		c.handleSearch(msg)
	case "cancel":
		if !c.cancelSearch(msg.ID) {
			c.handlers.log.Debug().Str("id", msg.ID).Msg("ws-cancel-ignored")
		}
	case "ping":
		c.send(WSResponse{Type: "pong", ID: msg.ID})
	default:
		c.handlers.log.Debug().Str("type", msg.Type).Msg("ws-unknown-message")
	}
}

// cancelSearch stops the running search if its ID matches id; an empty id
// matches any search. It reports whether a search was stopped.
func (c *WSClient) cancelSearch(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil || (id != "" && id != c.searchID) {
		return false
	}
	c.cancel()
	c.cancel = nil
	return true
}

func (c *WSClient) handleSearch(msg WSMessage) {
	var req SearchRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.send(WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"})
		return
	}
	ereq, _, err := c.handlers.toEngineRequest(req)
	if err != nil {
		c.send(WSResponse{Type: "error", ID: msg.ID, Error: err.Error()})
		return
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		c.send(WSResponse{Type: "error", ID: msg.ID, Error: "a search is already running"})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.searchGen++
	c.searchID, c.cancel = msg.ID, cancel
	gen := c.searchGen
	c.mu.Unlock()

	c.wg.Add(1)
	go c.runSearch(ctx, gen, msg.ID, ereq)
}

func (c *WSClient) runSearch(ctx context.Context, gen uint64, id string, req engine.Request) {
	defer c.wg.Done()
	defer c.finishSearch(gen)

	progress := make(chan engine.Progress, 16)
	req.Progress = progress
	done := make(chan searchOutcome, 1)
	go func() {
		result, err := c.handlers.runSearch(ctx, req)
		done <- searchOutcome{result, err}
	}()

	var lastSent time.Time
	lastDepth := 0
	for {
		select {
		case p := <-progress:
			// Completed depths always go out; node ticks are throttled
			if p.Completed == lastDepth && time.Since(lastSent) < wsProgressInterval {
				continue
			}
			lastSent, lastDepth = time.Now(), p.Completed
			c.send(WSResponse{Type: "progress", ID: id, Payload: ProgressToResponse(p)})
		case out := <-done:
			// Once cancel is acknowledged no result goes out
			switch {
			case ctx.Err() != nil:
				c.send(WSResponse{Type: "cancelled", ID: id})
			case out.err == nil:
				c.send(WSResponse{Type: "result", ID: id, Payload: ResultToResponse(out.result)})
			default:
				c.send(WSResponse{Type: "error", ID: id, Error: out.err.Error()})
			}
			return
		}
	}
}

// finishSearch clears the outstanding search if no newer one replaced it
func (c *WSClient) finishSearch(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchGen == gen {
		if c.cancel != nil {
			c.cancel()
		}
		c.cancel = nil
		c.searchID = ""
	}
}
