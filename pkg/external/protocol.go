// Package external implements a line-oriented text protocol for driving the
// engine from other Othello programs.
//
// Protocol overview:
//   - Server listens on a TCP port; Session also runs over any reader/writer pair
//   - Each line is one command and gets exactly one line back
//   - Positions are exchanged in one-line form (see ParseOBF)
//   - Commands: version, help, new, board, show, id, set, moves, play, eval, go, exit
//   - Errors are reported as lines starting with "Error:"
package external

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/yourusername/othelloengine/internal/board"
	"github.com/yourusername/othelloengine/internal/positionid"
	"github.com/yourusername/othelloengine/pkg/engine"
)

// Version is reported by the version command
const Version = "othelloengine text protocol 1.0"

// Server accepts protocol connections over TCP, one Session per connection.
type Server struct {
	engine   *engine.Engine
	listener net.Listener
	mu       sync.Mutex
	running  bool
	options  ServerOptions
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ServerOptions configures the protocol server and new sessions.
type ServerOptions struct {
	Host          string          // Host to bind to
	Port          int             // TCP port to listen on (0 picks a free port)
	Depth         int             // Search depth for "go"
	TimeLimit     time.Duration   // Search time limit for "go"
	PromptEnabled bool            // Send "> " after each response
	Logger        *zerolog.Logger // nil = no logging
}

// DefaultServerOptions returns sensible defaults.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		Host:          "localhost",
		Port:          1234,
		Depth:         engine.DefaultDepth,
		TimeLimit:     engine.DefaultTimeLimit,
		PromptEnabled: true,
	}
}

// NewServer creates a protocol server for eng.
func NewServer(eng *engine.Engine, opts ServerOptions) *Server {
	s := &Server{
		engine:  eng,
		options: opts,
		log:     zerolog.Nop(),
	}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("component", "protocol").Logger()
	}
	return s
}

// Start begins listening for connections.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	addr := net.JoinHostPort(s.options.Host, strconv.Itoa(s.options.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}

	s.listener = listener
	s.running = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.log.Info().Str("addr", listener.Addr().String()).Msg("protocol-listening")

	s.wg.Add(1)
	go s.acceptLoop(listener)

	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener, cancels running searches and waits for open
// connections to finish.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	err := s.listener.Close()
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

// acceptLoop accepts incoming connections.
func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if !running {
				return
			}
			s.log.Warn().Err(err).Msg("accept-failed")
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection runs one session until the client quits or the server stops.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the read when the server stops
	stop := context.AfterFunc(s.ctx, func() { conn.Close() })
	defer stop()

	log := s.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	log.Debug().Msg("protocol-connected")

	session := NewSession(s.engine, s.options.Depth, s.options.TimeLimit)
	session.log = log
	if err := session.Serve(s.ctx, conn, conn, s.options.PromptEnabled); err != nil && s.ctx.Err() == nil {
		log.Debug().Err(err).Msg("protocol-connection-error")
	}
	log.Debug().Msg("protocol-disconnected")
}

// Session is the state of one protocol conversation: a current position
// plus the search settings used by "go".
type Session struct {
	engine    *engine.Engine
	board     engine.Board
	side      engine.Cell
	depth     int
	timeLimit time.Duration
	log       zerolog.Logger
}

// NewSession starts a session at the opening position. Zero depth or time
// limit fall back to the engine defaults.
func NewSession(eng *engine.Engine, depth int, timeLimit time.Duration) *Session {
	if depth <= 0 {
		depth = engine.DefaultDepth
	}
	if timeLimit <= 0 {
		timeLimit = engine.DefaultTimeLimit
	}
	return &Session{
		engine:    eng,
		board:     engine.StartingPosition(),
		side:      engine.Black,
		depth:     depth,
		timeLimit: timeLimit,
		log:       zerolog.Nop(),
	}
}

// Position returns the session's current position
func (s *Session) Position() (engine.Board, engine.Cell) {
	return s.board, s.side
}

// Serve reads commands from r and writes responses to w until EOF, an exit
// command, or a read/write error.
func (s *Session) Serve(ctx context.Context, r io.Reader, w io.Writer, prompt bool) error {
	reader := bufio.NewReader(r)

	if prompt {
		if _, err := io.WriteString(w, "> "); err != nil {
			return errors.Wrap(err, "write prompt")
		}
	}

	for {
		line, readErr := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			response, quit := s.Execute(ctx, line)
			if _, err := io.WriteString(w, response); err != nil {
				return errors.Wrap(err, "write response")
			}
			if quit {
				return nil
			}
			if prompt {
				if _, err := io.WriteString(w, "> "); err != nil {
					return errors.Wrap(err, "write prompt")
				}
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return errors.Wrap(readErr, "read command")
		}
	}
}

// Execute runs a single command and returns its newline-terminated response.
// quit is true after exit or quit.
func (s *Session) Execute(ctx context.Context, cmd string) (response string, quit bool) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return "Error: empty command\n", false
	}

	command := strings.ToLower(parts[0])
	s.log.Debug().Str("command", command).Msg("protocol-command")

	switch command {
	case "version":
		return Version + "\n", false

	case "help":
		return s.helpResponse(), false

	case "exit", "quit":
		return "bye\n", true

	case "new":
		s.board, s.side = engine.StartingPosition(), engine.Black
		return "ok\n", false

	case "board":
		return s.handleBoard(parts[1:]), false

	case "show":
		return FormatOBF(s.board, s.side) + "\n", false

	case "id":
		return positionid.PositionID(s.board, s.side) + "\n", false

	case "set":
		return s.handleSet(parts[1:]), false

	case "moves":
		return s.handleMoves(), false

	case "play":
		return s.handlePlay(parts[1:]), false

	case "eval":
		return fmt.Sprintf("eval %d\n", s.engine.Evaluate(s.board, s.side)), false

	case "go":
		return s.handleGo(ctx), false

	default:
		return fmt.Sprintf("Error: unknown command '%s'\n", command), false
	}
}

// helpResponse returns help text on a single line per command.
func (s *Session) helpResponse() string {
	return "commands: version help new board <pos|id> show id set depth|time <n> moves play <move> eval go exit\n"
}

// handleBoard replaces the current position with a one-line position or a
// position ID.
func (s *Session) handleBoard(args []string) string {
	if len(args) == 0 {
		return "Error: board requires a position\n"
	}
	var (
		b    engine.Board
		side engine.Cell
		err  error
	)
	if len(args) == 1 && len(args[0]) == positionid.PositionIDLength {
		b, side, err = positionid.BoardFromPositionID(args[0])
	} else {
		b, side, err = ParseOBF(strings.Join(args, ""))
	}
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	s.board, s.side = b, side
	return "ok\n"
}

// handleSet handles the set command.
func (s *Session) handleSet(args []string) string {
	if len(args) < 2 {
		return "Error: set requires option and value\n"
	}

	option := strings.ToLower(args[0])
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Sprintf("Error: '%s' is not a number\n", args[1])
	}

	switch option {
	case "depth":
		if value < 1 || value > engine.MaxPly {
			return fmt.Sprintf("Error: depth must be 1-%d\n", engine.MaxPly)
		}
		s.depth = value
		return fmt.Sprintf("depth set to %d\n", value)

	case "time":
		if value <= 0 {
			return "Error: time must be a positive number of milliseconds\n"
		}
		s.timeLimit = time.Duration(value) * time.Millisecond
		return fmt.Sprintf("time set to %dms\n", value)

	default:
		return fmt.Sprintf("Error: unknown option '%s'\n", option)
	}
}

// handleMoves lists the legal moves in search order.
func (s *Session) handleMoves() string {
	infos := engine.OrderMoves(s.board, s.side)
	if len(infos) == 0 {
		if board.GameOver(s.board) {
			return "game over\n"
		}
		return board.PassLabel + "\n"
	}
	labels := lo.Map(infos, func(m engine.MoveInfo, _ int) string {
		return m.Move.String()
	})
	return strings.Join(labels, " ") + "\n"
}

// handlePlay applies a move for the side to move and returns the new position.
func (s *Session) handlePlay(args []string) string {
	if len(args) != 1 {
		return "Error: play requires one move\n"
	}
	m, ok := engine.ParseMove(strings.ToLower(args[0]))
	if !ok {
		return fmt.Sprintf("Error: bad move '%s'\n", args[0])
	}
	next, _, err := engine.Apply(s.board, s.side, m)
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	s.board, s.side = next, s.side.Opponent()
	return FormatOBF(s.board, s.side) + "\n"
}

// handleGo searches the current position. The position is not changed.
func (s *Session) handleGo(ctx context.Context) string {
	result, err := s.engine.Search(ctx, engine.Request{
		Board:     s.board,
		Side:      s.side,
		Depth:     s.depth,
		TimeLimit: s.timeLimit,
	})
	switch {
	case errors.Is(err, engine.ErrBusy):
		return "Error: engine busy\n"
	case err != nil:
		return fmt.Sprintf("Error: %v\n", err)
	}
	return fmt.Sprintf("move %s score %d depth %d nodes %d\n",
		result.Label, result.Score, result.Depth, result.Nodes)
}
