package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/othelloengine/pkg/engine"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host           string          // Host to bind to (default "localhost")
	Port           int             // Port to listen on (default 8080)
	ReadTimeout    time.Duration   // Read timeout (default 30s)
	WriteTimeout   time.Duration   // Write timeout (default 60s)
	IdleTimeout    time.Duration   // Idle timeout (default 60s)
	MaxFastWorkers int             // Max concurrent fast operations (default 100)
	MaxTimeLimit   time.Duration   // Largest search budget a client may ask for (default 30s)
	Logger         *zerolog.Logger // nil = no logging
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:           "localhost",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: 100,
		MaxTimeLimit:   DefaultMaxTimeLimit,
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	engine   *engine.Engine
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	version  string
	log      zerolog.Logger
}

// NewServer creates a new API server.
func NewServer(e *engine.Engine, config ServerConfig, version string) *Server {
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	// The engine runs one search at a time
	pool := NewWorkerPool(PoolConfig{
		MaxFastWorkers:   config.MaxFastWorkers,
		MaxSearchWorkers: 1,
	})
	handlers := NewHandlersWithPool(e, version, pool).
		WithLogger(logger).
		WithMaxTimeLimit(config.MaxTimeLimit)

	return &Server{
		config:   config,
		engine:   e,
		handlers: handlers,
		pool:     pool,
		version:  version,
		log:      logger,
	}
}

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool {
	return s.pool
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger logs every request with its status and duration.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("request-id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("http-request")
		})
	}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handlers.Health)
		r.Post("/evaluate", s.handlers.Evaluate)
		r.Post("/moves", s.handlers.Moves)
		r.Post("/apply", s.handlers.Apply)
		r.Post("/search", s.handlers.Search)
		r.Get("/search/stream", s.handlers.SearchSSE)
		r.Post("/table/clear", s.handlers.ClearTable)
		r.Get("/ws", s.handlers.WebSocket)
	})

	return r
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	if s.server == nil {
		s.server = s.newHTTPServer()
	}

	s.log.Info().Str("version", s.version).Str("addr", s.Addr()).Msg("server-starting")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and stops it on
// SIGINT or SIGTERM.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done, then shuts down within 10 seconds.
func (s *Server) Run(ctx context.Context) error {
	s.server = s.newHTTPServer()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "server failed")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info().Msg("server-shutting-down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server shutdown failed")
		}
		s.log.Info().Msg("server-stopped")
		return nil
	})

	return g.Wait()
}
