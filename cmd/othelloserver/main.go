// Command othelloserver runs the Othello engine REST and WebSocket API server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/othelloengine/pkg/api"
	"github.com/yourusername/othelloengine/pkg/engine"
	"github.com/yourusername/othelloengine/pkg/external"
)

const version = "0.1.0"

func main() {
	// Command line flags
	host := flag.String("host", "localhost", "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", 8080, "Port to listen on")
	weightsFile := flag.String("weights", "", "Evaluator weights JSON file (default weights when empty)")
	tableSize := flag.Int("table", 0, "Transposition table entries (0 = default, -1 = off)")
	seed := flag.Uint64("seed", 0, "Zobrist seed (0 = random)")
	maxTime := flag.Duration("max-time", api.DefaultMaxTimeLimit, "Largest search time limit a client may request")
	maxFast := flag.Int("max-fast", 100, "Max concurrent evaluate/moves/apply requests")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", 60*time.Second, "HTTP write timeout")
	protocolPort := flag.Int("protocol-port", 0, "Also serve the text engine protocol on this TCP port (0 = off)")
	jsonLogs := flag.Bool("json-logs", false, "Log JSON lines instead of console output")
	debug := flag.Bool("debug", false, "Debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("Othello API Server v%s\n", version)
		os.Exit(0)
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if !*jsonLogs {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	opts := engine.EngineOptions{
		TableCapacity: *tableSize,
		HashSeed:      *seed,
		Logger:        &logger,
	}
	if *weightsFile != "" {
		w, err := engine.LoadWeights(*weightsFile)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *weightsFile).Msg("weights-load-failed")
		}
		opts.Weights = w
	}

	eng, err := engine.NewEngine(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("engine-create-failed")
	}

	config := api.ServerConfig{
		Host:           *host,
		Port:           *port,
		ReadTimeout:    *readTimeout,
		WriteTimeout:   *writeTimeout,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: *maxFast,
		MaxTimeLimit:   *maxTime,
		Logger:         &logger,
	}

	server := api.NewServer(eng, config, version)

	if *protocolPort > 0 {
		popts := external.DefaultServerOptions()
		popts.Host = *host
		popts.Port = *protocolPort
		popts.PromptEnabled = false
		popts.Logger = &logger
		proto := external.NewServer(eng, popts)
		if err := proto.Start(); err != nil {
			logger.Fatal().Err(err).Msg("protocol-start-failed")
		}
		defer proto.Stop()
	}

	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		logger.Error().Err(err).Msg("server-error")
		os.Exit(1)
	}
}
