// Package main provides C-compatible functions for building a shared library.
// Build with: go build -buildmode=c-shared -o libothello.so ./pkg/capi
//
// Positions are passed in the one-line form read by external.ParseOBF.
// Results are returned as the JSON documents served by pkg/api.
package main

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/yourusername/othelloengine/internal/board"
	"github.com/yourusername/othelloengine/internal/positionid"
	"github.com/yourusername/othelloengine/pkg/api"
	"github.com/yourusername/othelloengine/pkg/engine"
	"github.com/yourusername/othelloengine/pkg/external"
)

const version = "0.1.0"

var errNotInitialized = errors.New("engine not initialized")

var (
	globalEngine *engine.Engine
	engineMutex  sync.RWMutex
	lastError    string
	errorMutex   sync.Mutex
)

// setError stores an error message for later retrieval.
func setError(err error) {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

func getError() string {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	return lastError
}

// initEngine replaces the global engine. An empty weights path keeps the
// default weights.
func initEngine(weightsFile string, tableSize int, seed uint64) error {
	opts := engine.EngineOptions{TableCapacity: tableSize, HashSeed: seed}
	if weightsFile != "" {
		w, err := engine.LoadWeights(weightsFile)
		if err != nil {
			return err
		}
		opts.Weights = w
	}

	eng, err := engine.NewEngine(opts)
	if err != nil {
		return err
	}

	engineMutex.Lock()
	globalEngine = eng
	engineMutex.Unlock()
	return nil
}

func shutdownEngine() {
	engineMutex.Lock()
	defer engineMutex.Unlock()
	globalEngine = nil
}

func currentEngine() (*engine.Engine, error) {
	engineMutex.RLock()
	defer engineMutex.RUnlock()
	if globalEngine == nil {
		return nil, errNotInitialized
	}
	return globalEngine, nil
}

// errorJSON is returned in place of a result when a call fails
func errorJSON(err error) string {
	data, _ := json.Marshal(api.ErrorResponse{Error: err.Error()})
	return string(data)
}

func marshal(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encode result")
	}
	return string(data), nil
}

func evaluateJSON(pos string) (string, error) {
	eng, err := currentEngine()
	if err != nil {
		return "", err
	}
	b, side, err := external.ParseOBF(pos)
	if err != nil {
		return "", err
	}
	black, white := board.Counts(b)
	return marshal(api.EvaluateResponse{
		Score:      eng.Evaluate(b, side),
		Side:       side.String(),
		PositionID: positionid.PositionID(b, side),
		Breakdown:  eng.Analyze(b, side),
		Weights:    eng.Weights(),
		Black:      black,
		White:      white,
		GameOver:   board.GameOver(b),
	})
}

func legalMovesJSON(pos string) (string, error) {
	b, side, err := external.ParseOBF(pos)
	if err != nil {
		return "", err
	}
	infos := engine.OrderMoves(b, side)
	over := board.GameOver(b)
	return marshal(api.MovesResponse{
		Moves:    api.MovesToResponse(infos),
		NumLegal: len(infos),
		MustPass: len(infos) == 0 && !over,
		GameOver: over,
	})
}

func bestMoveJSON(pos string, depth int, timeLimit time.Duration) (string, error) {
	eng, err := currentEngine()
	if err != nil {
		return "", err
	}
	b, side, err := external.ParseOBF(pos)
	if err != nil {
		return "", err
	}
	result, err := eng.Search(context.Background(), engine.Request{
		Board:     b,
		Side:      side,
		Depth:     depth,
		TimeLimit: timeLimit,
	})
	if err != nil {
		return "", err
	}
	return marshal(api.ResultToResponse(result))
}

func main() {}
