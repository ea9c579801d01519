// Command othellobench checks move generation and measures search speed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yourusername/othelloengine/internal/board"
	"github.com/yourusername/othelloengine/pkg/engine"
)

// Known leaf counts from the opening position, passes included
var perftCounts = []uint64{1, 4, 12, 56, 244, 1396, 8200, 55092, 390216}

func main() {
	perftDepth := flag.Int("perft", 7, "Deepest move generation check")
	maxDepth := flag.Int("depth", 8, "Deepest search to time")
	tableSize := flag.Int("table", 0, "Transposition table entries (0 = default, -1 = off)")
	seed := flag.Uint64("seed", 1, "Zobrist seed")
	flag.Parse()

	fmt.Println("=== Othello Engine Benchmark ===")
	fmt.Println()

	// Test 1: move generation
	fmt.Println("1. Move generation (perft from the opening)...")
	failed := false
	for depth := 1; depth <= *perftDepth && depth < len(perftCounts); depth++ {
		start := time.Now()
		n := perft(engine.StartingPosition(), engine.Black, depth)
		status := "OK"
		if n != perftCounts[depth] {
			status = "FAIL"
			failed = true
		}
		fmt.Printf("   %-4s depth %d: %d leaves (want %d) in %v\n",
			status, depth, n, perftCounts[depth], time.Since(start).Round(time.Microsecond))
	}
	fmt.Println()

	eng, err := engine.NewEngine(engine.EngineOptions{TableCapacity: *tableSize, HashSeed: *seed})
	if err != nil {
		fmt.Printf("   FAIL: %v\n", err)
		os.Exit(1)
	}

	// Test 2: static evaluation
	fmt.Println("2. Static evaluation...")
	if s := eng.Evaluate(engine.StartingPosition(), engine.Black); s != 0 {
		fmt.Printf("   FAIL: opening scores %d, want 0\n", s)
		failed = true
	} else {
		fmt.Println("   OK: opening scores 0")
	}
	const evals = 100000
	b := engine.StartingPosition()
	start := time.Now()
	for i := 0; i < evals; i++ {
		eng.Evaluate(b, engine.Black)
	}
	elapsed := time.Since(start)
	fmt.Printf("       %d evaluations in %v (%.0f/s)\n", evals, elapsed.Round(time.Millisecond),
		float64(evals)/elapsed.Seconds())
	fmt.Println()

	// Test 3: fixed-depth searches
	fmt.Println("3. Search from the opening...")
	ctx := context.Background()
	for depth := 1; depth <= *maxDepth; depth++ {
		if err := eng.ClearTable(); err != nil {
			fmt.Printf("   FAIL: %v\n", err)
			os.Exit(1)
		}
		res, err := eng.Search(ctx, engine.Request{
			Board:     engine.StartingPosition(),
			Side:      engine.Black,
			Depth:     depth,
			TimeLimit: time.Minute,
		})
		if err != nil {
			fmt.Printf("   FAIL: depth %d: %v\n", depth, err)
			failed = true
			break
		}
		nps := float64(res.Nodes) / res.Elapsed.Seconds()
		fmt.Printf("   depth %2d: %-4s score %+6d  %9d nodes  %8v  %.0f nodes/s  tt hits %.1f%%\n",
			res.Depth, res.Label, res.Score, res.Nodes, res.Elapsed.Round(time.Millisecond),
			nps, eng.Table().HitRate())
	}
	fmt.Println()

	// Test 4: table occupancy
	fmt.Println("4. Transposition table...")
	stats := eng.Table().Stats()
	fmt.Printf("   Entries: %d / %d\n", stats.Entries, stats.Capacity)
	fmt.Printf("   Lookups: %d, hits: %d, stores: %d, rejected: %d\n",
		stats.Lookups, stats.Hits, stats.Stores, stats.Rejected)
	fmt.Println()

	fmt.Println("=== Benchmark Complete ===")
	if failed {
		os.Exit(1)
	}
}

// perft counts leaf positions at depth. A forced pass is one ply; a finished
// game counts as a single leaf.
func perft(b engine.Board, side engine.Cell, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := board.LegalMoves(b, side)
	if len(moves) == 0 {
		if !board.HasLegalMove(b, side.Opponent()) {
			return 1
		}
		return perft(b, side.Opponent(), depth-1)
	}
	var n uint64
	for _, m := range moves {
		next, _ := board.ApplyMove(b, m, side)
		n += perft(next, side.Opponent(), depth-1)
	}
	return n
}
