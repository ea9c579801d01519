// othello - an Othello best-move engine
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/othelloengine/internal/board"
	"github.com/yourusername/othelloengine/pkg/engine"
	"github.com/yourusername/othelloengine/pkg/external"
	"github.com/yourusername/othelloengine/pkg/record"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "search":
		cmdSearch(args)
	case "eval":
		cmdEval(args)
	case "moves":
		cmdMoves(args)
	case "selfplay":
		cmdSelfPlay(args)
	case "review":
		cmdReview(args)
	case "protocol":
		cmdProtocol(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`othello - Othello best-move engine

Usage: othello <command> [options]

Commands:
  search    Find the best move
  eval      Show the static evaluation
  moves     List legal moves in search order
  selfplay  Play a game engine against engine
  review    Grade every move of a recorded game
  protocol  Speak the text engine protocol on stdin/stdout

Use "othello <command> -h" for command-specific help.

Positions:
  -board takes 8 rows of '.', 'B' and 'W' separated by '/', e.g.
  "......../......../......../...WB.../...BW.../......../......../........"
  -file reads the same 8 rows from a file (one per line), or a JSON game
  record ending in .json. Without either, the opening position is used.`)
}

// positionFlags are shared by the commands that take a position
type positionFlags struct {
	board   *string
	file    *string
	side    *string
	weights *string
	verbose *bool
}

func addPositionFlags(fs *flag.FlagSet) positionFlags {
	return positionFlags{
		board:   fs.String("board", "", "Board rows separated by '/'"),
		file:    fs.String("file", "", "Read the board (or a .json game record) from a file"),
		side:    fs.String("side", "black", "Side to move (black or white)"),
		weights: fs.String("weights", "", "Evaluator weights JSON file"),
		verbose: fs.Bool("v", false, "Verbose logging"),
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// position resolves the board and side to move from the flags
func (p positionFlags) position() (engine.Board, engine.Cell) {
	side, ok := engine.ParseSide(*p.side)
	if !ok {
		fail("invalid side %q", *p.side)
	}

	switch {
	case *p.file != "" && strings.HasSuffix(*p.file, ".json"):
		f, err := os.Open(*p.file)
		if err != nil {
			fail("%v", err)
		}
		defer f.Close()
		g, err := record.Load(f)
		if err != nil {
			fail("%v", err)
		}
		return g.Board(), g.Side()
	case *p.file != "":
		data, err := os.ReadFile(*p.file)
		if err != nil {
			fail("%v", err)
		}
		b, err := board.Parse(strings.TrimSpace(strings.ReplaceAll(string(data), "\r", "")))
		if err != nil {
			fail("%v", err)
		}
		return b, side
	case *p.board != "":
		b, err := board.Parse(strings.ReplaceAll(*p.board, "/", "\n"))
		if err != nil {
			fail("%v", err)
		}
		return b, side
	}
	return engine.StartingPosition(), side
}

func (p positionFlags) engine(tableSize int) *engine.Engine {
	logger := newLogger(*p.verbose)
	opts := engine.EngineOptions{TableCapacity: tableSize, Logger: &logger}
	if *p.weights != "" {
		w, err := engine.LoadWeights(*p.weights)
		if err != nil {
			fail("%v", err)
		}
		opts.Weights = w
	}
	e, err := engine.NewEngine(opts)
	if err != nil {
		fail("failed to create engine: %v", err)
	}
	return e
}

func printBoard(w io.Writer, b engine.Board) {
	fmt.Fprintln(w, "  a b c d e f g h")
	for row := 0; row < board.Size; row++ {
		fmt.Fprintf(w, "%d", row+1)
		for col := 0; col < board.Size; col++ {
			fmt.Fprintf(w, " %c", b.String()[row*(board.Size+1)+col])
		}
		fmt.Fprintln(w)
	}
	black, white := board.Counts(b)
	fmt.Fprintf(w, "Black %d  White %d\n", black, white)
}

func cmdSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	pf := addPositionFlags(fs)
	depth := fs.Int("depth", engine.DefaultDepth, "Maximum search depth")
	timeLimit := fs.Duration("time", engine.DefaultTimeLimit, "Time limit")
	tableSize := fs.Int("table", 0, "Transposition table entries (0 = default, -1 = off)")
	progress := fs.Bool("progress", false, "Print progress after each depth")
	fs.Parse(args)

	b, side := pf.position()
	e := pf.engine(*tableSize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	req := engine.Request{Board: b, Side: side, Depth: *depth, TimeLimit: *timeLimit}
	var done chan struct{}
	if *progress {
		ch := make(chan engine.Progress, 64)
		req.Progress = ch
		done = make(chan struct{})
		go func() {
			defer close(done)
			lastDepth := 0
			for p := range ch {
				if p.Completed > lastDepth {
					lastDepth = p.Completed
					fmt.Printf("  depth %2d  %-4s  score %+d  nodes %d  %v\n",
						p.Completed, p.BestMove, p.Score, p.Nodes, p.Elapsed.Round(time.Millisecond))
				}
			}
		}()
	}

	result, err := e.Search(ctx, req)
	if req.Progress != nil {
		close(req.Progress)
		<-done
	}
	if err != nil {
		fail("search failed: %v", err)
	}

	fmt.Printf("Best move for %s: %s", side, result.Label)
	if !result.BestMove.IsPass() {
		fmt.Printf(" (flips %d)", result.Flips)
	}
	fmt.Println()
	fmt.Printf("  Score: %+d\n", result.Score)
	fmt.Printf("  Depth: %d\n", result.Depth)
	fmt.Printf("  PV:    %s\n", strings.Join(result.PV, " "))
	fmt.Printf("  Nodes: %d in %v\n", result.Nodes, result.Elapsed.Round(time.Millisecond))
}

func cmdEval(args []string) {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	pf := addPositionFlags(fs)
	fs.Parse(args)

	b, side := pf.position()
	e := pf.engine(-1)

	printBoard(os.Stdout, b)
	s := e.Analyze(b, side)
	w := e.Weights()
	fmt.Printf("Score for %s: %+d\n", side, e.Evaluate(b, side))
	fmt.Printf("  Piece-square: %+8.2f x %g\n", s.PieceSquare, w.PieceSquare)
	fmt.Printf("  Mobility:     %+8.2f x %g\n", s.Mobility, w.Mobility)
	fmt.Printf("  Frontier:     %+8.2f x %g\n", s.Frontier, w.Frontier)
	fmt.Printf("  Stability:    %+8.2f x %g\n", s.Stability, w.Stability)
	fmt.Printf("  Disc diff:    %+8.2f x %g\n", s.DiscDiff, w.DiscDiff)
}

func cmdMoves(args []string) {
	fs := flag.NewFlagSet("moves", flag.ExitOnError)
	pf := addPositionFlags(fs)
	fs.Parse(args)

	b, side := pf.position()
	infos := engine.OrderMoves(b, side)
	if len(infos) == 0 {
		if board.GameOver(b) {
			fmt.Println("Game over")
		} else {
			fmt.Println("No legal moves (forced to pass)")
		}
		return
	}

	fmt.Printf("Legal moves for %s:\n", side)
	for i, m := range infos {
		fmt.Printf("  %2d. %s  flips %d  replies %d\n", i+1, m.Move, m.Flips(), m.OppMobility)
	}
}

func cmdSelfPlay(args []string) {
	fs := flag.NewFlagSet("selfplay", flag.ExitOnError)
	pf := addPositionFlags(fs)
	depth := fs.Int("depth", 4, "Search depth per move")
	timeLimit := fs.Duration("time", 500*time.Millisecond, "Time limit per move")
	out := fs.String("out", "", "Write the game record to this JSON file")
	fs.Parse(args)

	b, side := pf.position()
	e := pf.engine(0)
	g, err := record.NewGame(b, side)
	if err != nil {
		fail("%v", err)
	}
	g.Black, g.White = "othello", "othello"
	g.Date = time.Now().Format("2006-01-02")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for !g.Over() {
		result, err := e.Search(ctx, engine.Request{
			Board:     g.Board(),
			Side:      g.Side(),
			Depth:     *depth,
			TimeLimit: *timeLimit,
		})
		if err != nil {
			fail("search failed: %v", err)
		}
		mover := g.Side()
		if _, err := g.Play(result.BestMove); err != nil {
			fail("engine played %s: %v", result.Label, err)
		}
		fmt.Printf("%3d. %-5s %-4s score %+d\n", len(g.History()), mover, result.Label, result.Score)
	}

	printBoard(os.Stdout, g.Board())
	switch g.Winner() {
	case engine.Black:
		fmt.Println("Black wins")
	case engine.White:
		fmt.Println("White wins")
	default:
		fmt.Println("Draw")
	}

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fail("%v", err)
		}
		defer f.Close()
		if err := record.Save(f, g); err != nil {
			fail("%v", err)
		}
	}
}

func cmdProtocol(args []string) {
	fs := flag.NewFlagSet("protocol", flag.ExitOnError)
	weights := fs.String("weights", "", "Evaluator weights JSON file")
	depth := fs.Int("depth", engine.DefaultDepth, "Search depth for go")
	timeLimit := fs.Duration("time", engine.DefaultTimeLimit, "Time limit for go")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	pf := positionFlags{weights: weights, verbose: verbose}
	e := pf.engine(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := external.NewSession(e, *depth, *timeLimit)
	if err := session.Serve(ctx, os.Stdin, os.Stdout, false); err != nil {
		fail("%v", err)
	}
}

func cmdReview(args []string) {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	file := fs.String("file", "", "Game record (.json) or move transcript")
	weights := fs.String("weights", "", "Evaluator weights JSON file")
	depth := fs.Int("depth", record.DefaultReviewOptions().Depth, "Search depth per position")
	timeLimit := fs.Duration("time", record.DefaultReviewOptions().TimeLimit, "Time limit per search")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if *file == "" {
		fail("review requires -file")
	}
	f, err := os.Open(*file)
	if err != nil {
		fail("%v", err)
	}
	var g *record.Game
	if strings.HasSuffix(*file, ".json") {
		g, err = record.Load(f)
	} else {
		g, err = record.ImportTranscript(f)
	}
	f.Close()
	if err != nil {
		fail("%v", err)
	}

	pf := positionFlags{weights: weights, verbose: verbose}
	e := pf.engine(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	review, err := record.ReviewGame(ctx, e, g, record.ReviewOptions{Depth: *depth, TimeLimit: *timeLimit})
	if err != nil {
		fail("review failed: %v", err)
	}

	for _, m := range review.Moves {
		if m.Forced {
			fmt.Printf("%3d. %-5s %-4s (forced)\n", m.Ply, m.Side, m.Played)
			continue
		}
		fmt.Printf("%3d. %-5s %-4s%-2s best %-4s loss %d\n", m.Ply, m.Side, m.Played, m.Skill.Abbr(), m.Best, m.Loss)
	}
	fmt.Println()
	for i, p := range []record.PlayerReview{review.Black, review.White} {
		name := []string{"Black", "White"}[i]
		if p.Name != "" {
			name += " (" + p.Name + ")"
		}
		fmt.Printf("%-20s moves %3d  loss/move %8.1f  blunders %d  mistakes %d  inaccuracies %d\n",
			name, p.Moves, p.LossPerMove, p.Blunders, p.Mistakes, p.Inaccuracies)
	}
}
