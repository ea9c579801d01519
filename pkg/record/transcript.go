package record

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/yourusername/othelloengine/internal/board"
	"github.com/yourusername/othelloengine/pkg/engine"
)

// A transcript lists the moves of a game from the standard opening, e.g.
//
//	f5d6c3d3c4
//	f5 d6 c3 d3 c4 pass f4
//
// Moves may be run together or separated by whitespace. Forced passes may be
// left out; they are inserted when the side to move has no placement. Lines
// starting with "#" are comments.

var moveTokenRE = regexp.MustCompile(`(?i)pass|--|[a-h][1-8]`)

// ImportTranscript reads a transcript and replays it from the opening
func ImportTranscript(r io.Reader) (*Game, error) {
	g := NewStandardGame()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Everything on the line must be a move token
		rest := moveTokenRE.ReplaceAllString(line, "")
		if strings.TrimSpace(rest) != "" {
			return nil, errors.Wrapf(ErrRecord, "unexpected text %q", strings.TrimSpace(rest))
		}

		for _, tok := range moveTokenRE.FindAllString(line, -1) {
			tok = strings.ToLower(tok)
			if tok == "--" {
				tok = board.PassLabel
			}
			m, _ := engine.ParseMove(tok)

			if !m.IsPass() && !board.HasLegalMove(g.board, g.side) && board.HasLegalMove(g.board, g.side.Opponent()) {
				if err := g.Pass(); err != nil {
					return nil, err
				}
			}
			if _, err := g.Play(m); err != nil {
				return nil, errors.Wrapf(err, "move %d (%s)", len(g.played)+1, tok)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading transcript")
	}
	return g, nil
}

// ExportTranscript writes the game's moves as one whitespace-separated line.
// Only games starting from the opening position can be exported.
func ExportTranscript(w io.Writer, g *Game) error {
	if g.start != engine.StartingPosition() || g.startSide != engine.Black {
		return errors.Wrap(ErrRecord, "transcript needs a game from the opening position")
	}
	labels := make([]string, len(g.played))
	for i, s := range g.played {
		labels[i] = s.Move
	}
	_, err := io.WriteString(w, strings.Join(labels, " ")+"\n")
	return err
}
