package record

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Load decodes a JSON record and replays it
func Load(r io.Reader) (*Game, error) {
	var rec Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.Wrapf(ErrRecord, "decoding: %v", err)
	}
	return Replay(&rec)
}

// Save writes the game's record as indented JSON
func Save(w io.Writer, g *Game) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.Record()); err != nil {
		return errors.Wrap(err, "encoding record")
	}
	return nil
}
