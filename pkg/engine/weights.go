package engine

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// LoadWeights reads evaluator weights from a JSON file such as
//
//	{"piece_square": 1, "mobility": 78, "frontier": -50, "stability": 100, "disc_diff": 1}
//
// Fields missing from the file keep their default value.
func LoadWeights(path string) (*Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading weights")
	}
	w := DefaultWeights()
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrapf(err, "parsing weights %s", path)
	}
	if err := checkWeights(w); err != nil {
		return nil, err
	}
	return &w, nil
}
