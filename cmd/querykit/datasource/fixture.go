package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/SanteonNL/querykit/util"
)

// FixtureSource serves entities decoded once from a JSON array file.
type FixtureSource[T any] struct {
	path  string
	items []T
	log   zerolog.Logger
}

// NewFixtureSource reads <dir>/<entity>.json.
func NewFixtureSource[T any](dir, entity string, log zerolog.Logger) (*FixtureSource[T], error) {
	absDir, err := util.GetAbsolutePath(dir)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(absDir, entity+".json")

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file %s: %w", path, err)
	}

	var items []T
	if err := json.Unmarshal(content, &items); err != nil {
		return nil, fmt.Errorf("failed to decode fixture file %s: %w", path, err)
	}

	log = log.With().Str("component", "fixture_source").Str("entity", entity).Logger()
	log.Debug().
		Str("file", path).
		Int("count", len(items)).
		Msg("Loaded fixture file")

	return &FixtureSource[T]{path: path, items: items, log: log}, nil
}

func (s *FixtureSource[T]) Load(ctx context.Context, _ []string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.items, nil
}
