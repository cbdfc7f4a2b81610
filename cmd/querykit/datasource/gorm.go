package datasource

import (
	"context"
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/rs/zerolog"
)

// OpenGorm opens a gorm handle on the postgres dialect. conn is either a
// connection URL or an existing *sql.DB.
func OpenGorm(conn interface{}) (*gorm.DB, error) {
	db, err := gorm.Open("postgres", conn)
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}
	return db, nil
}

// GormSource loads entities through gorm, preloading every include.
type GormSource[T any] struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewGormSource[T any](db *gorm.DB, log zerolog.Logger) *GormSource[T] {
	return &GormSource[T]{
		db:  db,
		log: log.With().Str("component", "gorm_source").Logger(),
	}
}

func (s *GormSource[T]) Load(ctx context.Context, includes []string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := s.db
	for _, include := range includes {
		q = q.Preload(include)
	}

	items := []T{}
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}

	s.log.Debug().
		Strs("includes", includes).
		Int("rows", len(items)).
		Msg("Read entities through gorm")
	return items, nil
}
