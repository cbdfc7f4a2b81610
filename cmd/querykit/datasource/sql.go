package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/SanteonNL/querykit/models/identity"
)

// Connect opens a postgres connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	return db, nil
}

// QueryStore holds one SELECT statement per entity, loaded from .sql files.
type QueryStore struct {
	mu      sync.RWMutex
	queries map[string]string // entity -> query
	log     zerolog.Logger
}

func NewQueryStore(log zerolog.Logger) *QueryStore {
	return &QueryStore{
		queries: make(map[string]string),
		log:     log.With().Str("component", "query_store").Logger(),
	}
}

// EntityFromFile derives the entity name from a query file name, e.g.
// "users_active.sql" -> "users".
func EntityFromFile(filePath string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return strings.ToLower(strings.Split(base, "_")[0])
}

// LoadQueryFile loads a single query file.
func (qs *QueryStore) LoadQueryFile(filePath string) error {
	entity := EntityFromFile(filePath)

	query, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read query file %s: %w", filePath, err)
	}
	qs.Set(entity, string(query))

	qs.log.Debug().
		Str("entity", entity).
		Str("file", filePath).
		Msg("Loaded query file")
	return nil
}

// LoadQueryDirectory loads all .sql files from a directory.
func (qs *QueryStore) LoadQueryDirectory(dirPath string) error {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read query directory %s: %w", dirPath, err)
	}

	var loadErrors []error
	loaded := 0

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		filePath := filepath.Join(dirPath, file.Name())
		if err := qs.LoadQueryFile(filePath); err != nil {
			loadErrors = append(loadErrors, err)
			qs.log.Error().Err(err).
				Str("file", file.Name()).
				Msg("Failed to load query file")
			continue
		}
		loaded++
	}

	qs.log.Info().
		Int("total_files", len(files)).
		Int("loaded", loaded).
		Int("errors", len(loadErrors)).
		Str("directory", dirPath).
		Msg("Completed loading query files")

	if len(loadErrors) > 0 {
		return fmt.Errorf("encountered %d errors while loading query files", len(loadErrors))
	}
	return nil
}

func (qs *QueryStore) Set(entity, query string) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	qs.queries[entity] = query
}

// GetQuery retrieves the query for an entity.
func (qs *QueryStore) GetQuery(entity string) (string, error) {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	query, exists := qs.queries[entity]
	if !exists {
		return "", fmt.Errorf("no query found for entity: %s", entity)
	}
	return query, nil
}

// RelationLoader fills one related entity on rows the source already read.
type RelationLoader[T any] func(ctx context.Context, db *sqlx.DB, items []T) error

// SQLSource loads entities with the entity's stored query, scanning rows
// into T by db tags. Includes are loaded by the relation loaders registered
// with WithRelation; an include without one is an error.
type SQLSource[T any] struct {
	db        *sqlx.DB
	queries   *QueryStore
	entity    string
	relations map[string]RelationLoader[T] // lower-cased include -> loader
	log       zerolog.Logger
}

func NewSQLSource[T any](db *sqlx.DB, queries *QueryStore, entity string, log zerolog.Logger) *SQLSource[T] {
	return &SQLSource[T]{
		db:        db,
		queries:   queries,
		entity:    entity,
		relations: make(map[string]RelationLoader[T]),
		log:       log.With().Str("component", "sql_source").Str("entity", entity).Logger(),
	}
}

// WithRelation registers the loader of the include name.
func (s *SQLSource[T]) WithRelation(name string, load RelationLoader[T]) *SQLSource[T] {
	s.relations[strings.ToLower(name)] = load
	return s
}

func (s *SQLSource[T]) Load(ctx context.Context, includes []string) ([]T, error) {
	query, err := s.queries.GetQuery(s.entity)
	if err != nil {
		return nil, err
	}
	loaders := make([]RelationLoader[T], 0, len(includes))
	for _, include := range includes {
		load, ok := s.relations[strings.ToLower(include)]
		if !ok {
			return nil, fmt.Errorf("sql source for %s cannot load relation %s", s.entity, include)
		}
		loaders = append(loaders, load)
	}

	items := []T{}
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("error executing query for %s: %w", s.entity, err)
	}
	for i, load := range loaders {
		if err := load(ctx, s.db, items); err != nil {
			return nil, fmt.Errorf("failed to load %s of %s: %w", includes[i], s.entity, err)
		}
	}

	s.log.Debug().
		Strs("includes", includes).
		Int("rows", len(items)).
		Msg("Read entities from database")
	return items, nil
}

// UserTeams loads the team of every user with the stored teams query.
func UserTeams(queries *QueryStore) RelationLoader[identity.User] {
	return func(ctx context.Context, db *sqlx.DB, users []identity.User) error {
		query, err := queries.GetQuery("teams")
		if err != nil {
			return err
		}
		teams := []identity.Team{}
		if err := db.SelectContext(ctx, &teams, query); err != nil {
			return fmt.Errorf("error executing query for teams: %w", err)
		}

		byID := make(map[int64]*identity.Team, len(teams))
		for i := range teams {
			byID[teams[i].ID] = &teams[i]
		}
		for i := range users {
			if users[i].TeamID != nil {
				users[i].Team = byID[*users[i].TeamID]
			}
		}
		return nil
	}
}
