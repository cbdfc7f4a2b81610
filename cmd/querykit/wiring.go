package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/SanteonNL/querykit/cmd/querykit/config"
	"github.com/SanteonNL/querykit/cmd/querykit/datasource"
	"github.com/SanteonNL/querykit/cmd/querykit/page"
	"github.com/SanteonNL/querykit/cmd/querykit/processor"
	"github.com/SanteonNL/querykit/cmd/querykit/specs"
	"github.com/SanteonNL/querykit/models/identity"
)

// sources holds the entity sources of one configured backend.
type sources struct {
	users datasource.Source[identity.User]
	teams datasource.Source[identity.Team]
	close func() error
}

func openSources(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sources, error) {
	log.Info().Str("source", cfg.Source).Msg("Opening entity sources")

	switch cfg.Source {
	case config.SourceMemory:
		users, err := datasource.NewFixtureSource[identity.User](cfg.FixtureDir, "users", log)
		if err != nil {
			return nil, err
		}
		teams, err := datasource.NewFixtureSource[identity.Team](cfg.FixtureDir, "teams", log)
		if err != nil {
			return nil, err
		}
		return &sources{users: users, teams: teams, close: func() error { return nil }}, nil

	case config.SourceSQLX:
		db, err := datasource.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		queries := datasource.NewQueryStore(log)
		if err := queries.LoadQueryDirectory(cfg.QueryDir); err != nil {
			db.Close()
			return nil, err
		}
		return &sources{
			users: datasource.NewSQLSource[identity.User](db, queries, "users", log).
				WithRelation("Team", datasource.UserTeams(queries)),
			teams: datasource.NewSQLSource[identity.Team](db, queries, "teams", log),
			close: db.Close,
		}, nil

	case config.SourceGorm:
		db, err := datasource.OpenGorm(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &sources{
			users: datasource.NewGormSource[identity.User](db, log),
			teams: datasource.NewGormSource[identity.Team](db, log),
			close: db.Close,
		}, nil

	case config.SourceRemote:
		return &sources{
			users: datasource.NewRemoteSource[identity.User](cfg.RemoteURL, "users", cfg.RemoteRetryMax, log),
			teams: datasource.NewRemoteSource[identity.Team](cfg.RemoteURL, "teams", cfg.RemoteRetryMax, log),
			close: func() error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown source %q", cfg.Source)
}

// newHandlers builds the search service of every entity. The returned stop
// function ends the page caches.
func newHandlers(cfg *config.Config, src *sources, metrics *processor.Metrics, log zerolog.Logger) ([]processor.Handler, func(), error) {
	cacheConfig := page.CacheConfig{
		Enabled:         cfg.CacheEnabled,
		DefaultTTL:      cfg.CacheTTL,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: cfg.CacheCleanupInterval,
	}
	userCache := page.NewCache[identity.User](cacheConfig, log)
	teamCache := page.NewCache[identity.Team](cacheConfig, log)
	stop := func() {
		userCache.Stop()
		teamCache.Stop()
	}

	users, err := processor.NewSearchService(processor.SearchConfig[identity.User]{
		Log:             log,
		Entity:          "users",
		Source:          datasource.Sequence(src.users),
		Cache:           userCache,
		Metrics:         metrics,
		FieldMapper:     specs.UserFields,
		CustomSort:      specs.UserSortKeys,
		Includes:        specs.UserIncludes,
		DefaultOrder:    specs.OrderUsersByName,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
		Strict:          cfg.StrictFilters,
	})
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("failed to create users search: %w", err)
	}

	teams, err := processor.NewSearchService(processor.SearchConfig[identity.Team]{
		Log:             log,
		Entity:          "teams",
		Source:          datasource.Sequence(src.teams),
		Cache:           teamCache,
		Metrics:         metrics,
		DefaultOrder:    specs.OrderTeamsByName,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
		Strict:          cfg.StrictFilters,
	})
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("failed to create teams search: %w", err)
	}

	return []processor.Handler{users, teams}, stop, nil
}

func findHandler(handlers []processor.Handler, entity string) (processor.Handler, error) {
	for _, h := range handlers {
		if h.Entity() == entity {
			return h, nil
		}
	}
	return nil, fmt.Errorf("entity %s is not supported", entity)
}
