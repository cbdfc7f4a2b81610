package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SanteonNL/querykit/cmd/querykit/page"
	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/filter"
	"github.com/SanteonNL/querykit/query/pagination"
	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/sorting"
	"github.com/SanteonNL/querykit/query/spec"
	"github.com/SanteonNL/querykit/query/types"
)

// SearchService runs paged searches over one entity type.
type SearchService[T any] struct {
	log             zerolog.Logger
	entity          string
	source          query.Sequence[T]
	builder         *filter.Builder[T]
	cache           *page.Cache[T]
	metrics         *Metrics
	mapper          property.FieldMapper
	customSort      sorting.CustomKey[T]
	includes        []string
	defaultOrder    func(query.Sequence[T]) query.Sequence[T]
	defaultPageSize int
	maxPageSize     int
	strict          bool
}

// SearchConfig holds everything needed to create a SearchService.
type SearchConfig[T any] struct {
	Log    zerolog.Logger
	Entity string
	Source query.Sequence[T]
	// Cache and Metrics are optional.
	Cache   *page.Cache[T]
	Metrics *Metrics

	FieldMapper  property.FieldMapper
	CustomSort   sorting.CustomKey[T]
	Includes     []string
	DefaultOrder func(query.Sequence[T]) query.Sequence[T]

	DefaultPageSize int
	MaxPageSize     int
	// Strict rejects a search with any invalid filter clause instead of
	// dropping the clause and reporting an issue.
	Strict bool
}

// Result is one evaluated page plus the issues found while building it.
type Result[T any] struct {
	Page   types.Page[T]
	Issues []page.Issue
	Cached bool
}

// RejectedError is returned in strict mode when filter clauses are invalid.
type RejectedError struct {
	Entity string
	Issues []page.Issue
	Err    error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("search on %s rejected: %v", e.Entity, e.Err)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// Handler is the entity-agnostic view of a SearchService used by the HTTP
// layer and the CLI.
type Handler interface {
	Entity() string
	Handle(ctx context.Context, req types.PagedRequest) (page.Response, error)
}

// NewSearchService creates a search service with all required dependencies.
func NewSearchService[T any](config SearchConfig[T]) (*SearchService[T], error) {
	if config.Entity == "" {
		return nil, fmt.Errorf("entity is required")
	}
	if config.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if config.DefaultPageSize <= 0 {
		config.DefaultPageSize = 20
	}
	if config.MaxPageSize <= 0 {
		config.MaxPageSize = 100
	}
	if config.DefaultPageSize > config.MaxPageSize {
		return nil, fmt.Errorf("default page size %d exceeds max page size %d", config.DefaultPageSize, config.MaxPageSize)
	}

	log := config.Log.With().Str("component", "search").Str("entity", config.Entity).Logger()
	return &SearchService[T]{
		log:             log,
		entity:          config.Entity,
		source:          config.Source,
		builder:         filter.NewBuilder[T](filter.WithFieldMapper(config.FieldMapper), filter.WithLogger(log)),
		cache:           config.Cache,
		metrics:         config.Metrics,
		mapper:          config.FieldMapper,
		customSort:      config.CustomSort,
		includes:        config.Includes,
		defaultOrder:    config.DefaultOrder,
		defaultPageSize: config.DefaultPageSize,
		maxPageSize:     config.MaxPageSize,
		strict:          config.Strict,
	}, nil
}

func (s *SearchService[T]) Entity() string {
	return s.entity
}

// Search filters, orders and pages the source by req. extra predicates are
// ANDed with the request's filters; searches that carry them bypass the
// cache. An unknown field or an unorderable sort field is returned as an
// error wrapping *query.ConfigurationError.
func (s *SearchService[T]) Search(ctx context.Context, req types.PagedRequest, extra ...query.Predicate[T]) (result Result[T], err error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			cfgErr, ok := r.(*query.ConfigurationError)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("invalid search on %s: %w", s.entity, cfgErr)
			outcome = "invalid"
		}
		var rejected *RejectedError
		switch {
		case errors.As(err, &rejected):
			outcome = "rejected"
		case err != nil && outcome == "ok":
			outcome = "error"
		}
		s.metrics.observeSearch(s.entity, outcome, time.Since(start).Seconds())
	}()

	number, size, issues := s.normalizePaging(req)

	key, keyErr := searchKey(req)
	cacheable := s.cache != nil && len(extra) == 0 && keyErr == nil
	if cacheable {
		p, cachedIssues, ok := s.cache.Page(ctx, s.entity, key, number, size)
		s.metrics.cacheLookup(s.entity, ok)
		if ok {
			s.log.Debug().Int("number", number).Int("size", size).Msg("Serving page from cache")
			return Result[T]{Page: p, Issues: s.withNotFound(p, append(issues, cachedIssues...)), Cached: true}, nil
		}
	}

	criteria, clauseErr := s.builder.Criteria(req.FilterList)
	clauseIssues := s.clauseIssues(clauseErr)
	if clauseErr != nil && s.strict {
		return Result[T]{}, &RejectedError{Entity: s.entity, Issues: clauseIssues, Err: clauseErr}
	}

	sp := spec.New(criteria).
		AddInclude(s.includes...).
		ApplySorts(req.SortList, s.mapper, s.customSort)
	for _, p := range extra {
		sp.Where(p)
	}
	if s.defaultOrder != nil {
		sp.ApplyOrderBy(s.defaultOrder)
	}
	// The source is read once; counting and paging run over the result.
	items, err := spec.List(ctx, s.source, sp)
	if err != nil {
		return Result[T]{}, fmt.Errorf("failed to evaluate search on %s: %w", s.entity, err)
	}
	if cacheable {
		s.cache.Store(s.entity, key, items, clauseIssues)
	}
	p, err := pagination.Paginate(ctx, query.FromSlice(items), number, size)
	if err != nil {
		return Result[T]{}, fmt.Errorf("failed to evaluate search on %s: %w", s.entity, err)
	}

	issues = s.withNotFound(p, append(issues, clauseIssues...))

	s.log.Debug().
		Int("filters", len(req.FilterList)).
		Int("sorts", len(req.SortList)).
		Int("total", p.TotalItems).
		Int("number", p.Number).
		Dur("took", time.Since(start)).
		Msg("Search completed")

	return Result[T]{Page: p, Issues: issues}, nil
}

// Handle runs Search and shapes the result for clients.
func (s *SearchService[T]) Handle(ctx context.Context, req types.PagedRequest) (page.Response, error) {
	result, err := s.Search(ctx, req)
	if err != nil {
		return page.Response{}, err
	}
	return page.NewResponse(result.Page, result.Issues), nil
}

func (s *SearchService[T]) withNotFound(p types.Page[T], issues []page.Issue) []page.Issue {
	if p.TotalItems > 0 {
		return issues
	}
	return append(issues, page.NewNotFoundIssue(fmt.Sprintf("No %s match the search criteria", s.entity)))
}

func (s *SearchService[T]) normalizePaging(req types.PagedRequest) (number, size int, issues []page.Issue) {
	number = req.PageNumber
	if number < 1 {
		number = 1
	}
	size = req.PageSize
	switch {
	case size <= 0:
		size = s.defaultPageSize
	case size > s.maxPageSize:
		issues = append(issues, page.NewInformationalIssue(
			fmt.Sprintf("Page size %d exceeds the maximum, using %d", size, s.maxPageSize)))
		size = s.maxPageSize
	}
	return number, size, issues
}

func (s *SearchService[T]) clauseIssues(err error) []page.Issue {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	issues := make([]page.Issue, 0, len(errs))
	for _, e := range errs {
		field := ""
		var clause *query.ClauseError
		if errors.As(e, &clause) {
			field = clause.Field
		}
		reason := query.Reason(e)
		s.metrics.rejectedClause(s.entity, reason)
		s.log.Warn().Err(e).Str("field", field).Str("reason", reason).Msg("Dropped invalid filter clause")
		issues = append(issues, page.NewInvalidParameterIssue(field, e.Error()))
	}
	return issues
}

// searchKey identifies a search independent of the page requested.
func searchKey(req types.PagedRequest) (string, error) {
	key, err := json.Marshal(struct {
		Sorts   []types.SortRequest   `json:"s"`
		Filters []types.FilterRequest `json:"f"`
	}{req.SortList, req.FilterList})
	if err != nil {
		return "", err
	}
	return string(key), nil
}
