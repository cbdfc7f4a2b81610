package filter

import (
	"errors"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/types"
)

// Builder compiles filter clauses into predicates over T, a struct or a
// pointer to a struct.
type Builder[T any] struct {
	root   reflect.Type
	mapper property.FieldMapper
	log    zerolog.Logger
}

type options struct {
	mapper property.FieldMapper
	log    zerolog.Logger
}

type Option func(*options)

// WithFieldMapper overrides the default field naming convention.
func WithFieldMapper(m property.FieldMapper) Option {
	return func(o *options) { o.mapper = m }
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

func NewBuilder[T any](opts ...Option) *Builder[T] {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Builder[T]{
		root:   reflect.TypeOf((*T)(nil)).Elem(),
		mapper: o.mapper,
		log:    o.log.With().Str("component", "filter_builder").Logger(),
	}
}

// Clause compiles one clause. A nil predicate with a nil error means the
// clause filters nothing. Failures are *query.ClauseError wrapping the parse,
// operator or range error; configuration errors panic.
func (b *Builder[T]) Clause(f types.FilterRequest) (query.Predicate[T], error) {
	m, err := Build(b.root, f, b.mapper)
	if err != nil {
		b.log.Debug().
			Err(err).
			Str("field", f.Field).
			Str("filterType", string(f.FilterType)).
			Msg("Rejected filter clause")
		return nil, &query.ClauseError{Field: f.Field, FilterType: string(f.FilterType), Err: err}
	}
	if m == nil {
		b.log.Debug().
			Str("field", f.Field).
			Str("filterType", string(f.FilterType)).
			Msg("Filter clause needs no predicate")
		return nil, nil
	}
	b.log.Debug().
		Str("field", f.Field).
		Str("filterType", string(f.FilterType)).
		Str("value", f.FilterValue).
		Msg("Compiled filter clause")
	return func(v T) bool { return m(reflect.ValueOf(v)) }, nil
}

// Criteria folds clauses into one conjunction. Invalid clauses are left out
// of the predicate and reported together in the joined error, so callers can
// either reject the request or carry on without them.
func (b *Builder[T]) Criteria(filters []types.FilterRequest) (query.Predicate[T], error) {
	var (
		preds []query.Predicate[T]
		errs  []error
	)
	for _, f := range filters {
		p, err := b.Clause(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		preds = append(preds, p)
	}
	return query.All(preds...), errors.Join(errs...)
}
