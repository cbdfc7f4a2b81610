// Package spec describes a query over one entity type (criteria, includes,
// ordering, paging and a short-circuit guard) and applies it to a sequence.
package spec

import (
	"context"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/sorting"
	"github.com/SanteonNL/querykit/query/types"
)

// Specification is mutable builder state. Build one per request and do not
// share it between goroutines.
type Specification[T any] struct {
	Criteria query.Predicate[T]
	Includes []string
	// OrderBy is the default ordering, used when Sorts is empty.
	OrderBy     func(query.Sequence[T]) query.Sequence[T]
	Sorts       []types.SortRequest
	FieldMapper property.FieldMapper
	CustomSort  sorting.CustomKey[T]
	// Skip and Take ignore values <= 0.
	Skip int
	Take int
	// ShortCircuit returning true means "return nothing without touching
	// the source".
	ShortCircuit func() bool
}

func New[T any](criteria query.Predicate[T]) *Specification[T] {
	return &Specification[T]{Criteria: criteria}
}

// Where narrows the criteria with p.
func (s *Specification[T]) Where(p query.Predicate[T]) *Specification[T] {
	s.Criteria = s.Criteria.And(p)
	return s
}

func (s *Specification[T]) AddInclude(paths ...string) *Specification[T] {
	s.Includes = append(s.Includes, paths...)
	return s
}

func (s *Specification[T]) ApplyOrderBy(fn func(query.Sequence[T]) query.Sequence[T]) *Specification[T] {
	s.OrderBy = fn
	return s
}

func (s *Specification[T]) ApplySorts(sorts []types.SortRequest, mapper property.FieldMapper, custom sorting.CustomKey[T]) *Specification[T] {
	s.Sorts = sorts
	s.FieldMapper = mapper
	s.CustomSort = custom
	return s
}

func (s *Specification[T]) ApplyPaging(skip, take int) *Specification[T] {
	s.Skip = skip
	s.Take = take
	return s
}

func (s *Specification[T]) WithShortCircuit(fn func() bool) *Specification[T] {
	s.ShortCircuit = fn
	return s
}

func (s *Specification[T]) ShouldShortCircuit() bool {
	return s.ShortCircuit != nil && s.ShortCircuit()
}

// Evaluate applies s to seq in a fixed order: criteria, includes, ordering,
// skip, take. When s short-circuits the result is an empty sequence that
// never reaches seq's source.
func Evaluate[T any](seq query.Sequence[T], s *Specification[T]) query.Sequence[T] {
	if s == nil {
		return seq
	}
	if s.ShouldShortCircuit() {
		return query.Empty[T]()
	}

	seq = seq.Where(s.Criteria)
	for _, path := range s.Includes {
		seq = seq.Include(path)
	}
	switch {
	case len(s.Sorts) > 0:
		seq = sorting.Apply(seq, s.Sorts, s.FieldMapper, s.CustomSort)
	case s.OrderBy != nil:
		seq = s.OrderBy(seq)
	}
	return seq.Skip(s.Skip).Take(s.Take)
}

// List evaluates s against seq and materializes the result.
func List[T any](ctx context.Context, seq query.Sequence[T], s *Specification[T]) ([]T, error) {
	return Evaluate(seq, s).List(ctx)
}
