package query

import (
	"context"

	"golang.org/x/exp/slices"
)

// Loader fetches the raw entities behind a sequence. Includes carries the
// eager-load directives recorded on the sequence; loaders that have no notion
// of related entities ignore them.
type Loader[T any] func(ctx context.Context, includes []string) ([]T, error)

// Sequence is a lazy, re-enumerable view over entities of one type. Every
// operator returns a new Sequence and leaves the receiver untouched; nothing
// is loaded until Count or List is called.
type Sequence[T any] interface {
	Where(p Predicate[T]) Sequence[T]
	Include(path string) Sequence[T]
	OrderBy(c Comparer[T]) Sequence[T]
	OrderByDescending(c Comparer[T]) Sequence[T]
	ThenBy(c Comparer[T]) Sequence[T]
	ThenByDescending(c Comparer[T]) Sequence[T]
	// Skip and Take ignore n <= 0.
	Skip(n int) Sequence[T]
	Take(n int) Sequence[T]
	Includes() []string
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]T, error)
}

type stepKind int

const (
	stepWhere stepKind = iota
	stepSort
	stepSkip
	stepTake
)

type step[T any] struct {
	kind stepKind
	pred Predicate[T]
	keys []Comparer[T]
	n    int
}

type pipeline[T any] struct {
	load     Loader[T]
	includes []string
	steps    []step[T]
}

// FromLoader builds a sequence over entities produced by load.
func FromLoader[T any](load Loader[T]) Sequence[T] {
	return &pipeline[T]{load: load}
}

// FromSlice builds an in-memory sequence. The slice is never mutated.
func FromSlice[T any](items []T) Sequence[T] {
	return FromLoader(func(ctx context.Context, _ []string) ([]T, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return items, nil
	})
}

// Empty returns a sequence that yields nothing and has no source at all.
func Empty[T any]() Sequence[T] {
	return FromLoader(func(context.Context, []string) ([]T, error) { return nil, nil })
}

func (p *pipeline[T]) with(s step[T]) Sequence[T] {
	return &pipeline[T]{
		load:     p.load,
		includes: p.includes,
		steps:    append(slices.Clip(p.steps), s),
	}
}

func (p *pipeline[T]) Where(pred Predicate[T]) Sequence[T] {
	if pred == nil {
		return p
	}
	return p.with(step[T]{kind: stepWhere, pred: pred})
}

func (p *pipeline[T]) Include(path string) Sequence[T] {
	if path == "" || slices.Contains(p.includes, path) {
		return p
	}
	return &pipeline[T]{
		load:     p.load,
		includes: append(slices.Clip(p.includes), path),
		steps:    p.steps,
	}
}

func (p *pipeline[T]) Includes() []string {
	return slices.Clone(p.includes)
}

func (p *pipeline[T]) OrderBy(c Comparer[T]) Sequence[T] {
	return p.with(step[T]{kind: stepSort, keys: []Comparer[T]{c}})
}

func (p *pipeline[T]) OrderByDescending(c Comparer[T]) Sequence[T] {
	return p.OrderBy(c.Reverse())
}

// ThenBy adds a tie-breaker to the most recent ordering. Without a preceding
// ordering it behaves like OrderBy.
func (p *pipeline[T]) ThenBy(c Comparer[T]) Sequence[T] {
	last := len(p.steps) - 1
	if last < 0 || p.steps[last].kind != stepSort {
		return p.OrderBy(c)
	}
	steps := slices.Clone(p.steps)
	steps[last].keys = append(slices.Clip(steps[last].keys), c)
	return &pipeline[T]{load: p.load, includes: p.includes, steps: steps}
}

func (p *pipeline[T]) ThenByDescending(c Comparer[T]) Sequence[T] {
	return p.ThenBy(c.Reverse())
}

func (p *pipeline[T]) Skip(n int) Sequence[T] {
	if n <= 0 {
		return p
	}
	return p.with(step[T]{kind: stepSkip, n: n})
}

func (p *pipeline[T]) Take(n int) Sequence[T] {
	if n <= 0 {
		return p
	}
	return p.with(step[T]{kind: stepTake, n: n})
}

func (p *pipeline[T]) Count(ctx context.Context) (int, error) {
	items, err := p.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (p *pipeline[T]) List(ctx context.Context) ([]T, error) {
	src, err := p.load(ctx, p.Includes())
	if err != nil {
		return nil, err
	}
	items := slices.Clone(src)
	for _, s := range p.steps {
		switch s.kind {
		case stepWhere:
			items = filterItems(items, s.pred)
		case stepSort:
			slices.SortStableFunc(items, chain(s.keys))
		case stepSkip:
			if s.n >= len(items) {
				items = items[:0]
			} else {
				items = items[s.n:]
			}
		case stepTake:
			if s.n < len(items) {
				items = items[:s.n]
			}
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func filterItems[T any](items []T, pred Predicate[T]) []T {
	out := items[:0:0]
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func chain[T any](keys []Comparer[T]) func(a, b T) int {
	return func(a, b T) int {
		for _, k := range keys {
			if c := k(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
}
