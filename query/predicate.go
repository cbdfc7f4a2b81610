// Package query holds the composable building blocks shared by the filter,
// sort, specification and pagination engines: predicates, comparers and the
// lazy Sequence abstraction they are applied to.
package query

// Predicate reports whether an entity satisfies a condition.
type Predicate[T any] func(T) bool

// And returns a predicate satisfied when both p and other are. A nil side is
// treated as "always true".
func (p Predicate[T]) And(other Predicate[T]) Predicate[T] {
	switch {
	case p == nil:
		return other
	case other == nil:
		return p
	}
	return func(v T) bool { return p(v) && other(v) }
}

// All folds predicates into one conjunction. Nil entries are skipped; with
// nothing left the result is nil, meaning "no filter".
func All[T any](preds ...Predicate[T]) Predicate[T] {
	var out Predicate[T]
	for _, p := range preds {
		out = out.And(p)
	}
	return out
}

// Comparer orders two entities: negative when a sorts before b, zero when
// they tie, positive otherwise.
type Comparer[T any] func(a, b T) int

// Reverse flips the direction of c.
func (c Comparer[T]) Reverse() Comparer[T] {
	return func(a, b T) int { return c(b, a) }
}
