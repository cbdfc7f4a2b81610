// Package datasource provides the entity sources searches run against. Each
// source loads the full entity set of one type; the query engine does the
// filtering, ordering and paging on top of it.
package datasource

import (
	"context"

	"github.com/SanteonNL/querykit/query"
)

// Source loads every entity of one type. includes names related entities
// to load eagerly; sources without relations ignore it.
type Source[T any] interface {
	Load(ctx context.Context, includes []string) ([]T, error)
}

// Sequence exposes src as a lazy query sequence.
func Sequence[T any](src Source[T]) query.Sequence[T] {
	return query.FromLoader(src.Load)
}
