// Package pagination materializes one page of a filtered, sorted sequence.
package pagination

import (
	"context"
	"fmt"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/types"
)

// Paginate counts seq and materializes page pageNumber (1-based) of
// pageSize items. A pageNumber below 1 is treated as 1. A pageSize <= 0
// returns every item on a single page. Pages past the last one are empty
// but keep TotalItems and TotalPages.
func Paginate[T any](ctx context.Context, seq query.Sequence[T], pageNumber, pageSize int) (types.Page[T], error) {
	if pageNumber < 1 {
		pageNumber = 1
	}

	total, err := seq.Count(ctx)
	if err != nil {
		return types.Page[T]{}, fmt.Errorf("failed to count items: %w", err)
	}

	if pageSize <= 0 {
		return allOnOnePage(ctx, seq, pageNumber, total)
	}

	page := types.Page[T]{
		TotalItems: total,
		Number:     pageNumber,
		Size:       pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	if pageNumber > page.TotalPages {
		page.Data = []T{}
		return page, nil
	}

	page.Data, err = seq.Skip((pageNumber - 1) * pageSize).Take(pageSize).List(ctx)
	if err != nil {
		return types.Page[T]{}, fmt.Errorf("failed to read page %d: %w", pageNumber, err)
	}
	return page, nil
}

func allOnOnePage[T any](ctx context.Context, seq query.Sequence[T], pageNumber, total int) (types.Page[T], error) {
	page := types.Page[T]{TotalItems: total, Number: pageNumber, Size: total, Data: []T{}}
	if total > 0 {
		page.TotalPages = 1
	}
	if pageNumber > page.TotalPages {
		return page, nil
	}
	data, err := seq.List(ctx)
	if err != nil {
		return types.Page[T]{}, fmt.Errorf("failed to read page %d: %w", pageNumber, err)
	}
	page.Data = data
	return page, nil
}

// FromRequest pages seq with the paging of req.
func FromRequest[T any](ctx context.Context, seq query.Sequence[T], req types.PagedRequest) (types.Page[T], error) {
	return Paginate(ctx, seq, req.PageNumber, req.PageSize)
}
