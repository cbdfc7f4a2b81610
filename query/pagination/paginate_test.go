package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/types"
)

func TestPaginate(t *testing.T) {
	seq := query.FromSlice([]int{1, 2, 3})

	tests := []struct {
		name       string
		number     int
		size       int
		wantData   []int
		wantNumber int
		wantSize   int
		wantPages  int
	}{
		{"first page", 1, 2, []int{1, 2}, 1, 2, 2},
		{"last partial page", 2, 2, []int{3}, 2, 2, 2},
		{"past the last page", 5, 2, []int{}, 5, 2, 2},
		{"number below one", 0, 2, []int{1, 2}, 1, 2, 2},
		{"exact fit", 1, 3, []int{1, 2, 3}, 1, 3, 1},
		{"zero size puts all on one page", 1, 0, []int{1, 2, 3}, 1, 3, 1},
		{"negative size", 1, -4, []int{1, 2, 3}, 1, 3, 1},
		{"zero size second page", 2, 0, []int{}, 2, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Paginate(context.Background(), seq, tt.number, tt.size)
			require.NoError(t, err)
			require.Equal(t, tt.wantData, page.Data)
			require.Equal(t, 3, page.TotalItems)
			require.Equal(t, tt.wantNumber, page.Number)
			require.Equal(t, tt.wantSize, page.Size)
			require.Equal(t, tt.wantPages, page.TotalPages)
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	for _, size := range []int{0, 10} {
		page, err := Paginate(context.Background(), query.Empty[string](), 1, size)
		require.NoError(t, err)
		require.NotNil(t, page.Data)
		require.Empty(t, page.Data)
		require.Zero(t, page.TotalItems)
		require.Zero(t, page.TotalPages)
		require.False(t, page.HasNext())
	}
}

func TestFromRequest(t *testing.T) {
	seq := query.FromSlice([]string{"a", "b", "c"})

	page, err := FromRequest(context.Background(), seq, types.PagedRequest{PageNumber: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, 2, page.TotalPages)
	require.True(t, page.HasNext())

	page, err = FromRequest(context.Background(), seq, types.PagedRequest{PageNumber: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.True(t, page.HasPrevious())
}

func TestPaginateWrapsSourceErrors(t *testing.T) {
	errDown := errors.New("source down")
	seq := query.FromLoader(func(context.Context, []string) ([]int, error) { return nil, errDown })

	_, err := Paginate(context.Background(), seq, 1, 10)
	require.ErrorIs(t, err, errDown)
	require.ErrorContains(t, err, "failed to count items")
}
