package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterType(t *testing.T) {
	ft, err := ParseFilterType(" between_exclusive ")
	require.NoError(t, err)
	require.Equal(t, BetweenExclusive, ft)

	_, err = ParseFilterType("LIKE")
	require.Error(t, err)
}

func TestPagedRequestJSON(t *testing.T) {
	body := `{
		"pageNumber": 2,
		"pageSize": 10,
		"sortList": [{"field": "lastName", "direction": "DESC"}, {"field": "firstName"}],
		"filterList": [
			{"field": "age", "filterType": "between", "filterValue": "25,35"},
			{"field": "id", "filterType": "IN", "filterValues": ["1", "3"]}
		]
	}`
	var req PagedRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.Equal(t, 2, req.PageNumber)
	require.Equal(t, 10, req.PageSize)
	require.Len(t, req.SortList, 2)
	assert.True(t, req.SortList[0].Descending())
	assert.False(t, req.SortList[1].Descending())
	require.Equal(t, Between, req.FilterList[0].FilterType)
	require.Equal(t, []string{"1", "3"}, req.FilterList[1].Candidates())
}

func TestPagedRequestJSONRejectsUnknownOperator(t *testing.T) {
	var req PagedRequest
	err := json.Unmarshal([]byte(`{"filterList":[{"field":"age","filterType":"ABOUT"}]}`), &req)
	require.Error(t, err)

	err = json.Unmarshal([]byte(`{"sortList":[{"field":"age","direction":"sideways"}]}`), &req)
	require.Error(t, err)
}

func TestCandidates(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, FilterRequest{FilterValue: "a, b ,c"}.Candidates())
	require.Nil(t, FilterRequest{}.Candidates())
}

func TestBounds(t *testing.T) {
	lo, hi, n, ok := FilterRequest{FilterValue: " 25 , 35"}.Bounds()
	require.True(t, ok)
	require.Equal(t, 2, n)
	require.Equal(t, "25", lo)
	require.Equal(t, "35", hi)

	lo, hi, _, ok = FilterRequest{FilterValues: []string{"1", "9"}}.Bounds()
	require.True(t, ok)
	require.Equal(t, "1", lo)
	require.Equal(t, "9", hi)

	_, _, n, ok = FilterRequest{FilterValue: "1,2,3"}.Bounds()
	require.False(t, ok)
	require.Equal(t, 3, n)

	_, _, n, ok = FilterRequest{FilterValue: "7"}.Bounds()
	require.False(t, ok)
	require.Equal(t, 1, n)

	_, _, n, ok = FilterRequest{FilterValue: "25,"}.Bounds()
	require.False(t, ok)
	require.Equal(t, 1, n)

	_, _, n, ok = FilterRequest{FilterValues: []string{" ", "9"}}.Bounds()
	require.False(t, ok)
	require.Equal(t, 1, n)
}

func TestPageNavigation(t *testing.T) {
	p := Page[int]{Number: 1, TotalPages: 2}
	require.True(t, p.HasNext())
	require.False(t, p.HasPrevious())

	p.Number = 2
	require.False(t, p.HasNext())
	require.True(t, p.HasPrevious())
}
