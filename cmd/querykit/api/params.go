package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/SanteonNL/querykit/cmd/querykit/page"
	"github.com/SanteonNL/querykit/query/types"
)

const (
	paramPage   = "page"
	paramSize   = "size"
	paramSort   = "sort"
	paramFilter = "filter"

	// inSeparator splits the candidates of an IN filter in a query string.
	inSeparator = "|"
)

// ParseQuery reads a search from URL query parameters:
//
//	page=2&size=10&sort=lastName:asc,age:desc&filter=age:BETWEEN:20,30&filter=lastName:IN:Smith|Jones
//
// Malformed parameters are left out of the request and reported as issues.
// Unknown parameters are ignored.
func ParseQuery(q url.Values) (types.PagedRequest, []page.Issue) {
	var (
		req    types.PagedRequest
		issues []page.Issue
	)

	parseInt := func(name string) int {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			issues = append(issues, page.NewInvalidParameterIssue(name,
				fmt.Sprintf("Parameter '%s' must be a whole number, got '%s'", name, raw)))
			return 0
		}
		return n
	}
	req.PageNumber = parseInt(paramPage)
	req.PageSize = parseInt(paramSize)

	for _, value := range q[paramSort] {
		for _, clause := range strings.Split(value, ",") {
			if strings.TrimSpace(clause) == "" {
				continue
			}
			sort, err := parseSort(clause)
			if err != nil {
				issues = append(issues, page.NewInvalidParameterIssue(paramSort, err.Error()))
				continue
			}
			req.SortList = append(req.SortList, sort)
		}
	}

	for _, value := range q[paramFilter] {
		f, err := parseFilter(value)
		if err != nil {
			issues = append(issues, page.NewInvalidParameterIssue(paramFilter, err.Error()))
			continue
		}
		req.FilterList = append(req.FilterList, f)
	}

	return req, issues
}

func parseSort(clause string) (types.SortRequest, error) {
	field, dir, _ := strings.Cut(clause, ":")
	field = strings.TrimSpace(field)
	if field == "" {
		return types.SortRequest{}, fmt.Errorf("sort clause '%s' has no field", clause)
	}
	d, err := types.ParseDirection(dir)
	if err != nil {
		return types.SortRequest{}, fmt.Errorf("sort clause '%s': %w", clause, err)
	}
	return types.SortRequest{Field: field, Direction: d}, nil
}

// parseFilter reads field:OPERATOR[:value]. The value may itself contain
// colons, as in times of day.
func parseFilter(value string) (types.FilterRequest, error) {
	parts := strings.SplitN(value, ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return types.FilterRequest{}, fmt.Errorf("filter '%s' must look like field:OPERATOR:value", value)
	}
	op, err := types.ParseFilterType(parts[1])
	if err != nil {
		return types.FilterRequest{}, fmt.Errorf("filter '%s': %w", value, err)
	}

	f := types.FilterRequest{Field: strings.TrimSpace(parts[0]), FilterType: op}
	if len(parts) == 3 {
		f.FilterValue = parts[2]
	}
	if op == types.In && f.FilterValue != "" {
		f.FilterValues = strings.Split(f.FilterValue, inSeparator)
	}
	return f, nil
}
