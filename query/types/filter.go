package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FilterType is the operator of a filter clause.
type FilterType string

const (
	Equals             FilterType = "EQUALS"
	NotEqualTo         FilterType = "NOT_EQUAL_TO"
	Contains           FilterType = "CONTAINS"
	StartsWith         FilterType = "STARTS_WITH"
	EndsWith           FilterType = "ENDS_WITH"
	GreaterThan        FilterType = "GREATER_THAN"
	LessThan           FilterType = "LESS_THAN"
	GreaterThanOrEqual FilterType = "GREATER_THAN_OR_EQUAL"
	LessThanOrEqual    FilterType = "LESS_THAN_OR_EQUAL"
	Between            FilterType = "BETWEEN"
	BetweenExclusive   FilterType = "BETWEEN_EXCLUSIVE"
	In                 FilterType = "IN"
	// All means "no filter" for this clause.
	All FilterType = "ALL"
)

var filterTypes = map[FilterType]bool{
	Equals: true, NotEqualTo: true, Contains: true, StartsWith: true, EndsWith: true,
	GreaterThan: true, LessThan: true, GreaterThanOrEqual: true, LessThanOrEqual: true,
	Between: true, BetweenExclusive: true, In: true, All: true,
}

// RangeSeparator splits the two endpoints of a BETWEEN value.
const RangeSeparator = ","

// ParseFilterType matches s against the operator vocabulary, ignoring case.
func ParseFilterType(s string) (FilterType, error) {
	ft := FilterType(strings.ToUpper(strings.TrimSpace(s)))
	if !filterTypes[ft] {
		return "", fmt.Errorf("unknown filter type %q", s)
	}
	return ft, nil
}

func (ft *FilterType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFilterType(s)
	if err != nil {
		return err
	}
	*ft = parsed
	return nil
}

// FilterRequest is one predicate clause as it arrives over the wire.
type FilterRequest struct {
	Field        string     `json:"field"`
	FilterType   FilterType `json:"filterType"`
	FilterValue  string     `json:"filterValue"`
	FilterValues []string   `json:"filterValues,omitempty"`
}

// Candidates returns the values of an IN clause: FilterValues when present,
// otherwise FilterValue split on the range separator.
func (f FilterRequest) Candidates() []string {
	if len(f.FilterValues) > 0 {
		return f.FilterValues
	}
	if f.FilterValue == "" {
		return nil
	}
	parts := strings.Split(f.FilterValue, RangeSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Bounds returns the raw endpoints of a BETWEEN clause. ok is false unless
// there are exactly two non-blank parts; n is the number of non-blank parts
// found.
func (f FilterRequest) Bounds() (lo, hi string, n int, ok bool) {
	parts := f.FilterValues
	if len(parts) != 2 {
		parts = strings.Split(f.FilterValue, RangeSeparator)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	if len(parts) != 2 || n != 2 {
		return "", "", n, false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), 2, true
}
