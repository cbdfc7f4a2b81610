package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Direction is the order of a sort clause.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts asc/desc and their long forms, ignoring case. The
// empty string is ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SortRequest is one sort clause. A list of them is applied left to right,
// later clauses breaking ties of earlier ones.
type SortRequest struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

func (s SortRequest) Descending() bool {
	return s.Direction == Descending
}

// PagedRequest is the upstream shape of a filtered, sorted, paged query.
type PagedRequest struct {
	PageNumber int             `json:"pageNumber"`
	PageSize   int             `json:"pageSize"`
	SortList   []SortRequest   `json:"sortList,omitempty"`
	FilterList []FilterRequest `json:"filterList,omitempty"`
}

// Page is one materialized slice of a filtered, sorted sequence.
type Page[T any] struct {
	Data       []T `json:"data"`
	TotalItems int `json:"totalItems"`
	Number     int `json:"number"`
	Size       int `json:"size"`
	TotalPages int `json:"totalPages"`
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}
