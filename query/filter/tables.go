package filter

import (
	"strings"

	"github.com/SanteonNL/querykit/query/types"
)

// comparison interprets the result of scalar.Compare(member, constant).
type comparison func(c int) bool

var (
	eq  comparison = func(c int) bool { return c == 0 }
	ne  comparison = func(c int) bool { return c != 0 }
	gt  comparison = func(c int) bool { return c > 0 }
	lt  comparison = func(c int) bool { return c < 0 }
	gte comparison = func(c int) bool { return c >= 0 }
	lte comparison = func(c int) bool { return c <= 0 }
)

var numericOps = map[types.FilterType]comparison{
	types.Equals:             eq,
	types.NotEqualTo:         ne,
	types.GreaterThan:        gt,
	types.LessThan:           lt,
	types.GreaterThanOrEqual: gte,
	types.LessThanOrEqual:    lte,
}

var dateOps = map[types.FilterType]comparison{
	types.Equals:             eq,
	types.NotEqualTo:         ne,
	types.GreaterThan:        gt,
	types.LessThan:           lt,
	types.GreaterThanOrEqual: gte,
	types.LessThanOrEqual:    lte,
}

var enumOps = map[types.FilterType]comparison{
	types.Equals:     eq,
	types.NotEqualTo: ne,
}

var booleanOps = map[types.FilterType]comparison{
	types.Equals:     eq,
	types.NotEqualTo: ne,
}

var stringOps = map[types.FilterType]func(s, substr string) bool{
	types.Contains:   strings.Contains,
	types.StartsWith: strings.HasPrefix,
	types.EndsWith:   strings.HasSuffix,
}
