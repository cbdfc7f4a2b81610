package filter

import (
	"reflect"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/types"
)

// buildString matches case-insensitively. Enum members go to the enum
// strategy and members that are not strings (ids sent as text) go to the
// strategy of their own family.
func buildString(orig property.Accessor, f types.FilterRequest) (property.Matcher, error) {
	acc := property.Unwrap(orig)
	if isEnum(acc.Type) {
		return buildEnum(orig, f)
	}
	if acc.Type.Kind() != reflect.String {
		return dispatch(orig, f)
	}

	read := func(root reflect.Value) (string, bool) {
		v, ok := acc.Get(root)
		if !ok {
			return "", false
		}
		return v.String(), true
	}

	switch f.FilterType {
	case types.Equals, types.NotEqualTo:
		want := strings.ToLower(f.FilterValue)
		equal := f.FilterType == types.Equals
		return property.Guard(orig, func(root reflect.Value) bool {
			s, ok := read(root)
			return ok && (strings.ToLower(s) == want) == equal
		}), nil
	case types.In:
		candidates := f.Candidates()
		return property.Guard(orig, func(root reflect.Value) bool {
			s, ok := read(root)
			return ok && slices.Contains(candidates, s)
		}), nil
	}

	op, ok := stringOps[f.FilterType]
	if !ok {
		return nil, &query.UnsupportedOperatorError{Operator: string(f.FilterType), Family: KindString.String()}
	}
	want := strings.ToLower(f.FilterValue)
	return property.Guard(orig, func(root reflect.Value) bool {
		s, ok := read(root)
		return ok && op(strings.ToLower(s), want)
	}), nil
}
