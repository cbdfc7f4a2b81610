package filter

import (
	"reflect"
	"strings"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/scalar"
	"github.com/SanteonNL/querykit/query/types"
)

// allValue as a boolean filter value selects both true and false.
const allValue = "ALL"

func buildBoolean(orig property.Accessor, f types.FilterRequest) (property.Matcher, error) {
	if f.FilterType == types.All || strings.EqualFold(strings.TrimSpace(f.FilterValue), allValue) {
		return nil, nil
	}
	cmp, ok := booleanOps[f.FilterType]
	if !ok {
		return nil, &query.UnsupportedOperatorError{Operator: string(f.FilterType), Family: KindBoolean.String()}
	}
	acc := property.Unwrap(orig)
	want, err := scalar.Parse(acc.Type, f.FilterValue)
	if err != nil {
		return nil, err
	}
	return property.Guard(orig, func(root reflect.Value) bool {
		v, ok := acc.Get(root)
		return ok && cmp(scalar.Compare(v, want))
	}), nil
}
