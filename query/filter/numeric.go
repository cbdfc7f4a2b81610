package filter

import (
	"reflect"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/scalar"
	"github.com/SanteonNL/querykit/query/types"
)

func buildNumeric(orig property.Accessor, f types.FilterRequest) (property.Matcher, error) {
	return buildOrdered(orig, f, KindNumeric, numericOps, nil)
}

// buildOrdered compiles IN, BETWEEN, BETWEEN_EXCLUSIVE and the comparison
// table for any ordered scalar. norm, when set, is applied to the member and
// to every constant before they are compared.
func buildOrdered(orig property.Accessor, f types.FilterRequest, kind Kind, ops map[types.FilterType]comparison, norm func(reflect.Value) reflect.Value) (property.Matcher, error) {
	if norm == nil {
		norm = func(v reflect.Value) reflect.Value { return v }
	}
	acc := property.Unwrap(orig)
	read := func(root reflect.Value) (reflect.Value, bool) {
		v, ok := acc.Get(root)
		if !ok {
			return reflect.Value{}, false
		}
		return norm(v), true
	}

	switch f.FilterType {
	case types.In:
		list, err := scalar.ParseList(acc.Type, f.Candidates())
		if err != nil {
			return nil, err
		}
		for i := 0; i < list.Len(); i++ {
			list.Index(i).Set(norm(list.Index(i)))
		}
		return property.Guard(orig, func(root reflect.Value) bool {
			v, ok := read(root)
			return ok && scalar.Contains(list, v)
		}), nil

	case types.Between, types.BetweenExclusive:
		rawLo, rawHi, n, ok := f.Bounds()
		if !ok {
			return nil, &query.MalformedRangeError{Value: f.FilterValue, Parts: n}
		}
		lo, err := scalar.Parse(acc.Type, rawLo)
		if err != nil {
			return nil, err
		}
		hi, err := scalar.Parse(acc.Type, rawHi)
		if err != nil {
			return nil, err
		}
		lo, hi = norm(lo), norm(hi)
		exclusive := f.FilterType == types.BetweenExclusive
		return property.Guard(orig, func(root reflect.Value) bool {
			v, ok := read(root)
			if !ok {
				return false
			}
			above, below := scalar.Compare(v, lo), scalar.Compare(v, hi)
			if exclusive {
				return above > 0 && below < 0
			}
			return above >= 0 && below <= 0
		}), nil
	}

	cmp, ok := ops[f.FilterType]
	if !ok {
		return nil, &query.UnsupportedOperatorError{Operator: string(f.FilterType), Family: kind.String()}
	}
	want, err := scalar.Parse(acc.Type, f.FilterValue)
	if err != nil {
		return nil, err
	}
	want = norm(want)
	return property.Guard(orig, func(root reflect.Value) bool {
		v, ok := read(root)
		return ok && cmp(scalar.Compare(v, want))
	}), nil
}
