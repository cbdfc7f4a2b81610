package filter

import (
	"reflect"
	"strings"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/scalar"
	"github.com/SanteonNL/querykit/query/types"
)

func buildEnum(orig property.Accessor, f types.FilterRequest) (property.Matcher, error) {
	cmp, ok := enumOps[f.FilterType]
	if !ok {
		return nil, &query.UnsupportedOperatorError{Operator: string(f.FilterType), Family: KindEnum.String()}
	}
	acc := property.Unwrap(orig)
	want, err := parseEnum(acc.Type, f.FilterValue)
	if err != nil {
		return nil, err
	}
	return property.Guard(orig, func(root reflect.Value) bool {
		v, ok := acc.Get(root)
		return ok && cmp(scalar.Compare(v, want))
	}), nil
}

func parseEnum(t reflect.Type, name string) (reflect.Value, error) {
	e, ok := reflect.Zero(t).Interface().(Enum)
	if !ok {
		return reflect.Value{}, &query.ParseError{Value: name, Type: t.String()}
	}
	v, ok := e.EnumValue(strings.TrimSpace(name))
	if !ok || v == nil {
		return reflect.Value{}, &query.ParseError{Value: name, Type: t.String()}
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != t {
		if !rv.Type().ConvertibleTo(t) {
			return reflect.Value{}, &query.ParseError{Value: name, Type: t.String()}
		}
		rv = rv.Convert(t)
	}
	return rv, nil
}
