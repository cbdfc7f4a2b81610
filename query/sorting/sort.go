// Package sorting applies an ordered list of sort requests to a sequence.
package sorting

import (
	"reflect"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/scalar"
	"github.com/SanteonNL/querykit/query/types"
)

// CustomKey lets a caller supply the comparer for fields that are not plain
// members, such as computed values. Returning false falls back to ordering
// by the member itself.
type CustomKey[T any] func(field string) (query.Comparer[T], bool)

// Apply orders seq by sorts: the first request sets the primary order and
// each following one breaks the remaining ties.
func Apply[T any](seq query.Sequence[T], sorts []types.SortRequest, mapper property.FieldMapper, custom CustomKey[T]) query.Sequence[T] {
	for i, s := range sorts {
		key := keyFor(s.Field, mapper, custom)
		switch {
		case i == 0 && s.Descending():
			seq = seq.OrderByDescending(key)
		case i == 0:
			seq = seq.OrderBy(key)
		case s.Descending():
			seq = seq.ThenByDescending(key)
		default:
			seq = seq.ThenBy(key)
		}
	}
	return seq
}

func keyFor[T any](field string, mapper property.FieldMapper, custom CustomKey[T]) query.Comparer[T] {
	if custom != nil {
		if cmp, ok := custom(field); ok {
			if cmp == nil {
				query.Misconfigured(field, "custom sort key selector returned no comparer")
			}
			return cmp
		}
	}
	return ByField[T](field, mapper)
}

// ByField orders by the member field resolves to. Absent values sort before
// present ones.
func ByField[T any](field string, mapper property.FieldMapper) query.Comparer[T] {
	root := reflect.TypeOf((*T)(nil)).Elem()
	acc := property.Resolve(root, field, mapper)
	if !scalar.Supported(acc.Type) {
		query.Misconfigured(field, "member %s of type %s is not orderable", acc.Path, acc.Type)
	}
	inner := property.Unwrap(acc)
	return func(a, b T) int {
		va, okA := inner.Get(reflect.ValueOf(a))
		vb, okB := inner.Get(reflect.ValueOf(b))
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return -1
		case !okB:
			return 1
		}
		return scalar.Compare(va, vb)
	}
}
