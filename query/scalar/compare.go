package scalar

import (
	"reflect"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

// Compare orders two values of the same scalar type. Values of a kind it
// does not know compare equal.
func Compare(a, b reflect.Value) int {
	switch a.Type() {
	case DecimalType:
		return a.Interface().(decimal.Decimal).Cmp(b.Interface().(decimal.Decimal))
	case TimeType:
		return a.Interface().(time.Time).Compare(b.Interface().(time.Time))
	}

	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ordered(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ordered(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return ordered(a.Float(), b.Float())
	case reflect.String:
		return ordered(a.String(), b.String())
	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0
		case b.Bool():
			return -1
		default:
			return 1
		}
	}
	return 0
}

func ordered[V constraints.Ordered](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
