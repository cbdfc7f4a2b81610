// Package scalar converts raw filter values into constants of a member's
// exact scalar type and compares such constants.
package scalar

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SanteonNL/querykit/query"
)

var (
	TimeType    = reflect.TypeOf(time.Time{})
	DecimalType = reflect.TypeOf(decimal.Decimal{})

	errUnsupportedType = errors.New("unsupported scalar type")
	errNotANumber      = errors.New("not a number")
)

// DateLayouts are tried in order when parsing a date value.
var DateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01",
	"2006",
}

// Parse converts raw into a value of type t. Pointer types parse into their
// element type. Every integer width and float size has its own exact parser,
// so "300" fails for an int8 member rather than wrapping.
func Parse(t reflect.Type, raw string) (reflect.Value, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	out := reflect.New(t).Elem()
	s := raw
	if t.Kind() != reflect.String {
		s = strings.TrimSpace(raw)
	}

	switch t {
	case DecimalType:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return reflect.Value{}, fail(raw, t, err)
		}
		out.Set(reflect.ValueOf(d))
		return out, nil
	case TimeType:
		tm, err := parseTime(s)
		if err != nil {
			return reflect.Value{}, fail(raw, t, err)
		}
		out.Set(reflect.ValueOf(tm))
		return out, nil
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fail(raw, t, err)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fail(raw, t, err)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, fail(raw, t, err)
		}
		// NaN is unordered and would compare equal to everything.
		if math.IsNaN(f) {
			return reflect.Value{}, fail(raw, t, errNotANumber)
		}
		out.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fail(raw, t, err)
		}
		out.SetBool(b)
	case reflect.String:
		out.SetString(s)
	default:
		return reflect.Value{}, fail(raw, t, errUnsupportedType)
	}
	return out, nil
}

// ParseList parses every raw value into a slice of t. The first failure is
// returned.
func ParseList(t reflect.Type, raws []string) (reflect.Value, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	list := reflect.MakeSlice(reflect.SliceOf(t), 0, len(raws))
	for _, raw := range raws {
		v, err := Parse(t, raw)
		if err != nil {
			return reflect.Value{}, err
		}
		list = reflect.Append(list, v)
	}
	return list, nil
}

// Contains reports whether list holds an element equal to v.
func Contains(list, v reflect.Value) bool {
	for i := 0; i < list.Len(); i++ {
		if Compare(list.Index(i), v) == 0 {
			return true
		}
	}
	return false
}

// Supported reports whether Parse knows how to build values of t.
func Supported(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == TimeType || t == DecimalType {
		return true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
		return true
	}
	return false
}

func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range DateLayouts {
		var tm time.Time
		if tm, err = time.Parse(layout, s); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, err
}

func fail(raw string, t reflect.Type, err error) error {
	return &query.ParseError{Value: raw, Type: typeName(t), Err: err}
}

func typeName(t reflect.Type) string {
	switch t {
	case TimeType:
		return "date"
	case DecimalType:
		return "decimal"
	}
	return t.String()
}
