package filter

import (
	"reflect"
	"time"

	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/types"
)

// Dates compare by calendar day, not by instant.
func buildDate(orig property.Accessor, f types.FilterRequest) (property.Matcher, error) {
	return buildOrdered(orig, f, KindDate, dateOps, dayOf)
}

// dayOf keeps the calendar day of a time as seen in its own location.
func dayOf(v reflect.Value) reflect.Value {
	t := v.Interface().(time.Time)
	y, m, d := t.Date()
	return reflect.ValueOf(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
