// Package filter compiles FilterRequest clauses into null-safe predicates
// over any struct type. Each scalar family (string, numeric, date, boolean,
// enum) has its own strategy; a registry keyed by Kind picks one from the
// member's type.
package filter

import (
	"reflect"

	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/scalar"
	"github.com/SanteonNL/querykit/query/types"
)

// Kind is a scalar family with its own filter strategy.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumeric
	KindDate
	KindBoolean
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	case KindBoolean:
		return "boolean"
	case KindEnum:
		return "enum"
	}
	return "unknown"
}

// Enum is implemented, with a value receiver, by named types whose values
// form a closed set of named constants.
type Enum interface {
	// EnumValue returns the constant called name, or false when there is none.
	EnumValue(name string) (any, bool)
}

var enumType = reflect.TypeOf((*Enum)(nil)).Elem()

func isEnum(t reflect.Type) bool {
	return t.Implements(enumType)
}

// Classify returns the scalar family of t, looking through pointers.
func Classify(t reflect.Type) (Kind, bool) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch {
	case isEnum(t):
		return KindEnum, true
	case t == scalar.TimeType:
		return KindDate, true
	case t == scalar.DecimalType:
		return KindNumeric, true
	}
	switch t.Kind() {
	case reflect.String:
		return KindString, true
	case reflect.Bool:
		return KindBoolean, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumeric, true
	}
	return 0, false
}

// Strategy builds the predicate fragment of one clause. A nil Matcher with a
// nil error means the clause needs no predicate.
type Strategy interface {
	Build(root reflect.Type, f types.FilterRequest, mapper property.FieldMapper) (property.Matcher, error)
}

type buildFunc func(orig property.Accessor, f types.FilterRequest) (property.Matcher, error)

func (fn buildFunc) Build(root reflect.Type, f types.FilterRequest, mapper property.FieldMapper) (property.Matcher, error) {
	if f.FilterType == types.All {
		return nil, nil
	}
	return fn(property.Resolve(root, f.Field, mapper), f)
}

var (
	StringFilter  Strategy = buildFunc(buildString)
	NumericFilter Strategy = buildFunc(buildNumeric)
	DateFilter    Strategy = buildFunc(buildDate)
	BooleanFilter Strategy = buildFunc(buildBoolean)
	EnumFilter    Strategy = buildFunc(buildEnum)
)

var registry = map[Kind]buildFunc{}

func init() {
	registry[KindString] = buildString
	registry[KindNumeric] = buildNumeric
	registry[KindDate] = buildDate
	registry[KindBoolean] = buildBoolean
	registry[KindEnum] = buildEnum
}

// StrategyFor returns the strategy registered for k.
func StrategyFor(k Kind) (Strategy, bool) {
	fn, ok := registry[k]
	if !ok {
		return nil, false
	}
	return fn, true
}

// Build resolves the clause's field on root and compiles it with the
// strategy of the member's scalar family. A member whose type has no family
// panics with *query.ConfigurationError.
func Build(root reflect.Type, f types.FilterRequest, mapper property.FieldMapper) (property.Matcher, error) {
	return buildFunc(dispatch).Build(root, f, mapper)
}

func dispatch(orig property.Accessor, f types.FilterRequest) (property.Matcher, error) {
	kind, ok := Classify(orig.Type)
	if !ok {
		query.Misconfigured(f.Field, "member %s of type %s cannot be filtered", orig.Path, orig.Type)
	}
	return registry[kind](orig, f)
}
