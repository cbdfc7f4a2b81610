// Package property resolves wire field names to struct members and gives
// null-safe access to them.
package property

import (
	"reflect"
	"strings"

	"github.com/gobeam/stringy"

	"github.com/SanteonNL/querykit/query"
)

// FieldMapper turns a wire field name into the Go member path it targets.
// Dotted results ("Team.Name") walk into nested structs.
type FieldMapper func(field string) string

// Matcher evaluates a condition against the reflected root entity.
type Matcher func(root reflect.Value) bool

// Accessor reads one member, possibly nested, from a root entity.
type Accessor struct {
	Path  string
	Type  reflect.Type
	index [][]int
	deref bool
}

// DefaultName applies the wire convention: the first letter is upper-cased,
// so "firstName" targets FirstName.
func DefaultName(field string) string {
	return stringy.New(field).UcFirst()
}

// Resolve maps field to a member of root (a struct or pointer to struct).
// A blank field, a blank mapped name, or a name that matches no exported
// member panics with *query.ConfigurationError.
func Resolve(root reflect.Type, field string, mapper FieldMapper) Accessor {
	field = strings.TrimSpace(field)
	if field == "" {
		query.Misconfigured("", "field name is blank")
	}

	var segments []string
	if mapper != nil {
		mapped := strings.TrimSpace(mapper(field))
		if mapped == "" {
			query.Misconfigured(field, "field mapper returned an empty member name")
		}
		segments = strings.Split(mapped, ".")
	} else {
		for _, seg := range strings.Split(field, ".") {
			segments = append(segments, DefaultName(seg))
		}
	}

	cur := indirect(root)
	acc := Accessor{}
	names := make([]string, 0, len(segments))
	for i, name := range segments {
		if cur.Kind() != reflect.Struct {
			query.Misconfigured(field, "%s is not a struct", cur)
		}
		if name == "" {
			query.Misconfigured(field, "empty path segment")
		}
		sf, ok := lookupMember(cur, name)
		if !ok {
			query.Misconfigured(field, "%s has no exported member %s", cur, name)
		}
		names = append(names, sf.Name)
		acc.index = append(acc.index, sf.Index)
		acc.Type = sf.Type
		if i < len(segments)-1 {
			cur = indirect(sf.Type)
		}
	}
	acc.Path = strings.Join(names, ".")
	return acc
}

// lookupMember finds the exported member called name, falling back to a
// case-insensitive match so "id" reaches ID. An ambiguous fallback fails.
func lookupMember(t reflect.Type, name string) (reflect.StructField, bool) {
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return sf, true
	}
	sf, ok := t.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
	if !ok || !sf.IsExported() {
		return reflect.StructField{}, false
	}
	return sf, true
}

// Get reads the member from root. ok is false when root or any pointer on
// the way to the member is nil.
func (a Accessor) Get(root reflect.Value) (reflect.Value, bool) {
	cur := root
	for _, idx := range a.index {
		for cur.Kind() == reflect.Ptr || cur.Kind() == reflect.Interface {
			if cur.IsNil() {
				return reflect.Value{}, false
			}
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return reflect.Value{}, false
		}
		next, err := cur.FieldByIndexErr(idx)
		if err != nil {
			return reflect.Value{}, false
		}
		cur = next
	}
	if a.deref {
		if cur.IsNil() {
			return reflect.Value{}, false
		}
		cur = cur.Elem()
	}
	return cur, true
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
