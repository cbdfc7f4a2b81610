package property

import "reflect"

// IsNullable reports whether the member can be absent.
func IsNullable(a Accessor) bool {
	return !a.deref && a.Type.Kind() == reflect.Ptr
}

// Unwrap returns an accessor to the value behind a nullable member. Reading a
// nil member through it reports absence instead of dereferencing. Non-nullable
// accessors are returned unchanged.
func Unwrap(a Accessor) Accessor {
	if !IsNullable(a) {
		return a
	}
	a.Type = a.Type.Elem()
	a.deref = true
	return a
}

// Guard wraps m, built against the unwrapped value of orig, so that it only
// runs when orig is present. Absent values never match.
func Guard(orig Accessor, m Matcher) Matcher {
	if !IsNullable(orig) {
		return m
	}
	return func(root reflect.Value) bool {
		v, ok := orig.Get(root)
		if !ok || v.IsNil() {
			return false
		}
		return m(root)
	}
}
