package property

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SanteonNL/querykit/query"
)

type owner struct {
	Name string
}

type account struct {
	ID       int64
	FullName string
	Nickname *string
	Owner    *owner
	secret   string
}

var accountType = reflect.TypeOf(account{})

func requireConfigPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, query.IsConfiguration(err), "got %v", err)
	}()
	fn()
}

func TestDefaultName(t *testing.T) {
	require.Equal(t, "FullName", DefaultName("fullName"))
	require.Equal(t, "ID", DefaultName("ID"))
	require.Equal(t, "Id", DefaultName("id"))
}

func TestResolveDefaultConvention(t *testing.T) {
	acc := Resolve(accountType, "fullName", nil)
	require.Equal(t, "FullName", acc.Path)
	require.Equal(t, reflect.TypeOf(""), acc.Type)

	v, ok := acc.Get(reflect.ValueOf(account{FullName: "Alice"}))
	require.True(t, ok)
	require.Equal(t, "Alice", v.String())
}

func TestResolvePointerRoot(t *testing.T) {
	acc := Resolve(reflect.TypeOf(&account{}), "  fullName ", nil)

	v, ok := acc.Get(reflect.ValueOf(&account{FullName: "Bob"}))
	require.True(t, ok)
	require.Equal(t, "Bob", v.String())

	_, ok = acc.Get(reflect.ValueOf((*account)(nil)))
	require.False(t, ok)
}

func TestResolveWithMapper(t *testing.T) {
	mapper := func(field string) string {
		if field == "identifier" {
			return "ID"
		}
		return DefaultName(field)
	}
	acc := Resolve(accountType, "identifier", mapper)
	v, ok := acc.Get(reflect.ValueOf(account{ID: 7}))
	require.True(t, ok)
	require.Equal(t, int64(7), v.Int())
}

func TestResolveNested(t *testing.T) {
	acc := Resolve(accountType, "owner.name", nil)
	require.Equal(t, "Owner.Name", acc.Path)

	v, ok := acc.Get(reflect.ValueOf(account{Owner: &owner{Name: "Carol"}}))
	require.True(t, ok)
	require.Equal(t, "Carol", v.String())

	_, ok = acc.Get(reflect.ValueOf(account{}))
	require.False(t, ok, "nil intermediate pointer means absent")
}

func TestResolveIgnoresCaseAsFallback(t *testing.T) {
	acc := Resolve(accountType, "id", nil)
	require.Equal(t, "ID", acc.Path)

	v, ok := acc.Get(reflect.ValueOf(account{ID: 7}))
	require.True(t, ok)
	require.Equal(t, int64(7), v.Int())

	require.Equal(t, "Owner.Name", Resolve(accountType, "OWNER.NAME", nil).Path)
}

func TestResolveConfigurationErrors(t *testing.T) {
	cases := map[string]func(){
		"blank":           func() { Resolve(accountType, "", nil) },
		"whitespace":      func() { Resolve(accountType, "   ", nil) },
		"unknown":         func() { Resolve(accountType, "missing", nil) },
		"unexported":      func() { Resolve(accountType, "secret", strings.ToLower) },
		"empty mapping":   func() { Resolve(accountType, "fullName", func(string) string { return "" }) },
		"empty segment":   func() { Resolve(accountType, "owner..name", nil) },
		"through scalar":  func() { Resolve(accountType, "fullName.length", nil) },
		"not a struct":    func() { Resolve(reflect.TypeOf(0), "x", nil) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			requireConfigPanic(t, fn)
		})
	}
}

func TestUnwrapAndGuard(t *testing.T) {
	orig := Resolve(accountType, "nickname", nil)
	require.True(t, IsNullable(orig))

	inner := Unwrap(orig)
	require.False(t, IsNullable(inner))
	require.Equal(t, reflect.TypeOf(""), inner.Type)

	nick := "ally"
	v, ok := inner.Get(reflect.ValueOf(account{Nickname: &nick}))
	require.True(t, ok)
	require.Equal(t, "ally", v.String())

	_, ok = inner.Get(reflect.ValueOf(account{}))
	require.False(t, ok)

	called := false
	guarded := Guard(orig, func(reflect.Value) bool {
		called = true
		return true
	})
	require.False(t, guarded(reflect.ValueOf(account{})))
	require.False(t, called, "guarded matcher must not run for an absent value")
	require.True(t, guarded(reflect.ValueOf(account{Nickname: &nick})))
	require.True(t, called)
}

func TestUnwrapNonNullableIsIdentity(t *testing.T) {
	orig := Resolve(accountType, "fullName", nil)
	require.Equal(t, orig, Unwrap(orig))

	m := Matcher(func(reflect.Value) bool { return true })
	require.True(t, Guard(orig, m)(reflect.ValueOf(account{})))
}
