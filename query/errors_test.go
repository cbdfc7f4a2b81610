package query

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorPredicates(t *testing.T) {
	parse := &ClauseError{Field: "age", FilterType: "EQUALS", Err: &ParseError{Value: "x", Type: "int32"}}
	op := fmt.Errorf("wrapped: %w", &UnsupportedOperatorError{Operator: "CONTAINS", Family: "numeric"})
	rng := &MalformedRangeError{Value: "1", Parts: 1}

	require.True(t, IsParse(parse))
	require.False(t, IsParse(op))
	require.True(t, IsUnsupportedOperator(op))
	require.True(t, IsMalformedRange(errors.Join(parse, rng)))

	require.Equal(t, "parse", Reason(parse))
	require.Equal(t, "unsupported_operator", Reason(op))
	require.Equal(t, "malformed_range", Reason(rng))
	require.Equal(t, "unknown", Reason(errors.New("other")))

	require.Equal(t, `filter age EQUALS: value "x" is not a valid int32`, parse.Error())
	require.Equal(t, "operator CONTAINS is not supported for numeric fields", errors.Unwrap(op).Error())
}

func TestMisconfiguredPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, IsConfiguration(err))
		require.Equal(t, `configuration error: field "nme": no member Nme`, err.Error())
	}()
	Misconfigured("nme", "no member %s", "Nme")
}
