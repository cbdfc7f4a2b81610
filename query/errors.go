package query

import (
	"errors"
	"fmt"
)

// ParseError reports a raw filter value that does not convert to the
// member's scalar type.
type ParseError struct {
	Value string
	Type  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("value %q is not a valid %s", e.Value, e.Type)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedOperatorError reports an operator that is not valid for the
// resolved scalar family, e.g. CONTAINS on a number.
type UnsupportedOperatorError struct {
	Operator string
	Family   string
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Family == "" {
		return fmt.Sprintf("operator %s is not supported", e.Operator)
	}
	return fmt.Sprintf("operator %s is not supported for %s fields", e.Operator, e.Family)
}

// MalformedRangeError reports a BETWEEN value that does not split into
// exactly two non-blank parts.
type MalformedRangeError struct {
	Value string
	Parts int
}

func (e *MalformedRangeError) Error() string {
	return fmt.Sprintf("range %q must have exactly two values, got %d", e.Value, e.Parts)
}

// ConfigurationError signals a programming or schema mismatch, such as a
// blank or unknown field name. It is raised with panic.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Msg
	}
	return fmt.Sprintf("configuration error: field %q: %s", e.Field, e.Msg)
}

// ClauseError ties a failure to the filter clause that produced it.
type ClauseError struct {
	Field      string
	FilterType string
	Err        error
}

func (e *ClauseError) Error() string {
	return fmt.Sprintf("filter %s %s: %v", e.Field, e.FilterType, e.Err)
}

func (e *ClauseError) Unwrap() error { return e.Err }

func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

func IsUnsupportedOperator(err error) bool {
	var target *UnsupportedOperatorError
	return errors.As(err, &target)
}

func IsMalformedRange(err error) bool {
	var target *MalformedRangeError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// Reason names the failure family of err for logs and metrics.
func Reason(err error) string {
	switch {
	case IsParse(err):
		return "parse"
	case IsUnsupportedOperator(err):
		return "unsupported_operator"
	case IsMalformedRange(err):
		return "malformed_range"
	case IsConfiguration(err):
		return "configuration"
	default:
		return "unknown"
	}
}

// Misconfigured panics with a ConfigurationError.
func Misconfigured(field, format string, args ...any) {
	panic(&ConfigurationError{Field: field, Msg: fmt.Sprintf(format, args...)})
}
