package expr

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes query construction errors.
//
// The codes are shared by the expression model and the pipeline builder so
// callers can match on a single taxonomy regardless of which layer rejected
// the input.
type ErrorCode string

const (
	// ErrCodeUnsupportedLiteralType indicates a Go value that has no KQL
	// literal form (structs, maps, times, out-of-range unsigned values).
	ErrCodeUnsupportedLiteralType ErrorCode = "UNSUPPORTED_LITERAL_TYPE"

	// ErrCodeInvalidOperand indicates an operand that is neither an
	// expression nor a literal, or an expression used where its kind is not
	// allowed (an alias outside a binding context, say).
	ErrCodeInvalidOperand ErrorCode = "INVALID_OPERAND"

	// ErrCodeEmptyProjection indicates a project stage with no columns.
	ErrCodeEmptyProjection ErrorCode = "EMPTY_PROJECTION"

	// ErrCodeEmptyAggregation indicates a summarize stage with neither
	// aggregations nor group-by columns.
	ErrCodeEmptyAggregation ErrorCode = "EMPTY_AGGREGATION"

	// ErrCodeUnsupportedJoinKind indicates a join flavor KQL does not have.
	ErrCodeUnsupportedJoinKind ErrorCode = "UNSUPPORTED_JOIN_KIND"

	// ErrCodeInvalidArgument indicates a bad scalar argument: a negative
	// row count, an empty required list, a malformed name.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error is a query construction error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is (or wraps) an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "" when
// there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
