package querysql

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes SQL translation errors.
type ErrorCode string

const (
	// ErrCodeUnmappedAttribute indicates an attribute path the root entity
	// does not map to a column.
	ErrCodeUnmappedAttribute ErrorCode = "UNMAPPED_ATTRIBUTE"

	// ErrCodeMissingParameter indicates a :KEY placeholder with no bound
	// parameter.
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"

	// ErrCodeUnknownQuery indicates a named query absent from the catalog.
	ErrCodeUnknownQuery ErrorCode = "UNKNOWN_QUERY"

	// ErrCodeEntityMismatch indicates a named query registered for another
	// entity than the one it is run for.
	ErrCodeEntityMismatch ErrorCode = "ENTITY_MISMATCH"
)

// Error is a translation failure.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is, or wraps, an Error with code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
