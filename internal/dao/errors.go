package dao

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes DAO failures.
type ErrorCode string

const (
	// ErrCodeTransactionRequired indicates a lock mode used outside a unit
	// of work.
	ErrCodeTransactionRequired ErrorCode = "TRANSACTION_REQUIRED"

	// ErrCodeUnknownQueryType indicates a query variant the operation does
	// not accept, such as a native query where entities are expected.
	ErrCodeUnknownQueryType ErrorCode = "UNKNOWN_QUERY_TYPE"

	// ErrCodeOptimisticLock indicates an optimistically read row changed
	// before the unit of work committed.
	ErrCodeOptimisticLock ErrorCode = "OPTIMISTIC_LOCK"

	// ErrCodeStaleEntity indicates an update that matched no row at the
	// expected version.
	ErrCodeStaleEntity ErrorCode = "STALE_ENTITY"

	// ErrCodeNonUniqueResult indicates a single-result read that matched
	// more than one row.
	ErrCodeNonUniqueResult ErrorCode = "NON_UNIQUE_RESULT"

	// ErrCodeNotVersioned indicates an optimistic lock on an entity without
	// a version attribute.
	ErrCodeNotVersioned ErrorCode = "NOT_VERSIONED"

	// ErrCodeUnknownEntity indicates an entity name absent from the catalog.
	ErrCodeUnknownEntity ErrorCode = "UNKNOWN_ENTITY"
)

// Error is a DAO failure.
type Error struct {
	Code    ErrorCode
	Message string

	// Entity names the catalog entity involved, if any.
	Entity string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s (entity=%s)", e.Code, e.Message, e.Entity)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errorf(code ErrorCode, entity, format string, args ...any) *Error {
	return &Error{Code: code, Entity: entity, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is, or wraps, an Error with code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
