package interp

import (
	"errors"
	"fmt"

	"github.com/roach88/daoism/internal/spex"
)

// ErrorCode categorizes evaluation errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedNode indicates no function is bound for a node kind.
	// It means a backend mapping is missing and is never retryable.
	ErrCodeUnsupportedNode ErrorCode = "UNSUPPORTED_NODE"

	// ErrCodeOperandMismatch indicates a comparison whose operands are not
	// comparable under the attribute's category.
	ErrCodeOperandMismatch ErrorCode = "OPERAND_MISMATCH"

	// ErrCodeMissingBinding indicates a context binding an evaluation
	// function needs is absent or has the wrong type.
	ErrCodeMissingBinding ErrorCode = "MISSING_BINDING"
)

// Error is an evaluation failure.
type Error struct {
	Code    ErrorCode
	Message string

	// Kind is the node kind being evaluated, if known.
	Kind spex.Kind
}

func (e *Error) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s: %s (kind=%s)", e.Code, e.Message, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds an Error for kind. Backends use it to report operand
// mismatches in the same shape as the interpreter's own errors.
func Errorf(code ErrorCode, kind spex.Kind, format string, args ...any) *Error {
	return &Error{Code: code, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is, or wraps, an Error with code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
