// Package derrors provides coded domain errors shared across all feature
// modules. Services construct these at the boundary between infrastructure
// facts (see pkg/platform/sentinel) and domain semantics; handlers translate
// codes into HTTP responses without inspecting error strings.
package derrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for programmatic handling.
type Code string

const (
	// CodeValidation covers missing required fields and precondition
	// failures such as a missing organization context.
	CodeValidation Code = "validation"

	// CodeInvalidInput covers malformed external input rejected at trust
	// boundaries (bad IDs, unknown enum values).
	CodeInvalidInput Code = "invalid_input"

	// CodeBadRequest covers structurally invalid requests.
	CodeBadRequest Code = "bad_request"

	// CodeNotFound indicates a referenced entity does not exist in scope.
	CodeNotFound Code = "not_found"

	// CodeConflict indicates the request conflicts with current state.
	CodeConflict Code = "conflict"

	// CodeInvariantViolation indicates a guarded state transition or other
	// domain invariant was violated. No state is mutated.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeUnauthorized indicates missing or invalid authentication.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden indicates the actor's role does not permit the action.
	CodeForbidden Code = "forbidden"

	// CodeUnavailable indicates a transient dependency failure that may
	// succeed on retry.
	CodeUnavailable Code = "unavailable"

	// CodeTimeout indicates a bounded operation exceeded its deadline.
	CodeTimeout Code = "timeout"

	// CodeInternal covers persistence failures and other unexpected
	// conditions. Details are never exposed to callers.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. It wraps an optional cause so errors.Is and
// errors.As keep working through the chain.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error. Returns nil when
// err is nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability in tests.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost coded error in the chain, or
// CodeInternal when the error carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the message of the outermost coded error, or a generic
// message for uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
