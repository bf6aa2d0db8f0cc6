package errors

import "fmt"

// ErrorCode represents a Seam error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrInvalidState   ErrorCode = "INVALID_STATE"   // 409 (e.g., purge without tombstone)
	ErrInternal       ErrorCode = "INTERNAL"        // 500 (includes invariant violations)
)

// SeamError represents a structured error with code, status, and details.
type SeamError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SeamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SeamError {
	return &SeamError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidSpan creates a 400 error for an out-of-range or inverted span.
func NewInvalidSpan(start, end, textLen int) *SeamError {
	return &SeamError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: "invalid start/end",
		Details: map[string]any{"start": start, "end": end, "text_length": textLen},
	}
}

// NewNotFound creates a 404 error for a missing entity.
func NewNotFound(kind, identifier string) *SeamError {
	return &SeamError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewConflict creates a 409 error for uniqueness conflicts.
func NewConflict(msg string) *SeamError {
	return &SeamError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewInvalidState creates a 409 error for operations rejected by entity state,
// such as purging an entity that has not been tombstoned first.
func NewInvalidState(msg string) *SeamError {
	return &SeamError{
		Code:    ErrInvalidState,
		Status:  409,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SeamError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SeamError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// NewInvariantViolation creates a 500 error for broken internal invariants.
// These indicate a bug in the engine itself, never bad input.
func NewInvariantViolation(msg string, details map[string]any) *SeamError {
	return &SeamError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Details: details,
	}
}

// Is checks if an error is a SeamError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*SeamError); ok {
		return sErr.Code == code
	}
	return false
}
