package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that
// already exists. It matches ErrValidation under errors.Is, since a duplicate
// identifier is a form of invalid input.
var ErrDuplicate = fmt.Errorf("%w: resource already exists", ErrValidation)

// ErrReference indicates a reference to a resource that exists but cannot be
// used for the requested operation (e.g. posting to an inactive account).
var ErrReference = errors.New("reference error")

// ErrConflict indicates that the operation is blocked by the current state of
// the resource (e.g. deleting an account with a nonzero balance).
var ErrConflict = errors.New("conflict error")

// ErrInternal indicates an unexpected failure that should not be exposed in
// detail to the caller.
var ErrInternal = errors.New("internal error")

// ValidationError is a validation failure carrying a stable machine-readable
// reason code alongside the human-readable message. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError with the given reason code.
func NewValidationError(reason, message string) error {
	return &ValidationError{Reason: reason, Message: message}
}

// ValidationReason extracts the reason code from a ValidationError chain.
// Returns the empty string if err carries no reason code.
func ValidationReason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
