package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidTransition indicates a state-machine transition was attempted from a
// state that does not permit it (e.g. disbursing a loan that is not approved).
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrInsufficientCapacity indicates a business-rule rejection: the account cannot
// cover the requested loan amount, or a payment exceeds the remaining balance.
var ErrInsufficientCapacity = errors.New("insufficient capacity")

// ErrConflict indicates a concurrent-update conflict detected by the persistence layer.
var ErrConflict = errors.New("conflicting update")

// ErrForbidden indicates the user lacks permission for the requested action.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps a lower-level error with an application status code and message.
// Repositories use it to attach context to storage failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that satisfies errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
