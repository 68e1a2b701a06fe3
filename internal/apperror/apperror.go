// Package apperror defines the error taxonomy shared by the repository and
// HTTP layers.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnection    = errors.New("connection error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("duplicate")
)

// AppError wraps one of the sentinel errors above with a human-readable
// message and the underlying cause, if any.
type AppError struct {
	Err     error  // sentinel category
	Cause   error  // underlying driver/library error
	Message string // human-readable error message
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Configuration(what string) *AppError {
	return &AppError{
		Err:     ErrConfiguration,
		Message: fmt.Sprintf("%s is not configured", what),
	}
}

func Connection(cause error) *AppError {
	return &AppError{
		Err:     ErrConnection,
		Cause:   cause,
		Message: fmt.Sprintf("database unreachable: %v", cause),
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func Duplicate(resource, id string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: fmt.Sprintf("%s already exists with id %s", resource, id),
	}
}
