// Package apperror defines the domain errors shared by the service and handler layers.
//
// Services return these; handlers translate them to HTTP status codes. Neither the
// catalog nor the session logic knows anything about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNoSession  = errors.New("no active session")
)

// AppError wraps a sentinel with a user-facing message and, for validation
// errors, the offending field.
type AppError struct {
	Err     error  // sentinel, matched with errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that the resource with the given id does not exist.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Missing reports that a singleton resource (the meal plan, the open shopping
// list) does not exist yet.
func Missing(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("no %s available", resource),
	}
}

// ValidationFailed reports invalid input in field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a request that does not fit the current state.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NoSession is returned by dashboard operations while the device is still onboarding.
func NoSession() *AppError {
	return &AppError{
		Err:     ErrNoSession,
		Message: "join or create a family first",
	}
}
