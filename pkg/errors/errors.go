package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies failures by the response they map to
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrorTypeDatabase    ErrorType = "DATABASE"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:  http.StatusBadRequest,
	ErrorTypeNotFound:    http.StatusNotFound,
	ErrorTypeInternal:    http.StatusInternalServerError,
	ErrorTypeUnavailable: http.StatusServiceUnavailable,
	ErrorTypeDatabase:    http.StatusInternalServerError,
}

// AppError is a failure the HTTP layer knows how to report. Message is
// always safe to show; Cause is only exposed outside production.
type AppError struct {
	Type       ErrorType
	Message    string
	Operation  string
	Cause      error
	HTTPStatus int
}

func newAppError(t ErrorType, message string) *AppError {
	return &AppError{Type: t, Message: message, HTTPStatus: statusByType[t]}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewValidationError reports a malformed request (400)
func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, message)
}

// NewNotFoundError reports a missing node or relationship (404). resource
// names the record, e.g. "node 42".
func NewNotFoundError(resource string) *AppError {
	return newAppError(ErrorTypeNotFound, resource+" not found")
}

// NewInternalError reports a failure that is not the caller's fault (500)
func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, message)
}

// NewUnavailableError reports a dependency that cannot serve requests (503)
func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable, service+" is unavailable")
}

// NewDatabaseError reports a failed graph store operation (500)
func NewDatabaseError(operation string, err error) *AppError {
	e := newAppError(ErrorTypeDatabase, "failed to "+operation)
	e.Operation = operation
	e.Cause = err
	return e
}

// GetAppError returns the first AppError in err's chain, or nil
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err carries an AppError of type t
func IsType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

func IsDatabase(err error) bool {
	return IsType(err, ErrorTypeDatabase)
}
