package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeUnauthorized indicates unauthorized access
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from an external tool or service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	// Details carries diagnostic output from a failing collaborator, if any.
	Details string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches collaborator diagnostics and returns the same error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError { return newError(ErrorTypeNotFound, message, nil) }

// NewValidationError creates an error whose message is safe to show clients
func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, message, nil)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError { return newError(ErrorTypeConflict, message, nil) }

func NewUnauthorizedError(message string) *AppError {
	return newError(ErrorTypeUnauthorized, message, nil)
}

// NewInternalError wraps err behind a message
func NewInternalError(message string, err error) *AppError {
	return newError(ErrorTypeInternal, message, err)
}

// NewExternalError wraps a failure of an outside tool or service
func NewExternalError(message string, err error) *AppError {
	return newError(ErrorTypeExternal, message, err)
}

// As extracts the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:   http.StatusBadRequest,
	ErrorTypeUnauthorized: http.StatusUnauthorized,
	ErrorTypeNotFound:     http.StatusNotFound,
	ErrorTypeConflict:     http.StatusConflict,
}

// HTTPStatus maps an error to the status code the API answers with.
// Anything else, including errors that are not AppErrors, is a 500.
func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok {
		if status, known := statusByType[appErr.Type]; known {
			return status
		}
	}
	return http.StatusInternalServerError
}
