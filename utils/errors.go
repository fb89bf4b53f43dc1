package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError represents a service-level error with context
type ServiceError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Details    string `json:"details,omitempty"`
	Cause      error  `json:"-"` // Original error, not exposed in JSON
}

func (e ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e ServiceError) Unwrap() error {
	return e.Cause
}

// GetServiceError extracts a ServiceError from an error
func GetServiceError(err error) (ServiceError, bool) {
	var serviceErr ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return ServiceError{}, false
}

// Error code constants
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeState       = "STATE_ERROR"
	ErrCodePersistence = "PERSISTENCE_ERROR"
	ErrCodeTransport   = "TRANSPORT_ERROR"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// NewValidationError reports missing or empty required input.
func NewValidationError(message string) error {
	return ServiceError{
		Code:       ErrCodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewNotFoundError reports an id that does not exist.
func NewNotFoundError(resource string) error {
	return ServiceError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// NewStateError reports an operation that is invalid in the current state.
func NewStateError(message string) error {
	return ServiceError{
		Code:       ErrCodeState,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewPersistenceError reports a snapshot load or save failure. The in-memory
// mutation it accompanies is never rolled back.
func NewPersistenceError(operation string, cause error) error {
	return ServiceError{
		Code:       ErrCodePersistence,
		Message:    fmt.Sprintf("Failed to %s state snapshot", operation),
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewTransportError reports an individual notification delivery failure. It
// is recorded per delivery, never surfaced as a top-level operation error.
func NewTransportError(message string, cause error) error {
	return ServiceError{
		Code:       ErrCodeTransport,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusServiceUnavailable,
	}
}

func NewInternalError(message string) error {
	return ServiceError{
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// IsValidationError checks the error kind without unwrapping at call sites.
func IsValidationError(err error) bool {
	se, ok := GetServiceError(err)
	return ok && se.Code == ErrCodeValidation
}

func IsNotFoundError(err error) bool {
	se, ok := GetServiceError(err)
	return ok && se.Code == ErrCodeNotFound
}

func IsStateError(err error) bool {
	se, ok := GetServiceError(err)
	return ok && se.Code == ErrCodeState
}

func IsPersistenceError(err error) bool {
	se, ok := GetServiceError(err)
	return ok && se.Code == ErrCodePersistence
}
