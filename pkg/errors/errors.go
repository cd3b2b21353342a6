package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// ErrCodeTooManyAttempts is returned by verification flows whose attempt
	// counter is exhausted. It is a 400, unlike the transport level limiter.
	ErrCodeTooManyAttempts   ErrorCode = "TOO_MANY_ATTEMPTS"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"
	ErrCodeIntegrity      ErrorCode = "INTEGRITY"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message, safe to show to callers
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy of the error carrying an extra detail.
// Sentinels are shared, so they are never mutated in place.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	cp := *e
	cp.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// Is reports whether target is the same sentinel, so copies made by
// WithDetail or Wrap still match with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error is not a structured Error
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeTooManyAttempts:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeDeliveryFailed, ErrCodeIntegrity, ErrCodeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// Common constructors

func InvalidInput(field, reason string) *Error {
	return Newf(ErrCodeInvalidInput, "invalid %s: %s", field, reason)
}

func Unauthorized(message string) *Error {
	return New(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(ErrCodeForbidden, message)
}

func NotFound(message string) *Error {
	return New(ErrCodeNotFound, message)
}

func Conflict(message string) *Error {
	return New(ErrCodeConflict, message)
}

// Is and As re-export the standard library helpers so callers importing this
// package under the name errors keep them.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }
