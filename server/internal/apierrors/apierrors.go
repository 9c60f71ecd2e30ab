// Package apierrors defines the error taxonomy shared by the HTTP handlers.
package apierrors

import (
	"fmt"
	"net/http"
)

// Code classifies an API failure.
type Code string

const (
	// CodeInvalidArgument indicates a malformed or out-of-range request.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeUnauthenticated indicates missing or unusable credentials.
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	// CodePermissionDenied indicates the caller lacks a required grant.
	CodePermissionDenied Code = "PERMISSION_DENIED"
	// CodeNotFound indicates the addressed resource does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeAlreadyExists indicates a uniqueness conflict.
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	// CodeResourceExhausted indicates the caller exceeded a rate limit.
	CodeResourceExhausted Code = "RESOURCE_EXHAUSTED"
	// CodeInternal indicates an unexpected server-side failure.
	CodeInternal Code = "INTERNAL"
)

// APIError is a structured error carried from service logic to the HTTP
// boundary, where Code decides the response status.
type APIError struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the code to a response status. Uniqueness conflicts
// deliberately map to 400 rather than 409.
func (e *APIError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidArgument, CodeAlreadyExists:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// CodeFromHTTPStatus classifies a bare HTTP status produced outside the
// handlers, such as the router's 404 or the rate limiter's 429.
func CodeFromHTTPStatus(status int) Code {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidArgument
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodePermissionDenied
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeResourceExhausted
	default:
		return CodeInternal
	}
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *APIError {
	return &APIError{Code: CodeInvalidArgument, Message: msg}
}

// Unauthenticated creates an unauthenticated error.
func Unauthenticated(msg string) *APIError {
	return &APIError{Code: CodeUnauthenticated, Message: msg}
}

// PermissionDenied creates a permission denied error.
func PermissionDenied(msg string) *APIError {
	return &APIError{Code: CodePermissionDenied, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *APIError {
	return &APIError{Code: CodeNotFound, Message: msg}
}

// AlreadyExists creates an already exists error.
func AlreadyExists(msg string) *APIError {
	return &APIError{Code: CodeAlreadyExists, Message: msg}
}

// Internal wraps an unexpected failure. The cause is logged server-side and
// never serialized to the client.
func Internal(msg string, cause error) *APIError {
	return &APIError{Code: CodeInternal, Message: msg, Cause: cause}
}

// Wrap wraps an existing error under a specific code.
func Wrap(cause error, code Code, msg string) *APIError {
	return &APIError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code Code) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Code == code
	}
	return false
}

// CodeOf extracts the code from any error, falling back to CodeInternal.
func CodeOf(err error) Code {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Code
	}
	return CodeInternal
}
