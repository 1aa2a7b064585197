// Package errors defines the error taxonomy surfaced over HTTP.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

const (
	CodeAuthenticationRequired ErrorCode = "AUTHENTICATION_REQUIRED"
	CodeAuthorizationDenied    ErrorCode = "AUTHORIZATION_DENIED"
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	CodeInternalFailure        ErrorCode = "INTERNAL_FAILURE"
	CodeRateLimitExceeded      ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodePayloadTooLarge        ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeMethodNotAllowed       ErrorCode = "METHOD_NOT_ALLOWED"
)

// ServiceError is an error with an HTTP status and a client-safe message.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches a diagnostic key/value pair.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New builds a ServiceError.
func New(code ErrorCode, message string, status int) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status}
}

func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "authentication required"
	}
	return New(CodeAuthenticationRequired, message, http.StatusUnauthorized)
}

func Forbidden(message string) *ServiceError {
	if message == "" {
		message = "administrator rights required"
	}
	return New(CodeAuthorizationDenied, message, http.StatusForbidden)
}

func NotFound(message string) *ServiceError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

func Validation(message string) *ServiceError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

func Validationf(format string, args ...interface{}) *ServiceError {
	return Validation(fmt.Sprintf(format, args...))
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *ServiceError {
	e := New(CodeInternalFailure, message, http.StatusInternalServerError)
	e.Err = err
	return e
}

func RateLimitExceeded(limit int, window string) *ServiceError {
	return New(CodeRateLimitExceeded, "too many requests", http.StatusTooManyRequests).
		WithDetails("limit", limit).
		WithDetails("window", window)
}

func PayloadTooLarge(limit int64) *ServiceError {
	return New(CodePayloadTooLarge, "request body too large", http.StatusRequestEntityTooLarge).
		WithDetails("limit", limit)
}

func MethodNotAllowed(method string) *ServiceError {
	return New(CodeMethodNotAllowed, "Method Not Allowed", http.StatusMethodNotAllowed).
		WithDetails("method", method)
}

// GetServiceError returns the ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if stderrors.As(err, &se) {
		return se
	}
	return nil
}

// HTTPStatus maps err to a response status.
func HTTPStatus(err error) int {
	if se := GetServiceError(err); se != nil {
		return se.HTTPStatus
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message shown to clients: the ServiceError
// message, or the raw error text, cut at the first line break.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if se := GetServiceError(err); se != nil {
		msg = se.Message
	}
	return FirstLine(msg)
}

// FirstLine returns s up to its first line break.
func FirstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
