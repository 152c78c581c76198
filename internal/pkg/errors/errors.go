// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

// Package errors provides the application error type used across services.
// Errors carry a stable machine-readable code, a human message, an optional
// wrapped cause, and the HTTP status they map to at the API boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeConflict         = "CONFLICT"
	CodeTimeout          = "TIMEOUT"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// Sentinel errors for errors.Is checks.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrTimeout            = errors.New("timeout")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInternal           = errors.New("internal error")
)

// AppError is the application error type.
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, if any.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a single detail key/value and returns the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails attaches a detail map and returns the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithHTTPStatus overrides the HTTP status and returns the error.
func (e *AppError) WithHTTPStatus(status int) *AppError {
	e.HTTPStatus = status
	return e
}

// ============================================================================
// Constructors
// ============================================================================

// New creates an AppError with the given code and message.
func New(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Newf creates an AppError with a formatted message.
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithStatus creates an AppError with an explicit HTTP status.
func NewWithStatus(code, message string, status int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap wraps an error into an AppError.
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Err:        err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// WrapWithStatus wraps an error with an explicit HTTP status.
func WrapWithStatus(err error, code, message string, status int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Err:        err,
		HTTPStatus: status,
	}
}

// ============================================================================
// Convenience constructors
// ============================================================================

// NotFound creates a NOT_FOUND error for a resource.
func NotFound(resource string) *AppError {
	return NewWithStatus(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// InvalidInput creates a BAD_REQUEST error.
func InvalidInput(message string) *AppError {
	return NewWithStatus(CodeBadRequest, message, http.StatusBadRequest)
}

// ValidationFailed creates a VALIDATION_FAILED error with field details.
func ValidationFailed(fields map[string]string) *AppError {
	details := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return NewWithStatus(CodeValidationFailed, "validation failed", http.StatusBadRequest).
		WithDetails(details)
}

// Unauthorized creates an UNAUTHORIZED error.
func Unauthorized(message string) *AppError {
	return NewWithStatus(CodeUnauthorized, message, http.StatusUnauthorized)
}

// Forbidden creates a FORBIDDEN error.
func Forbidden(message string) *AppError {
	return NewWithStatus(CodeForbidden, message, http.StatusForbidden)
}

// Conflict creates a CONFLICT error.
func Conflict(message string) *AppError {
	return NewWithStatus(CodeConflict, message, http.StatusConflict)
}

// Internal creates an INTERNAL_ERROR error.
func Internal(message string) *AppError {
	return NewWithStatus(CodeInternal, message, http.StatusInternalServerError)
}

// Backend wraps a failed backend call. The HTTP status is the status the
// backend responded with, or 503 when the call never completed.
func Backend(err error, message string, status int) *AppError {
	if status == 0 {
		status = http.StatusServiceUnavailable
	}
	return WrapWithStatus(err, CodeUnavailable, message, status)
}

// ============================================================================
// Inspection helpers
// ============================================================================

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HTTPStatusCode maps an error to an HTTP status code.
func HTTPStatusCode(err error) int {
	if ae, ok := GetAppError(err); ok {
		return ae.HTTPStatus
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether err represents a missing resource.
func IsNotFound(err error) bool {
	if ae, ok := GetAppError(err); ok {
		return ae.Code == CodeNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err represents rejected input.
func IsValidation(err error) bool {
	if ae, ok := GetAppError(err); ok {
		return ae.Code == CodeValidationFailed || ae.Code == CodeBadRequest
	}
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized reports whether err represents an authentication failure.
func IsUnauthorized(err error) bool {
	if ae, ok := GetAppError(err); ok {
		return ae.Code == CodeUnauthorized
	}
	return errors.Is(err, ErrUnauthorized)
}

// Is delegates to errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As delegates to errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
