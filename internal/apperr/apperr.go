// Package apperr defines the tagged error variants used across the API.
// The HTTP error boundary matches these exhaustively when building the
// uniform error envelope.
package apperr

import (
	"fmt"
	"net/http"
)

// Stable upstream error codes. Clients key off these, so the values must
// not change.
const (
	CodeOpenAIConfigError   = "OPENAI_CONFIG_ERROR"
	CodeOpenAIQuotaExceeded = "OPENAI_QUOTA_EXCEEDED"
	CodeOpenAIBadRequest    = "OPENAI_BAD_REQUEST"
	CodeOpenAINetworkError  = "OPENAI_NETWORK_ERROR"
	CodeOpenAIServiceError  = "OPENAI_SERVICE_ERROR"
	CodeNutritionParse      = "NUTRITION_PARSE_ERROR"
	CodeNutritionInvalid    = "NUTRITION_DATA_INVALID"
)

// ValidationError is a client-fixable input error. Safe to describe
// precisely in the response.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation creates a validation error with optional detail lines.
func NewValidation(message string, details ...string) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// AuthError is an authentication or authorization failure.
type AuthError struct {
	Message string
	Status  int
}

func (e *AuthError) Error() string { return e.Message }

// NewUnauthorized creates a 401 auth error.
func NewUnauthorized(message string) *AuthError {
	return &AuthError{Message: message, Status: http.StatusUnauthorized}
}

// ConflictError indicates a uniqueness conflict (409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// UpstreamError is a failure translated from the upstream LLM service
// (or from interpreting its response) into a stable internal code.
type UpstreamError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstream creates an upstream error with a stable code and HTTP status.
func NewUpstream(code string, status int, message string, err error) *UpstreamError {
	return &UpstreamError{Code: code, Status: status, Message: message, Err: err}
}

// InternalError wraps an unexpected failure. The client only ever sees a
// generic message; the wrapped error goes to the server logs.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return "internal error"
	}
	return e.Err.Error()
}

func (e *InternalError) Unwrap() error { return e.Err }

// NewInternal wraps err as an internal error.
func NewInternal(err error) *InternalError {
	return &InternalError{Err: err}
}
