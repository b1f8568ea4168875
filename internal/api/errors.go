package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx response from the backend. Validation errors
// (422) carry the raw body so callers can surface field messages.
type Error struct {
	StatusCode int
	Message    string
	Body       []byte
	RequestID  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsValidation reports whether err is a 422 validation failure.
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity
}

// IsUnauthorized reports whether err is a 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// InvalidTokenFunc decides whether a response status means the bearer
// token is no longer valid. The two backend surfaces disagree (one
// answers 401, the other 422), so the policy is injectable.
type InvalidTokenFunc func(statusCode int) bool

// DefaultInvalidToken accepts both status codes the backends use.
func DefaultInvalidToken(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusUnprocessableEntity
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
