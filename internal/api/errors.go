package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Common API errors
var (
	// ErrNotFound is returned when the reconciliation or match does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned when the token is missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized: check API_TOKEN")

	// ErrRequestFailed is returned for any other non-2xx response.
	ErrRequestFailed = errors.New("request failed")

	// ErrTransport is returned when the API could not be reached.
	ErrTransport = errors.New("reconciliation API unreachable")

	// ErrInvalidResponse is returned when a response body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid response from reconciliation API")
)

// APIError wraps a failed call with its HTTP context.
type APIError struct {
	// Op is the client method that failed (e.g., "FetchReconciliation").
	Op string

	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int

	// Message is the server provided message, if any.
	Message string

	// Err is one of the sentinel errors above, possibly wrapping a cause.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("api: %s failed (%d): %s: %v", e.Op, e.StatusCode, e.Message, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("api: %s failed (%d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches the underlying error.
func (e *APIError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func statusError(op string, status int, message string) *APIError {
	var err error
	switch status {
	case http.StatusNotFound:
		err = ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		err = ErrUnauthorized
	default:
		err = ErrRequestFailed
	}
	return &APIError{Op: op, StatusCode: status, Message: message, Err: err}
}
