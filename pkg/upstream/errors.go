package upstream

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassTimeout represents a fetch that exceeded the configured timeout.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassUpstream represents an upstream response with status >= 400.
	ErrorClassUpstream ErrorClass = "upstream"

	// ErrorClassNetwork represents any other failure (DNS, connection reset, TLS).
	ErrorClassNetwork ErrorClass = "network"
)

// Error is a classified fetch failure carrying the status code and message
// to surface to the proxy client.
type Error struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps any fetch failure to a client-visible Error.
// Priority: timeout, upstream HTTP error, then generic network failure.
func Classify(err error) *Error {
	var fetchErr *Error
	if errors.As(err, &fetchErr) {
		return fetchErr
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{
			StatusCode: http.StatusGatewayTimeout,
			ErrorClass: ErrorClassTimeout,
			Message:    "Request timeout",
			Err:        err,
		}
	}

	return &Error{
		StatusCode: http.StatusInternalServerError,
		ErrorClass: ErrorClassNetwork,
		Message:    "Internal server error",
		Err:        err,
	}
}
