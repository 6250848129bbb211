package api

import (
	"errors"
	"fmt"
)

// Common errors for transport operations.
var (
	ErrTransport          = errors.New("quickbase transport error")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrMissingCredentials = errors.New("realm hostname and user token are required")
)

// TransportError is returned when a request fails on the network or the API
// answers with a non-success status.
type TransportError struct {
	Method      string
	Path        string
	StatusCode  int
	Message     string
	Description string
	Cause       error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("quickbase %s %s: %v", e.Method, e.Path, e.Cause)
	}
	msg := fmt.Sprintf("quickbase %s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Description != "" {
		msg += " (" + e.Description + ")"
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
