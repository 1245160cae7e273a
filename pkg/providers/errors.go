package providers

import "fmt"

// ValidationError reports malformed input to an operation. It is raised
// before any state changes.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid about the field
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// TransportError reports a network-level failure: the backend could not be
// reached, or the request timed out before a response arrived.
type TransportError struct {
	// Provider is the name of the provider that could not be reached
	Provider string

	// Cause is the underlying network error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("provider %q unreachable: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// BackendError reports a reachable backend that returned a non-success
// status or a payload the adapter could not parse.
type BackendError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 for malformed payloads)
	StatusCode int

	// Message is the error body or parse failure description
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q backend error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q backend error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *BackendError) Unwrap() error {
	return e.Cause
}
