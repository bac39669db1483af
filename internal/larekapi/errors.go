package larekapi

import (
	"errors"
	"fmt"
)

// ErrUnexpectedStatus is matched by every APIError.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// APIError is a non-2xx answer from the storefront backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("api responded with status %d: %s", e.StatusCode, e.Message)
}

// Is allows errors.Is to match APIError with ErrUnexpectedStatus.
func (e *APIError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Temporary reports whether the failure is on the server side and worth
// counting against the circuit breaker.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
