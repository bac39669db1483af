package event

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrNilMatcher is returned when a subscription has no matcher.
	ErrNilMatcher = errors.New("matcher cannot be nil")
)
