package event

import "errors"

// Domain-specific errors for the event store.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidType is returned when an event type is not in the
	// baby care action vocabulary.
	ErrInvalidType = errors.New("event: invalid event type")

	// ErrNotFound is returned when the referenced event does not exist.
	ErrNotFound = errors.New("event: not found")
)
