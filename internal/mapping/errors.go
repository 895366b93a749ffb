package mapping

import "errors"

// Domain-specific errors for the mapping repository.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidMapping is returned when required mapping fields are missing
	// or the action is not in the baby care vocabulary.
	ErrInvalidMapping = errors.New("mapping: invalid mapping")

	// ErrNotFound is returned when the referenced mapping does not exist.
	ErrNotFound = errors.New("mapping: not found")
)
