package capture

import "errors"

// Common errors for the capture package.
var (
	// ErrInvalidDirection indicates a direction string is not "in" or "out".
	ErrInvalidDirection = errors.New("invalid direction")
)
