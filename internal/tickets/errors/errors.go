package errors

import "errors"

var (
	ErrNotFound = errors.New("ticket not found")

	ErrInvalidID = errors.New("invalid ticket ID format")

	// ErrNotCreated is returned when a conditional transition found the
	// ticket already out of the CREATED state.
	ErrNotCreated = errors.New("ticket is no longer in CREATED state")
)
