package errors

import "errors"

var (
	ErrNotFound = errors.New("parking session not found")

	ErrInvalidID = errors.New("invalid parking session ID format")

	// ErrDuplicateActive means the vehicle already has an ACTIVE session; the
	// partial unique index rejected the insert.
	ErrDuplicateActive = errors.New("vehicle already has an active session")

	ErrNotActive = errors.New("parking session is not active")
)
