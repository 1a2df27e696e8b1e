package errors

import "errors"

var (
	ErrNotFound = errors.New("vehicle not found")

	ErrInvalidID = errors.New("invalid vehicle ID format")

	ErrDuplicateNumber = errors.New("vehicle number already registered")

	// ErrAlreadyOwned is returned when a claim found the vehicle owned.
	ErrAlreadyOwned = errors.New("vehicle already has an owner")
)
