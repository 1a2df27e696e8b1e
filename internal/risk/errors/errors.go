package errors

import "errors"

var (
	ErrNotFound = errors.New("risk score not found")

	ErrInvalidID = errors.New("invalid parking lot ID format")
)
