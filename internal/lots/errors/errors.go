package errors

import "errors"

var (
	ErrNotFound = errors.New("parking lot not found")

	ErrInvalidID = errors.New("invalid parking lot ID format")

	ErrDuplicatePID = errors.New("parking lot pid already exists")
)
