package errors

import "errors"

var (
	ErrNotFound = errors.New("provider not found")

	ErrInvalidID = errors.New("invalid provider ID format")

	ErrServiceNotFound = errors.New("service not found")

	ErrExceptionNotFound = errors.New("availability exception not found")
)
