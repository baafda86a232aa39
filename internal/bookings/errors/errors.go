package errors

import "errors"

var (
	ErrNotFound  = errors.New("booking not found")
	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrDuplicate is returned when the active-slot unique index rejects an insert.
	ErrDuplicate = errors.New("active booking already exists for slot")

	// ErrStatusConflict means the stored status no longer matches the expected one.
	ErrStatusConflict = errors.New("booking status changed concurrently")

	// ErrReviewConflict means the booking is not completed or was already reviewed.
	ErrReviewConflict = errors.New("booking is not reviewable")
)
