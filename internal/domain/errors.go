package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput flags missing or malformed required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when a unique key (email) is already taken.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized covers bad credentials and unknown bearer tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller does not own the offer.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned for unknown ids and emails.
	ErrNotFound = errors.New("not found")
	// ErrUpload wraps object storage failures.
	ErrUpload = errors.New("upload failed")
	// ErrStore wraps persistence failures.
	ErrStore = errors.New("store failure")
)

// ValidationRejected reports a content limit violation on publish. It is
// answered as a regular response carrying Message, not as a failure status.
type ValidationRejected struct {
	Field   string
	Message string
}

func (e *ValidationRejected) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
