package documents

import "errors"

var (
	// ErrNotFound is returned when no document matches the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput is returned for uploads missing required data.
	ErrInvalidInput = errors.New("invalid document input")
)
