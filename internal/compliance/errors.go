package compliance

import "errors"

var (
	// ErrInvalidInput is returned when a required argument is missing or malformed.
	// Non-compliant content is never an error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownContentType is returned by the footer renderer for an unknown tag.
	ErrUnknownContentType = errors.New("unknown content type")
)
