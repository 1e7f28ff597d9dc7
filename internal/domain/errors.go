package domain

import "errors"

var (
	// ErrNotFound means the source path does not resolve to a readable container.
	ErrNotFound = errors.New("source not found")

	// ErrMissingField means a required variable is absent from the source.
	ErrMissingField = errors.New("missing field")

	// ErrShapeMismatch means a variable's dimensions disagree with the others.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidThreshold is returned for a threshold that is not a finite number.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrWrite wraps failures to produce the output container.
	ErrWrite = errors.New("write output")
)
