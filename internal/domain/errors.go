package domain

import "errors"

// Sentinel errors. Wrapped with context via fmt.Errorf("...: %w") so callers
// can branch with errors.Is.
var (
	// ErrConfig marks malformed trained constants: mismatched scaler lengths,
	// zero scale factors, wrong coefficient counts.
	ErrConfig = errors.New("invalid model configuration")

	// ErrDimension marks a vector whose length does not match the configured
	// dimension.
	ErrDimension = errors.New("dimension mismatch")

	// ErrInvalidState marks a prediction on a simulator that has no person
	// bound to it.
	ErrInvalidState = errors.New("simulator not initialized")

	// ErrInvalidInput marks a person or environment record outside its domain.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a lookup key the upstream service does not know.
	ErrNotFound = errors.New("not found")
)
