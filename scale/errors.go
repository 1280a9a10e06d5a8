package scale

import "errors"

var (
	// ErrInvalidConfiguration is returned for non-finite bounds, non-positive
	// logarithmic bounds and empty or duplicated ordinal categories.
	ErrInvalidConfiguration = errors.New("scale: invalid configuration")

	// ErrNotFound is returned when projecting a category an Ordinal scale
	// does not contain.
	ErrNotFound = errors.New("scale: category not found")
)
