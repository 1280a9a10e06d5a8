package frame

import "errors"

var (
	// ErrClosed is returned by operations on a closed Scheduler.
	ErrClosed = errors.New("frame: scheduler closed")

	// ErrInvalidConfiguration is returned for nil callbacks and negative
	// durations.
	ErrInvalidConfiguration = errors.New("frame: invalid configuration")
)
