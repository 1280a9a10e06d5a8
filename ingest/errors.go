package ingest

import "errors"

// Sentinel errors for the ingest package.
var (
	// ErrInvalidConfiguration is returned when a bus is created with a
	// non-positive capacity.
	ErrInvalidConfiguration = errors.New("ingest: invalid configuration")

	// ErrTypeMismatch is returned when a slice is read as a record shape other
	// than the one it was written with.
	ErrTypeMismatch = errors.New("ingest: type mismatch")

	// ErrDisposed is returned when a slice is read after Dispose.
	ErrDisposed = errors.New("ingest: slice disposed")

	// ErrClosed is returned when writing to a closed bus.
	ErrClosed = errors.New("ingest: bus closed")

	// ErrBatchMismatch is returned when a SampleBatch has timestamp and value
	// columns of different lengths.
	ErrBatchMismatch = errors.New("ingest: batch column length mismatch")
)
