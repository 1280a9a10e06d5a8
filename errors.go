package chart

import "errors"

var (
	// ErrClosed is returned by every Engine method after Close.
	ErrClosed = errors.New("chart: engine closed")

	// ErrInvalidConfiguration is returned for unusable options, series
	// definitions or viewport sizes.
	ErrInvalidConfiguration = errors.New("chart: invalid configuration")

	// ErrUnknownSeries is returned for operations on a series ID that was
	// never added.
	ErrUnknownSeries = errors.New("chart: unknown series")

	// ErrDuplicateSeries is returned when AddSeries reuses an ID.
	ErrDuplicateSeries = errors.New("chart: duplicate series")

	// ErrUnknownAnnotation is returned for annotation IDs not created by
	// Annotate.
	ErrUnknownAnnotation = errors.New("chart: unknown annotation")
)
