package scale

import (
	"fmt"
	"math"
	"time"
)

// Kind identifies a scale implementation.
type Kind uint8

const (
	KindLinear Kind = iota
	KindLog
	KindTime
	KindOrdinal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "Linear"
	case KindLog:
		return "Log"
	case KindTime:
		return "Time"
	case KindOrdinal:
		return "Ordinal"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Scale is a bidirectional mapping between a data domain and [0, 1].
type Scale interface {
	// Kind reports the scale implementation.
	Kind() Kind

	// Domain returns the domain bounds. For Ordinal these are the first and
	// last category indices.
	Domain() (lo, hi float64)

	// Project maps a domain value onto the unit interval. Values outside the
	// domain map outside [0, 1].
	Project(v float64) float64

	// Unproject maps a unit value back into the domain.
	Unproject(u float64) float64
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Linear is an affine map of [Min, Max] onto [0, 1].
type Linear struct {
	min, max float64
}

var _ Scale = (*Linear)(nil)

// NewLinear creates a linear scale. Bounds must be finite. Equal bounds are
// allowed; every value then projects to 0.5.
func NewLinear(lo, hi float64) (*Linear, error) {
	if !finite(lo) || !finite(hi) {
		return nil, fmt.Errorf("%w: linear domain [%v, %v]", ErrInvalidConfiguration, lo, hi)
	}
	return &Linear{min: lo, max: hi}, nil
}

// Kind implements Scale.
func (l *Linear) Kind() Kind { return KindLinear }

// Domain implements Scale.
func (l *Linear) Domain() (lo, hi float64) { return l.min, l.max }

// Project implements Scale.
func (l *Linear) Project(v float64) float64 {
	span := l.max - l.min
	if span == 0 {
		return 0.5
	}
	return (v - l.min) / span
}

// Unproject implements Scale.
func (l *Linear) Unproject(u float64) float64 {
	if !finite(u) {
		return math.NaN()
	}
	return l.min + u*(l.max-l.min)
}

// Nice returns a copy of l whose bounds are widened outward to multiples of
// the step NiceStep picks for roughly count intervals.
func (l *Linear) Nice(count int) *Linear {
	lo, hi := l.min, l.max
	if lo > hi {
		lo, hi = hi, lo
	}
	step := NiceStep(hi-lo, count)
	if step == 0 {
		return &Linear{min: l.min, max: l.max}
	}
	lo = math.Floor(lo/step) * step
	hi = math.Ceil(hi/step) * step
	if l.min > l.max {
		lo, hi = hi, lo
	}
	return &Linear{min: lo, max: hi}
}

// Log is a base-10 logarithmic map of [Min, Max] onto [0, 1].
type Log struct {
	min, max       float64
	logMin, logMax float64
}

var _ Scale = (*Log)(nil)

// NewLog creates a logarithmic scale. Both bounds must be positive and
// finite.
func NewLog(lo, hi float64) (*Log, error) {
	if !(lo > 0) || !(hi > 0) || math.IsInf(lo, 1) || math.IsInf(hi, 1) {
		return nil, fmt.Errorf("%w: log domain [%v, %v] must be positive", ErrInvalidConfiguration, lo, hi)
	}
	return &Log{
		min:    lo,
		max:    hi,
		logMin: math.Log10(lo),
		logMax: math.Log10(hi),
	}, nil
}

// Kind implements Scale.
func (l *Log) Kind() Kind { return KindLog }

// Domain implements Scale.
func (l *Log) Domain() (lo, hi float64) { return l.min, l.max }

// Project implements Scale. Non-positive values project to NaN.
func (l *Log) Project(v float64) float64 {
	if !(v > 0) {
		return math.NaN()
	}
	span := l.logMax - l.logMin
	if span == 0 {
		return 0.5
	}
	return (math.Log10(v) - l.logMin) / span
}

// Unproject implements Scale.
func (l *Log) Unproject(u float64) float64 {
	if !finite(u) {
		return math.NaN()
	}
	return math.Pow(10, l.logMin+u*(l.logMax-l.logMin))
}

// Time is a linear scale over Unix time in seconds.
type Time struct {
	Linear
}

var _ Scale = (*Time)(nil)

// NewTime creates a time scale over Unix seconds.
func NewTime(lo, hi float64) (*Time, error) {
	l, err := NewLinear(lo, hi)
	if err != nil {
		return nil, err
	}
	return &Time{Linear: *l}, nil
}

// NewTimeRange creates a time scale spanning [from, to].
func NewTimeRange(from, to time.Time) (*Time, error) {
	return NewTime(Seconds(from), Seconds(to))
}

// Kind implements Scale.
func (t *Time) Kind() Kind { return KindTime }

// ProjectTime projects a wall-clock instant.
func (t *Time) ProjectTime(at time.Time) float64 {
	return t.Project(Seconds(at))
}

// UnprojectTime maps a unit value back to an instant in UTC.
func (t *Time) UnprojectTime(u float64) time.Time {
	return FromSeconds(t.Unproject(u))
}

// Seconds converts an instant to fractional Unix seconds.
func Seconds(at time.Time) float64 {
	return float64(at.UnixNano()) / 1e9
}

// FromSeconds converts fractional Unix seconds to an instant in UTC.
func FromSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}
