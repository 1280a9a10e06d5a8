package aggregate

import (
	"fmt"
	"math"
	"sort"
)

// Point is one emitted aggregate: the midpoint time of a bucket and the
// bucket's running total at the moment of emission.
type Point struct {
	SeriesID uint32
	Band     int
	Time     float64
	Value    float64
}

// Bucket is a snapshot of one retained time bucket.
type Bucket struct {
	Index int64
	Total float64
}

// Start returns the bucket's start time for the given bucket duration.
func (b Bucket) Start(bucketSeconds float64) float64 {
	return float64(b.Index) * bucketSeconds
}

// Accumulator is implemented by every aggregator in this package.
type Accumulator interface {
	// Accumulate adds magnitude at timestamp and writes at most one Point
	// into dst. It returns the number of points written.
	Accumulate(timestamp, magnitude float64, dst []Point) int

	// Reset discards all bucket state.
	Reset()
}

// Window is a rolling time-bucket accumulator for one series.
type Window struct {
	seriesID uint32
	band     int
	bucket   float64
	window   float64

	// buckets is ordered by ascending Index.
	buckets []Bucket
}

var _ Accumulator = (*Window)(nil)

// NewWindow creates a rolling accumulator with the given bucket and window
// durations in seconds. Both must be positive and finite.
func NewWindow(seriesID uint32, bucketSeconds, windowSeconds float64) (*Window, error) {
	if !positiveFinite(bucketSeconds) {
		return nil, fmt.Errorf("%w: bucket duration %v", ErrInvalidConfiguration, bucketSeconds)
	}
	if !positiveFinite(windowSeconds) {
		return nil, fmt.Errorf("%w: window duration %v", ErrInvalidConfiguration, windowSeconds)
	}
	return &Window{
		seriesID: seriesID,
		bucket:   bucketSeconds,
		window:   windowSeconds,
	}, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SeriesID returns the series this window aggregates.
func (w *Window) SeriesID() uint32 { return w.seriesID }

// BucketSeconds returns the bucket duration.
func (w *Window) BucketSeconds() float64 { return w.bucket }

// WindowSeconds returns the retention window.
func (w *Window) WindowSeconds() float64 { return w.window }

// Accumulate implements Accumulator.
//
// Non-positive or non-finite magnitudes, non-finite timestamps, timestamps
// whose bucket index overflows int64 and an empty dst produce no emission
// and leave the window untouched.
func (w *Window) Accumulate(timestamp, magnitude float64, dst []Point) int {
	if len(dst) == 0 || !(magnitude > 0) || !finite(magnitude) || !finite(timestamp) {
		return 0
	}

	q := math.Floor(timestamp / w.bucket)
	if q < math.MinInt64 || q >= math.MaxInt64 {
		return 0
	}
	idx := int64(q)
	i := sort.Search(len(w.buckets), func(i int) bool { return w.buckets[i].Index >= idx })
	if i == len(w.buckets) || w.buckets[i].Index != idx {
		w.buckets = append(w.buckets, Bucket{})
		copy(w.buckets[i+1:], w.buckets[i:])
		w.buckets[i] = Bucket{Index: idx}
	}
	w.buckets[i].Total += magnitude
	total := w.buckets[i].Total

	w.prune(timestamp - w.window)

	dst[0] = Point{
		SeriesID: w.seriesID,
		Band:     w.band,
		Time:     (float64(idx) + 0.5) * w.bucket,
		Value:    total,
	}
	return 1
}

// prune drops buckets, oldest first, whose start precedes cutoff.
func (w *Window) prune(cutoff float64) {
	n := 0
	for n < len(w.buckets) && w.buckets[n].Start(w.bucket) < cutoff {
		n++
	}
	if n == 0 {
		return
	}
	w.buckets = append(w.buckets[:0], w.buckets[n:]...)
}

// Buckets returns a copy of the retained buckets in ascending index order.
func (w *Window) Buckets() []Bucket {
	out := make([]Bucket, len(w.buckets))
	copy(out, w.buckets)
	return out
}

// Len returns the number of retained buckets.
func (w *Window) Len() int { return len(w.buckets) }

// Reset implements Accumulator.
func (w *Window) Reset() {
	w.buckets = w.buckets[:0]
}
