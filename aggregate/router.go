package aggregate

import (
	"fmt"
	"math"
)

// Router dispatches each call to one of several independent windows
// selected by a static threshold table.
//
// With thresholds t[0] < t[1] < ... < t[n-1] there are n+1 bands. A signal s
// selects the first band i with s < t[i], or band n when no threshold is
// greater than s. Bands share no state.
type Router struct {
	thresholds []float64
	bands      []*Window
}

// NewRouter creates a router over len(thresholds)+1 windows that all use the
// same bucket and window durations. Thresholds must be finite and strictly
// ascending; an empty table yields a single band.
func NewRouter(seriesID uint32, bucketSeconds, windowSeconds float64, thresholds []float64) (*Router, error) {
	for i, t := range thresholds {
		if !finite(t) {
			return nil, fmt.Errorf("%w: threshold %d is %v", ErrInvalidConfiguration, i, t)
		}
		if i > 0 && !(t > thresholds[i-1]) {
			return nil, fmt.Errorf("%w: thresholds not strictly ascending at %d", ErrInvalidConfiguration, i)
		}
	}
	r := &Router{
		thresholds: append([]float64(nil), thresholds...),
		bands:      make([]*Window, len(thresholds)+1),
	}
	for i := range r.bands {
		w, err := NewWindow(seriesID, bucketSeconds, windowSeconds)
		if err != nil {
			return nil, err
		}
		w.band = i
		r.bands[i] = w
	}
	return r, nil
}

// Band returns the band index the signal routes to. NaN routes to the last
// band.
func (r *Router) Band(signal float64) int {
	for i, t := range r.thresholds {
		if signal < t {
			return i
		}
	}
	return len(r.thresholds)
}

// Accumulate routes the call by signal and delegates to that band's window.
// It returns the band used and the number of points written to dst.
func (r *Router) Accumulate(signal, timestamp, magnitude float64, dst []Point) (band, n int) {
	band = r.Band(signal)
	return band, r.bands[band].Accumulate(timestamp, magnitude, dst)
}

// Bands returns the number of bands.
func (r *Router) Bands() int { return len(r.bands) }

// Thresholds returns a copy of the threshold table.
func (r *Router) Thresholds() []float64 {
	return append([]float64(nil), r.thresholds...)
}

// Window returns the window backing band i.
func (r *Router) Window(i int) *Window { return r.bands[i] }

// Reset clears every band.
func (r *Router) Reset() {
	for _, w := range r.bands {
		w.Reset()
	}
}

// Volume histogram bands.
const (
	BandSell = 0
	BandBuy  = 1
)

// VolumeHistogram accumulates traded quantity per bucket, split by aggressor
// side.
type VolumeHistogram struct {
	r *Router
}

// NewVolumeHistogram creates a two-band histogram (BandSell, BandBuy).
func NewVolumeHistogram(seriesID uint32, bucketSeconds, windowSeconds float64) (*VolumeHistogram, error) {
	r, err := NewRouter(seriesID, bucketSeconds, windowSeconds, []float64{0})
	if err != nil {
		return nil, err
	}
	return &VolumeHistogram{r: r}, nil
}

// Accumulate adds quantity to the band of side. A negative side is a sell, a
// positive side a buy; side 0 is unattributed and ignored.
func (h *VolumeHistogram) Accumulate(side int, timestamp, quantity float64, dst []Point) (band, n int) {
	if side == 0 {
		return 0, 0
	}
	return h.r.Accumulate(float64(side), timestamp, quantity, dst)
}

// Router returns the underlying router.
func (h *VolumeHistogram) Router() *Router { return h.r }

// Reset clears both bands.
func (h *VolumeHistogram) Reset() { h.r.Reset() }

// DefaultDeltaThresholds are the percent-change band edges used by
// NewDeltaHeatmap when none are given.
var DefaultDeltaThresholds = []float64{-0.5, -0.1, 0.1, 0.5}

// DeltaHeatmap accumulates traded quantity per bucket, banded by the percent
// price change from the previous trade.
type DeltaHeatmap struct {
	r    *Router
	last float64
}

// NewDeltaHeatmap creates a heatmap with the given percent thresholds, or
// DefaultDeltaThresholds when thresholds is empty.
func NewDeltaHeatmap(seriesID uint32, bucketSeconds, windowSeconds float64, thresholds []float64) (*DeltaHeatmap, error) {
	if len(thresholds) == 0 {
		thresholds = DefaultDeltaThresholds
	}
	r, err := NewRouter(seriesID, bucketSeconds, windowSeconds, thresholds)
	if err != nil {
		return nil, err
	}
	return &DeltaHeatmap{r: r}, nil
}

// Delta returns the percent change of price from the previous accepted
// trade, or 0 for the first trade.
func (h *DeltaHeatmap) Delta(price float64) float64 {
	if h.last == 0 {
		return 0
	}
	return (price - h.last) / h.last * 100
}

// Accumulate routes quantity by the price delta and records price as the
// reference for the next call. Non-positive or non-finite prices are
// ignored.
func (h *DeltaHeatmap) Accumulate(price, timestamp, quantity float64, dst []Point) (band, n int) {
	if !(price > 0) || math.IsInf(price, 1) {
		return 0, 0
	}
	band, n = h.r.Accumulate(h.Delta(price), timestamp, quantity, dst)
	h.last = price
	return band, n
}

// Router returns the underlying router.
func (h *DeltaHeatmap) Router() *Router { return h.r }

// Reset clears every band and forgets the reference price.
func (h *DeltaHeatmap) Reset() {
	h.r.Reset()
	h.last = 0
}
