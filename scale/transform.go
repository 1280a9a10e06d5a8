package scale

// Range is a pixel interval. End may be less than Start.
type Range struct {
	Start, End float64
}

// Lerp maps t in [0, 1] onto the range.
func (r Range) Lerp(t float64) float64 {
	return r.Start + t*(r.End-r.Start)
}

// Unlerp maps a pixel coordinate back onto [0, 1]. A zero-length range
// maps everything to 0.
func (r Range) Unlerp(p float64) float64 {
	span := r.End - r.Start
	if span == 0 {
		return 0
	}
	return (p - r.Start) / span
}

// Transformer composes an X and a Y scale with pixel ranges.
//
// With FlipY set, the unit value 0 of the Y scale lands on YRange.End, which
// puts the domain minimum at the bottom of a top-down pixel space.
type Transformer struct {
	X, Y   Scale
	XRange Range
	YRange Range
	FlipY  bool
}

// NewTransformer creates a transformer for a plot rectangle at (x, y) with
// the given size. The Y axis is flipped so larger values render higher.
func NewTransformer(xs, ys Scale, x, y, width, height float64) *Transformer {
	return &Transformer{
		X:      xs,
		Y:      ys,
		XRange: Range{Start: x, End: x + width},
		YRange: Range{Start: y, End: y + height},
		FlipY:  true,
	}
}

// ToPixel maps a data point into pixel space.
func (t *Transformer) ToPixel(x, y float64) (px, py float64) {
	px = t.XRange.Lerp(t.X.Project(x))
	uy := t.Y.Project(y)
	if t.FlipY {
		uy = 1 - uy
	}
	py = t.YRange.Lerp(uy)
	return px, py
}

// FromPixel maps a pixel coordinate back into the data domain.
func (t *Transformer) FromPixel(px, py float64) (x, y float64) {
	x = t.X.Unproject(t.XRange.Unlerp(px))
	uy := t.YRange.Unlerp(py)
	if t.FlipY {
		uy = 1 - uy
	}
	y = t.Y.Unproject(uy)
	return x, y
}

// Contains reports whether a pixel coordinate lies within both ranges.
func (t *Transformer) Contains(px, py float64) bool {
	return within(t.XRange, px) && within(t.YRange, py)
}

func within(r Range, p float64) bool {
	lo, hi := r.Start, r.End
	if lo > hi {
		lo, hi = hi, lo
	}
	return p >= lo && p <= hi
}
