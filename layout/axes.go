package layout

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle in logical pixels.
type Rect struct {
	X, Y, W, H float64
}

// Right returns X + W.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns Y + H.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.X, r.Y, r.W, r.H)
}

// Orientation is the viewport edge an axis is attached to.
type Orientation uint8

const (
	Left Orientation = iota
	Right
	Top
	Bottom
)

// String returns the edge name.
func (o Orientation) String() string {
	switch o {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Top:
		return "Top"
	case Bottom:
		return "Bottom"
	default:
		return fmt.Sprintf("Orientation(%d)", uint8(o))
	}
}

// Vertical reports whether axes on this edge run vertically.
func (o Orientation) Vertical() bool { return o == Left || o == Right }

// AxisRequest asks for a band of the given thickness along one edge.
type AxisRequest struct {
	ID          string
	Orientation Orientation
	Thickness   float64
}

// Placement is the solved band of one axis.
type Placement struct {
	// Request is the index of the originating AxisRequest.
	Request     int
	ID          string
	Orientation Orientation
	Bounds      Rect
}

// ArrangeAxes reserves a band for every request and returns the remaining
// central plot rectangle plus one placement per accepted request, in
// request order.
//
// Left and Right bands consume width and span the plot height; Top and
// Bottom bands consume height and span the plot width. For each edge the
// first listed request sits nearest the plot. Edges are snapped to device
// pixel boundaries for the given device pixel ratio (dpr <= 0 means 1).
// Requests with an unknown orientation or a non-positive thickness are
// dropped. When the bands do not fit, the plot collapses to zero size.
func ArrangeAxes(width, height, dpr float64, reqs []AxisRequest) (Rect, []Placement) {
	if !(dpr > 0) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	width = sanitize(width)
	height = sanitize(height)

	var left, right, top, bottom []int
	for i, r := range reqs {
		if !(r.Thickness > 0) || math.IsInf(r.Thickness, 0) {
			continue
		}
		switch r.Orientation {
		case Left:
			left = append(left, i)
		case Right:
			right = append(right, i)
		case Top:
			top = append(top, i)
		case Bottom:
			bottom = append(bottom, i)
		}
	}

	// Lines read outer-to-inner on the leading side, inner-to-outer on the
	// trailing side.
	hx, plotX := solveLine(reqs, left, right, width)
	vy, plotY := solveLine(reqs, top, bottom, height)

	align := func(v float64) float64 { return snap(v, dpr) }
	px0, px1 := align(hx[plotX].Offset), align(hx[plotX].End())
	py0, py1 := align(vy[plotY].Offset), align(vy[plotY].End())
	plot := Rect{X: px0, Y: py0, W: px1 - px0, H: py1 - py0}

	byReq := make([]*Placement, len(reqs))
	place := func(ids []int, line []Result, base int, reverse bool, vertical bool) {
		for k, id := range ids {
			j := base + k
			if reverse {
				j = base + len(ids) - 1 - k
			}
			a, b := align(line[j].Offset), align(line[j].End())
			var bounds Rect
			if vertical {
				bounds = Rect{X: a, Y: plot.Y, W: b - a, H: plot.H}
			} else {
				bounds = Rect{X: plot.X, Y: a, W: plot.W, H: b - a}
			}
			byReq[id] = &Placement{
				Request:     id,
				ID:          reqs[id].ID,
				Orientation: reqs[id].Orientation,
				Bounds:      bounds,
			}
		}
	}
	place(left, hx, 0, true, true)
	place(right, hx, plotX+1, false, true)
	place(top, vy, 0, true, false)
	place(bottom, vy, plotY+1, false, false)

	placements := make([]Placement, 0, len(reqs))
	for _, p := range byReq {
		if p != nil {
			placements = append(placements, *p)
		}
	}
	return plot, placements
}

// solveLine lays out leading bands, the plot and trailing bands along one
// dimension and returns the results with the index of the plot slot.
func solveLine(reqs []AxisRequest, leading, trailing []int, length float64) ([]Result, int) {
	children := make([]Child, 0, len(leading)+len(trailing)+1)
	for k := len(leading) - 1; k >= 0; k-- {
		children = append(children, rigid(reqs[leading[k]].Thickness))
	}
	plot := len(children)
	children = append(children, Child{Weight: 1})
	for _, id := range trailing {
		children = append(children, rigid(reqs[id].Thickness))
	}
	return Arrange(children, length, 0), plot
}

func rigid(thickness float64) Child {
	return Child{Min: thickness, Preferred: thickness, Max: thickness}
}

func snap(v, dpr float64) float64 {
	return math.Round(v*dpr) / dpr
}

func sanitize(v float64) float64 {
	if !(v > 0) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
