package layout

import "math"

// epsilon is the residual below which the solver stops redistributing.
const epsilon = 1e-9

// Child describes the constraints of one slot along a line.
type Child struct {
	// Min is the smallest allowed length. Negative values are treated as 0.
	Min float64

	// Preferred is the starting length, clamped to [Min, Max].
	Preferred float64

	// Max is the largest allowed length. 0 means unbounded.
	Max float64

	// Weight is the share of surplus or deficit this child absorbs.
	// Children with Weight <= 0 keep their preferred length.
	Weight float64

	// LeadingMargin and TrailingMargin surround the child and are never
	// shrunk.
	LeadingMargin  float64
	TrailingMargin float64
}

// Result is the solved position of one child.
type Result struct {
	Offset float64
	Length float64
}

// End returns Offset + Length.
func (r Result) End() float64 { return r.Offset + r.Length }

func (c Child) bounds() (lo, hi float64) {
	lo = math.Max(c.Min, 0)
	hi = math.Inf(1)
	if c.Max > 0 {
		hi = math.Max(c.Max, lo)
	}
	return lo, hi
}

// Arrange distributes available among children separated by spacing.
//
// Every child starts at its clamped preferred length. A deficit shrinks and a
// surplus grows the flexible children in proportion to their weights; a child
// that hits its bound drops out and the remainder is redistributed among the
// others. When no flexible child can absorb the residual, constraints win
// and the residual is left unallocated (or overflows).
//
// When the constraints are satisfiable,
//
//	Σ Length + Σ margins + spacing·(n-1) == available
//
// and every Length lies in [Min, Max].
func Arrange(children []Child, available, spacing float64) []Result {
	n := len(children)
	results := make([]Result, n)
	if n == 0 {
		return results
	}

	fixed := spacing * float64(n-1)
	lengths := make([]float64, n)
	lo := make([]float64, n)
	hi := make([]float64, n)
	sum := 0.0
	for i, c := range children {
		lo[i], hi[i] = c.bounds()
		lengths[i] = math.Min(math.Max(c.Preferred, lo[i]), hi[i])
		fixed += c.LeadingMargin + c.TrailingMargin
		sum += lengths[i]
	}

	residual := available - fixed - sum
	active := make([]bool, n)
	for i, c := range children {
		active[i] = c.Weight > 0
	}

	for math.Abs(residual) > epsilon {
		totalWeight := 0.0
		for i, c := range children {
			if !active[i] {
				continue
			}
			// Drop children already pinned in the direction of travel.
			if (residual < 0 && lengths[i] <= lo[i]) || (residual > 0 && lengths[i] >= hi[i]) {
				active[i] = false
				continue
			}
			totalWeight += c.Weight
		}
		if totalWeight == 0 {
			break
		}

		applied := 0.0
		clamped := false
		for i, c := range children {
			if !active[i] {
				continue
			}
			want := lengths[i] + residual*c.Weight/totalWeight
			got := math.Min(math.Max(want, lo[i]), hi[i])
			if got != want {
				clamped = true
			}
			applied += got - lengths[i]
			lengths[i] = got
		}
		residual -= applied
		if !clamped {
			break
		}
	}

	offset := 0.0
	for i, c := range children {
		offset += c.LeadingMargin
		results[i] = Result{Offset: offset, Length: lengths[i]}
		offset += lengths[i] + c.TrailingMargin + spacing
	}
	return results
}
