package scale

import "math"

// NiceStep returns a step of the form {1, 2, 5} x 10^k that divides span
// into approximately count intervals. It returns 0 when span is not a
// positive finite number or count is not positive.
func NiceStep(span float64, count int) float64 {
	if !(span > 0) || math.IsInf(span, 1) || count <= 0 {
		return 0
	}
	raw := span / float64(count)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch r := raw / mag; {
	case r < 1.5:
		return mag
	case r < 3:
		return 2 * mag
	case r < 7:
		return 5 * mag
	default:
		return 10 * mag
	}
}
