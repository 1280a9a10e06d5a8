// Package scale maps data domains onto the unit interval [0, 1] and back.
//
// Four kinds share the Scale interface: Linear, Log (base 10), Time (linear
// over Unix seconds) and Ordinal (a fixed, ordered category list). A
// Transformer pairs an X and a Y scale with pixel ranges to map data points
// into pixel space and back for hit testing.
//
// Out-of-domain Unproject policy per kind:
//
//   - Linear and Time extrapolate affinely.
//   - Log extrapolates in log space, so the result is always positive.
//   - Ordinal rounds to the nearest index and clamps to [0, n-1].
//
// A non-finite unit value unprojects to NaN for numeric kinds and to index 0
// for Ordinal.
package scale
