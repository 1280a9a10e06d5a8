// Package layout distributes a length among weighted children and arranges
// axis bands around a central plot rectangle.
//
// Arrange is a one-dimensional solver: every child starts at its preferred
// length, then the surplus or deficit is shared among flexible children in
// proportion to their weights, clamped to each child's [Min, Max] range.
// ArrangeAxes builds on it in both dimensions and snaps the resulting edges
// to device pixels.
package layout
