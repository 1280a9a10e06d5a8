// Package aggregate rolls streaming magnitudes up into fixed-duration time
// buckets over a sliding window.
//
// A Window keeps one running total per bucket, where the bucket index of a
// timestamp ts is floor(ts / bucketSeconds). Each Accumulate call adds to one
// bucket, prunes buckets that fell out of the window, and emits one Point at
// the bucket midpoint carrying the bucket's running total.
//
// Router, VolumeHistogram and DeltaHeatmap dispatch each call to one of
// several independent windows selected by a secondary signal.
//
// None of the types in this package are safe for concurrent use. They are
// owned by the engine's single consumer context.
package aggregate
