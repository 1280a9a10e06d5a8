// Package ingest provides the sample ingestion bus of the chart engine.
//
// Producers (feed parsers, simulators, tests) hand typed record batches to a
// [Bus]. Each batch is encoded into a pooled byte buffer with a fixed layout
// and enqueued as a [Slice]. A single consumer drains slices with
// [Bus.TryRead], decodes them with [Read], and returns the buffer to the pool
// with [Slice.Dispose].
//
// # Record shapes
//
// The set of record shapes is closed: [Sample] for plain time/value series and
// [Trade] for market prints. The [Record] constraint only admits these types,
// so a slice's element type is fixed when it is written. Reading a slice as a
// different shape fails with [ErrTypeMismatch].
//
// # Capacity
//
// A Bus holds at most Capacity slices. When a write pushes the count over the
// capacity the oldest slice is dropped and disposed. This is a soft bound:
// concurrent writers may transiently exceed it by more than one. Dropped
// slices are counted by [Bus.Evicted]; overload is not an error.
//
// # Ownership
//
// A slice belongs to the producer until it is enqueued, to the consumer after
// TryRead returns it, and to the pool after Dispose. It is never mutated by two
// sides at once.
package ingest
