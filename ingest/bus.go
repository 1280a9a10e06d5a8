package ingest

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Option configures a Bus during creation.
type Option func(*busOptions)

type busOptions struct {
	pool   *BufferPool
	logger *slog.Logger
}

// WithPool makes the bus rent buffers from p instead of a private pool.
// Sharing a pool between buses is safe.
func WithPool(p *BufferPool) Option {
	return func(o *busOptions) {
		o.pool = p
	}
}

// WithLogger sets the logger used for eviction diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *busOptions) {
		o.logger = l
	}
}

// Bus is a bounded multi-producer/single-consumer queue of record slices.
//
// Write and WriteBatch are safe for concurrent use by any number of
// producers. TryRead must be called from a single consumer goroutine.
type Bus struct {
	q        queue
	count    atomic.Int64
	capacity int64
	pool     *BufferPool
	logger   *slog.Logger

	written atomic.Uint64
	evicted atomic.Uint64
	closed  atomic.Bool
}

// NewBus creates a bus that holds at most capacity slices.
// It returns ErrInvalidConfiguration when capacity is not positive.
func NewBus(capacity int, opts ...Option) (*Bus, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity=%d", ErrInvalidConfiguration, capacity)
	}
	o := busOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pool == nil {
		o.pool = NewBufferPool()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	b := &Bus{
		capacity: int64(capacity),
		pool:     o.pool,
		logger:   o.logger,
	}
	b.q.init()
	return b, nil
}

// Write encodes records into a pooled buffer and enqueues them as one slice.
// Writing an empty slice is a no-op. When the bus is over capacity after the
// write, the oldest slice is dropped and disposed.
func Write[T Record](b *Bus, records []T) error {
	if len(records) == 0 {
		return nil
	}
	if b.closed.Load() {
		return ErrClosed
	}
	kind := kindOf[T]()
	buf := b.pool.Rent(len(records) * kind.Size())
	encode(buf, records)
	return b.publish(&Slice{
		kind:  kind,
		count: len(records),
		buf:   buf,
		pool:  b.pool,
	})
}

// WriteBatch writes a columnar sample batch as one Sample slice.
func WriteBatch(b *Bus, batch SampleBatch) error {
	if len(batch.Times) != len(batch.Values) {
		return fmt.Errorf("%w: %d times, %d values", ErrBatchMismatch, len(batch.Times), len(batch.Values))
	}
	if len(batch.Times) == 0 {
		return nil
	}
	samples := make([]Sample, len(batch.Times))
	for i := range samples {
		samples[i] = Sample{SeriesID: batch.SeriesID, Time: batch.Times[i], Value: batch.Values[i]}
	}
	return Write(b, samples)
}

// publish enqueues s. A Close that ran between the caller's closed check
// and the push has already drained the queue, so the bus is drained again
// and the write reports ErrClosed.
func (b *Bus) publish(s *Slice) error {
	b.enqueue(s)
	if b.closed.Load() {
		b.disposeQueued()
		return ErrClosed
	}
	return nil
}

func (b *Bus) enqueue(s *Slice) {
	b.q.push(s)
	b.written.Add(1)
	if b.count.Add(1) <= b.capacity {
		return
	}
	// Soft bound: concurrent writers may each observe the overflow and each
	// evict one slice, or none may win the race for a moment.
	if old, ok := b.q.pop(); ok {
		b.count.Add(-1)
		old.Dispose()
		n := b.evicted.Add(1)
		b.logger.Debug("ingest: evicted oldest slice", "kind", old.kind, "records", old.count, "evicted", n)
	}
}

// TryRead dequeues the oldest slice. It reports false when the bus is empty.
// The caller owns the returned slice and must Dispose it.
func (b *Bus) TryRead() (*Slice, bool) {
	s, ok := b.q.pop()
	if !ok {
		return nil, false
	}
	b.count.Add(-1)
	return s, true
}

// Count returns the number of slices currently queued.
func (b *Bus) Count() int {
	if c := b.count.Load(); c > 0 {
		return int(c)
	}
	return 0
}

// Capacity returns the configured capacity.
func (b *Bus) Capacity() int {
	return int(b.capacity)
}

// Written returns the number of slices enqueued since creation.
func (b *Bus) Written() uint64 {
	return b.written.Load()
}

// Evicted returns the number of slices dropped because the bus was full.
func (b *Bus) Evicted() uint64 {
	return b.evicted.Load()
}

// Pool returns the buffer pool backing this bus.
func (b *Bus) Pool() *BufferPool {
	return b.pool
}

// Close rejects further writes and disposes every queued slice.
// Close is idempotent.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	b.disposeQueued()
	return nil
}

func (b *Bus) disposeQueued() {
	for {
		s, ok := b.TryRead()
		if !ok {
			return
		}
		s.Dispose()
	}
}
