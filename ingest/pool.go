package ingest

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

const (
	// minClassShift is the smallest pooled buffer size (64 bytes).
	minClassShift = 6

	// maxClassShift is the largest pooled buffer size (1 MiB). Larger
	// requests are allocated directly and dropped on return.
	maxClassShift = 20

	classCount = maxClassShift - minClassShift + 1
)

// BufferPool rents byte buffers in power-of-two size classes.
//
// After warmup, renting and returning buffers does not allocate.
// BufferPool is safe for concurrent use.
type BufferPool struct {
	classes [classCount]sync.Pool

	rented   atomic.Uint64
	returned atomic.Uint64
}

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	// Rented is the number of buffers handed out.
	Rented uint64

	// Returned is the number of buffers given back.
	Returned uint64
}

// Outstanding returns the number of buffers rented and not yet returned.
func (s PoolStats) Outstanding() uint64 {
	return s.Rented - s.Returned
}

// NewBufferPool creates an empty buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{}
}

// classFor returns the size class index for n bytes, or -1 when n exceeds the
// largest class.
func classFor(n int) int {
	if n <= 1<<minClassShift {
		return 0
	}
	shift := bits.Len(uint(n - 1))
	if shift > maxClassShift {
		return -1
	}
	return shift - minClassShift
}

// Rent returns a buffer of length n. The contents are unspecified.
func (p *BufferPool) Rent(n int) []byte {
	p.rented.Add(1)
	c := classFor(n)
	if c < 0 {
		return make([]byte, n)
	}
	if v := p.classes[c].Get(); v != nil {
		buf := *(v.(*[]byte))
		return buf[:n]
	}
	return make([]byte, n, 1<<(c+minClassShift))
}

// Return gives a buffer back to the pool. The caller must not use buf
// afterwards.
func (p *BufferPool) Return(buf []byte) {
	if buf == nil {
		return
	}
	p.returned.Add(1)
	c := classFor(cap(buf))
	if c < 0 || cap(buf) != 1<<(c+minClassShift) {
		return
	}
	buf = buf[:0]
	p.classes[c].Put(&buf)
}

// Stats returns a snapshot of rent/return counters.
func (p *BufferPool) Stats() PoolStats {
	return PoolStats{
		Rented:   p.rented.Load(),
		Returned: p.returned.Load(),
	}
}
