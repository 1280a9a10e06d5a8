package ingest

import (
	"fmt"
	"sync/atomic"
)

// Slice is one enqueued batch of records backed by a pooled buffer.
//
// A Slice is created by Write and handed to the consumer by Bus.TryRead.
// It is not safe for concurrent use; only the current owner may touch it.
type Slice struct {
	kind  Kind
	count int
	buf   []byte
	pool  *BufferPool

	disposed atomic.Bool
}

// Kind returns the record shape this slice was written with.
func (s *Slice) Kind() Kind {
	return s.kind
}

// Len returns the number of records in the slice.
func (s *Slice) Len() int {
	return s.count
}

// ElemSize returns the encoded size of one record in bytes.
func (s *Slice) ElemSize() int {
	return s.kind.Size()
}

// Disposed reports whether the slice buffer was returned to its pool.
func (s *Slice) Disposed() bool {
	return s.disposed.Load()
}

// Dispose returns the slice buffer to its pool. Calling Dispose more than
// once is a no-op.
func (s *Slice) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	s.pool.Return(s.buf)
	s.buf = nil
}

// Read decodes the records of s as type T.
// It fails with ErrTypeMismatch when s was written with another shape and
// with ErrDisposed after Dispose.
func Read[T Record](s *Slice) ([]T, error) {
	return ReadInto[T](nil, s)
}

// ReadInto is like Read but appends the decoded records to dst.
func ReadInto[T Record](dst []T, s *Slice) ([]T, error) {
	if s.disposed.Load() {
		return dst, ErrDisposed
	}
	if want := kindOf[T](); s.kind != want {
		return dst, fmt.Errorf("%w: slice holds %s, read as %s", ErrTypeMismatch, s.kind, want)
	}
	return decode(dst, s.buf, s.count), nil
}
