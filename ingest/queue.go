package ingest

import "sync/atomic"

// queue is an unbounded lock-free FIFO of slices (Michael-Scott).
//
// Any number of goroutines may push and pop concurrently. The bus pops from
// both the consumer (TryRead) and producers (overflow eviction).
type queue struct {
	head atomic.Pointer[qnode]
	tail atomic.Pointer[qnode]
}

type qnode struct {
	slice *Slice
	next  atomic.Pointer[qnode]
}

func (q *queue) init() {
	dummy := &qnode{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
}

func (q *queue) push(s *Slice) {
	n := &qnode{slice: s}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// Tail is lagging; help advance it.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			return
		}
	}
}

func (q *queue) pop() (*Slice, bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if next == nil {
			return nil, false
		}
		if head == tail {
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		s := next.slice
		if q.head.CompareAndSwap(head, next) {
			return s, true
		}
	}
}
