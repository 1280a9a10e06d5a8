package frame

import (
	"sync"
	"sync/atomic"
)

// TickSource decides when the next frame happens.
//
// The scheduler calls Attach once with the function to invoke when a tick
// is due, RequestTick whenever it has work, and Detach when the source is
// swapped out or the scheduler closes. A source whose fire function is
// called after Detach is ignored. Sources that also implement io.Closer are
// closed when replaced with disposal requested.
type TickSource interface {
	Attach(fire func() error)
	Detach()
	RequestTick()
}

// ManualSource is a TickSource driven by explicit Fire calls. It suits
// tests and hosts that already own a render loop.
type ManualSource struct {
	mu        sync.Mutex
	fire      func() error
	requested atomic.Bool
	requests  atomic.Uint64
	closed    atomic.Bool
}

var _ TickSource = (*ManualSource)(nil)

// NewManualSource creates a detached manual source.
func NewManualSource() *ManualSource {
	return &ManualSource{}
}

// Attach implements TickSource.
func (m *ManualSource) Attach(fire func() error) {
	m.mu.Lock()
	m.fire = fire
	m.mu.Unlock()
}

// Detach implements TickSource.
func (m *ManualSource) Detach() {
	m.mu.Lock()
	m.fire = nil
	m.mu.Unlock()
	m.requested.Store(false)
}

// RequestTick implements TickSource.
func (m *ManualSource) RequestTick() {
	m.requests.Add(1)
	m.requested.Store(true)
}

// Requested reports whether a tick is outstanding.
func (m *ManualSource) Requested() bool {
	return m.requested.Load()
}

// Requests returns the number of RequestTick calls received.
func (m *ManualSource) Requests() uint64 {
	return m.requests.Load()
}

// Fire delivers a tick if one was requested. It reports whether a tick was
// delivered and returns the drain error.
func (m *ManualSource) Fire() (bool, error) {
	if !m.requested.Swap(false) {
		return false, nil
	}
	m.mu.Lock()
	fire := m.fire
	m.mu.Unlock()
	if fire == nil {
		return false, nil
	}
	return true, fire()
}

// Close detaches the source. It is idempotent.
func (m *ManualSource) Close() error {
	if m.closed.CompareAndSwap(false, true) {
		m.Detach()
	}
	return nil
}

// Closed reports whether Close was called.
func (m *ManualSource) Closed() bool {
	return m.closed.Load()
}
