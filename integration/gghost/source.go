// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gghost

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/chart/frame"
)

// Common errors returned by this package.
var (
	// ErrNilProvider is returned when a nil WindowProvider is passed.
	ErrNilProvider = errors.New("gghost: nil WindowProvider")

	// ErrNilEngine is returned when Bind is given a nil engine.
	ErrNilEngine = errors.New("gghost: nil engine")
)

// TickSource is a frame.TickSource backed by a host window. RequestTick
// turns into RequestRedraw; the host fires the tick by calling Frame.
//
// RequestTick is safe to call from any goroutine. Frame must be called from
// the host draw callback only.
type TickSource struct {
	window gpucontext.WindowProvider

	mu   sync.Mutex
	fire func() error

	pending  atomic.Bool
	requests atomic.Uint64
}

var _ frame.TickSource = (*TickSource)(nil)

// NewTickSource creates a tick source for window.
func NewTickSource(window gpucontext.WindowProvider) (*TickSource, error) {
	if window == nil {
		return nil, ErrNilProvider
	}
	return &TickSource{window: window}, nil
}

// Attach implements frame.TickSource.
func (s *TickSource) Attach(fire func() error) {
	s.mu.Lock()
	s.fire = fire
	s.mu.Unlock()
}

// Detach implements frame.TickSource.
func (s *TickSource) Detach() {
	s.mu.Lock()
	s.fire = nil
	s.mu.Unlock()
}

// RequestTick implements frame.TickSource. Requests made before the next
// Frame collapse into one redraw request.
func (s *TickSource) RequestTick() {
	if !s.pending.CompareAndSwap(false, true) {
		return
	}
	s.requests.Add(1)
	s.window.RequestRedraw()
}

// Frame fires the attached scheduler if a tick was requested. It reports
// whether the scheduler ran.
func (s *TickSource) Frame() (bool, error) {
	if !s.pending.Swap(false) {
		return false, nil
	}
	s.mu.Lock()
	fire := s.fire
	s.mu.Unlock()
	if fire == nil {
		return false, nil
	}
	return true, fire()
}

// Pending reports whether a tick was requested and not yet fired.
func (s *TickSource) Pending() bool {
	return s.pending.Load()
}

// Requests returns the number of redraw requests sent to the window.
func (s *TickSource) Requests() uint64 {
	return s.requests.Load()
}

// Close detaches the source. The scheduler calls it when the source is
// replaced with disposal.
func (s *TickSource) Close() error {
	s.Detach()
	s.pending.Store(false)
	return nil
}
