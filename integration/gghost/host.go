// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gghost

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/chart"
	"github.com/gogpu/chart/frame"
)

// Option configures Bind.
type Option func(*Host)

// WithPointerSource routes pointer events to the chart crosshair.
func WithPointerSource(src gpucontext.PointerEventSource) Option {
	return func(h *Host) { h.pointer = src }
}

// WithEventSource routes window resize events to the engine viewport.
func WithEventSource(src gpucontext.EventSource) Option {
	return func(h *Host) { h.events = src }
}

// WithPlatform uses the platform reduced-motion setting for overlay
// animations.
func WithPlatform(p gpucontext.PlatformProvider) Option {
	return func(h *Host) { h.platform = p }
}

// WithLogger sets the host logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// Host binds an engine to a host window.
type Host struct {
	engine   *chart.Engine
	window   gpucontext.WindowProvider
	source   *TickSource
	pointer  gpucontext.PointerEventSource
	events   gpucontext.EventSource
	platform gpucontext.PlatformProvider
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Bind installs a window tick source on the engine scheduler, sizes the
// viewport from the window and registers the optional input handlers.
func Bind(e *chart.Engine, window gpucontext.WindowProvider, opts ...Option) (*Host, error) {
	if e == nil {
		return nil, ErrNilEngine
	}
	src, err := NewTickSource(window)
	if err != nil {
		return nil, err
	}
	h := &Host{
		engine: e,
		window: window,
		source: src,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := h.syncViewport(); err != nil {
		return nil, err
	}
	if h.platform != nil {
		e.SetMotionPreference(h.platform)
	}
	if err := e.Scheduler().SetTickSource(src, true); err != nil {
		return nil, fmt.Errorf("gghost: install tick source: %w", err)
	}
	if h.pointer != nil {
		h.pointer.OnPointer(h.onPointer)
	}
	if h.events != nil {
		h.events.OnResize(func(w, hgt int) {
			if err := h.resize(w, hgt); err != nil {
				h.logger.Warn("gghost: resize", "width", w, "height", hgt, "err", err)
			}
		})
	}
	h.logger.Info("gghost: bound", "pointer", h.pointer != nil, "events", h.events != nil, "platform", h.platform != nil)
	return h, nil
}

// Source returns the window tick source.
func (h *Host) Source() *TickSource { return h.source }

// Frame runs pending render work. Call it from the host draw callback.
func (h *Host) Frame() error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return chart.ErrClosed
	}
	if err := h.syncViewport(); err != nil {
		return err
	}
	_, err := h.source.Frame()
	return err
}

// Close returns the engine to its internal frame driver. It does not close
// the engine.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	err := h.engine.Scheduler().SetTickSource(nil, false)
	h.source.Close()
	if err != nil && !errors.Is(err, frame.ErrClosed) {
		return err
	}
	return nil
}

func (h *Host) syncViewport() error {
	w, hgt := h.window.Size()
	return h.resize(w, hgt)
}

// resize applies a window size in logical points. Unchanged sizes and
// minimized windows are ignored.
func (h *Host) resize(w, hgt int) error {
	if w <= 0 || hgt <= 0 {
		return nil
	}
	sf := h.window.ScaleFactor()
	cw, ch, cdpr := h.engine.Viewport()
	if cw == float64(w) && ch == float64(hgt) && cdpr == sf {
		return nil
	}
	return h.engine.Resize(float64(w), float64(hgt), sf)
}

func (h *Host) onPointer(ev gpucontext.PointerEvent) {
	if !ev.IsPrimary {
		return
	}
	switch ev.Type {
	case gpucontext.PointerEnter, gpucontext.PointerMove, gpucontext.PointerDown:
		h.engine.SetCursor(ev.X, ev.Y)
	case gpucontext.PointerLeave, gpucontext.PointerCancel:
		h.engine.ClearCursor()
	}
}
