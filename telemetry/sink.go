package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

var (
	// ErrInvalidConfig is returned for unusable sink configuration.
	ErrInvalidConfig = errors.New("telemetry: invalid configuration")

	// ErrRegistration is returned when collectors or instruments cannot be
	// created.
	ErrRegistration = errors.New("telemetry: registration failed")

	// ErrClosed is returned by a sink after Close.
	ErrClosed = errors.New("telemetry: sink closed")
)

// FrameStats describes one render pass.
type FrameStats struct {
	// Frame is the scheduler frame number the pass ran in.
	Frame uint64

	// Duration is the wall time spent in the pass.
	Duration time.Duration

	// Budget is the advisory frame budget.
	Budget time.Duration

	// OverBudget reports Duration > Budget for a non-zero budget.
	OverBudget bool

	SlicesDrained  int
	SamplesDrained int

	// SlicesEvicted is the number of slices the ingest bus dropped since
	// the previous pass.
	SlicesEvicted uint64

	// Callbacks is the number of scheduled callbacks that shared the tick.
	Callbacks int
}

// ChartMetric is a named engine gauge such as "bus.count".
type ChartMetric struct {
	Name  string
	Value float64
}

// Sink receives engine telemetry.
type Sink interface {
	RecordFrame(ctx context.Context, s FrameStats) error
	RecordMetric(ctx context.Context, m ChartMetric) error
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) RecordFrame(context.Context, FrameStats) error   { return nil }
func (discard) RecordMetric(context.Context, ChartMetric) error { return nil }

// Multi fans telemetry out to several sinks. Every sink receives every
// record; errors are joined.
type Multi []Sink

// RecordFrame implements Sink.
func (m Multi) RecordFrame(ctx context.Context, s FrameStats) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.RecordFrame(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordMetric implements Sink.
func (m Multi) RecordMetric(ctx context.Context, cm ChartMetric) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.RecordMetric(ctx, cm); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Guard wraps a Sink so that its errors and panics never reach the caller.
// Failures are counted and logged at Warn.
type Guard struct {
	sink     Sink
	logger   *slog.Logger
	failures atomic.Uint64
}

// NewGuard wraps sink. A nil sink behaves as Discard and a nil logger
// discards failure logs.
func NewGuard(sink Sink, logger *slog.Logger) *Guard {
	if sink == nil {
		sink = Discard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{sink: sink, logger: logger}
}

// RecordFrame forwards s and always returns nil.
func (g *Guard) RecordFrame(ctx context.Context, s FrameStats) error {
	g.call("frame", func() error { return g.sink.RecordFrame(ctx, s) })
	return nil
}

// RecordMetric forwards m and always returns nil.
func (g *Guard) RecordMetric(ctx context.Context, m ChartMetric) error {
	g.call(m.Name, func() error { return g.sink.RecordMetric(ctx, m) })
	return nil
}

// Failures returns the number of swallowed errors and panics.
func (g *Guard) Failures() uint64 {
	return g.failures.Load()
}

func (g *Guard) call(what string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			g.failures.Add(1)
			g.logger.Warn("telemetry: sink panicked", "record", what, "panic", fmt.Sprint(r))
		}
	}()
	if err := fn(); err != nil {
		g.failures.Add(1)
		g.logger.Warn("telemetry: sink failed", "record", what, "err", err)
	}
}

// Compile-time interface checks.
var (
	_ Sink = Multi(nil)
	_ Sink = (*Guard)(nil)
	_ Sink = (*PrometheusSink)(nil)
	_ Sink = (*OTelSink)(nil)
)
