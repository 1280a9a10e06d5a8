package chart

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/chart/aggregate"
	"github.com/gogpu/chart/axis"
	"github.com/gogpu/chart/frame"
	"github.com/gogpu/chart/ingest"
	"github.com/gogpu/chart/overlay"
	"github.com/gogpu/chart/recording"
	"github.com/gogpu/chart/telemetry"
)

// Annotation marks a point of interest on the chart.
type Annotation struct {
	// ID is assigned by Annotate.
	ID string

	// Time and Value locate the marker in data space.
	Time  float64
	Value float64

	Label string
}

// Engine ties the ingest bus, per-series aggregation, axis composition,
// frame scheduling and overlay animation into one chart.
//
// Producers write records to the bus from any goroutine. Every frame the
// render pass drains the bus, feeds the aggregators, composes axes, records
// the drawing primitives and replays them to the configured backend.
//
// All methods are safe for concurrent use.
type Engine struct {
	opts   options
	logger *slog.Logger

	bus      *ingest.Bus
	sched    *frame.Scheduler
	composer *axis.Composer
	sink     *telemetry.Guard

	invalidated atomic.Bool
	closed      atomic.Bool
	callbacks   atomic.Uint64
	frames      atomic.Uint64

	// mu guards the consumer state below. The render pass holds it for the
	// whole frame.
	mu          sync.Mutex
	series      map[uint32]*series
	order       []*series
	anim        *overlay.Animator
	recorder    *recording.Recorder
	width       float64
	height      float64
	dpr         float64
	annotations []Annotation
	lastEvicted uint64
	last        *recording.Recording
	samples     []ingest.Sample
	trades      []ingest.Trade
}

// New creates an engine. The internal frame driver starts immediately
// unless WithAutoTick(false) is given.
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validViewport(o.width, o.height, o.dpr); err != nil {
		return nil, err
	}
	if !(o.visibleSpan > 0) || math.IsInf(o.visibleSpan, 0) {
		return nil, fmt.Errorf("%w: visible span %v", ErrInvalidConfiguration, o.visibleSpan)
	}
	if o.timeAxis.Orientation.Vertical() || !o.valueAxis.Orientation.Vertical() {
		return nil, fmt.Errorf("%w: time axis must be horizontal and value axis vertical", ErrInvalidConfiguration)
	}
	if len(o.theme.Palette) == 0 {
		o.theme.Palette = DefaultTheme().Palette
	}

	logger := Logger()
	bus, err := ingest.NewBus(o.capacity, ingest.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	sched, err := frame.NewScheduler(append([]frame.Option{frame.WithLogger(logger)}, o.schedOpts...)...)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	e := &Engine{
		opts:     o,
		logger:   logger,
		bus:      bus,
		sched:    sched,
		composer: axis.NewComposer(axis.WithMeasurer(o.measurer), axis.WithLogger(logger)),
		series:   make(map[uint32]*series),
		anim:     overlay.NewAnimator(o.animOpts...),
		recorder: recording.NewRecorder(pixels(o.width), pixels(o.height)),
		width:    o.width,
		height:   o.height,
		dpr:      o.dpr,
	}
	if o.sink != nil {
		e.sink = telemetry.NewGuard(o.sink, logger)
	}
	logger.Info("chart: engine created", "capacity", o.capacity, "width", o.width, "height", o.height, "dpr", o.dpr)
	return e, nil
}

func validViewport(w, h, dpr float64) error {
	for _, v := range [...]float64{w, h, dpr} {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: viewport %vx%v@%v", ErrInvalidConfiguration, w, h, dpr)
		}
	}
	return nil
}

func pixels(v float64) int {
	return int(math.Ceil(v))
}

// Bus returns the ingest bus. Producers that write to it directly should
// call Invalidate afterwards.
func (e *Engine) Bus() *ingest.Bus { return e.bus }

// Scheduler returns the frame scheduler, for installing a host tick source.
func (e *Engine) Scheduler() *frame.Scheduler { return e.sched }

// Write enqueues records on the engine's bus and requests a frame.
func Write[T ingest.Record](e *Engine, records []T) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := ingest.Write(e.bus, records); err != nil {
		return err
	}
	e.Invalidate()
	return nil
}

// WriteBatch enqueues a columnar sample batch and requests a frame.
func (e *Engine) WriteBatch(b ingest.SampleBatch) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := ingest.WriteBatch(e.bus, b); err != nil {
		return err
	}
	e.Invalidate()
	return nil
}

// AddSeries registers a series. Records for unregistered series IDs are
// dropped by the render pass.
func (e *Engine) AddSeries(cfg SeriesConfig) error {
	if e.closed.Load() {
		return ErrClosed
	}
	s, err := newSeries(cfg)
	if err != nil {
		return err
	}
	e.mu.Lock()
	if _, dup := e.series[cfg.ID]; dup {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrDuplicateSeries, cfg.ID)
	}
	if s.cfg.Color.A == 0 && s.line != nil {
		p := e.opts.theme.Palette
		s.cfg.Color = p[len(e.order)%len(p)]
	}
	e.series[cfg.ID] = s
	e.order = append(e.order, s)
	e.mu.Unlock()

	e.logger.Info("chart: series added", "id", cfg.ID, "kind", cfg.Kind, "label", cfg.Label)
	e.Invalidate()
	return nil
}

// RemoveSeries unregisters a series and discards its state.
func (e *Engine) RemoveSeries(id uint32) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.mu.Lock()
	s, ok := e.series[id]
	if ok {
		delete(e.series, id)
		e.order = slices.DeleteFunc(e.order, func(x *series) bool { return x == s })
	}
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSeries, id)
	}
	e.Invalidate()
	return nil
}

// ResetSeries discards the aggregated state of a series.
func (e *Engine) ResetSeries(id uint32) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.mu.Lock()
	s, ok := e.series[id]
	if ok {
		s.reset()
	}
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSeries, id)
	}
	e.Invalidate()
	return nil
}

// Points returns a copy of the aggregated points of one band of a series,
// ordered by time.
func (e *Engine) Points(id uint32, band int) ([]aggregate.Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.series[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeries, id)
	}
	if band < 0 || band >= len(s.bands) {
		return nil, fmt.Errorf("%w: series %d has no band %d", ErrInvalidConfiguration, id, band)
	}
	return slices.Clone(s.bands[band]), nil
}

// Resize changes the viewport and requests a frame.
func (e *Engine) Resize(width, height, dpr float64) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := validViewport(width, height, dpr); err != nil {
		return err
	}
	e.mu.Lock()
	e.width, e.height, e.dpr = width, height, dpr
	e.recorder.Resize(pixels(width), pixels(height))
	e.mu.Unlock()
	e.Invalidate()
	return nil
}

// Viewport returns the current viewport.
func (e *Engine) Viewport() (width, height, dpr float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height, e.dpr
}

// SetCursor moves the crosshair to (x, y) in logical pixels and fades it in.
func (e *Engine) SetCursor(x, y float64) {
	e.mu.Lock()
	e.anim.MoveCursor(x, y)
	e.anim.ShowCursor()
	e.mu.Unlock()
	e.Invalidate()
}

// ClearCursor fades the crosshair out.
func (e *Engine) ClearCursor() {
	e.mu.Lock()
	e.anim.HideCursor()
	e.mu.Unlock()
	e.Invalidate()
}

// SetMotionPreference replaces the reduced-motion source of the overlay
// animator.
func (e *Engine) SetMotionPreference(p overlay.MotionPreference) {
	e.mu.Lock()
	e.anim.SetMotionPreference(p)
	e.mu.Unlock()
	e.Invalidate()
}

// Overlay returns a snapshot of the overlay animation state.
func (e *Engine) Overlay() overlay.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.anim.Snapshot()
}

// Annotate adds a marker and returns its ID.
func (e *Engine) Annotate(a Annotation) (string, error) {
	if e.closed.Load() {
		return "", ErrClosed
	}
	a.ID = uuid.NewString()
	e.mu.Lock()
	e.annotations = append(e.annotations, a)
	e.mu.Unlock()
	e.Invalidate()
	return a.ID, nil
}

// Annotations returns a copy of the current annotations.
func (e *Engine) Annotations() []Annotation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.annotations)
}

// RemoveAnnotation deletes an annotation.
func (e *Engine) RemoveAnnotation(id string) error {
	return e.withAnnotation(id, func(i int) {
		e.annotations = slices.Delete(e.annotations, i, i+1)
		e.anim.Unhighlight(id)
	})
}

// Highlight ramps up the emphasis of an annotation.
func (e *Engine) Highlight(id string) error {
	return e.withAnnotation(id, func(int) { e.anim.Highlight(id) })
}

// Unhighlight lets the emphasis of an annotation decay.
func (e *Engine) Unhighlight(id string) error {
	return e.withAnnotation(id, func(int) { e.anim.Unhighlight(id) })
}

func (e *Engine) withAnnotation(id string, fn func(i int)) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.mu.Lock()
	i := slices.IndexFunc(e.annotations, func(a Annotation) bool { return a.ID == id })
	if i >= 0 {
		fn(i)
	}
	e.mu.Unlock()
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAnnotation, id)
	}
	e.Invalidate()
	return nil
}

// Invalidate requests a render pass. Calls made before the pass runs are
// coalesced into one.
func (e *Engine) Invalidate() {
	if e.closed.Load() || !e.invalidated.CompareAndSwap(false, true) {
		return
	}
	if err := e.sched.Schedule(e.render); err != nil {
		e.invalidated.Store(false)
	}
}

// Schedule runs cb on the next frame, alongside the render pass.
func (e *Engine) Schedule(cb frame.Callback) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if cb == nil {
		return e.sched.Schedule(nil)
	}
	return e.sched.Schedule(func(tk frame.Tick) error {
		e.callbacks.Add(1)
		return cb(tk)
	})
}

// Flush requests a render pass and drains the scheduler queue on the
// calling goroutine. It is meant for hosts that drive frames manually.
func (e *Engine) Flush() error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.Invalidate()
	return e.sched.RunPending(false)
}

// Frames returns the number of completed render passes.
func (e *Engine) Frames() uint64 {
	return e.frames.Load()
}

// LastFrame returns the recording of the most recent render pass, or nil.
func (e *Engine) LastFrame() *recording.Recording {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Err returns the error that stopped the internal frame driver, or nil.
func (e *Engine) Err() error {
	return e.sched.Err()
}

// Close stops the frame scheduler, closes the bus and discards queued
// records. A render pass already running completes. Close is idempotent.
// It must not be called from a scheduled callback.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := e.sched.Close()
	if cerr := e.bus.Close(); err == nil {
		err = cerr
	}
	e.logger.Info("chart: engine closed", "frames", e.frames.Load(), "evicted", e.bus.Evicted())
	return err
}

// render is the scheduled frame callback.
func (e *Engine) render(tk frame.Tick) error {
	e.invalidated.Store(false)
	start := e.opts.clock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return nil
	}

	drained, records := e.drain()
	for _, s := range e.order {
		if s.seen && !s.announced {
			e.anim.BeginStream(s.cfg.ID)
			s.announced = true
		}
	}
	e.anim.Advance(tk)

	rec := e.draw()
	e.last = rec
	if b := e.opts.backend; b != nil {
		if err := rec.Playback(b); err != nil {
			return fmt.Errorf("chart: frame %d playback: %w", tk.Frame, err)
		}
	}
	if e.opts.onFrame != nil {
		e.opts.onFrame(rec)
	}
	e.frames.Add(1)

	evicted := e.bus.Evicted()
	delta := evicted - e.lastEvicted
	e.lastEvicted = evicted
	e.logger.Debug("chart: frame",
		"frame", tk.Frame, "slices", drained, "records", records, "evicted", delta, "commands", len(rec.Commands()))
	e.report(tk, e.opts.clock().Sub(start), drained, records, delta)

	if e.anim.Animating() {
		e.Invalidate()
	}
	return nil
}

// drain moves at most one bus capacity worth of slices into the series
// aggregators. It returns the number of slices and records consumed.
func (e *Engine) drain() (drained, records int) {
	var dropped int
	for range e.bus.Capacity() {
		sl, ok := e.bus.TryRead()
		if !ok {
			break
		}
		drained++
		records += sl.Len()

		var err error
		switch sl.Kind() {
		case ingest.KindSample:
			e.samples, err = ingest.ReadInto(e.samples[:0], sl)
			for _, r := range e.samples {
				if s := e.series[r.SeriesID]; s == nil || !s.addSample(r) {
					dropped++
				}
			}
		case ingest.KindTrade:
			e.trades, err = ingest.ReadInto(e.trades[:0], sl)
			for _, r := range e.trades {
				if s := e.series[r.SeriesID]; s == nil || !s.addTrade(r) {
					dropped++
				}
			}
		}
		if err != nil {
			e.logger.Warn("chart: unreadable slice", "kind", sl.Kind(), "err", err)
		}
		sl.Dispose()
	}
	if dropped > 0 {
		e.logger.Debug("chart: records dropped", "count", dropped)
	}
	return drained, records
}

// report sends frame statistics to the telemetry sink.
func (e *Engine) report(tk frame.Tick, d time.Duration, drained, records int, evicted uint64) {
	if e.sink == nil {
		return
	}
	ctx := context.Background()
	e.sink.RecordFrame(ctx, telemetry.FrameStats{
		Frame:          tk.Frame,
		Duration:       d,
		Budget:         tk.Budget,
		OverBudget:     tk.Budget > 0 && d > tk.Budget,
		SlicesDrained:  drained,
		SamplesDrained: records,
		SlicesEvicted:  evicted,
		Callbacks:      int(e.callbacks.Swap(0)) + 1,
	})

	points := 0
	for _, s := range e.order {
		points += s.points()
	}
	e.sink.RecordMetric(ctx, telemetry.ChartMetric{Name: "bus.count", Value: float64(e.bus.Count())})
	e.sink.RecordMetric(ctx, telemetry.ChartMetric{Name: "series.points", Value: float64(points)})
	e.sink.RecordMetric(ctx, telemetry.ChartMetric{Name: "annotations", Value: float64(len(e.annotations))})
}
