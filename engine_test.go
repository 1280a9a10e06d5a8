package chart

import (
	"context"
	"errors"
	"image/color"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/chart/aggregate"
	"github.com/gogpu/chart/frame"
	"github.com/gogpu/chart/ingest"
	"github.com/gogpu/chart/layout"
	"github.com/gogpu/chart/recording"
	"github.com/gogpu/chart/telemetry"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// statsSink records everything it is given.
type statsSink struct {
	mu      sync.Mutex
	frames  []telemetry.FrameStats
	metrics map[string]float64
}

func (s *statsSink) RecordFrame(_ context.Context, fs telemetry.FrameStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, fs)
	return nil
}

func (s *statsSink) RecordMetric(_ context.Context, m telemetry.ChartMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metrics == nil {
		s.metrics = make(map[string]float64)
	}
	s.metrics[m.Name] = m.Value
	return nil
}

// callBackend counts playback calls.
type callBackend struct {
	begins   int
	width    int
	height   int
	fills    int
	strokes  int
	texts    int
	beginErr error
}

func (b *callBackend) Begin(w, h int) error {
	b.begins++
	b.width, b.height = w, h
	return b.beginErr
}

func (b *callBackend) End() error { return nil }

func (b *callBackend) Save() {}

func (b *callBackend) Restore() {}

func (b *callBackend) Clip(recording.Rect) {}

func (b *callBackend) Clear(color.NRGBA) {}

func (b *callBackend) FillRect(recording.Rect, color.NRGBA) { b.fills++ }

func (b *callBackend) StrokePolyline([]recording.Point, color.NRGBA, recording.Stroke) {
	b.strokes++
}

func (b *callBackend) DrawText(string, float64, float64, float64, recording.Anchor, color.NRGBA) {
	b.texts++
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	base := []Option{WithAutoTick(false), WithClock(clk.Now)}
	e, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e, clk
}

func flush(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

// settle runs frames until series entry transitions have finished.
func settle(t *testing.T, e *Engine, clk *fakeClock) {
	t.Helper()
	flush(t, e)
	clk.Advance(time.Second)
	flush(t, e)
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero width", WithViewport(0, 600, 1)},
		{"NaN dpr", WithViewport(800, 600, math.NaN())},
		{"infinite height", WithViewport(800, math.Inf(1), 1)},
		{"zero span", WithVisibleSpan(0)},
		{"zero capacity", WithCapacity(0)},
		{"vertical time axis", WithTimeAxis(AxisConfig{Orientation: layout.Left})},
		{"horizontal value axis", WithValueAxis(AxisConfig{Orientation: layout.Top})},
		{"negative budget", WithFrameBudget(-time.Millisecond)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(WithAutoTick(false), tt.opt)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
			if e != nil {
				t.Error("engine returned with error")
			}
		})
	}
}

func TestEngine_Defaults(t *testing.T) {
	e, _ := newTestEngine(t)
	if w, h, dpr := e.Viewport(); w != 800 || h != 600 || dpr != 1 {
		t.Errorf("Viewport = %v, %v, %v", w, h, dpr)
	}
	if e.Bus().Capacity() != DefaultCapacity {
		t.Errorf("Capacity = %d", e.Bus().Capacity())
	}
	if e.Scheduler().Budget() != frame.DefaultFrameBudget {
		t.Errorf("Budget = %v", e.Scheduler().Budget())
	}
	if e.LastFrame() != nil || e.Frames() != 0 {
		t.Error("frame recorded before first Flush")
	}
}

// =============================================================================
// Series
// =============================================================================

func TestEngine_LineSeries(t *testing.T) {
	var got []*recording.Recording
	e, _ := newTestEngine(t, WithFrameHandler(func(r *recording.Recording) { got = append(got, r) }))
	if err := e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10}); err != nil {
		t.Fatal(err)
	}
	err := Write(e, []ingest.Sample{
		{SeriesID: 1, Time: 100.2, Value: 1},
		{SeriesID: 1, Time: 100.7, Value: 2},
		{SeriesID: 1, Time: 101.5, Value: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	flush(t, e)

	pts, err := e.Points(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []aggregate.Point{
		{SeriesID: 1, Time: 100.5, Value: 3},
		{SeriesID: 1, Time: 101.5, Value: 3},
	}
	if !slices.Equal(pts, want) {
		t.Errorf("Points = %+v, want %+v", pts, want)
	}
	if e.Frames() != 1 || len(got) != 1 {
		t.Fatalf("Frames = %d, handler calls = %d", e.Frames(), len(got))
	}
	if e.LastFrame() != got[0] {
		t.Error("LastFrame differs from handler recording")
	}
	rec := got[0]
	if rec.Width() != 800 || rec.Height() != 600 {
		t.Errorf("recording size = %dx%d", rec.Width(), rec.Height())
	}
	if rec.Count(recording.CmdClear) != 1 || rec.Count(recording.CmdClip) != 1 {
		t.Errorf("clear = %d, clip = %d", rec.Count(recording.CmdClear), rec.Count(recording.CmdClip))
	}
	if rec.Count(recording.CmdStrokePolyline) == 0 || len(rec.Texts()) == 0 {
		t.Error("no lines or labels recorded")
	}
}

func TestEngine_SeriesColorsFromPalette(t *testing.T) {
	e, _ := newTestEngine(t)
	for id := uint32(1); id <= 2; id++ {
		if err := e.AddSeries(SeriesConfig{ID: id, Kind: SeriesLine, Bucket: 1, Window: 10}); err != nil {
			t.Fatal(err)
		}
	}
	p := DefaultTheme().Palette
	if e.series[1].cfg.Color != p[0] || e.series[2].cfg.Color != p[1] {
		t.Errorf("colors = %v, %v", e.series[1].cfg.Color, e.series[2].cfg.Color)
	}
}

func TestEngine_VolumeSeries(t *testing.T) {
	e, clk := newTestEngine(t)
	if err := e.AddSeries(SeriesConfig{ID: 2, Kind: SeriesVolumeHistogram, Bucket: 1, Window: 10}); err != nil {
		t.Fatal(err)
	}
	err := Write(e, []ingest.Trade{
		{SeriesID: 2, Time: 50.1, Price: 10, Quantity: 3, Side: ingest.SideBuy},
		{SeriesID: 2, Time: 50.2, Price: 10, Quantity: 2, Side: ingest.SideSell},
		{SeriesID: 2, Time: 50.3, Price: 10, Quantity: 4, Side: ingest.SideBuy},
		{SeriesID: 2, Time: 50.4, Price: 10, Quantity: 9, Side: 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	settle(t, e, clk)

	sell, _ := e.Points(2, aggregate.BandSell)
	buy, _ := e.Points(2, aggregate.BandBuy)
	if len(sell) != 1 || sell[0].Value != 2 {
		t.Errorf("sell = %+v", sell)
	}
	if len(buy) != 1 || buy[0].Value != 7 {
		t.Errorf("buy = %+v", buy)
	}
	if n := e.LastFrame().Count(recording.CmdFillRect); n != 2 {
		t.Errorf("bars = %d, want 2", n)
	}
	if _, err := e.Points(2, 2); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("band 2 err = %v", err)
	}
}

func TestEngine_HeatmapSeries(t *testing.T) {
	e, clk := newTestEngine(t)
	cfg := SeriesConfig{ID: 3, Kind: SeriesDeltaHeatmap, Bucket: 1, Window: 10, Thresholds: []float64{0}}
	if err := e.AddSeries(cfg); err != nil {
		t.Fatal(err)
	}
	err := Write(e, []ingest.Trade{
		{SeriesID: 3, Time: 10.1, Price: 100, Quantity: 1},
		{SeriesID: 3, Time: 10.2, Price: 99, Quantity: 2},
		{SeriesID: 3, Time: 11.3, Price: 101, Quantity: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	settle(t, e, clk)

	down, _ := e.Points(3, 0)
	up, _ := e.Points(3, 1)
	if len(down) != 1 || down[0].Value != 2 {
		t.Errorf("down band = %+v", down)
	}
	// The first trade has no reference price and counts as unchanged.
	if len(up) != 2 || up[0].Value != 1 || up[1].Value != 4 {
		t.Errorf("up band = %+v", up)
	}
	if n := e.LastFrame().Count(recording.CmdFillRect); n != 3 {
		t.Errorf("cells = %d, want 3", n)
	}
}

func TestEngine_SeriesErrors(t *testing.T) {
	e, _ := newTestEngine(t)
	cfg := SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10}
	if err := e.AddSeries(cfg); err != nil {
		t.Fatal(err)
	}
	if err := e.AddSeries(cfg); !errors.Is(err, ErrDuplicateSeries) {
		t.Errorf("duplicate err = %v", err)
	}
	if err := e.AddSeries(SeriesConfig{ID: 2, Kind: SeriesLine, Bucket: 0, Window: 10}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("zero bucket err = %v", err)
	}
	if err := e.AddSeries(SeriesConfig{ID: 3, Kind: SeriesKind(9), Bucket: 1, Window: 1}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("bad kind err = %v", err)
	}
	if err := e.RemoveSeries(7); !errors.Is(err, ErrUnknownSeries) {
		t.Errorf("remove unknown err = %v", err)
	}
	if err := e.ResetSeries(7); !errors.Is(err, ErrUnknownSeries) {
		t.Errorf("reset unknown err = %v", err)
	}
	if _, err := e.Points(7, 0); !errors.Is(err, ErrUnknownSeries) {
		t.Errorf("points unknown err = %v", err)
	}
}

func TestEngine_UnknownSeriesRecordsDropped(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := Write(e, []ingest.Sample{{SeriesID: 9, Time: 1, Value: 1}}); err != nil {
		t.Fatal(err)
	}
	flush(t, e)
	if e.Bus().Count() != 0 {
		t.Errorf("bus count = %d after drain", e.Bus().Count())
	}
	if e.Frames() != 1 {
		t.Errorf("Frames = %d", e.Frames())
	}
}

func TestEngine_ResetAndRemoveSeries(t *testing.T) {
	e, _ := newTestEngine(t)
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10})
	Write(e, []ingest.Sample{{SeriesID: 1, Time: 5, Value: 1}})
	flush(t, e)

	if err := e.ResetSeries(1); err != nil {
		t.Fatal(err)
	}
	if pts, _ := e.Points(1, 0); len(pts) != 0 {
		t.Errorf("points after reset = %+v", pts)
	}
	if err := e.RemoveSeries(1); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Points(1, 0); !errors.Is(err, ErrUnknownSeries) {
		t.Errorf("points after remove err = %v", err)
	}
	if err := e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesVolumeHistogram, Bucket: 1, Window: 10}); err != nil {
		t.Errorf("re-add after remove: %v", err)
	}
}

func TestEngine_WindowRetention(t *testing.T) {
	e, _ := newTestEngine(t)
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 3})
	for ts := 0.5; ts < 10; ts++ {
		Write(e, []ingest.Sample{{SeriesID: 1, Time: ts, Value: 1}})
	}
	flush(t, e)

	pts, _ := e.Points(1, 0)
	if len(pts) == 0 || pts[0].Time-0.5 < 9.5-3 {
		t.Errorf("points outside window: %+v", pts)
	}
	if last := pts[len(pts)-1]; last.Time != 9.5 {
		t.Errorf("last point = %+v", last)
	}
}

func TestEngine_WriteBatch(t *testing.T) {
	e, _ := newTestEngine(t)
	e.AddSeries(SeriesConfig{ID: 4, Kind: SeriesLine, Bucket: 10, Window: 100})
	err := e.WriteBatch(ingest.SampleBatch{SeriesID: 4, Times: []float64{1, 2, 3}, Values: []float64{1, 1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.WriteBatch(ingest.SampleBatch{SeriesID: 4, Times: []float64{1}}); !errors.Is(err, ingest.ErrBatchMismatch) {
		t.Errorf("mismatch err = %v", err)
	}
	flush(t, e)
	pts, _ := e.Points(4, 0)
	if len(pts) != 1 || pts[0].Value != 3 {
		t.Errorf("points = %+v", pts)
	}
}

// =============================================================================
// Overlay
// =============================================================================

func TestEngine_CursorFades(t *testing.T) {
	e, clk := newTestEngine(t, WithAnimationDurations(100*time.Millisecond, 0, 0))
	e.SetCursor(400, 300)
	flush(t, e)
	if op := e.Overlay().Cursor.Opacity; op != 0 {
		t.Errorf("opacity after first frame = %v", op)
	}

	clk.Advance(50 * time.Millisecond)
	flush(t, e)
	if op := e.Overlay().Cursor.Opacity; math.Abs(op-0.5) > 1e-9 {
		t.Errorf("opacity at 50ms = %v, want 0.5", op)
	}
	dashed := 0
	for _, c := range e.LastFrame().Commands() {
		if sp, ok := c.(recording.StrokePolylineCommand); ok && len(sp.Stroke.Dash) > 0 {
			dashed++
		}
	}
	if dashed != 2 {
		t.Errorf("dashed crosshair lines = %d, want 2", dashed)
	}

	clk.Advance(80 * time.Millisecond)
	flush(t, e)
	if op := e.Overlay().Cursor.Opacity; op != 1 {
		t.Errorf("opacity settled = %v", op)
	}
	if e.Scheduler().Pending() != 0 {
		t.Error("settled overlay still scheduling frames")
	}

	e.ClearCursor()
	clk.Advance(200 * time.Millisecond)
	flush(t, e)
	if e.Overlay().Cursor.Visible {
		t.Error("cursor visible after fade out")
	}
}

func TestEngine_SeriesEntryTransition(t *testing.T) {
	e, clk := newTestEngine(t, WithAnimationDurations(0, 0, 200*time.Millisecond))
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10})
	flush(t, e)
	if len(e.Overlay().Streams) != 0 {
		t.Fatal("stream started before data")
	}

	Write(e, []ingest.Sample{{SeriesID: 1, Time: 1, Value: 1}})
	flush(t, e)
	st, ok := e.Overlay().Streams[1]
	if !ok || st.Opacity != 0 || st.Slide != 1 {
		t.Fatalf("stream at start = %+v, %v", st, ok)
	}

	clk.Advance(100 * time.Millisecond)
	flush(t, e)
	st = e.Overlay().Streams[1]
	if math.Abs(st.Opacity-0.5) > 1e-9 || math.Abs(st.Slide-0.5) > 1e-9 {
		t.Errorf("stream midway = %+v", st)
	}

	clk.Advance(time.Second)
	flush(t, e)
	if len(e.Overlay().Streams) != 0 {
		t.Error("stream transition not pruned")
	}

	// Further data does not restart the transition.
	Write(e, []ingest.Sample{{SeriesID: 1, Time: 2, Value: 1}})
	flush(t, e)
	if len(e.Overlay().Streams) != 0 {
		t.Error("transition restarted")
	}
}

func TestEngine_ReducedMotionSkipsSlide(t *testing.T) {
	e, _ := newTestEngine(t, WithReducedMotion(true))
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10})
	Write(e, []ingest.Sample{{SeriesID: 1, Time: 1, Value: 1}})
	flush(t, e)
	if st := e.Overlay().Streams[1]; st.Slide != 0 {
		t.Errorf("slide = %v under reduced motion", st.Slide)
	}
}

type motionFlag bool

func (m motionFlag) ReduceMotion() bool { return bool(m) }

func TestEngine_SetMotionPreference(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetMotionPreference(motionFlag(true))
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10})
	Write(e, []ingest.Sample{{SeriesID: 1, Time: 1, Value: 1}})
	flush(t, e)
	if st := e.Overlay().Streams[1]; st.Slide != 0 {
		t.Errorf("slide = %v with reduced-motion preference", st.Slide)
	}
}

// =============================================================================
// Annotations
// =============================================================================

func TestEngine_Annotations(t *testing.T) {
	e, clk := newTestEngine(t, WithAnimationDurations(0, 100*time.Millisecond, 0))
	id, err := e.Annotate(Annotation{Time: 0, Value: 0.5, Label: "fill"})
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != 36 {
		t.Errorf("id = %q", id)
	}
	if got := e.Annotations(); len(got) != 1 || got[0].ID != id || got[0].Label != "fill" {
		t.Errorf("Annotations = %+v", got)
	}

	if err := e.Highlight(id); err != nil {
		t.Fatal(err)
	}
	flush(t, e)
	clk.Advance(50 * time.Millisecond)
	flush(t, e)
	if em := e.Overlay().Emphasis[id]; math.Abs(em-0.5) > 1e-9 {
		t.Errorf("emphasis = %v, want 0.5", em)
	}

	if err := e.Unhighlight(id); err != nil {
		t.Fatal(err)
	}
	if err := e.Highlight("nope"); !errors.Is(err, ErrUnknownAnnotation) {
		t.Errorf("unknown highlight err = %v", err)
	}
	if err := e.RemoveAnnotation(id); err != nil {
		t.Fatal(err)
	}
	if err := e.RemoveAnnotation(id); !errors.Is(err, ErrUnknownAnnotation) {
		t.Errorf("second remove err = %v", err)
	}
	if len(e.Annotations()) != 0 {
		t.Error("annotation not removed")
	}
}

// =============================================================================
// Frames, backends and telemetry
// =============================================================================

func TestEngine_FlushCoalesces(t *testing.T) {
	e, _ := newTestEngine(t)
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10})
	for i := range 10 {
		Write(e, []ingest.Sample{{SeriesID: 1, Time: float64(i), Value: 1}})
		e.Invalidate()
	}
	if e.Scheduler().Pending() != 1 {
		t.Errorf("Pending = %d, want 1", e.Scheduler().Pending())
	}
	flush(t, e)
	if e.Frames() != 1 {
		t.Errorf("Frames = %d", e.Frames())
	}
}

func TestEngine_Backend(t *testing.T) {
	b := &callBackend{}
	e, _ := newTestEngine(t, WithBackend(b), WithViewport(640.5, 480, 2))
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10})
	Write(e, []ingest.Sample{{SeriesID: 1, Time: 1, Value: 1}, {SeriesID: 1, Time: 2, Value: 1}})
	flush(t, e)

	if b.begins != 1 || b.width != 641 || b.height != 480 {
		t.Errorf("Begin calls = %d size %dx%d", b.begins, b.width, b.height)
	}
	if b.strokes == 0 || b.texts == 0 {
		t.Errorf("strokes = %d texts = %d", b.strokes, b.texts)
	}

	b.beginErr = errors.New("device lost")
	e.Invalidate()
	err := e.Flush()
	if err == nil || !errors.Is(err, b.beginErr) {
		t.Errorf("Flush err = %v", err)
	}
}

func TestEngine_Resize(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Resize(0, 10, 1); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("err = %v", err)
	}
	if err := e.Resize(1024, 768, 2); err != nil {
		t.Fatal(err)
	}
	flush(t, e)
	if r := e.LastFrame(); r.Width() != 1024 || r.Height() != 768 {
		t.Errorf("recording = %dx%d", r.Width(), r.Height())
	}
}

func TestEngine_Telemetry(t *testing.T) {
	sink := &statsSink{}
	e, _ := newTestEngine(t, WithTelemetry(sink))
	ran := false
	if err := e.Schedule(func(frame.Tick) error { ran = true; return nil }); err != nil {
		t.Fatal(err)
	}
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10})
	Write(e, []ingest.Sample{{SeriesID: 1, Time: 1, Value: 1}, {SeriesID: 1, Time: 2, Value: 1}})
	Write(e, []ingest.Sample{{SeriesID: 1, Time: 3, Value: 1}})
	flush(t, e)

	if !ran {
		t.Error("scheduled callback did not run")
	}
	if len(sink.frames) != 1 {
		t.Fatalf("frames = %d", len(sink.frames))
	}
	fs := sink.frames[0]
	if fs.Frame != 1 || fs.SlicesDrained != 2 || fs.SamplesDrained != 3 || fs.Callbacks != 2 {
		t.Errorf("stats = %+v", fs)
	}
	if fs.Budget != frame.DefaultFrameBudget || fs.OverBudget {
		t.Errorf("budget = %v over = %v", fs.Budget, fs.OverBudget)
	}
	if sink.metrics["series.points"] != 3 || sink.metrics["bus.count"] != 0 {
		t.Errorf("metrics = %v", sink.metrics)
	}
}

func TestEngine_TelemetryEvictions(t *testing.T) {
	sink := &statsSink{}
	e, _ := newTestEngine(t, WithTelemetry(sink), WithCapacity(2))
	for i := range 5 {
		Write(e, []ingest.Sample{{SeriesID: 1, Time: float64(i), Value: 1}})
	}
	flush(t, e)
	if got := sink.frames[0].SlicesEvicted; got != 3 {
		t.Errorf("evicted = %d, want 3", got)
	}
	if got := sink.frames[0].SlicesDrained; got != 2 {
		t.Errorf("drained = %d, want 2", got)
	}

	e.Invalidate()
	flush(t, e)
	if got := sink.frames[1].SlicesEvicted; got != 0 {
		t.Errorf("second frame evicted = %d, want delta 0", got)
	}
}

type panicSink struct{}

func (panicSink) RecordFrame(context.Context, telemetry.FrameStats) error {
	panic("boom")
}

func (panicSink) RecordMetric(context.Context, telemetry.ChartMetric) error {
	return errors.New("down")
}

func TestEngine_TelemetryFailuresContained(t *testing.T) {
	e, _ := newTestEngine(t, WithTelemetry(panicSink{}))
	flush(t, e)
	if e.Frames() != 1 {
		t.Errorf("Frames = %d", e.Frames())
	}
	if e.sink.Failures() == 0 {
		t.Error("failures not counted")
	}
}

func TestEngine_LogValueAxis(t *testing.T) {
	e, _ := newTestEngine(t, WithValueAxis(AxisConfig{Orientation: layout.Right, Log: true}))
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10})
	Write(e, []ingest.Sample{{SeriesID: 1, Time: 1, Value: 5}, {SeriesID: 1, Time: 2, Value: 500}})
	flush(t, e)
	if !slices.Contains(e.LastFrame().Texts(), "100") {
		t.Errorf("labels = %v, want a 100 decade", e.LastFrame().Texts())
	}
}

func TestEngine_AutoTick(t *testing.T) {
	frames := make(chan struct{}, 16)
	e, err := New(WithFrameHandler(func(*recording.Recording) {
		select {
		case frames <- struct{}{}:
		default:
		}
	}))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10})
	if err := Write(e, []ingest.Sample{{SeriesID: 1, Time: 1, Value: 1}}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-frames:
	case <-time.After(5 * time.Second):
		t.Fatal("internal driver produced no frame")
	}
}

func TestEngine_ConcurrentWriters(t *testing.T) {
	e, _ := newTestEngine(t)
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1000, Window: 1000})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				Write(e, []ingest.Sample{{SeriesID: 1, Time: 1, Value: 1}})
			}
		}()
	}
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			default:
				e.Flush()
			}
		}
	}()
	wg.Wait()
	close(done)
	<-stopped
	flush(t, e)

	pts, _ := e.Points(1, 0)
	if len(pts) != 1 || pts[0].Value != 200 {
		t.Errorf("points = %+v, want total 200", pts)
	}
}

// =============================================================================
// Close
// =============================================================================

func TestEngine_Close(t *testing.T) {
	e, _ := newTestEngine(t)
	e.AddSeries(SeriesConfig{ID: 1, Kind: SeriesLine, Bucket: 1, Window: 10})
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}

	checks := map[string]error{
		"Write":      Write(e, []ingest.Sample{{SeriesID: 1, Time: 1, Value: 1}}),
		"WriteBatch": e.WriteBatch(ingest.SampleBatch{SeriesID: 1, Times: []float64{1}, Values: []float64{1}}),
		"AddSeries":  e.AddSeries(SeriesConfig{ID: 2, Kind: SeriesLine, Bucket: 1, Window: 1}),
		"Flush":      e.Flush(),
		"Resize":     e.Resize(10, 10, 1),
		"Schedule":   e.Schedule(func(frame.Tick) error { return nil }),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrClosed) {
			t.Errorf("%s err = %v, want ErrClosed", name, err)
		}
	}
	if _, err := e.Annotate(Annotation{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Annotate err = %v", err)
	}
}
