package chart

import (
	"time"

	"github.com/gogpu/chart/axis"
	"github.com/gogpu/chart/frame"
	"github.com/gogpu/chart/layout"
	"github.com/gogpu/chart/overlay"
	"github.com/gogpu/chart/recording"
	"github.com/gogpu/chart/telemetry"
)

// Option configures an Engine during creation.
//
// Example:
//
//	e, err := chart.New(
//	    chart.WithViewport(1280, 720, 2),
//	    chart.WithBackend(rasterBackend),
//	    chart.WithTelemetry(promSink),
//	)
type Option func(*options)

// AxisConfig describes one of the two engine axes.
type AxisConfig struct {
	Orientation layout.Orientation

	// Thickness is the band size; zero sizes it from the labels.
	Thickness float64

	Style axis.Style

	// Log selects a logarithmic value axis. Ignored for the time axis.
	Log bool
}

type options struct {
	capacity      int
	width, height float64
	dpr           float64
	visibleSpan   float64

	clock     func() time.Time
	schedOpts []frame.Option
	animOpts  []overlay.Option
	measurer  axis.Measurer

	timeAxis  AxisConfig
	valueAxis AxisConfig
	theme     Theme

	backend recording.Backend
	onFrame func(*recording.Recording)
	sink    telemetry.Sink
}

// Defaults used by New.
const (
	DefaultCapacity    = 4096
	DefaultVisibleSpan = 60.0
)

func defaultOptions() options {
	return options{
		capacity:    DefaultCapacity,
		width:       800,
		height:      600,
		dpr:         1,
		visibleSpan: DefaultVisibleSpan,
		clock:       time.Now,
		timeAxis:    AxisConfig{Orientation: layout.Bottom, Style: axis.Style{Grid: true}},
		valueAxis:   AxisConfig{Orientation: layout.Left, Style: axis.Style{Grid: true}},
		theme:       DefaultTheme(),
	}
}

// WithCapacity sets the ingest bus capacity in slices.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithViewport sets the initial viewport in logical pixels and the device
// pixel ratio.
func WithViewport(width, height, dpr float64) Option {
	return func(o *options) {
		o.width, o.height, o.dpr = width, height, dpr
	}
}

// WithVisibleSpan sets the width of the time axis in seconds. The right
// edge follows the newest record.
func WithVisibleSpan(seconds float64) Option {
	return func(o *options) {
		o.visibleSpan = seconds
	}
}

// WithFrameBudget sets the advisory frame budget.
func WithFrameBudget(d time.Duration) Option {
	return func(o *options) {
		o.schedOpts = append(o.schedOpts, frame.WithFrameBudget(d))
	}
}

// WithPacing sets the minimum interval between frames of the internal
// driver.
func WithPacing(d time.Duration) Option {
	return func(o *options) {
		o.schedOpts = append(o.schedOpts, frame.WithPacing(d))
	}
}

// WithAutoTick enables or disables the internal frame driver. Without it,
// frames run only from a host tick source or Flush.
func WithAutoTick(enabled bool) Option {
	return func(o *options) {
		o.schedOpts = append(o.schedOpts, frame.WithAutoTick(enabled))
	}
}

// WithClock sets the time source for frame timing and animation.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
			o.schedOpts = append(o.schedOpts, frame.WithClock(now))
		}
	}
}

// WithReducedMotion fixes the reduced-motion profile.
func WithReducedMotion(reduced bool) Option {
	return func(o *options) {
		o.animOpts = append(o.animOpts, overlay.WithReducedMotion(reduced))
	}
}

// WithMotionPreference reads the reduced-motion profile from p on every
// frame.
func WithMotionPreference(p overlay.MotionPreference) Option {
	return func(o *options) {
		o.animOpts = append(o.animOpts, overlay.WithMotionPreference(p))
	}
}

// WithAnimationDurations overrides the cursor, emphasis and stream
// transition durations. Zero keeps a default.
func WithAnimationDurations(cursor, emphasis, stream time.Duration) Option {
	return func(o *options) {
		if cursor > 0 {
			o.animOpts = append(o.animOpts, overlay.WithCursorDuration(cursor))
		}
		if emphasis > 0 {
			o.animOpts = append(o.animOpts, overlay.WithEmphasisDuration(emphasis))
		}
		if stream > 0 {
			o.animOpts = append(o.animOpts, overlay.WithStreamDuration(stream))
		}
	}
}

// WithMeasurer sets the label measurer used to size axes.
func WithMeasurer(m axis.Measurer) Option {
	return func(o *options) {
		o.measurer = m
	}
}

// WithTimeAxis configures the time axis.
func WithTimeAxis(c AxisConfig) Option {
	return func(o *options) {
		o.timeAxis = c
	}
}

// WithValueAxis configures the value axis.
func WithValueAxis(c AxisConfig) Option {
	return func(o *options) {
		o.valueAxis = c
	}
}

// WithTheme sets the chart colors.
func WithTheme(t Theme) Option {
	return func(o *options) {
		o.theme = t
	}
}

// WithBackend replays every frame to b.
func WithBackend(b recording.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithFrameHandler calls fn with every finished frame recording, after
// playback.
func WithFrameHandler(fn func(*recording.Recording)) Option {
	return func(o *options) {
		o.onFrame = fn
	}
}

// WithTelemetry sends per-frame statistics to s. The engine wraps s in a
// telemetry.Guard.
func WithTelemetry(s telemetry.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}
