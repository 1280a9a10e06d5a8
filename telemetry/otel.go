package telemetry

import (
	"context"
	"errors"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instrumentationName identifies the meter of an OTelSink.
const instrumentationName = "github.com/gogpu/chart/telemetry"

// OTelConfig configures an OTelSink.
type OTelConfig struct {
	// MeterProvider creates the instruments. Nil means the global provider.
	MeterProvider metric.MeterProvider

	// Version is reported as the instrumentation version.
	Version string
}

// OTelSink records telemetry through OpenTelemetry instruments. It is safe
// for concurrent use.
type OTelSink struct {
	frameDuration  metric.Float64Histogram
	frames         metric.Int64Counter
	overBudget     metric.Int64Counter
	slicesDrained  metric.Int64Counter
	samplesDrained metric.Int64Counter
	slicesEvicted  metric.Int64Counter
	callbacks      metric.Int64Counter
	metrics        metric.Float64Gauge

	closed atomic.Bool
}

// NewOTelSink creates the instruments from cfg.MeterProvider.
func NewOTelSink(cfg OTelConfig) (*OTelSink, error) {
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName, metric.WithInstrumentationVersion(cfg.Version))

	s := &OTelSink{}
	var err error
	if s.frameDuration, err = meter.Float64Histogram(
		"chart.frame.duration",
		metric.WithDescription("Render pass duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultDurationBuckets...),
	); err != nil {
		return nil, errors.Join(ErrRegistration, err)
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&s.frames, "chart.frames", "Render passes completed"},
		{&s.overBudget, "chart.frames.over_budget", "Render passes that exceeded the frame budget"},
		{&s.slicesDrained, "chart.slices.drained", "Ingest slices drained by the engine"},
		{&s.samplesDrained, "chart.samples.drained", "Samples decoded from drained slices"},
		{&s.slicesEvicted, "chart.slices.evicted", "Ingest slices dropped on overload"},
		{&s.callbacks, "chart.callbacks", "Scheduled callbacks run"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, errors.Join(ErrRegistration, err)
		}
	}

	if s.metrics, err = meter.Float64Gauge(
		"chart.metric",
		metric.WithDescription("Named engine gauges"),
	); err != nil {
		return nil, errors.Join(ErrRegistration, err)
	}
	return s, nil
}

// RecordFrame implements Sink.
func (s *OTelSink) RecordFrame(ctx context.Context, st FrameStats) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.frameDuration.Record(ctx, st.Duration.Seconds())
	s.frames.Add(ctx, 1)
	if st.OverBudget {
		s.overBudget.Add(ctx, 1)
	}
	s.slicesDrained.Add(ctx, int64(st.SlicesDrained))
	s.samplesDrained.Add(ctx, int64(st.SamplesDrained))
	s.slicesEvicted.Add(ctx, int64(st.SlicesEvicted))
	s.callbacks.Add(ctx, int64(st.Callbacks))
	return nil
}

// RecordMetric implements Sink.
func (s *OTelSink) RecordMetric(ctx context.Context, m ChartMetric) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.metrics.Record(ctx, m.Value, metric.WithAttributes(attribute.String("name", m.Name)))
	return nil
}

// Close stops recording. The MeterProvider is owned by the caller.
func (s *OTelSink) Close() error {
	s.closed.Store(true)
	return nil
}
