package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// otherMetric replaces chart metric names past the cardinality limit.
const otherMetric = "_other"

// PrometheusConfig configures a PrometheusSink.
type PrometheusConfig struct {
	// Namespace prefixes every metric. Empty means "chart".
	Namespace string

	// Subsystem is an optional second prefix.
	Subsystem string

	// Registry receives the collectors. Nil means
	// prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// DurationBuckets are the frame duration histogram buckets in seconds.
	// Nil means DefaultDurationBuckets.
	DurationBuckets []float64

	// MaxMetricNames bounds the distinct ChartMetric names exported.
	// Further names are folded into "_other". Zero means 256.
	MaxMetricNames int
}

// DefaultDurationBuckets span 0.5ms to 100ms around a 60 Hz budget.
var DefaultDurationBuckets = []float64{
	0.0005, 0.001, 0.002, 0.004, 0.008, 0.0167, 0.025, 0.033, 0.05, 0.1,
}

// PrometheusSink exports telemetry as Prometheus collectors. It is safe for
// concurrent use.
type PrometheusSink struct {
	registry   prometheus.Registerer
	collectors []prometheus.Collector

	frameDuration  prometheus.Histogram
	frames         prometheus.Counter
	overBudget     prometheus.Counter
	slicesDrained  prometheus.Counter
	samplesDrained prometheus.Counter
	slicesEvicted  prometheus.Counter
	callbacks      prometheus.Counter
	metrics        *prometheus.GaugeVec

	mu       sync.Mutex
	closed   bool
	names    map[string]struct{}
	maxNames int
}

// NewPrometheusSink creates the collectors and registers them.
func NewPrometheusSink(cfg PrometheusConfig) (*PrometheusSink, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = "chart"
	}
	if cfg.DurationBuckets == nil {
		cfg.DurationBuckets = DefaultDurationBuckets
	}
	if cfg.MaxMetricNames < 0 {
		return nil, fmt.Errorf("%w: MaxMetricNames=%d", ErrInvalidConfig, cfg.MaxMetricNames)
	}
	if cfg.MaxMetricNames == 0 {
		cfg.MaxMetricNames = 256
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		})
	}

	s := &PrometheusSink{
		registry: cfg.Registry,
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "frame_duration_seconds",
			Help:      "Render pass duration in seconds.",
			Buckets:   cfg.DurationBuckets,
		}),
		frames:         counter("frames_total", "Render passes completed."),
		overBudget:     counter("frames_over_budget_total", "Render passes that exceeded the frame budget."),
		slicesDrained:  counter("slices_drained_total", "Ingest slices drained by the engine."),
		samplesDrained: counter("samples_drained_total", "Samples decoded from drained slices."),
		slicesEvicted:  counter("slices_evicted_total", "Ingest slices dropped on overload."),
		callbacks:      counter("callbacks_total", "Scheduled callbacks run."),
		metrics: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "metric",
			Help:      "Named engine gauges.",
		}, []string{"name"}),
		names:    make(map[string]struct{}),
		maxNames: cfg.MaxMetricNames,
	}

	all := []prometheus.Collector{
		s.frameDuration, s.frames, s.overBudget, s.slicesDrained,
		s.samplesDrained, s.slicesEvicted, s.callbacks, s.metrics,
	}
	for _, c := range all {
		if err := s.registry.Register(c); err != nil {
			s.unregister()
			return nil, errors.Join(ErrRegistration, err)
		}
		s.collectors = append(s.collectors, c)
	}
	return s, nil
}

// RecordFrame implements Sink.
func (s *PrometheusSink) RecordFrame(_ context.Context, st FrameStats) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	s.frameDuration.Observe(st.Duration.Seconds())
	s.frames.Inc()
	if st.OverBudget {
		s.overBudget.Inc()
	}
	s.slicesDrained.Add(float64(st.SlicesDrained))
	s.samplesDrained.Add(float64(st.SamplesDrained))
	s.slicesEvicted.Add(float64(st.SlicesEvicted))
	s.callbacks.Add(float64(st.Callbacks))
	return nil
}

// RecordMetric implements Sink.
func (s *PrometheusSink) RecordMetric(_ context.Context, m ChartMetric) error {
	if m.Name == "" {
		return fmt.Errorf("%w: empty metric name", ErrInvalidConfig)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	name := s.boundName(m.Name)
	s.mu.Unlock()

	s.metrics.WithLabelValues(name).Set(m.Value)
	return nil
}

// boundName returns name, or otherMetric once maxNames distinct names have
// been seen. Callers hold s.mu.
func (s *PrometheusSink) boundName(name string) string {
	if _, ok := s.names[name]; ok {
		return name
	}
	if len(s.names) >= s.maxNames {
		return otherMetric
	}
	s.names[name] = struct{}{}
	return name
}

// Close unregisters the collectors. It is idempotent.
func (s *PrometheusSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.unregister()
	return nil
}

func (s *PrometheusSink) unregister() {
	for _, c := range s.collectors {
		s.registry.Unregister(c)
	}
	s.collectors = nil
}
