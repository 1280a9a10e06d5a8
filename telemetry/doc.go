// Package telemetry delivers per-frame engine statistics to optional sinks.
//
// A Sink receives one FrameStats per render pass and any number of named
// ChartMetric values. Sinks are fire-and-forget from the engine's point of
// view: wrap them in a Guard so that a failing or panicking sink never
// affects rendering.
//
// Two exporters are provided. PrometheusSink registers collectors with a
// caller-supplied registry. OTelSink records through an OpenTelemetry
// MeterProvider.
//
//	reg := prometheus.NewRegistry()
//	ps, err := telemetry.NewPrometheusSink(telemetry.PrometheusConfig{Registry: reg})
//	if err != nil {
//		return err
//	}
//	sink := telemetry.NewGuard(ps, logger)
package telemetry
