// Package chart is a real-time streaming chart engine.
//
// # Overview
//
// Producers write typed records to a bounded ingest bus from any
// goroutine. Once per frame the engine drains the bus, folds records into
// rolling time-bucket aggregators, composes the axes, records the frame as
// a display list and replays it to a backend.
//
// # Quick Start
//
//	rb, err := raster.NewBackend()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	e, err := chart.New(
//	    chart.WithViewport(1280, 720, 1),
//	    chart.WithBackend(rb),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Close()
//
//	e.AddSeries(chart.SeriesConfig{ID: 1, Kind: chart.SeriesLine, Bucket: 1, Window: 60})
//	chart.Write(e, []ingest.Sample{{SeriesID: 1, Time: now, Value: 42}})
//
// # Architecture
//
// The engine is organized into:
//   - ingest: the lock-free bus and the record wire format
//   - aggregate: bucket windows and band routers
//   - scale, layout, axis: coordinate mapping and axis composition
//   - frame: the coalescing frame scheduler and tick sources
//   - overlay: cursor, emphasis and series entry animations
//   - recording: the display list and its backends
//   - telemetry: frame statistics sinks
//
// # Frames
//
// By default the scheduler runs its own driver goroutine. Hosts with a
// display loop install a tick source (see integration/gghost) and hosts
// that render offline disable the driver with WithAutoTick(false) and call
// Flush.
//
// # Logging
//
// The engine logs through the logger installed with SetLogger. Nothing is
// logged by default.
package chart
