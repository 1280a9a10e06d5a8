// Package recording captures the drawing primitives of a chart frame as a
// display list that can be replayed to a rendering backend.
//
// The engine never rasterizes. Each render pass fills a Recorder with typed
// commands (rectangles, polylines, text runs, clip and state changes) and
// hands the finished Recording to whatever Backend the host supplies:
//
//	rec := recording.NewRecorder(800, 600)
//	rec.Clear(color.NRGBA{A: 255})
//	rec.StrokePolyline(points, green, recording.Stroke{Width: 1.5})
//	rec.DrawText("12:30", 40, 590, 12, recording.AnchorTopCenter, white)
//	err := rec.Finish().Playback(backend)
//
// Polyline vertices are stored once in a ResourcePool and referenced by
// handle, so a Recording is cheap to copy and safe to replay many times.
//
// The built-in gg raster backend lives in recording/backends/raster.
package recording
