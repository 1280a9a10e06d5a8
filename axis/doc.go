// Package axis turns scales into render-ready axis models.
//
// A Composer reserves a layout band for every axis Spec, runs the axis tick
// generator against its scale and returns one immutable Model per placed
// axis. Models are rebuilt every frame.
//
// Tick generation is kind-specific: LinearTicks picks 1-2-5 steps,
// LogTicks walks decades, TimeTicks snaps to calendar-friendly intervals
// and OrdinalTicks labels categories. Labels are formatted with
// golang.org/x/text so digit grouping follows the configured locale.
//
// When a Spec leaves Thickness at zero, the band is sized from the widest
// measured label. Measurers come in two flavours: BasicMeasurer uses a fixed
// bitmap face metric and needs no font data, ShapedMeasurer shapes labels
// with HarfBuzz against a real font.
package axis
