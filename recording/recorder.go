package recording

import (
	"image/color"
	"math"
)

// Recorder captures drawing primitives as commands. Use Finish to obtain a
// Recording that can be replayed to a Backend.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	width, height int
	commands      []Command
	resources     *ResourcePool
	depth         int
}

// NewRecorder creates a Recorder for a canvas of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		width:     width,
		height:    height,
		commands:  make([]Command, 0, 256),
		resources: NewResourcePool(),
	}
}

// Width returns the canvas width.
func (r *Recorder) Width() int { return r.width }

// Height returns the canvas height.
func (r *Recorder) Height() int { return r.height }

// Len returns the number of commands recorded so far.
func (r *Recorder) Len() int { return len(r.commands) }

// Save records a clip state save.
func (r *Recorder) Save() {
	r.depth++
	r.commands = append(r.commands, SaveCommand{})
}

// Restore records a clip state restore. Unbalanced restores are dropped.
func (r *Recorder) Restore() {
	if r.depth == 0 {
		return
	}
	r.depth--
	r.commands = append(r.commands, RestoreCommand{})
}

// Clip records a rectangular clip.
func (r *Recorder) Clip(rect Rect) {
	r.commands = append(r.commands, ClipCommand{Rect: rect})
}

// Clear records a full-canvas fill.
func (r *Recorder) Clear(c color.NRGBA) {
	r.commands = append(r.commands, ClearCommand{Color: c})
}

// FillRect records a filled rectangle. Empty rectangles and fully
// transparent colors are dropped.
func (r *Recorder) FillRect(rect Rect, c color.NRGBA) {
	if rect.Empty() || c.A == 0 {
		return
	}
	r.commands = append(r.commands, FillRectCommand{Rect: rect, Color: c})
}

// StrokePolyline records a stroked run of points. Non-finite points split
// the run. Runs of fewer than two points and fully transparent colors are
// dropped.
func (r *Recorder) StrokePolyline(pts []Point, c color.NRGBA, s Stroke) {
	if c.A == 0 || !(s.Width > 0) {
		return
	}
	start := 0
	for i := 0; i <= len(pts); i++ {
		if i < len(pts) && finite(pts[i]) {
			continue
		}
		if i-start >= 2 {
			ref := r.resources.AddPolyline(pts[start:i])
			r.commands = append(r.commands, StrokePolylineCommand{Points: ref, Color: c, Stroke: cloneStroke(s)})
		}
		start = i + 1
	}
}

// Line records a single segment.
func (r *Recorder) Line(x1, y1, x2, y2 float64, c color.NRGBA, s Stroke) {
	r.StrokePolyline([]Point{{x1, y1}, {x2, y2}}, c, s)
}

// DrawText records a text run. Empty strings are dropped.
func (r *Recorder) DrawText(s string, x, y, size float64, anchor Anchor, c color.NRGBA) {
	if s == "" || c.A == 0 || !(size > 0) {
		return
	}
	r.commands = append(r.commands, DrawTextCommand{Text: s, X: x, Y: y, Size: size, Anchor: anchor, Color: c})
}

// Finish closes any open Save, returns the Recording and resets the
// Recorder for the next frame.
func (r *Recorder) Finish() *Recording {
	for r.depth > 0 {
		r.Restore()
	}
	rec := &Recording{
		width:     r.width,
		height:    r.height,
		commands:  r.commands,
		resources: r.resources,
	}
	r.commands = make([]Command, 0, cap(r.commands))
	r.resources = NewResourcePool()
	return rec
}

// Resize changes the canvas size of subsequent recordings.
func (r *Recorder) Resize(width, height int) {
	r.width, r.height = width, height
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func cloneStroke(s Stroke) Stroke {
	if s.Dash != nil {
		s.Dash = append([]float64(nil), s.Dash...)
	}
	return s
}

// Recording is an immutable list of drawing commands.
type Recording struct {
	width, height int
	commands      []Command
	resources     *ResourcePool
}

// Width returns the canvas width.
func (r *Recording) Width() int { return r.width }

// Height returns the canvas height.
func (r *Recording) Height() int { return r.height }

// Commands returns the recorded commands. The slice must not be modified.
func (r *Recording) Commands() []Command { return r.commands }

// Resources returns the resource pool.
func (r *Recording) Resources() *ResourcePool { return r.resources }

// Count returns the number of commands of type t.
func (r *Recording) Count(t CommandType) int {
	n := 0
	for _, c := range r.commands {
		if c.Type() == t {
			n++
		}
	}
	return n
}

// Texts returns the strings of every DrawText command in order.
func (r *Recording) Texts() []string {
	var out []string
	for _, c := range r.commands {
		if t, ok := c.(DrawTextCommand); ok {
			out = append(out, t.Text)
		}
	}
	return out
}

// Playback replays the recording to backend.
func (r *Recording) Playback(backend Backend) error {
	if err := backend.Begin(r.width, r.height); err != nil {
		return err
	}
	for _, cmd := range r.commands {
		switch c := cmd.(type) {
		case SaveCommand:
			backend.Save()
		case RestoreCommand:
			backend.Restore()
		case ClipCommand:
			backend.Clip(c.Rect)
		case ClearCommand:
			backend.Clear(c.Color)
		case FillRectCommand:
			backend.FillRect(c.Rect, c.Color)
		case StrokePolylineCommand:
			backend.StrokePolyline(r.resources.Polyline(c.Points), c.Color, c.Stroke)
		case DrawTextCommand:
			backend.DrawText(c.Text, c.X, c.Y, c.Size, c.Anchor, c.Color)
		}
	}
	return backend.End()
}
