package recording

import (
	"image"
	"image/color"
	"io"
)

// Backend renders recorded commands. Backends manage their own clip stack
// for Save and Restore.
type Backend interface {
	// Begin prepares the backend for a canvas of the given size.
	Begin(width, height int) error

	// End finishes the frame and reports any deferred drawing error.
	End() error

	Save()
	Restore()

	// Clip intersects the clip region with r.
	Clip(r Rect)

	// Clear fills the whole canvas with c.
	Clear(c color.NRGBA)

	FillRect(r Rect, c color.NRGBA)
	StrokePolyline(pts []Point, c color.NRGBA, s Stroke)

	// DrawText draws s with its anchor point at (x, y). Size is the font
	// size in logical pixels.
	DrawText(s string, x, y, size float64, anchor Anchor, c color.NRGBA)
}

// WriterBackend extends Backend with encoded output.
type WriterBackend interface {
	Backend

	// WriteTo writes the rendered frame. It should only be called after End.
	WriteTo(w io.Writer) (int64, error)
}

// ImageBackend extends Backend with access to the rendered pixels.
type ImageBackend interface {
	Backend

	// Image returns the rendered frame, or nil before the first Begin.
	Image() image.Image
}
