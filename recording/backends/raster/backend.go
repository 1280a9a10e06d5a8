// Package raster replays chart recordings onto a gg.Context.
//
// It is the reference rendering backend: solid fills, polylines with width
// and dash, rectangular clips and anchored text drawn with a gg/text face.
// Output is available as an image or encoded PNG.
//
//	b, err := raster.NewBackend(raster.WithScale(2))
//	if err != nil {
//		return err
//	}
//	if err := frame.Playback(b); err != nil {
//		return err
//	}
//	err = b.SavePNG("frame.png")
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/chart/recording"
)

// ErrNotStarted is returned by output methods before the first Begin.
var ErrNotStarted = errors.New("raster: no frame rendered")

// Option configures a Backend.
type Option func(*Backend)

// WithScale renders at scale device pixels per logical pixel.
func WithScale(scale float64) Option {
	return func(b *Backend) {
		if scale > 0 {
			b.scale = scale
		}
	}
}

// WithFontSource sets the font used for text. The default is Go Regular.
func WithFontSource(src *text.FontSource) Option {
	return func(b *Backend) {
		if src != nil {
			b.source = src
		}
	}
}

// Backend renders recordings with gg. It is not safe for concurrent use.
type Backend struct {
	ctx    *gg.Context
	source *text.FontSource
	faces  map[float64]text.Face
	scale  float64
	width  int
	height int
	err    error
}

var (
	_ recording.Backend       = (*Backend)(nil)
	_ recording.WriterBackend = (*Backend)(nil)
	_ recording.ImageBackend  = (*Backend)(nil)
)

// NewBackend creates a backend. The context is allocated by Begin.
func NewBackend(opts ...Option) (*Backend, error) {
	b := &Backend{
		scale: 1,
		faces: make(map[float64]text.Face),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.source == nil {
		src, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("raster: loading Go Regular: %w", err)
		}
		b.source = src
	}
	return b, nil
}

// Begin allocates a device-pixel canvas for a width x height logical frame.
// The context is reused while the size is unchanged.
func (b *Backend) Begin(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("raster: invalid frame size %dx%d", width, height)
	}
	dw := int(float64(width)*b.scale + 0.5)
	dh := int(float64(height)*b.scale + 0.5)
	if b.ctx == nil || b.ctx.Width() != dw || b.ctx.Height() != dh {
		if b.ctx != nil {
			b.ctx.Close()
		}
		b.ctx = gg.NewContext(dw, dh)
	} else {
		b.ctx.ResetClip()
		b.ctx.Clear()
	}
	b.ctx.Identity()
	b.ctx.Scale(b.scale, b.scale)
	b.width, b.height = width, height
	b.err = nil
	return nil
}

// End reports the first drawing error of the frame.
func (b *Backend) End() error {
	return b.err
}

// Save pushes the clip state.
func (b *Backend) Save() { b.ctx.Push() }

// Restore pops the clip state.
func (b *Backend) Restore() { b.ctx.Pop() }

// Clip intersects the clip region with r.
func (b *Backend) Clip(r recording.Rect) {
	b.ctx.ClipRect(r.X, r.Y, r.W, r.H)
}

// Clear fills the canvas with c.
func (b *Backend) Clear(c color.NRGBA) {
	b.ctx.ClearWithColor(gg.FromColor(c))
}

// FillRect fills r with c.
func (b *Backend) FillRect(r recording.Rect, c color.NRGBA) {
	b.ctx.SetColor(c)
	b.ctx.DrawRectangle(r.X, r.Y, r.W, r.H)
	b.keep(b.ctx.Fill())
}

// StrokePolyline strokes pts with c and s.
func (b *Backend) StrokePolyline(pts []recording.Point, c color.NRGBA, s recording.Stroke) {
	if len(pts) < 2 {
		return
	}
	b.ctx.SetColor(c)
	b.ctx.SetLineWidth(s.Width)
	b.ctx.SetDash(s.Dash...)
	b.ctx.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		b.ctx.LineTo(p.X, p.Y)
	}
	b.keep(b.ctx.Stroke())
}

// DrawText draws s so that the anchor fraction of its extent lands on
// (x, y).
func (b *Backend) DrawText(s string, x, y, size float64, anchor recording.Anchor, c color.NRGBA) {
	face := b.face(size)
	w, h := text.Measure(s, face)
	ascent := face.Metrics().Ascent
	b.ctx.SetFont(face)
	b.ctx.SetColor(c)
	b.ctx.DrawString(s, x-w*anchor.X, y-h*anchor.Y+ascent)
}

func (b *Backend) face(size float64) text.Face {
	f, ok := b.faces[size]
	if !ok {
		f = b.source.Face(size)
		b.faces[size] = f
	}
	return f
}

func (b *Backend) keep(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

// Image returns the rendered frame in device pixels, or nil before Begin.
func (b *Backend) Image() image.Image {
	if b.ctx == nil {
		return nil
	}
	return b.ctx.Image()
}

// Size returns the logical size of the last frame.
func (b *Backend) Size() (width, height int) {
	return b.width, b.height
}

// WriteTo writes the frame as PNG.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	if b.ctx == nil {
		return 0, ErrNotStarted
	}
	cw := &countingWriter{w: w}
	err := png.Encode(cw, b.ctx.Image())
	return cw.n, err
}

// SavePNG writes the frame to a PNG file.
func (b *Backend) SavePNG(path string) error {
	if b.ctx == nil {
		return ErrNotStarted
	}
	return b.ctx.SavePNG(path)
}

// Close releases the context.
func (b *Backend) Close() error {
	if b.ctx == nil {
		return nil
	}
	err := b.ctx.Close()
	b.ctx = nil
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
