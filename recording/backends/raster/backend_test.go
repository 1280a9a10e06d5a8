package raster

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/gogpu/chart/recording"
)

var (
	black = color.NRGBA{0, 0, 0, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	white = color.NRGBA{255, 255, 255, 255}
)

func newBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	b, err := NewBackend(opts...)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xE000 && g < 0x2000 && b < 0x2000
}

func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r < 0x1000 && g < 0x1000 && b < 0x1000
}

func TestBackend_FillRect(t *testing.T) {
	rec := recording.NewRecorder(100, 80)
	rec.Clear(black)
	rec.FillRect(recording.Rect{X: 10, Y: 10, W: 40, H: 30}, red)

	b := newBackend(t)
	if err := rec.Finish().Playback(b); err != nil {
		t.Fatal(err)
	}
	img := b.Image()
	if got := img.Bounds().Dx(); got != 100 {
		t.Fatalf("width = %d", got)
	}
	if !isRed(img.At(30, 25)) {
		t.Errorf("inside pixel = %v, want red", img.At(30, 25))
	}
	if !isBlack(img.At(80, 70)) {
		t.Errorf("outside pixel = %v, want black", img.At(80, 70))
	}
	if w, h := b.Size(); w != 100 || h != 80 {
		t.Errorf("Size = %dx%d", w, h)
	}
}

func TestBackend_Scale(t *testing.T) {
	rec := recording.NewRecorder(50, 40)
	rec.Clear(black)
	rec.FillRect(recording.Rect{X: 0, Y: 0, W: 25, H: 40}, red)

	b := newBackend(t, WithScale(2))
	if err := rec.Finish().Playback(b); err != nil {
		t.Fatal(err)
	}
	bounds := b.Image().Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Fatalf("device size = %v, want 100x80", bounds)
	}
	if !isRed(b.Image().At(40, 40)) || !isBlack(b.Image().At(60, 40)) {
		t.Error("fill not scaled to device pixels")
	}
}

func TestBackend_StrokeAndText(t *testing.T) {
	rec := recording.NewRecorder(120, 60)
	rec.Clear(black)
	rec.Line(0, 50, 120, 50, white, recording.Stroke{Width: 2})
	rec.DrawText("12:30", 60, 20, 14, recording.AnchorCenter, white)

	b := newBackend(t)
	if err := rec.Finish().Playback(b); err != nil {
		t.Fatal(err)
	}
	img := b.Image()
	if isBlack(img.At(60, 50)) {
		t.Error("stroke not drawn")
	}

	lit := 0
	for y := 5; y < 35; y++ {
		for x := 30; x < 90; x++ {
			if !isBlack(img.At(x, y)) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("text not drawn around its anchor")
	}
}

func TestBackend_Output(t *testing.T) {
	b := newBackend(t)
	if _, err := b.WriteTo(&bytes.Buffer{}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("WriteTo before Begin = %v", err)
	}
	if b.Image() != nil {
		t.Error("Image before Begin not nil")
	}

	rec := recording.NewRecorder(16, 16)
	rec.Clear(red)
	if err := rec.Finish().Playback(b); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	if err != nil || n != int64(buf.Len()) || n == 0 {
		t.Fatalf("WriteTo = %d, %v (buffer %d)", n, err, buf.Len())
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !isRed(img.At(8, 8)) {
		t.Errorf("decoded pixel = %v", img.At(8, 8))
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := b.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
}

func TestBackend_BeginRejectsEmptyFrame(t *testing.T) {
	b := newBackend(t)
	if err := b.Begin(0, 10); err == nil {
		t.Error("Begin(0, 10) succeeded")
	}
}

func TestBackend_ReusesContext(t *testing.T) {
	b := newBackend(t)
	first := recording.NewRecorder(20, 20)
	first.FillRect(recording.Rect{W: 20, H: 20}, red)
	if err := first.Finish().Playback(b); err != nil {
		t.Fatal(err)
	}
	// A second frame of the same size starts from a cleared canvas.
	if err := recording.NewRecorder(20, 20).Finish().Playback(b); err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := b.Image().At(10, 10).RGBA(); a != 0 {
		t.Error("previous frame leaked into the next")
	}
}
