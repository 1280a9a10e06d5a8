package recording

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"reflect"
	"strings"
	"testing"
)

// logBackend records the calls it receives.
type logBackend struct {
	calls    []string
	beginErr error
	endErr   error
}

func (b *logBackend) Begin(w, h int) error {
	b.calls = append(b.calls, fmt.Sprintf("Begin %dx%d", w, h))
	return b.beginErr
}

func (b *logBackend) End() error {
	b.calls = append(b.calls, "End")
	return b.endErr
}

func (b *logBackend) Save() {
	b.calls = append(b.calls, "Save")
}

func (b *logBackend) Restore() {
	b.calls = append(b.calls, "Restore")
}

func (b *logBackend) Clip(r Rect) {
	b.calls = append(b.calls, fmt.Sprintf("Clip %v", r))
}

func (b *logBackend) Clear(color.NRGBA) {
	b.calls = append(b.calls, "Clear")
}

func (b *logBackend) FillRect(r Rect, _ color.NRGBA) {
	b.calls = append(b.calls, fmt.Sprintf("FillRect %v", r))
}

func (b *logBackend) StrokePolyline(pts []Point, _ color.NRGBA, s Stroke) {
	b.calls = append(b.calls, fmt.Sprintf("Stroke %d w=%v", len(pts), s.Width))
}

func (b *logBackend) DrawText(s string, _, _, _ float64, _ Anchor, _ color.NRGBA) {
	b.calls = append(b.calls, "Text "+s)
}

var white = color.NRGBA{255, 255, 255, 255}

func TestPlayback_Order(t *testing.T) {
	rec := NewRecorder(100, 50)
	rec.Clear(color.NRGBA{A: 255})
	rec.Save()
	rec.Clip(Rect{0, 0, 80, 40})
	rec.FillRect(Rect{1, 2, 3, 4}, white)
	rec.StrokePolyline([]Point{{0, 0}, {1, 1}, {2, 0}}, white, Stroke{Width: 2})
	rec.Restore()
	rec.DrawText("10", 5, 5, 12, AnchorCenter, white)

	b := &logBackend{}
	if err := rec.Finish().Playback(b); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Begin 100x50", "Clear", "Save", "Clip {0 0 80 40}",
		"FillRect {1 2 3 4}", "Stroke 3 w=2", "Restore", "Text 10", "End",
	}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls =\n%s\nwant\n%s", strings.Join(b.calls, "\n"), strings.Join(want, "\n"))
	}
}

func TestPlayback_Errors(t *testing.T) {
	rec := NewRecorder(10, 10)
	rec.FillRect(Rect{0, 0, 1, 1}, white)
	r := rec.Finish()

	begin := errors.New("no surface")
	b := &logBackend{beginErr: begin}
	if err := r.Playback(b); !errors.Is(err, begin) {
		t.Errorf("Begin error = %v", err)
	}
	if len(b.calls) != 1 {
		t.Errorf("commands replayed after failed Begin: %v", b.calls)
	}

	end := errors.New("flush")
	if err := r.Playback(&logBackend{endErr: end}); !errors.Is(err, end) {
		t.Errorf("End error = %v", err)
	}
}

func TestRecorder_DropsDegeneratePrimitives(t *testing.T) {
	rec := NewRecorder(10, 10)
	rec.FillRect(Rect{0, 0, 0, 5}, white)
	rec.FillRect(Rect{0, 0, 5, 5}, color.NRGBA{})
	rec.StrokePolyline([]Point{{0, 0}}, white, Stroke{Width: 1})
	rec.StrokePolyline([]Point{{0, 0}, {1, 1}}, white, Stroke{})
	rec.DrawText("", 0, 0, 12, AnchorTopLeft, white)
	rec.DrawText("x", 0, 0, 0, AnchorTopLeft, white)
	rec.Restore()

	if rec.Len() != 0 {
		t.Errorf("recorded %d commands, want 0", rec.Len())
	}
}

func TestRecorder_SplitsOnNonFinitePoints(t *testing.T) {
	rec := NewRecorder(10, 10)
	nan := math.NaN()
	rec.StrokePolyline([]Point{{0, 0}, {1, 1}, {nan, 2}, {3, 3}, {4, 4}, {5, 5}, {math.Inf(1), 0}, {6, 6}}, white, Stroke{Width: 1})
	r := rec.Finish()

	if got := r.Count(CmdStrokePolyline); got != 2 {
		t.Fatalf("runs = %d, want 2", got)
	}
	if n := r.Resources().PointCount(); n != 5 {
		t.Errorf("pooled points = %d, want 5", n)
	}
	second := r.Commands()[1].(StrokePolylineCommand)
	if pts := r.Resources().Polyline(second.Points); len(pts) != 3 || pts[0] != (Point{3, 3}) {
		t.Errorf("second run = %v", pts)
	}
}

func TestRecorder_CopiesInputs(t *testing.T) {
	rec := NewRecorder(10, 10)
	pts := []Point{{0, 0}, {1, 1}}
	dash := []float64{4, 2}
	rec.StrokePolyline(pts, white, Stroke{Width: 1, Dash: dash})
	pts[0] = Point{9, 9}
	dash[0] = 100

	r := rec.Finish()
	cmd := r.Commands()[0].(StrokePolylineCommand)
	if r.Resources().Polyline(cmd.Points)[0] != (Point{0, 0}) {
		t.Error("recording aliases caller points")
	}
	if cmd.Stroke.Dash[0] != 4 {
		t.Error("recording aliases caller dash")
	}
}

func TestRecorder_FinishBalancesAndResets(t *testing.T) {
	rec := NewRecorder(10, 10)
	rec.Save()
	rec.Save()
	rec.Clip(Rect{0, 0, 5, 5})
	r := rec.Finish()

	if r.Count(CmdSave) != 2 || r.Count(CmdRestore) != 2 {
		t.Errorf("save/restore = %d/%d", r.Count(CmdSave), r.Count(CmdRestore))
	}
	if rec.Len() != 0 {
		t.Error("recorder not reset after Finish")
	}
	rec.Resize(20, 30)
	rec.DrawText("a", 0, 0, 10, AnchorTopLeft, white)
	next := rec.Finish()
	if next.Width() != 20 || next.Height() != 30 {
		t.Errorf("size = %dx%d", next.Width(), next.Height())
	}
	if !reflect.DeepEqual(next.Texts(), []string{"a"}) || len(r.Texts()) != 0 {
		t.Errorf("texts leaked between recordings: %v / %v", next.Texts(), r.Texts())
	}
}

func TestResourcePool(t *testing.T) {
	p := NewResourcePool()
	a := p.AddPolyline([]Point{{1, 1}, {2, 2}})
	b := p.AddPolyline([]Point{{3, 3}, {4, 4}, {5, 5}})
	if p.PolylineCount() != 2 || p.PointCount() != 5 {
		t.Fatalf("counts = %d/%d", p.PolylineCount(), p.PointCount())
	}
	if len(p.Polyline(a)) != 2 || p.Polyline(b)[2] != (Point{5, 5}) {
		t.Error("wrong runs")
	}
	if p.Polyline(PolylineRef(7)) != nil {
		t.Error("unknown ref returned points")
	}
	// Appending to a returned run must not clobber the next run.
	run := p.Polyline(a)
	_ = append(run, Point{9, 9})
	if p.Polyline(b)[0] != (Point{3, 3}) {
		t.Error("run capacity leaks into neighbour")
	}
	p.Clear()
	if p.PolylineCount() != 0 || p.PointCount() != 0 {
		t.Error("Clear left data")
	}
}

func TestCommandType_String(t *testing.T) {
	if CmdDrawText.String() != "DrawText" || CommandType(200).String() != "Unknown" {
		t.Error("CommandType names")
	}
}
