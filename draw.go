package chart

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gogpu/chart/aggregate"
	"github.com/gogpu/chart/axis"
	"github.com/gogpu/chart/layout"
	"github.com/gogpu/chart/recording"
	"github.com/gogpu/chart/scale"
)

// Drawing constants in logical pixels.
const (
	slideDistance   = 24.0
	lineWidth       = 1.5
	markerSize      = 6.0
	markerEmphasis  = 4.0
	overlayTextSize = 11.0
)

var cursorDash = []float64{4, 4}

// draw records one frame. The caller holds e.mu.
func (e *Engine) draw() *recording.Recording {
	r := e.recorder
	th := e.opts.theme
	r.Clear(th.Background)

	xs := e.timeScale()
	ys := e.valueScale()
	plot, models := e.composer.Compose(e.width, e.height, e.dpr, []axis.Spec{
		e.axisSpec("time", e.opts.timeAxis, xs),
		e.axisSpec("value", e.opts.valueAxis, ys),
	})
	if plot.Empty() {
		return r.Finish()
	}
	tr := scale.NewTransformer(xs, ys, plot.X, plot.Y, plot.W, plot.H)

	for i := range models {
		e.drawGrid(&models[i], plot)
	}

	r.Save()
	r.Clip(recording.Rect{X: plot.X, Y: plot.Y, W: plot.W, H: plot.H})
	for _, s := range e.order {
		st := e.anim.Stream(s.cfg.ID)
		dx := st.Slide * slideDistance
		switch {
		case s.line != nil:
			e.drawLine(s, tr, dx, st.Opacity)
		case s.vol != nil:
			e.drawVolume(s, tr, dx, st.Opacity)
		case s.heat != nil:
			e.drawHeatmap(s, tr, plot, dx, st.Opacity)
		}
	}
	e.drawAnnotations(tr)
	e.drawCursor(tr, plot)
	r.Restore()

	for i := range models {
		e.drawAxis(&models[i])
	}
	return r.Finish()
}

// timeScale covers the visible span ending at the newest record, or at the
// clock when no series has data.
func (e *Engine) timeScale() scale.Scale {
	hi := math.Inf(-1)
	for _, s := range e.order {
		hi = math.Max(hi, s.latest)
	}
	if math.IsInf(hi, -1) {
		hi = scale.Seconds(e.opts.clock())
	}
	ts, err := scale.NewTime(hi-e.opts.visibleSpan, hi)
	if err != nil {
		ts, _ = scale.NewTime(0, e.opts.visibleSpan)
	}
	return ts
}

// valueScale spans the values of line and volume series. Heatmaps use
// their own rows.
func (e *Engine) valueScale() scale.Scale {
	lo, hi, minPos := 0.0, 0.0, math.Inf(1)
	for _, s := range e.order {
		if s.heat != nil {
			continue
		}
		for _, pts := range s.bands {
			for _, p := range pts {
				lo = math.Min(lo, p.Value)
				hi = math.Max(hi, p.Value)
				if p.Value > 0 {
					minPos = math.Min(minPos, p.Value)
				}
			}
		}
	}

	if e.opts.valueAxis.Log {
		if math.IsInf(minPos, 1) {
			minPos, hi = 1, 10
		}
		if hi <= minPos {
			hi = minPos * 10
		}
		ls, err := scale.NewLog(minPos, hi)
		if err == nil {
			return ls
		}
	}
	if hi <= lo {
		hi = lo + 1
	}
	ls, err := scale.NewLinear(lo, hi)
	if err != nil {
		ls, _ = scale.NewLinear(0, 1)
	}
	return ls.Nice(5)
}

func (e *Engine) axisSpec(id string, cfg AxisConfig, s scale.Scale) axis.Spec {
	st := cfg.Style
	if st.Color == (color.NRGBA{}) {
		st.Color = e.opts.theme.Axis
	}
	if st.LabelColor == (color.NRGBA{}) {
		st.LabelColor = e.opts.theme.Label
	}
	return axis.Spec{
		ID:          id,
		Orientation: cfg.Orientation,
		Thickness:   cfg.Thickness,
		Scale:       s,
		Style:       st,
	}
}

func (e *Engine) drawGrid(m *axis.Model, plot layout.Rect) {
	if !m.Style.Grid {
		return
	}
	stroke := recording.Stroke{Width: 1}
	for _, tk := range m.Ticks {
		p := m.Pixel(tk.Position)
		if m.Orientation.Vertical() {
			e.recorder.Line(plot.X, p, plot.Right(), p, e.opts.theme.Grid, stroke)
		} else {
			e.recorder.Line(p, plot.Y, p, plot.Bottom(), e.opts.theme.Grid, stroke)
		}
	}
}

func (e *Engine) drawAxis(m *axis.Model) {
	r := e.recorder
	st := m.Style
	b := m.Bounds
	stroke := recording.Stroke{Width: st.LineWidth}
	tl, pad := st.TickLength, st.Padding

	switch m.Orientation {
	case layout.Left:
		r.Line(b.Right(), b.Y, b.Right(), b.Bottom(), st.Color, stroke)
	case layout.Right:
		r.Line(b.X, b.Y, b.X, b.Bottom(), st.Color, stroke)
	case layout.Top:
		r.Line(b.X, b.Bottom(), b.Right(), b.Bottom(), st.Color, stroke)
	case layout.Bottom:
		r.Line(b.X, b.Y, b.Right(), b.Y, st.Color, stroke)
	}

	for _, tk := range m.Ticks {
		p := m.Pixel(tk.Position)
		switch m.Orientation {
		case layout.Left:
			r.Line(b.Right()-tl, p, b.Right(), p, st.Color, stroke)
			r.DrawText(tk.Label, b.Right()-tl-pad, p, st.LabelSize, recording.AnchorCenterRight, st.LabelColor)
		case layout.Right:
			r.Line(b.X, p, b.X+tl, p, st.Color, stroke)
			r.DrawText(tk.Label, b.X+tl+pad, p, st.LabelSize, recording.AnchorCenterLeft, st.LabelColor)
		case layout.Top:
			r.Line(p, b.Bottom()-tl, p, b.Bottom(), st.Color, stroke)
			r.DrawText(tk.Label, p, b.Bottom()-tl-pad, st.LabelSize, recording.AnchorBottomCenter, st.LabelColor)
		case layout.Bottom:
			r.Line(p, b.Y, p, b.Y+tl, st.Color, stroke)
			r.DrawText(tk.Label, p, b.Y+tl+pad, st.LabelSize, recording.AnchorTopCenter, st.LabelColor)
		}
	}
}

func (e *Engine) drawLine(s *series, tr *scale.Transformer, dx, opacity float64) {
	pts := s.bands[0]
	if len(pts) == 0 {
		return
	}
	poly := make([]recording.Point, len(pts))
	for i, p := range pts {
		x, y := tr.ToPixel(p.Time, p.Value)
		poly[i] = recording.Point{X: x + dx, Y: y}
	}
	e.recorder.StrokePolyline(poly, withAlpha(s.cfg.Color, opacity), recording.Stroke{Width: lineWidth})
}

// drawVolume draws sell bars in the left half of each bucket and buy bars
// in the right half.
func (e *Engine) drawVolume(s *series, tr *scale.Transformer, dx, opacity float64) {
	th := e.opts.theme
	colors := [2]color.NRGBA{
		aggregate.BandSell: withAlpha(th.Sell, opacity),
		aggregate.BandBuy:  withAlpha(th.Buy, opacity),
	}
	half := s.cfg.Bucket / 2
	for band, pts := range s.bands {
		for _, p := range pts {
			x0, base := tr.ToPixel(p.Time-half, 0)
			x1, top := tr.ToPixel(p.Time, p.Value)
			if band == aggregate.BandBuy {
				x0, _ = tr.ToPixel(p.Time, 0)
				x1, _ = tr.ToPixel(p.Time+half, 0)
			}
			e.recorder.FillRect(recording.Rect{X: x0 + dx, Y: top, W: x1 - x0, H: base - top}, colors[band])
		}
	}
}

// drawHeatmap draws one row per band, shading each bucket by its share of
// the largest bucket.
func (e *Engine) drawHeatmap(s *series, tr *scale.Transformer, plot layout.Rect, dx, opacity float64) {
	peak := s.maxValue()
	if !(peak > 0) {
		return
	}
	rows, err := scale.NewOrdinal(bandLabels(s.heat.Router().Thresholds()))
	if err != nil {
		return
	}
	rowH := plot.H / float64(rows.Len())
	half := s.cfg.Bucket / 2
	for band, pts := range s.bands {
		top := plot.Y + (1-rows.Project(float64(band)))*(plot.H-rowH)
		for _, p := range pts {
			x0, _ := tr.ToPixel(p.Time-half, 0)
			x1, _ := tr.ToPixel(p.Time+half, 0)
			c := withAlpha(e.opts.theme.Heat, opacity*p.Value/peak)
			e.recorder.FillRect(recording.Rect{X: x0 + dx, Y: top, W: x1 - x0, H: rowH}, c)
		}
	}
}

// bandLabels names the bands split by percent thresholds.
func bandLabels(th []float64) []string {
	labels := make([]string, 0, len(th)+1)
	labels = append(labels, fmt.Sprintf("<%g%%", th[0]))
	for i := 1; i < len(th); i++ {
		labels = append(labels, fmt.Sprintf("%g..%g%%", th[i-1], th[i]))
	}
	return append(labels, fmt.Sprintf(">=%g%%", th[len(th)-1]))
}

func (e *Engine) drawAnnotations(tr *scale.Transformer) {
	c := e.opts.theme.Annotation
	for _, a := range e.annotations {
		x, y := tr.ToPixel(a.Time, a.Value)
		if !tr.Contains(x, y) {
			continue
		}
		size := markerSize + markerEmphasis*e.anim.Emphasis(a.ID)
		e.recorder.FillRect(recording.Rect{X: x - size/2, Y: y - size/2, W: size, H: size}, c)
		if a.Label != "" {
			e.recorder.DrawText(a.Label, x, y-size/2-2, overlayTextSize, recording.AnchorBottomCenter, c)
		}
	}
}

func (e *Engine) drawCursor(tr *scale.Transformer, plot layout.Rect) {
	cur := e.anim.Cursor()
	if !cur.Visible || !plot.Contains(cur.X, cur.Y) {
		return
	}
	c := withAlpha(e.opts.theme.Cursor, cur.Opacity)
	stroke := recording.Stroke{Width: 1, Dash: cursorDash}
	e.recorder.Line(cur.X, plot.Y, cur.X, plot.Bottom(), c, stroke)
	e.recorder.Line(plot.X, cur.Y, plot.Right(), cur.Y, c, stroke)

	t, _ := tr.FromPixel(cur.X, cur.Y)
	label := scale.FromSeconds(t).UTC().Format("15:04:05")
	e.recorder.DrawText(label, cur.X, plot.Bottom()-2, overlayTextSize, recording.AnchorBottomCenter, c)
}
