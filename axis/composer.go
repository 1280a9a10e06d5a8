package axis

import (
	"image/color"
	"log/slog"
	"math"

	"github.com/gogpu/chart/internal/labelcache"
	"github.com/gogpu/chart/layout"
	"github.com/gogpu/chart/scale"
)

// Style controls how an axis is drawn and sized. Zero fields take the
// defaults listed on each field.
type Style struct {
	// TickLength is the length of tick marks. Default 5.
	TickLength float64

	// LabelSize is the label font size in logical pixels. Default 12.
	LabelSize float64

	// Padding separates labels from ticks and the band edge. Default 4.
	Padding float64

	// LineWidth is the axis line width. Default 1.
	LineWidth float64

	// Grid draws a gridline across the plot at every tick.
	Grid bool

	// Color is used for the axis line and ticks. Default opaque gray.
	Color color.NRGBA

	// LabelColor is used for labels. Default opaque dark gray.
	LabelColor color.NRGBA
}

// WithDefaults returns s with zero fields replaced by defaults.
func (s Style) WithDefaults() Style {
	if s.TickLength == 0 {
		s.TickLength = 5
	}
	if s.LabelSize == 0 {
		s.LabelSize = 12
	}
	if s.Padding == 0 {
		s.Padding = 4
	}
	if s.LineWidth == 0 {
		s.LineWidth = 1
	}
	if s.Color == (color.NRGBA{}) {
		s.Color = color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	}
	if s.LabelColor == (color.NRGBA{}) {
		s.LabelColor = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	}
	return s
}

// Spec describes one axis to compose.
type Spec struct {
	ID          string
	Orientation layout.Orientation

	// Thickness is the band size across the axis. Zero sizes the band from
	// the measured labels; a negative value drops the axis.
	Thickness float64

	Scale scale.Scale

	// Ticks generates the axis ticks. Nil selects DefaultGenerator for the
	// scale kind.
	Ticks TickGenerator

	Style Style
}

// Model is a render-ready axis for one frame.
type Model struct {
	ID          string
	Orientation layout.Orientation
	Bounds      layout.Rect
	Scale       scale.Scale
	Style       Style
	Ticks       []Tick
}

// Length returns the pixel length of the axis along its direction.
func (m *Model) Length() float64 {
	if m.Orientation.Vertical() {
		return m.Bounds.H
	}
	return m.Bounds.W
}

// Pixel maps a unit position to the pixel coordinate along the axis:
// x for horizontal axes, y for vertical ones. Vertical axes grow upward.
func (m *Model) Pixel(pos float64) float64 {
	if m.Orientation.Vertical() {
		return m.Bounds.Y + (1-pos)*m.Bounds.H
	}
	return m.Bounds.X + pos*m.Bounds.W
}

// Option configures a Composer.
type Option func(*Composer)

// WithMeasurer sets the label measurer used for automatic thickness. Nil
// keeps BasicMeasurer.
func WithMeasurer(m Measurer) Option {
	return func(c *Composer) {
		if m != nil {
			c.measurer = m
		}
	}
}

// WithLabelCacheSize sets the number of label extents kept between frames.
func WithLabelCacheSize(n int) Option {
	return func(c *Composer) {
		c.cache = labelcache.New(n)
	}
}

// WithLogger sets the composer logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// Composer builds axis models. It is safe for concurrent use if its
// Measurer is.
type Composer struct {
	measurer Measurer
	cache    *labelcache.Cache
	logger   *slog.Logger
}

// NewComposer creates a composer. By default labels are measured with
// BasicMeasurer.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		measurer: BasicMeasurer{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = labelcache.New(labelcache.DefaultCapacity)
	}
	return c
}

// CacheStats returns label cache statistics.
func (c *Composer) CacheStats() labelcache.Stats {
	return c.cache.Stats()
}

// Compose lays out every axis around the viewport and returns the plot
// rectangle plus one model per placed axis, in spec order. Axes without a
// scale or without a layout placement are skipped.
func (c *Composer) Compose(width, height, dpr float64, specs []Spec) (layout.Rect, []Model) {
	reqs := make([]layout.AxisRequest, len(specs))
	for i, s := range specs {
		reqs[i] = layout.AxisRequest{ID: s.ID, Orientation: s.Orientation, Thickness: s.Thickness}
		if s.Scale == nil {
			reqs[i].Thickness = 0
			c.logger.Warn("axis: spec without scale skipped", "id", s.ID)
			continue
		}
		if s.Thickness == 0 {
			reqs[i].Thickness = c.autoThickness(s, width, height)
		}
	}

	plot, placements := layout.ArrangeAxes(width, height, dpr, reqs)

	models := make([]Model, 0, len(placements))
	for _, p := range placements {
		s := specs[p.Request]
		m := Model{
			ID:          s.ID,
			Orientation: s.Orientation,
			Bounds:      p.Bounds,
			Scale:       s.Scale,
			Style:       s.Style.WithDefaults(),
		}
		m.Ticks = c.ticks(s, m.Length())
		models = append(models, m)
	}
	if len(models) < len(specs) {
		c.logger.Debug("axis: axes without placement skipped", "requested", len(specs), "placed", len(models))
	}
	return plot, models
}

func (c *Composer) ticks(s Spec, length float64) []Tick {
	g := s.Ticks
	if g == nil {
		g = DefaultGenerator(s.Scale.Kind())
	}
	ticks := g.Ticks(s.Scale, length)
	out := ticks[:0]
	for _, t := range ticks {
		if inUnit(t.Position) {
			out = append(out, t)
		}
	}
	return out
}

// autoThickness sizes a band from the labels the axis would show over the
// full viewport length.
func (c *Composer) autoThickness(s Spec, width, height float64) float64 {
	st := s.Style.WithDefaults()
	length := width
	if s.Orientation.Vertical() {
		length = height
	}
	var maxW, maxH float64
	for _, t := range c.ticks(s, length) {
		e := c.measure(t.Label, st.LabelSize)
		maxW = math.Max(maxW, e.Width)
		maxH = math.Max(maxH, e.Height)
	}
	across := maxH
	if s.Orientation.Vertical() {
		across = maxW
	}
	return math.Ceil(st.TickLength + 2*st.Padding + across)
}

func (c *Composer) measure(label string, size float64) labelcache.Extent {
	if c.measurer == nil {
		return labelcache.Extent{}
	}
	return c.cache.Measure(labelcache.Key{Label: label, Size: size}, func() labelcache.Extent {
		w, h := c.measurer.Measure(label, size)
		return labelcache.Extent{Width: w, Height: h}
	})
}
