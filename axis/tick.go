package axis

import (
	"math"
	"time"

	"github.com/gogpu/chart/scale"
)

// Tick is one labelled mark along an axis.
type Tick struct {
	// Value is the tick position in the scale domain.
	Value float64

	// Position is Value projected onto [0, 1].
	Position float64

	Label string
}

// TickGenerator produces the ticks of a scale laid out over pixelLength
// logical pixels.
type TickGenerator interface {
	Ticks(s scale.Scale, pixelLength float64) []Tick
}

// DefaultSpacing is the target distance between ticks in logical pixels.
const DefaultSpacing = 60

// maxTicks bounds generator output for pathological inputs.
const maxTicks = 500

// positionSlack admits ticks that fall outside [0, 1] by rounding error.
const positionSlack = 1e-9

func tickCount(pixelLength, spacing float64) int {
	if !(spacing > 0) {
		spacing = DefaultSpacing
	}
	if !(pixelLength > 0) || math.IsInf(pixelLength, 0) {
		return 2
	}
	return max(2, min(int(pixelLength/spacing), maxTicks))
}

func inUnit(u float64) bool {
	return u >= -positionSlack && u <= 1+positionSlack
}

func ordered(lo, hi float64) (float64, float64) {
	if lo > hi {
		return hi, lo
	}
	return lo, hi
}

// DefaultGenerator returns the tick generator used for a scale kind.
func DefaultGenerator(k scale.Kind) TickGenerator {
	switch k {
	case scale.KindLog:
		return LogTicks{}
	case scale.KindTime:
		return TimeTicks{}
	case scale.KindOrdinal:
		return OrdinalTicks{}
	default:
		return LinearTicks{}
	}
}

// LinearTicks places ticks on multiples of a 1-2-5 step.
type LinearTicks struct {
	// Spacing is the target pixel distance between ticks.
	// Zero means DefaultSpacing.
	Spacing float64

	// Format renders labels. Nil means DefaultFormatter.
	Format Formatter
}

// Ticks implements TickGenerator.
func (g LinearTicks) Ticks(s scale.Scale, pixelLength float64) []Tick {
	f := g.Format
	if f == nil {
		f = DefaultFormatter
	}
	lo, hi := ordered(s.Domain())
	if lo == hi {
		return []Tick{{Value: lo, Position: s.Project(lo), Label: f.Format(lo, 0)}}
	}
	step := scale.NiceStep(hi-lo, tickCount(pixelLength, g.Spacing))
	if step == 0 {
		return nil
	}
	first := math.Ceil(lo/step - positionSlack)
	ticks := make([]Tick, 0, int((hi-lo)/step)+1)
	for k := 0.0; len(ticks) < maxTicks; k++ {
		v := (first + k) * step
		if v > hi+step*positionSlack {
			break
		}
		if v == 0 {
			v = 0 // drop negative zero
		}
		ticks = append(ticks, Tick{Value: v, Position: s.Project(v), Label: f.Format(v, step)})
	}
	return ticks
}

// LogTicks places ticks on powers of ten, adding 2x and 5x ticks when the
// axis is long enough to hold them.
type LogTicks struct {
	Spacing float64
	Format  Formatter
}

// Ticks implements TickGenerator.
func (g LogTicks) Ticks(s scale.Scale, pixelLength float64) []Tick {
	f := g.Format
	if f == nil {
		f = DefaultFormatter
	}
	lo, hi := ordered(s.Domain())
	if !(lo > 0) {
		return LinearTicks{Spacing: g.Spacing, Format: f}.Ticks(s, pixelLength)
	}
	k0 := int(math.Floor(math.Log10(lo) + positionSlack))
	k1 := int(math.Ceil(math.Log10(hi) - positionSlack))
	decades := max(1, k1-k0)
	count := tickCount(pixelLength, g.Spacing)

	mults := []float64{1}
	if count >= 3*decades {
		mults = []float64{1, 2, 5}
	}
	stride := max(1, (decades+count-1)/count)

	var ticks []Tick
	for k := k0; k <= k1 && len(ticks) < maxTicks; k += stride {
		base := math.Pow(10, float64(k))
		for _, m := range mults {
			v := m * base
			u := s.Project(v)
			if !inUnit(u) {
				continue
			}
			ticks = append(ticks, Tick{Value: v, Position: u, Label: f.Format(v, v)})
		}
	}
	return ticks
}

// timeSteps are the candidate intervals for TimeTicks, shortest first.
var timeSteps = []time.Duration{
	time.Second, 2 * time.Second, 5 * time.Second, 10 * time.Second, 15 * time.Second, 30 * time.Second,
	time.Minute, 2 * time.Minute, 5 * time.Minute, 10 * time.Minute, 15 * time.Minute, 30 * time.Minute,
	time.Hour, 2 * time.Hour, 3 * time.Hour, 6 * time.Hour, 12 * time.Hour,
	24 * time.Hour, 2 * 24 * time.Hour, 7 * 24 * time.Hour,
}

// TimeTicks places ticks on calendar-friendly intervals of a scale over Unix
// seconds. Sub-second spans fall back to LinearTicks.
type TimeTicks struct {
	Spacing float64

	// Location is used for labels. Nil means UTC.
	Location *time.Location
}

// Ticks implements TickGenerator.
func (g TimeTicks) Ticks(s scale.Scale, pixelLength float64) []Tick {
	lo, hi := ordered(s.Domain())
	span := hi - lo
	count := tickCount(pixelLength, g.Spacing)
	raw := span / float64(count)
	if raw < 1 {
		return LinearTicks{Spacing: g.Spacing}.Ticks(s, pixelLength)
	}

	var step float64
	for _, d := range timeSteps {
		if d.Seconds() >= raw {
			step = d.Seconds()
			break
		}
	}
	if step == 0 {
		day := (24 * time.Hour).Seconds()
		step = scale.NiceStep(span/day, count) * day
	}

	loc := g.Location
	if loc == nil {
		loc = time.UTC
	}
	pattern := timeLayout(step)

	first := math.Ceil(lo/step - positionSlack)
	var ticks []Tick
	for k := 0.0; len(ticks) < maxTicks; k++ {
		v := (first + k) * step
		if v > hi+step*positionSlack {
			break
		}
		label := scale.FromSeconds(v).In(loc).Format(pattern)
		ticks = append(ticks, Tick{Value: v, Position: s.Project(v), Label: label})
	}
	return ticks
}

func timeLayout(step float64) string {
	switch {
	case step < 60:
		return "15:04:05"
	case step < 24*3600:
		return "15:04"
	default:
		return "Jan 2"
	}
}

// OrdinalTicks labels categories, skipping some when they would crowd.
type OrdinalTicks struct {
	Spacing float64
}

// Ticks implements TickGenerator. Non-ordinal scales fall back to
// LinearTicks.
func (g OrdinalTicks) Ticks(s scale.Scale, pixelLength float64) []Tick {
	o, ok := s.(*scale.Ordinal)
	if !ok {
		return LinearTicks{Spacing: g.Spacing}.Ticks(s, pixelLength)
	}
	n := o.Len()
	spacing := g.Spacing
	if !(spacing > 0) {
		spacing = DefaultSpacing
	}
	fit := 1
	if pixelLength > 0 && !math.IsInf(pixelLength, 0) {
		fit = max(1, int(pixelLength/spacing)+1)
	}
	stride := max(1, (n+fit-1)/fit)

	cats := o.Categories()
	ticks := make([]Tick, 0, (n+stride-1)/stride)
	for i := 0; i < n; i += stride {
		v := float64(i)
		ticks = append(ticks, Tick{Value: v, Position: o.Project(v), Label: cats[i]})
	}
	return ticks
}
