package chart

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/gogpu/chart/aggregate"
	"github.com/gogpu/chart/ingest"
)

// SeriesKind selects how a series aggregates and draws its records.
type SeriesKind uint8

const (
	// SeriesLine sums Sample values per bucket and draws a line.
	SeriesLine SeriesKind = iota

	// SeriesVolumeHistogram sums Trade quantities per bucket, split into
	// sell and buy bars.
	SeriesVolumeHistogram

	// SeriesDeltaHeatmap sums Trade quantities per bucket, banded by the
	// percent price change between trades.
	SeriesDeltaHeatmap
)

// String returns the kind name.
func (k SeriesKind) String() string {
	switch k {
	case SeriesLine:
		return "line"
	case SeriesVolumeHistogram:
		return "volume"
	case SeriesDeltaHeatmap:
		return "heatmap"
	default:
		return fmt.Sprintf("SeriesKind(%d)", uint8(k))
	}
}

// ParseSeriesKind parses the names returned by SeriesKind.String.
func ParseSeriesKind(s string) (SeriesKind, error) {
	switch s {
	case "line":
		return SeriesLine, nil
	case "volume":
		return SeriesVolumeHistogram, nil
	case "heatmap":
		return SeriesDeltaHeatmap, nil
	default:
		return 0, fmt.Errorf("%w: unknown series kind %q", ErrInvalidConfiguration, s)
	}
}

// SeriesConfig describes one series.
type SeriesConfig struct {
	ID   uint32
	Kind SeriesKind

	// Label names the series in logs and metrics.
	Label string

	// Bucket and Window are the bucket and retention durations in seconds.
	Bucket float64
	Window float64

	// Thresholds are the percent band edges of a delta heatmap. Empty
	// selects aggregate.DefaultDeltaThresholds. Ignored by other kinds.
	Thresholds []float64

	// Color overrides the theme color of a line series.
	Color color.NRGBA
}

// series owns the aggregator of one SeriesConfig and the points it emitted.
// It is accessed only from the render pass.
type series struct {
	cfg  SeriesConfig
	line *aggregate.Window
	vol  *aggregate.VolumeHistogram
	heat *aggregate.DeltaHeatmap

	// bands holds emitted points per band ordered by Time, one per bucket.
	bands [][]aggregate.Point

	// latest is the newest accepted record time.
	latest float64

	// seen is set by the first emitted point; announced once the entry
	// transition has started.
	seen      bool
	announced bool

	out [1]aggregate.Point
}

func newSeries(cfg SeriesConfig) (*series, error) {
	s := &series{cfg: cfg, latest: math.Inf(-1)}
	var err error
	switch cfg.Kind {
	case SeriesLine:
		s.line, err = aggregate.NewWindow(cfg.ID, cfg.Bucket, cfg.Window)
		s.bands = make([][]aggregate.Point, 1)
	case SeriesVolumeHistogram:
		s.vol, err = aggregate.NewVolumeHistogram(cfg.ID, cfg.Bucket, cfg.Window)
		s.bands = make([][]aggregate.Point, 2)
	case SeriesDeltaHeatmap:
		s.heat, err = aggregate.NewDeltaHeatmap(cfg.ID, cfg.Bucket, cfg.Window, cfg.Thresholds)
		if err == nil {
			s.bands = make([][]aggregate.Point, s.heat.Router().Bands())
		}
	default:
		return nil, fmt.Errorf("%w: series %d has unknown kind %v", ErrInvalidConfiguration, cfg.ID, cfg.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: series %d: %w", ErrInvalidConfiguration, cfg.ID, err)
	}
	return s, nil
}

// addSample feeds a Sample record. Only line series accept samples.
func (s *series) addSample(r ingest.Sample) bool {
	if s.line == nil {
		return false
	}
	n := s.line.Accumulate(r.Time, r.Value, s.out[:])
	s.store(0, n, r.Time)
	return true
}

// addTrade feeds a Trade record. Line series sum per bucket and reject
// trades.
func (s *series) addTrade(r ingest.Trade) bool {
	var band, n int
	switch {
	case s.vol != nil:
		band, n = s.vol.Accumulate(int(r.Side), r.Time, r.Quantity, s.out[:])
	case s.heat != nil:
		band, n = s.heat.Accumulate(r.Price, r.Time, r.Quantity, s.out[:])
	default:
		return false
	}
	s.store(band, n, r.Time)
	return true
}

// store upserts the emitted point into its band and prunes points whose
// bucket left the window ending at ts.
func (s *series) store(band, n int, ts float64) {
	if n == 0 {
		return
	}
	p := s.out[0]
	s.seen = true
	pts := s.bands[band]
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Time >= p.Time })
	if i < len(pts) && pts[i].Time == p.Time {
		pts[i] = p
	} else {
		pts = append(pts, aggregate.Point{})
		copy(pts[i+1:], pts[i:])
		pts[i] = p
	}
	s.bands[band] = pts
	if ts > s.latest {
		s.latest = ts
	}
	s.prune()
}

// prune drops points whose bucket starts before latest - window.
func (s *series) prune() {
	cutoff := s.latest - s.cfg.Window
	for b, pts := range s.bands {
		k := 0
		for k < len(pts) && pts[k].Time-s.cfg.Bucket/2 < cutoff {
			k++
		}
		if k > 0 {
			s.bands[b] = append(pts[:0], pts[k:]...)
		}
	}
}

// points returns the number of stored points across bands.
func (s *series) points() int {
	n := 0
	for _, pts := range s.bands {
		n += len(pts)
	}
	return n
}

// maxValue returns the largest stored value, or 0.
func (s *series) maxValue() float64 {
	m := 0.0
	for _, pts := range s.bands {
		for _, p := range pts {
			m = math.Max(m, p.Value)
		}
	}
	return m
}

func (s *series) reset() {
	switch {
	case s.line != nil:
		s.line.Reset()
	case s.vol != nil:
		s.vol.Reset()
	case s.heat != nil:
		s.heat.Reset()
	}
	for b := range s.bands {
		s.bands[b] = s.bands[b][:0]
	}
	s.latest = math.Inf(-1)
	s.seen, s.announced = false, false
}
