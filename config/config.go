// Package config loads engine settings from YAML and the environment.
//
// Values are applied in order: Default, then the YAML file, then CHART_*
// environment variables. Load validates the result.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/chart"
	"github.com/gogpu/chart/axis"
	"github.com/gogpu/chart/layout"
)

// ErrInvalidConfiguration is returned by Validate and Load.
var ErrInvalidConfiguration = errors.New("config: invalid configuration")

// Config is the file form of the engine options.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	// Capacity is the ingest bus capacity in slices.
	Capacity int `yaml:"capacity"`

	Viewport ViewportConfig `yaml:"viewport"`

	// VisibleSpan is the time axis width in seconds.
	VisibleSpan float64 `yaml:"visible_span"`

	Frame  FrameConfig  `yaml:"frame"`
	Motion MotionConfig `yaml:"motion"`

	TimeAxis  AxisConfig `yaml:"time_axis"`
	ValueAxis AxisConfig `yaml:"value_axis"`

	Series []SeriesConfig `yaml:"series"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// ViewportConfig is the initial viewport.
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	DPR    float64 `yaml:"dpr"`
}

// FrameConfig controls the frame scheduler.
type FrameConfig struct {
	Budget   time.Duration `yaml:"budget"`
	Pacing   time.Duration `yaml:"pacing"`
	AutoTick bool          `yaml:"auto_tick"`
}

// MotionConfig controls overlay animations. Zero durations keep the
// engine defaults.
type MotionConfig struct {
	Reduced  bool          `yaml:"reduced"`
	Cursor   time.Duration `yaml:"cursor"`
	Emphasis time.Duration `yaml:"emphasis"`
	Stream   time.Duration `yaml:"stream"`
}

// AxisConfig places one engine axis.
type AxisConfig struct {
	// Position is left, right, top or bottom.
	Position  string  `yaml:"position"`
	Thickness float64 `yaml:"thickness"`
	Grid      bool    `yaml:"grid"`
	Log       bool    `yaml:"log"`
	LabelSize float64 `yaml:"label_size"`
}

// SeriesConfig is the file form of chart.SeriesConfig.
type SeriesConfig struct {
	ID         uint32    `yaml:"id"`
	Kind       string    `yaml:"kind"`
	Label      string    `yaml:"label"`
	Bucket     float64   `yaml:"bucket"`
	Window     float64   `yaml:"window"`
	Thresholds []float64 `yaml:"thresholds"`

	// Color is #rrggbb or #rrggbbaa. Empty uses the theme palette.
	Color string `yaml:"color"`
}

// Default returns the engine defaults.
func Default() Config {
	return Config{
		Capacity:    chart.DefaultCapacity,
		Viewport:    ViewportConfig{Width: 800, Height: 600, DPR: 1},
		VisibleSpan: chart.DefaultVisibleSpan,
		Frame:       FrameConfig{Budget: time.Second / 60, AutoTick: true},
		TimeAxis:    AxisConfig{Position: "bottom", Grid: true},
		ValueAxis:   AxisConfig{Position: "left", Grid: true},
		LogLevel:    "info",
	}
}

// Load reads path, applies CHART_* environment overrides and validates the
// result. An empty path or a missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		if err := loadFile(path, &c); err != nil {
			return c, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	if err := loadEnv(&c, os.LookupEnv); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return c, c.Validate()
}

func loadFile(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

// loadEnv applies CHART_* overrides. Malformed values are errors.
func loadEnv(c *Config, lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, key, err))
				return
			}
			*dst = f
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, key, err))
				return
			}
			*dst = b
		}
	}

	if v, ok := lookup("CHART_CAPACITY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: CHART_CAPACITY: %w", ErrInvalidConfiguration, err))
		} else {
			c.Capacity = n
		}
	}
	num("CHART_WIDTH", &c.Viewport.Width)
	num("CHART_HEIGHT", &c.Viewport.Height)
	num("CHART_DPR", &c.Viewport.DPR)
	num("CHART_VISIBLE_SPAN", &c.VisibleSpan)
	dur("CHART_FRAME_BUDGET", &c.Frame.Budget)
	dur("CHART_PACING", &c.Frame.Pacing)
	flag("CHART_AUTO_TICK", &c.Frame.AutoTick)
	flag("CHART_REDUCED_MOTION", &c.Motion.Reduced)
	str("CHART_LOG_LEVEL", &c.LogLevel)
	return errors.Join(errs...)
}

// Validate reports every problem found, each wrapping
// ErrInvalidConfiguration.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfiguration}, args...)...))
	}

	if c.Capacity <= 0 {
		bad("capacity must be > 0, got %d", c.Capacity)
	}
	if !(c.Viewport.Width > 0) || !(c.Viewport.Height > 0) || !(c.Viewport.DPR > 0) {
		bad("viewport must be positive, got %vx%v@%v", c.Viewport.Width, c.Viewport.Height, c.Viewport.DPR)
	}
	if !(c.VisibleSpan > 0) {
		bad("visible_span must be > 0, got %v", c.VisibleSpan)
	}
	if c.Frame.Budget < 0 || c.Frame.Pacing < 0 {
		bad("frame budget and pacing must be >= 0")
	}
	if c.Motion.Cursor < 0 || c.Motion.Emphasis < 0 || c.Motion.Stream < 0 {
		bad("motion durations must be >= 0")
	}
	if o, err := parsePosition(c.TimeAxis.Position); err != nil {
		errs = append(errs, fmt.Errorf("time_axis: %w", err))
	} else if o.Vertical() {
		bad("time_axis must be top or bottom, got %q", c.TimeAxis.Position)
	}
	if o, err := parsePosition(c.ValueAxis.Position); err != nil {
		errs = append(errs, fmt.Errorf("value_axis: %w", err))
	} else if !o.Vertical() {
		bad("value_axis must be left or right, got %q", c.ValueAxis.Position)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[uint32]bool, len(c.Series))
	for i, s := range c.Series {
		if seen[s.ID] {
			bad("series[%d]: duplicate id %d", i, s.ID)
		}
		seen[s.ID] = true
		if _, err := chart.ParseSeriesKind(s.Kind); err != nil {
			bad("series[%d]: unknown kind %q", i, s.Kind)
		}
		if !(s.Bucket > 0) || !(s.Window > 0) {
			bad("series[%d]: bucket and window must be > 0", i)
		}
		if _, err := parseColor(s.Color); err != nil {
			errs = append(errs, fmt.Errorf("series[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// EngineOptions converts c to engine options. c must be valid.
func (c Config) EngineOptions() []chart.Option {
	tpos, _ := parsePosition(c.TimeAxis.Position)
	vpos, _ := parsePosition(c.ValueAxis.Position)
	return []chart.Option{
		chart.WithCapacity(c.Capacity),
		chart.WithViewport(c.Viewport.Width, c.Viewport.Height, c.Viewport.DPR),
		chart.WithVisibleSpan(c.VisibleSpan),
		chart.WithFrameBudget(c.Frame.Budget),
		chart.WithPacing(c.Frame.Pacing),
		chart.WithAutoTick(c.Frame.AutoTick),
		chart.WithReducedMotion(c.Motion.Reduced),
		chart.WithAnimationDurations(c.Motion.Cursor, c.Motion.Emphasis, c.Motion.Stream),
		chart.WithTimeAxis(c.TimeAxis.engine(tpos)),
		chart.WithValueAxis(c.ValueAxis.engine(vpos)),
	}
}

func (a AxisConfig) engine(o layout.Orientation) chart.AxisConfig {
	return chart.AxisConfig{
		Orientation: o,
		Thickness:   a.Thickness,
		Style:       axis.Style{Grid: a.Grid, LabelSize: a.LabelSize},
		Log:         a.Log,
	}
}

// SeriesConfigs converts the series list. c must be valid.
func (c Config) SeriesConfigs() []chart.SeriesConfig {
	out := make([]chart.SeriesConfig, 0, len(c.Series))
	for _, s := range c.Series {
		kind, _ := chart.ParseSeriesKind(s.Kind)
		col, _ := parseColor(s.Color)
		out = append(out, chart.SeriesConfig{
			ID:         s.ID,
			Kind:       kind,
			Label:      s.Label,
			Bucket:     s.Bucket,
			Window:     s.Window,
			Thresholds: s.Thresholds,
			Color:      col,
		})
	}
	return out
}

// Level returns the slog level named by LogLevel, or Info if invalid.
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfiguration, s)
	}
	return l, nil
}

func parsePosition(s string) (layout.Orientation, error) {
	switch strings.ToLower(s) {
	case "left":
		return layout.Left, nil
	case "right":
		return layout.Right, nil
	case "top":
		return layout.Top, nil
	case "bottom":
		return layout.Bottom, nil
	default:
		return 0, fmt.Errorf("%w: unknown axis position %q", ErrInvalidConfiguration, s)
	}
}

// parseColor parses #rrggbb or #rrggbbaa. Empty yields the zero color.
func parseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{}, nil
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || !strings.HasPrefix(s, "#") || (len(b) != 3 && len(b) != 4) {
		return color.NRGBA{}, fmt.Errorf("%w: color %q", ErrInvalidConfiguration, s)
	}
	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}
