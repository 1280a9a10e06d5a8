package axis

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Measurer reports the extent of a label rendered at size logical pixels.
type Measurer interface {
	Measure(label string, size float64) (width, height float64)
}

// basicHeight is the line height of basicfont.Face7x13.
const basicHeight = 13

// BasicMeasurer measures labels with the metrics of the 7x13 bitmap face
// scaled to the requested size. It needs no font data.
type BasicMeasurer struct{}

var _ Measurer = BasicMeasurer{}

// Measure implements Measurer.
func (BasicMeasurer) Measure(label string, size float64) (width, height float64) {
	adv := xfont.MeasureString(basicfont.Face7x13, label)
	k := size / basicHeight
	return float64(adv.Round()) * k, size
}

// ShapedMeasurer measures labels by shaping them with HarfBuzz.
// It is safe for concurrent use.
type ShapedMeasurer struct {
	mu     sync.Mutex
	face   *font.Face
	shaper shaping.HarfbuzzShaper
	lang   language.Language
}

var _ Measurer = (*ShapedMeasurer)(nil)

// NewShapedMeasurer parses an OpenType font and returns a measurer for it.
func NewShapedMeasurer(ttf []byte) (*ShapedMeasurer, error) {
	face, err := font.ParseTTF(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("axis: parse font: %w", err)
	}
	return &ShapedMeasurer{face: face, lang: language.NewLanguage("en")}, nil
}

// NewGoRegularMeasurer returns a ShapedMeasurer for the Go Regular font.
func NewGoRegularMeasurer() (*ShapedMeasurer, error) {
	return NewShapedMeasurer(goregular.TTF)
}

// Measure implements Measurer. The height is the font line height, so every
// label of one size measures the same height.
func (m *ShapedMeasurer) Measure(label string, size float64) (width, height float64) {
	text := []rune(label)
	in := shaping.Input{
		Text:      text,
		RunStart:  0,
		RunEnd:    len(text),
		Direction: di.DirectionLTR,
		Face:      m.face,
		Size:      fixed.Int26_6(size * 64),
		Script:    language.Latin,
		Language:  m.lang,
	}

	m.mu.Lock()
	out := m.shaper.Shape(in)
	m.mu.Unlock()

	return fromFixed(out.Advance), fromFixed(out.LineBounds.LineThickness())
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
