package axis

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders a tick value as a label. step is the distance between
// neighbouring ticks and decides the number of fraction digits.
type Formatter interface {
	Format(value, step float64) string
}

// maxFractionDigits bounds the precision of generated labels.
const maxFractionDigits = 10

// NumberFormatter formats numbers for a locale.
type NumberFormatter struct {
	p *message.Printer
}

var _ Formatter = (*NumberFormatter)(nil)

// NewNumberFormatter creates a formatter for the given locale.
func NewNumberFormatter(tag language.Tag) *NumberFormatter {
	return &NumberFormatter{p: message.NewPrinter(tag)}
}

// DefaultFormatter formats numbers for English.
var DefaultFormatter Formatter = NewNumberFormatter(language.English)

// Format implements Formatter.
func (f *NumberFormatter) Format(value, step float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return f.p.Sprint(value)
	}
	d := fractionDigits(step)
	// Snap values like 0.30000000000000004 and -0 before formatting.
	scale := math.Pow(10, float64(d))
	value = math.Round(value*scale) / scale
	if value == 0 {
		value = 0
	}
	return f.p.Sprint(number.Decimal(value, number.MinFractionDigits(d), number.MaxFractionDigits(d)))
}

// fractionDigits returns the smallest number of decimals that represents
// step exactly, up to maxFractionDigits.
func fractionDigits(step float64) int {
	step = math.Abs(step)
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return 0
	}
	for d := 0; d < maxFractionDigits; d++ {
		v := step * math.Pow(10, float64(d))
		if math.Abs(v-math.Round(v)) < 1e-6*math.Max(1, v) {
			return d
		}
	}
	return maxFractionDigits
}
