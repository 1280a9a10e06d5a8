package chart

import "image/color"

// Theme holds the colors of a chart.
type Theme struct {
	Background color.NRGBA

	// Palette colors line series in the order they were added.
	Palette []color.NRGBA

	Buy        color.NRGBA
	Sell       color.NRGBA
	Heat       color.NRGBA
	Cursor     color.NRGBA
	Annotation color.NRGBA
	Grid       color.NRGBA

	// Axis and Label are used for axes whose style leaves the colors unset.
	Axis  color.NRGBA
	Label color.NRGBA
}

// DefaultTheme is a dark theme.
func DefaultTheme() Theme {
	return Theme{
		Background: color.NRGBA{R: 0x12, G: 0x14, B: 0x1a, A: 0xff},
		Palette: []color.NRGBA{
			{R: 0x4e, G: 0xa1, B: 0xff, A: 0xff},
			{R: 0xff, G: 0xb3, B: 0x47, A: 0xff},
			{R: 0xb3, G: 0x8c, B: 0xff, A: 0xff},
			{R: 0x5c, G: 0xd6, B: 0xc0, A: 0xff},
		},
		Buy:        color.NRGBA{R: 0x26, G: 0xa6, B: 0x5b, A: 0xff},
		Sell:       color.NRGBA{R: 0xe0, G: 0x4a, B: 0x4a, A: 0xff},
		Heat:       color.NRGBA{R: 0xff, G: 0x8a, B: 0x1f, A: 0xff},
		Cursor:     color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff},
		Annotation: color.NRGBA{R: 0xff, G: 0xe0, B: 0x66, A: 0xff},
		Grid:       color.NRGBA{R: 0x2a, G: 0x2e, B: 0x38, A: 0xff},
		Axis:       color.NRGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff},
		Label:      color.NRGBA{R: 0xb8, G: 0xbe, B: 0xc8, A: 0xff},
	}
}

// withAlpha scales the alpha of c by f in [0, 1].
func withAlpha(c color.NRGBA, f float64) color.NRGBA {
	switch {
	case !(f > 0):
		c.A = 0
	case f < 1:
		c.A = uint8(float64(c.A)*f + 0.5)
	}
	return c
}
