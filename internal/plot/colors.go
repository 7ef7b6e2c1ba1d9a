package plot

import (
	"image/color"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Named colours.
var (
	Primary        = drawing.Color{R: 0x0F, G: 0x2C, B: 0xA4, A: 0xFF}
	VLine          = drawing.Color{R: 0xFF, G: 0xA5, B: 0x00, A: 0xFF}
	ASDLight       = drawing.Color{R: 0x7A, G: 0x89, B: 0xC8, A: 0xFF}
	ASDTranslucent = drawing.Color{R: 0x0F, G: 0x2C, B: 0xA4, A: 0x96}
	Grid           = drawing.Color{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}
	Text           = drawing.Color{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
)

// Dash patterns for vertical marker lines.
var (
	Dashed  = []float64{6, 4}
	DashDot = []float64{8, 3, 2, 3}
)

func rgba(c drawing.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
