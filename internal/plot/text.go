package plot

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Align positions text horizontally relative to the anchor.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

var face = basicfont.Face7x13

// textWidth returns the advance of s in pixels.
func textWidth(s string) int {
	d := &font.Drawer{Face: face}
	return d.MeasureString(s).Ceil()
}

// drawText draws s with its baseline at y.
func drawText(dst draw.Image, x, y int, s string, c color.Color, align Align) {
	switch align {
	case AlignCenter:
		x -= textWidth(s) / 2
	case AlignRight:
		x -= textWidth(s)
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

// drawTextVertical draws s reading upwards, centred vertically on cy with
// the glyph tops facing left at x.
func drawTextVertical(dst draw.Image, x, cy int, s string, c color.Color) {
	w := textWidth(s)
	h := face.Metrics().Height.Ceil()
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	drawText(tmp, 0, face.Metrics().Ascent.Ceil(), s, c, AlignLeft)

	top := cy - w/2
	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			px := tmp.RGBAAt(tx, ty)
			if px.A == 0 {
				continue
			}
			// Rotate 90 degrees counter-clockwise.
			dst.Set(x+ty, top+w-1-tx, px)
		}
	}
}
