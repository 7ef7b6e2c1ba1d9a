package plot

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sort"

	"github.com/cockroachdb/errors"
)

// ErrEmptyHeatmap is returned for heatmaps without values.
var ErrEmptyHeatmap = errors.New("plot: heatmap has no values")

// Heatmap is a time-frequency image with a log2 frequency axis and a
// colorbar.
type Heatmap struct {
	Title         string
	Width, Height int

	// Values[i][j] is the value of time column i at frequency row j.
	Values [][]float64
	// Column i covers [T0+i*DT, T0+(i+1)*DT).
	T0, DT float64
	// Frequencies holds the ascending row centres.
	Frequencies []float64

	XMin, XMax float64
	XTicks     []Tick
	XName      string

	FMin, FMax float64
	YName      string

	Colormap   Colormap
	VMin, VMax float64
	LogColor   bool
	ColorLabel string

	Grid    bool
	Markers []Marker
}

const (
	marginLeft     = 72
	marginRight    = 120
	marginTop      = 36
	marginBottom   = 50
	colorbarGap    = 16
	colorbarWidth  = 18
	tickLength     = 5
	minorTickLenth = 3
)

var (
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	black = color.RGBA{A: 0xFF}
)

// PNG renders the heatmap.
func (h *Heatmap) PNG() ([]byte, error) {
	img, err := h.Image()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Image paints the heatmap onto a new RGBA image.
func (h *Heatmap) Image() (*image.RGBA, error) {
	if len(h.Values) == 0 || len(h.Frequencies) == 0 {
		return nil, ErrEmptyHeatmap
	}
	if !(h.XMax > h.XMin) || !(h.FMax > h.FMin) || !(h.FMin > 0) {
		return nil, errors.New("plot: heatmap axis limits are empty")
	}

	img := image.NewRGBA(image.Rect(0, 0, h.Width, h.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	plot := image.Rect(marginLeft, marginTop, h.Width-marginRight, h.Height-marginBottom)
	if plot.Dx() < 10 || plot.Dy() < 10 {
		return nil, errors.New("plot: heatmap is too small")
	}

	h.paint(img, plot)
	if h.Grid {
		h.drawGrid(img, plot)
	}
	for _, m := range h.Markers {
		if m.X < h.XMin || m.X > h.XMax {
			continue
		}
		x := plot.Min.X + int(math.Round((m.X-h.XMin)/(h.XMax-h.XMin)*float64(plot.Dx()-1)))
		vline(img, x, plot.Min.Y, plot.Max.Y, rgba(m.Color), m.Dash)
	}
	frame(img, plot)
	h.drawAxes(img, plot)
	h.drawColorbar(img, plot)

	drawText(img, h.Width/2, 20, h.Title, black, AlignCenter)
	return img, nil
}

// paint fills the plot area, looking up the column and row of every pixel.
func (h *Heatmap) paint(img *image.RGBA, plot image.Rectangle) {
	cols := make([]int, plot.Dx())
	for px := range cols {
		t := h.XMin + (float64(px)+0.5)/float64(plot.Dx())*(h.XMax-h.XMin)
		i := int(math.Floor((t - h.T0) / h.DT))
		if i < 0 || i >= len(h.Values) {
			i = -1
		}
		cols[px] = i
	}

	rows := make([]int, plot.Dy())
	l0, l1 := math.Log2(h.FMin), math.Log2(h.FMax)
	for py := range rows {
		f := math.Exp2(l1 - (float64(py)+0.5)/float64(plot.Dy())*(l1-l0))
		rows[py] = nearest(h.Frequencies, f)
	}

	for py, j := range rows {
		for px, i := range cols {
			c := white
			if i >= 0 && j >= 0 && j < len(h.Values[i]) {
				c = h.Colormap.At(h.normalize(h.Values[i][j]))
			}
			img.SetRGBA(plot.Min.X+px, plot.Min.Y+py, c)
		}
	}
}

func (h *Heatmap) normalize(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	if h.LogColor {
		if v <= 0 {
			return 0
		}
		return (math.Log10(v) - math.Log10(h.VMin)) / (math.Log10(h.VMax) - math.Log10(h.VMin))
	}
	return (v - h.VMin) / (h.VMax - h.VMin)
}

// nearest returns the index of the entry of sorted xs closest to x, or -1
// when x lies more than half a spacing outside the ends.
func nearest(xs []float64, x float64) int {
	n := len(xs)
	k := sort.SearchFloat64s(xs, x)
	switch {
	case n == 1:
		return 0
	case k == 0:
		if x < xs[0]-(xs[1]-xs[0])/2 {
			return -1
		}
		return 0
	case k == n:
		if x > xs[n-1]+(xs[n-1]-xs[n-2])/2 {
			return -1
		}
		return n - 1
	case x-xs[k-1] < xs[k]-x:
		return k - 1
	default:
		return k
	}
}

func (h *Heatmap) xPixel(plot image.Rectangle, t float64) int {
	return plot.Min.X + int(math.Round((t-h.XMin)/(h.XMax-h.XMin)*float64(plot.Dx()-1)))
}

func (h *Heatmap) yPixel(plot image.Rectangle, f float64) int {
	l0, l1 := math.Log2(h.FMin), math.Log2(h.FMax)
	return plot.Max.Y - 1 - int(math.Round((math.Log2(f)-l0)/(l1-l0)*float64(plot.Dy()-1)))
}

func (h *Heatmap) drawGrid(img *image.RGBA, plot image.Rectangle) {
	g := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x60}
	for _, t := range h.XTicks {
		if t.Minor || t.Value < h.XMin || t.Value > h.XMax {
			continue
		}
		vline(img, h.xPixel(plot, t.Value), plot.Min.Y, plot.Max.Y, g, nil)
	}
	for _, t := range Log2Ticks(h.FMin, h.FMax) {
		hline(img, plot.Min.X, plot.Max.X, h.yPixel(plot, t.Value), g)
	}
}

func (h *Heatmap) drawAxes(img *image.RGBA, plot image.Rectangle) {
	for _, t := range h.XTicks {
		if t.Value < h.XMin || t.Value > h.XMax {
			continue
		}
		x := h.xPixel(plot, t.Value)
		length := tickLength
		if t.Minor {
			length = minorTickLenth
		}
		vline(img, x, plot.Max.Y, plot.Max.Y+length, black, nil)
		if t.Label != "" {
			drawText(img, x, plot.Max.Y+18, t.Label, black, AlignCenter)
		}
	}
	drawText(img, plot.Min.X+plot.Dx()/2, plot.Max.Y+40, h.XName, black, AlignCenter)

	for _, t := range Log2Ticks(h.FMin, h.FMax) {
		y := h.yPixel(plot, t.Value)
		hline(img, plot.Min.X-tickLength, plot.Min.X, y, black)
		drawText(img, plot.Min.X-tickLength-3, y+4, t.Label, black, AlignRight)
	}
	drawTextVertical(img, 8, plot.Min.Y+plot.Dy()/2, h.YName, black)
}

func (h *Heatmap) drawColorbar(img *image.RGBA, plot image.Rectangle) {
	bar := image.Rect(plot.Max.X+colorbarGap, plot.Min.Y, plot.Max.X+colorbarGap+colorbarWidth, plot.Max.Y)
	for py := bar.Min.Y; py < bar.Max.Y; py++ {
		frac := 1 - (float64(py-bar.Min.Y)+0.5)/float64(bar.Dy())
		c := h.Colormap.At(frac)
		for px := bar.Min.X; px < bar.Max.X; px++ {
			img.SetRGBA(px, py, c)
		}
	}
	frame(img, bar)

	var ticks []Tick
	if h.LogColor {
		ticks = DecadeTicks(h.VMin, h.VMax)
	} else {
		ticks = NiceTicks(h.VMin, h.VMax, 5)
	}
	for _, t := range ticks {
		frac := h.normalize(t.Value)
		if !(frac >= 0 && frac <= 1) {
			continue
		}
		y := bar.Max.Y - 1 - int(math.Round(frac*float64(bar.Dy()-1)))
		hline(img, bar.Max.X, bar.Max.X+tickLength, y, black)
		drawText(img, bar.Max.X+tickLength+3, y+4, t.Label, black, AlignLeft)
	}
	drawTextVertical(img, h.Width-16, bar.Min.Y+bar.Dy()/2, h.ColorLabel, black)
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA, dash []float64) {
	period := 0
	on := 0
	if len(dash) >= 2 {
		on = int(dash[0])
		for _, d := range dash[:2] {
			period += int(d)
		}
	}
	for y := y0; y < y1; y++ {
		if period > 0 && (y-y0)%period >= on {
			continue
		}
		blend(img, x, y, c)
	}
}

func hline(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x < x1; x++ {
		blend(img, x, y, c)
	}
}

func frame(img *image.RGBA, r image.Rectangle) {
	hline(img, r.Min.X, r.Max.X, r.Min.Y, black)
	hline(img, r.Min.X, r.Max.X, r.Max.Y-1, black)
	vline(img, r.Min.X, r.Min.Y, r.Max.Y, black, nil)
	vline(img, r.Max.X-1, r.Min.Y, r.Max.Y, black, nil)
}

// blend paints c over the pixel at (x, y) using c's alpha.
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return
	}
	if c.A == 0xFF {
		img.SetRGBA(x, y, c)
		return
	}
	dst := img.RGBAAt(x, y)
	a := float64(c.A) / 255
	mix := func(s, d uint8) uint8 {
		return uint8(math.Round(a*float64(s) + (1-a)*float64(d)))
	}
	img.SetRGBA(x, y, color.RGBA{R: mix(c.R, dst.R), G: mix(c.G, dst.G), B: mix(c.B, dst.B), A: 0xFF})
}
