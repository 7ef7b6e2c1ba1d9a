package plot

import (
	"bytes"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Line is one plotted curve. NaN values break the curve.
type Line struct {
	Name  string
	X, Y  []float64
	Color drawing.Color
	Width float64
	Dash  []float64
}

// Marker is a vertical line across the plot area.
type Marker struct {
	X     float64
	Color drawing.Color
	Dash  []float64
}

// Axis configures one axis of a LineChart.
type Axis struct {
	Name     string
	Min, Max float64
	Ticks    []Tick
	// Log plots the axis on a log10 scale; Min, Max and tick values stay
	// in data units.
	Log    bool
	Grid   bool
	Hidden bool
}

func (a Axis) transform(v float64) float64 {
	if a.Log {
		if v <= 0 {
			return math.NaN()
		}
		return math.Log10(v)
	}
	return v
}

// LineChart is a figure of curves over shared axes.
type LineChart struct {
	Title         string
	Width, Height int
	X, Y          Axis
	Lines         []Line
	Markers       []Marker
	// Legend lists the named lines in the upper right corner.
	Legend bool
}

// PNG renders the chart.
func (c *LineChart) PNG() ([]byte, error) {
	xmin, xmax := c.X.transform(c.X.Min), c.X.transform(c.X.Max)
	ymin, ymax := c.Y.transform(c.Y.Min), c.Y.transform(c.Y.Max)

	var series []chart.Series
	for _, l := range c.Lines {
		style := chart.Style{
			StrokeColor:     l.Color,
			StrokeWidth:     max(l.Width, 1),
			StrokeDashArray: l.Dash,
		}
		for _, seg := range c.segments(l, xmin, xmax, ymin, ymax) {
			series = append(series, chart.ContinuousSeries{
				Name:    l.Name,
				XValues: seg[0],
				YValues: seg[1],
				Style:   style,
			})
		}
	}
	for _, m := range c.Markers {
		x := c.X.transform(m.X)
		if !(x >= xmin && x <= xmax) {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{x, x},
			YValues: []float64{ymin, ymax},
			Style: chart.Style{
				StrokeColor:     m.Color,
				StrokeWidth:     1.5,
				StrokeDashArray: m.Dash,
			},
		})
	}
	if len(series) == 0 {
		// go-chart refuses to render without series.
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{xmin, xmax},
			YValues: []float64{ymin, ymin},
			Style:   chart.Style{StrokeWidth: 0, StrokeColor: drawing.ColorTransparent},
		})
	}

	ch := chart.Chart{
		Title:      c.Title,
		TitleStyle: chart.Style{FontSize: 12, FontColor: Text},
		Width:      c.Width,
		Height:     c.Height,
		Background: chart.Style{Padding: chart.Box{Top: 36, Left: 16, Right: 24, Bottom: 12}},
		XAxis:      c.xAxis(xmin, xmax),
		YAxis:      c.yAxis(ymin, ymax),
		Series:     series,
	}
	if c.Legend {
		ch.Elements = []chart.Renderable{legend(c.Lines)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *LineChart) xAxis(lo, hi float64) chart.XAxis {
	ax := chart.XAxis{
		Name:  c.X.Name,
		Range: &chart.ContinuousRange{Min: lo, Max: hi},
		Ticks: chartTicks(c.X.Ticks, c.X.transform),
	}
	if c.X.Hidden {
		ax.Style = chart.Style{Hidden: true}
	}
	if c.X.Grid {
		ax.GridMajorStyle = chart.Style{StrokeColor: Grid, StrokeWidth: 0.5}
		ax.GridLines = gridLines(c.X.Ticks, c.X.transform)
	}
	return ax
}

func (c *LineChart) yAxis(lo, hi float64) chart.YAxis {
	ax := chart.YAxis{
		Name:  c.Y.Name,
		Range: &chart.ContinuousRange{Min: lo, Max: hi},
		Ticks: chartTicks(c.Y.Ticks, c.Y.transform),
	}
	if c.Y.Hidden {
		ax.Style = chart.Style{Hidden: true}
	}
	if c.Y.Grid {
		ax.GridMajorStyle = chart.Style{StrokeColor: Grid, StrokeWidth: 0.5}
		ax.GridLines = gridLines(c.Y.Ticks, c.Y.transform)
	}
	return ax
}

// segments transforms a line onto the axes, drops points outside the x
// range, clamps y into range and splits at NaN.
func (c *LineChart) segments(l Line, xmin, xmax, ymin, ymax float64) [][2][]float64 {
	var out [][2][]float64
	var xs, ys []float64
	flush := func() {
		if len(xs) > 1 {
			out = append(out, [2][]float64{xs, ys})
		}
		xs, ys = nil, nil
	}
	for i := range min(len(l.X), len(l.Y)) {
		x, y := c.X.transform(l.X[i]), c.Y.transform(l.Y[i])
		if math.IsNaN(x) || math.IsNaN(y) {
			flush()
			continue
		}
		if x < xmin || x > xmax {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, min(max(y, ymin), ymax))
	}
	flush()
	return out
}

func gridLines(ticks []Tick, f func(float64) float64) []chart.GridLine {
	var out []chart.GridLine
	for _, t := range ticks {
		if !t.Minor {
			out = append(out, chart.GridLine{Value: f(t.Value)})
		}
	}
	return out
}

// legend draws a boxed key of the named lines in the upper right corner of
// the canvas.
func legend(lines []Line) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		var named []Line
		for _, l := range lines {
			if l.Name != "" {
				named = append(named, l)
			}
		}
		if len(named) == 0 {
			return
		}

		text := chart.Style{FontSize: 10, FontColor: Text}.InheritFrom(defaults)
		text.WriteTextOptionsToRenderer(r)

		const (
			pad    = 6
			sample = 24
			row    = 16
		)
		width := 0
		for _, l := range named {
			width = max(width, r.MeasureText(l.Name).Width())
		}
		box := chart.Box{
			Top:    cb.Top + pad,
			Right:  cb.Right - pad,
			Left:   cb.Right - pad - (3*pad + sample + width),
			Bottom: cb.Top + pad + 2*pad + row*len(named),
		}

		frame := chart.Style{FillColor: drawing.ColorWhite, StrokeColor: Grid, StrokeWidth: 1}
		chart.Draw.Box(r, box, frame)

		for i, l := range named {
			y := box.Top + pad + row*i + row/2
			r.SetStrokeColor(l.Color)
			r.SetStrokeWidth(max(l.Width, 2))
			r.SetStrokeDashArray(l.Dash)
			r.MoveTo(box.Left+pad, y)
			r.LineTo(box.Left+pad+sample, y)
			r.Stroke()

			text.WriteTextOptionsToRenderer(r)
			r.Text(l.Name, box.Left+2*pad+sample, y+4)
		}
	}
}
