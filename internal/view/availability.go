package view

import (
	"context"
	"sort"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/plot"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

const availabilityRows = 1.8

// Availability plots where the loaded block holds data, against the
// requested plot interval.
type Availability struct{}

func (Availability) Name() string                 { return NameAvailability }
func (Availability) SkipText() string             { return "" }
func (Availability) Validate(_ RateSettings) error { return nil }

func (v Availability) Render(ctx context.Context, r *Renderer, in *Input) (*Panel, error) {
	s := in.Settings
	p := &Panel{View: v.Name(), Title: "Usable / unusable data vs. requested interval"}

	d := in.Strain.Descriptor
	ax := s.BlockAxis()

	x, y := flagSteps(in.Strain.Flag)
	chart := &plot.LineChart{
		Title:  p.Title,
		Width:  r.width,
		Height: r.height(availabilityRows),
		X: plot.Axis{
			Name:  s.BlockAxisName(),
			Min:   d.Start,
			Max:   d.End,
			Ticks: ax.Ticks(),
		},
		Y:     plot.Axis{Min: -0.25, Max: 1.25, Hidden: true},
		Lines: []plot.Line{{X: x, Y: y, Color: plot.Primary, Width: 2}},
		Markers: []plot.Marker{
			{X: s.T0, Color: plot.VLine, Dash: plot.Dashed},
			{X: s.PlotStart, Color: plot.Primary, Dash: plot.DashDot},
			{X: s.PlotEnd, Color: plot.Primary, Dash: plot.DashDot},
		},
	}
	png, err := r.draw(ctx, v.Name(), chart.PNG)
	if err != nil {
		return nil, err
	}
	p.PNG = png

	if gaps := in.Strain.Flag.Inactive(); len(gaps) > 0 {
		p.info("Unusable: " + gaps.String())
	}
	return p, nil
}

// flagSteps draws the flag as a step function: one over active
// segments, zero over the rest of the known span.
func flagSteps(f series.Flag) ([]float64, []float64) {
	var edges []float64
	for _, k := range f.Known.Coalesce() {
		edges = append(edges, k.Start, k.End)
	}
	for _, a := range f.Active.Coalesce() {
		edges = append(edges, a.Start, a.End)
	}
	sort.Float64s(edges)

	var x, y []float64
	level := 0.0
	for i, t := range edges {
		if i > 0 && t == edges[i-1] {
			continue
		}
		if len(x) > 0 {
			x = append(x, t)
			y = append(y, level)
		}
		level = 0
		if f.Active.Contains(t) {
			level = 1
		}
		x = append(x, t)
		y = append(y, level)
	}
	return x, y
}
