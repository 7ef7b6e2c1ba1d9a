package view

import (
	"context"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/window"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

// Filtered plots the band-passed, optionally whitened strain.
type Filtered struct {
	Lo, Hi float64
	Whiten bool
	VLine  bool
}

func (Filtered) Name() string     { return NameFiltered }
func (Filtered) SkipText() string { return "(Skipping filtered data plotting.)" }

func (v Filtered) Validate(rs RateSettings) error {
	if !onDetent(rs.FilterDetents, v.Lo) || !onDetent(rs.FilterDetents, v.Hi) {
		return invalidOption("bandpass limits %g - %g Hz are not offered at %d samples/s", v.Lo, v.Hi, rs.SampleRate)
	}
	if v.Lo > v.Hi {
		return invalidOption("bandpass limits %g - %g Hz are reversed", v.Lo, v.Hi)
	}
	return nil
}

func (v Filtered) Render(ctx context.Context, r *Renderer, in *Input) (*Panel, error) {
	s := in.Settings
	wh := ""
	yName := "dimensionless"
	if v.Whiten {
		wh = ", whitened"
		yName = "arbitrary units"
	}
	p := &Panel{
		View: v.Name(),
		Title: fmt.Sprintf("%s, around %s (%s UTC)%s, band pass: %s - %s Hz",
			s.Interferometer, s.T0Label(), s.T0ISO, wh, number(v.Lo), number(v.Hi)),
	}

	filtered, err := v.filter(in, r.window)
	switch {
	case errors.Is(err, ErrZeroRange):
		p.warn(UserMessage(err))
		return p, nil
	case errors.Is(err, ErrDataGap):
		p.fail(UserMessage(err))
		return p, nil
	case err != nil:
		return nil, err
	}

	chart := r.strainChart(p.Title, s, filtered, yName, v.VLine)
	png, err := r.draw(ctx, v.Name(), chart.PNG)
	if err != nil {
		return nil, err
	}
	p.PNG = png

	if floor, ok := CalibLow(s.Interferometer); ok && v.Lo < floor {
		p.warn(calibCaveat(s.Interferometer, floor))
	}
	return p, nil
}

// filter band-passes the padded plot interval and crops the result to
// the plot interval plus the edge sample.
func (v Filtered) filter(in *Input, w window.Type) (*series.TimeSeries, error) {
	if v.Lo >= v.Hi {
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("bandpass %g - %g Hz", v.Lo, v.Hi), ErrZeroRange),
			zeroRangeText)
	}

	s := in.Settings
	ts := in.Strain.Series.Crop(s.PlotStart-Pad, s.PlotEnd+Pad)
	if v.Whiten {
		white, err := ts.Whiten(series.WithWhitenWindow(w))
		if err != nil {
			if gapLike(err) {
				return nil, dataGap(err, filteredGapText)
			}
			return nil, errors.Wrap(err, "whiten")
		}
		ts = white
	}

	f, err := ts.Bandpass(v.Lo, v.Hi)
	if err != nil {
		if gapLike(err) {
			return nil, dataGap(err, filteredGapText)
		}
		return nil, errors.Wrap(err, "bandpass")
	}
	// Filters spread a single missing sample over the whole output.
	if f.Len() == 0 || math.IsNaN(f.Max()) {
		return nil, dataGap(nil, filteredGapText)
	}
	return f.Crop(s.PlotStart, s.PlotEdge), nil
}
