package view

import (
	"context"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/window"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/plot"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

const asdRows = 6

// ASD plots the amplitude spectral density of the plot interval, with an
// optional background spectrum from an offset interval.
type ASD struct {
	Lo, Hi float64
	// YLow and YHigh are decade exponents of the vertical range.
	YLow, YHigh int
	// Offset shifts the background interval in seconds; zero disables it.
	Offset float64
	// Lighten swaps the shades of foreground and background.
	Lighten bool
}

func (ASD) Name() string     { return NameASD }
func (ASD) SkipText() string { return "(Skipping ASD spectrum plot.)" }

func (v ASD) Validate(rs RateSettings) error {
	if !onDetent(rs.ASDDetents, v.Lo) || !onDetent(rs.ASDDetents, v.Hi) {
		return invalidOption("spectrum range %g - %g Hz is not offered at %d samples/s", v.Lo, v.Hi, rs.SampleRate)
	}
	if v.Lo > v.Hi {
		return invalidOption("spectrum range %g - %g Hz is reversed", v.Lo, v.Hi)
	}
	if !isDecade(v.YLow) || !isDecade(v.YHigh) || v.YLow > v.YHigh {
		return invalidOption("ASD decades %d - %d are not offered", v.YLow, v.YHigh)
	}
	if !onDetent(ASDOffsets, v.Offset) {
		return invalidOption("background offset %g s is not offered", v.Offset)
	}
	return nil
}

func (v ASD) Render(ctx context.Context, r *Renderer, in *Input) (*Panel, error) {
	s := in.Settings
	p := &Panel{
		View: v.Name(),
		Title: fmt.Sprintf("%s, during %s s around %s GPS (%s UTC)",
			s.Interferometer, number(s.Width), s.T0Label(), s.T0ISO),
	}

	asd, err := spectrum(in.Cropped, r.window)
	if err != nil {
		if errors.Is(err, ErrDataGap) {
			p.fail(asdGapText)
			return p, nil
		}
		return nil, err
	}

	fg, bg := plot.Primary, plot.ASDTranslucent
	if v.Lighten {
		fg, bg = plot.ASDLight, plot.Primary
	}
	lines := []plot.Line{{X: asd.Frequencies(), Y: asd.Data, Color: fg}}

	var bgGap bool
	if v.Offset != 0 {
		bgASD, err := spectrum(in.Strain.Series.Crop(s.PlotStart+v.Offset, s.PlotEnd+v.Offset), r.window)
		switch {
		case errors.Is(err, ErrDataGap):
			bgGap = true
		case err != nil:
			return nil, err
		default:
			lines = append(lines, plot.Line{
				Name:  offsetLabel(v.Offset),
				X:     bgASD.Frequencies(),
				Y:     bgASD.Data,
				Color: bg,
			})
		}
	}

	flo, fhi := plot.ExpandLogRange(v.Lo, v.Hi)
	ylo, yhi := plot.ExpandLogRange(math.Pow(10, float64(v.YLow)), math.Pow(10, float64(v.YHigh)))
	chart := &plot.LineChart{
		Title:  p.Title,
		Width:  r.width,
		Height: r.height(asdRows),
		X: plot.Axis{
			Name:  fmt.Sprintf("Frequency [Hz], %s - %s Hz", number(v.Lo), number(v.Hi)),
			Min:   flo,
			Max:   fhi,
			Ticks: plot.FrequencyTicks(v.Lo, v.Hi),
			Log:   true,
			Grid:  true,
		},
		Y: plot.Axis{
			Name:  "Strain ASD [Hz^-1/2]",
			Min:   ylo,
			Max:   yhi,
			Ticks: plot.DecadeTicks(ylo, yhi),
			Log:   true,
			Grid:  true,
		},
		Lines:  lines,
		Legend: len(lines) > 1,
	}
	png, err := r.draw(ctx, v.Name(), chart.PNG)
	if err != nil {
		return nil, err
	}
	p.PNG = png

	if floor, ok := CalibLow(s.Interferometer); ok && v.Lo < floor {
		p.warn(calibCaveat(s.Interferometer, floor))
	}
	if bgGap {
		p.warn(backgroundGapText)
	}
	return p, nil
}

// spectrum computes the ASD of ts, reporting missing data as a gap.
func spectrum(ts *series.TimeSeries, w window.Type) (*series.FrequencySeries, error) {
	asd, err := ts.ASD(series.WithWindow(w))
	if err != nil {
		if gapLike(err) {
			return nil, dataGap(err, asdGapText)
		}
		return nil, errors.Wrap(err, "asd")
	}
	if math.IsNaN(asd.Max()) {
		return nil, dataGap(nil, asdGapText)
	}
	return asd, nil
}

func offsetLabel(offset float64) string {
	if offset > 0 {
		return number(offset) + " s later"
	}
	return number(-offset) + " s earlier"
}
