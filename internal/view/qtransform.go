package view

import (
	"context"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/qtransform"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/cache"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/gwosc"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/plot"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

// qFloor is the lowest frequency shown in Q-transform plots.
const qFloor = 10.0

// QTransform plots the normalised energy of a constant-Q transform.
type QTransform struct {
	Q float64
	// Cutoff is the top of the colour range.
	Cutoff   float64
	Whiten   bool
	Grid     bool
	VLine    bool
	Colormap string
}

func (QTransform) Name() string     { return NameQTransform }
func (QTransform) SkipText() string { return "(Skipping Q-transform rendering.)" }

func (v QTransform) Validate(_ RateSettings) error {
	if !onDetent(QValues, v.Q) {
		return invalidOption("Q-value %g is not offered", v.Q)
	}
	if !onDetent(NormalizedEnergies, v.Cutoff) {
		return invalidOption("normalized energy cutoff %g is not offered", v.Cutoff)
	}
	if _, err := plot.LookupColormap(v.Colormap); err != nil {
		return errors.Mark(err, ErrInvalidOption)
	}
	return nil
}

// FrequencyRows returns the number of log-spaced output frequencies.
func (v QTransform) FrequencyRows(rate int) int {
	scale := 1.0
	if rate >= gwosc.HighRate {
		scale = 1.3
	}
	return int(math.Ceil(max(600, 24*v.Q) * scale))
}

// qResult is a transform together with how far the padding had to be
// reduced: 0 for full padding, 1 for Pad seconds, 2 for none.
type qResult struct {
	Map   *qtransform.Map
	Level int
}

// Transform computes the Q-transform of the plot interval. Data are padded
// on both sides to keep whitening artefacts out of view; when that fails,
// typically near a data gap, it retries with less padding and finally
// with none.
func (v QTransform) Transform(strain *series.TimeSeries, d gwosc.Descriptor, s Settings, extra ...series.QOption) (*qtransform.Map, int, error) {
	opts := []series.QOption{
		series.WithWhitening(v.Whiten),
		series.WithLogFrequencies(v.FrequencyRows(d.SampleRate)),
	}
	opts = append(opts, extra...)
	attempt := func(pad float64, extra ...series.QOption) (*qtransform.Map, error) {
		ts := strain.Crop(s.PlotStart-pad, s.PlotEnd+pad)
		return ts.QTransform(v.Q, s.PlotStart, s.PlotEnd, append(opts, extra...)...)
	}

	padding := min(2.5*Pad, d.End-s.PlotEnd, s.PlotStart-d.Start)
	m, err := attempt(padding, series.WithQFDuration(Pad))
	if err == nil {
		return m, 0, nil
	}
	m, err = attempt(Pad, series.WithQFDuration(Pad))
	if err == nil {
		return m, 1, nil
	}
	m, err = attempt(0)
	if err == nil {
		return m, 2, nil
	}
	return nil, 0, dataGap(errors.Wrap(err, "q-transform"), qGapText)
}

func (v QTransform) Render(ctx context.Context, r *Renderer, in *Input) (*Panel, error) {
	s := in.Settings
	wh := ""
	if v.Whiten {
		wh = ", whitened"
	}
	p := &Panel{
		View: v.Name(),
		Title: fmt.Sprintf("%s, around %s (%s UTC), Q=%s%s",
			s.Interferometer, s.T0Label(), s.T0ISO, number(v.Q), wh),
	}

	d := in.Strain.Descriptor
	key := cache.Key(d, s.PlotStart, s.PlotEnd, Pad, v.Q, v.Whiten)
	res, _, err := r.qtransforms.GetOrLoad(key, func() (*qResult, error) {
		m, level, err := v.Transform(in.Strain.Series, d, s, series.WithQWindow(r.window))
		if err != nil {
			return nil, err
		}
		return &qResult{Map: m, Level: level}, nil
	})
	if err != nil {
		if errors.Is(err, ErrDataGap) {
			p.fail(UserMessage(err))
			return p, nil
		}
		return nil, err
	}

	cm, err := plot.LookupColormap(v.Colormap)
	if err != nil {
		return nil, err
	}
	m := res.Map
	fmax := qFloor * 2
	if n := len(m.Frequencies); n > 0 && m.Frequencies[n-1] > qFloor {
		fmax = m.Frequencies[n-1]
	}
	ax := s.TimeAxis()
	hm := &plot.Heatmap{
		Title:  p.Title,
		Width:  r.width,
		Height: r.height(ForRate(s.SampleRate).QTransformRows),
		Values: m.Values,
		// Map columns are sampled at T0+i*DT; centre the pixels on them.
		T0:          m.T0 - m.DT/2,
		DT:          m.DT,
		Frequencies: m.Frequencies,
		XMin:        s.PlotStart,
		XMax:        s.PlotEnd,
		XTicks:      ax.Ticks(),
		XName:       s.TimeAxisName(),
		FMin:        qFloor,
		FMax:        fmax,
		YName:       "Frequency [Hz]",
		Colormap:    cm,
		VMin:        0,
		VMax:        v.Cutoff,
		ColorLabel:  "Normalized energy",
		Grid:        v.Grid,
	}
	if v.VLine {
		hm.Markers = []plot.Marker{{X: s.T0, Color: plot.VLine, Dash: plot.Dashed}}
	}

	png, err := r.draw(ctx, v.Name(), hm.PNG)
	if err != nil {
		return nil, err
	}
	p.PNG = png

	if res.Level > 0 {
		far := ""
		if res.Level == 1 {
			far = " far"
		}
		p.warn("t0 is close to a data gap, thus the Q-transform could not look" + far +
			" beyond the edges of what has been plotted and areas near these edges " +
			"may contain artefacts. Also, information about low frequencies may be " +
			"insufficient to paint that region.")
	}
	return p, nil
}
