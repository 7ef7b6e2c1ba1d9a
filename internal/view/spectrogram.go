package view

import (
	"context"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/cache"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/plot"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

// Spectrogram plots the amplitude spectral density over time.
type Spectrogram struct {
	Lo, Hi float64
	// VLow and VHigh are decade exponents of the colour range.
	VLow, VHigh int
	Grid        bool
	VLine       bool
	Colormap    string
}

func (Spectrogram) Name() string     { return NameSpectrogram }
func (Spectrogram) SkipText() string { return "(Skipping spectrogram.)" }

func (v Spectrogram) Validate(rs RateSettings) error {
	if !onDetent(rs.SpectrogramDetents, v.Lo) || !onDetent(rs.SpectrogramDetents, v.Hi) {
		return invalidOption("spectrogram range %g - %g Hz is not offered at %d samples/s", v.Lo, v.Hi, rs.SampleRate)
	}
	if v.Lo > v.Hi {
		return invalidOption("spectrogram range %g - %g Hz is reversed", v.Lo, v.Hi)
	}
	if !isDecade(v.VLow) || !isDecade(v.VHigh) || v.VLow > v.VHigh {
		return invalidOption("spectrogram decades %d - %d are not offered", v.VLow, v.VHigh)
	}
	if _, err := plot.LookupColormap(v.Colormap); err != nil {
		return errors.Mark(err, ErrInvalidOption)
	}
	return nil
}

// Stride returns the spectrogram time step for a plot width.
func (Spectrogram) Stride(width float64) float64 {
	return min(width/8, BasicSpectrogramStride)
}

func (v Spectrogram) Render(ctx context.Context, r *Renderer, in *Input) (*Panel, error) {
	s := in.Settings
	p := &Panel{
		View:  v.Name(),
		Title: fmt.Sprintf("%s, around %s GPS (%s UTC)", s.Interferometer, s.T0Label(), s.T0ISO),
	}

	stride := v.Stride(s.Width)
	overlap := stride / 4
	key := cache.Key(in.Strain.Descriptor, s.PlotStart, s.PlotEnd, stride, overlap, int(r.window))
	sg, _, err := r.spectrograms.GetOrLoad(key, func() (*series.Spectrogram, error) {
		psd, err := in.Cropped.Spectrogram(stride, series.WithOverlap(overlap), series.WithWindow(r.window))
		if err != nil {
			return nil, err
		}
		return psd.Sqrt(), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "spectrogram")
	}

	cm, err := plot.LookupColormap(v.Colormap)
	if err != nil {
		return nil, err
	}
	ax := s.TimeAxis()
	flo, fhi := expandLog2(v.Lo, v.Hi)
	hm := &plot.Heatmap{
		Title:       p.Title,
		Width:       r.width,
		Height:      r.height(ForRate(s.SampleRate).SpectrogramRows),
		Values:      sg.Values,
		T0:          sg.T0,
		DT:          sg.DT,
		Frequencies: sg.Frequencies(),
		XMin:        s.PlotStart,
		XMax:        s.PlotEnd,
		XTicks:      ax.Ticks(),
		XName:       s.TimeAxisName(),
		FMin:        flo,
		FMax:        fhi,
		YName:       "Frequency [Hz]",
		Colormap:    cm,
		VMin:        math.Pow(10, float64(v.VLow)),
		VMax:        math.Pow(10, float64(v.VHigh)),
		LogColor:    true,
		ColorLabel:  "Strain ASD [Hz^-1/2]",
		Grid:        v.Grid,
	}
	if hm.VMax <= hm.VMin {
		hm.VMax = hm.VMin * 10
	}
	if v.VLine {
		hm.Markers = []plot.Marker{{X: s.T0, Color: plot.VLine, Dash: plot.Dashed}}
	}

	png, err := r.draw(ctx, v.Name(), hm.PNG)
	if err != nil {
		return nil, err
	}
	p.PNG = png
	return p, nil
}

// expandLog2 widens a degenerate frequency range to an octave on either
// side.
func expandLog2(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	return lo / 2, lo * 2
}
