package view

import (
	"math"
	"strconv"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/gpstime"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/gwosc"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/plot"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

// Settings are the data settings derived from the load request: the
// cache-block aligned load interval, the plot interval and the time axis.
type Settings struct {
	Interferometer string  `json:"interferometer"`
	T0             float64 `json:"t0"`
	T0ISO          string  `json:"t0_iso"`
	Width          float64 `json:"width"`
	SampleRate     int     `json:"sample_rate"`
	WideBlocks     bool    `json:"wide_blocks"`

	Block     float64 `json:"block"`
	Start     float64 `json:"t_start"`
	End       float64 `json:"t_end"`
	PlotStart float64 `json:"t_plotstart"`
	PlotEnd   float64 `json:"t_plotend"`
	PlotEdge  float64 `json:"t_plotedge"`
	Epoch     float64 `json:"t_epoch"`
	Major     float64 `json:"t_major"`
}

// NewSettings computes the data settings for a request.
func NewSettings(ifo string, t0, width float64, rate int, wide bool) Settings {
	block := 32.0
	if wide {
		block = 512
		if rate >= gwosc.HighRate {
			block = 256
		}
	}

	s := Settings{
		Interferometer: ifo,
		T0:             t0,
		T0ISO:          gpstime.GPSToISOT(t0),
		Width:          width,
		SampleRate:     rate,
		WideBlocks:     wide,
		Block:          block,
		Start:          block * math.Floor((t0-ElbowRoom)/block),
		End:            block * math.Ceil((t0+ElbowRoom)/block),
		PlotStart:      t0 - width/2,
		PlotEnd:        t0 + width/2,
	}
	s.PlotEdge = s.PlotEnd + 1/float64(rate)
	if width >= 32 {
		s.Epoch = 10 * math.Floor(t0/10)
		s.Major = 5
	} else {
		s.Epoch = math.Floor(t0)
		s.Major = min(1, width/8)
	}
	return s
}

// Descriptor identifies the strain these settings load.
func (s Settings) Descriptor() gwosc.Descriptor {
	return gwosc.Descriptor{
		Interferometer: s.Interferometer,
		Start:          s.Start,
		End:            s.End,
		SampleRate:     s.SampleRate,
	}
}

// T0Label formats t0 for titles and messages.
func (s Settings) T0Label() string {
	return number(s.T0)
}

// CrossesChunk reports whether the load interval spans more than one
// archive file.
func (s Settings) CrossesChunk() bool {
	return math.Floor(s.End/gwosc.ChunkSize) > math.Floor(s.Start/gwosc.ChunkSize)
}

// TimeAxis returns the seconds axis shared by the plots of the plot
// interval.
func (s Settings) TimeAxis() plot.SecondsAxis {
	ax := plot.SecondsAxis{Start: s.PlotStart, End: s.PlotEnd, Epoch: s.Epoch}
	if s.Width >= 1 {
		ax.Major = s.Major
	}
	if s.Width <= 4 {
		ax.MinorDivisions = 5
	}
	return ax
}

// TimeAxisName names the seconds axis.
func (s Settings) TimeAxisName() string {
	return s.TimeAxis().Name(gpstime.GPSToISOT(s.Epoch))
}

// BlockAxis returns the seconds axis over the load interval, counted
// from the whole second at or before t0.
func (s Settings) BlockAxis() plot.SecondsAxis {
	ax := plot.SecondsAxis{Start: s.Start, End: s.End, Epoch: math.Floor(s.T0)}
	if s.End-s.Start == 128 {
		ax.MinorDivisions = 3
	}
	return ax
}

// BlockAxisName names the load interval axis.
func (s Settings) BlockAxisName() string {
	ax := s.BlockAxis()
	return ax.Name(gpstime.GPSToISOT(ax.Epoch))
}

// CropToPlot returns the strain shown in the plot interval, including the
// sample at the plot edge unless that sample is missing.
func (s Settings) CropToPlot(ts *series.TimeSeries) *series.TimeSeries {
	cropped := ts.Crop(s.PlotStart, s.PlotEdge)
	if n := cropped.Len(); n > 0 && math.IsNaN(cropped.Data[n-1]) {
		cropped = ts.Crop(s.PlotStart, s.PlotEnd)
	}
	return cropped
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
