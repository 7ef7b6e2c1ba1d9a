package series

import (
	"fmt"
	"math"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/spectrum"
)

// FrequencySeries is a regularly spaced one-sided spectrum.
type FrequencySeries struct {
	// F0 is the frequency of Data[0] and DF the bin spacing, both in Hz.
	F0, DF float64
	Data   []float64
}

// Len returns the number of bins.
func (fs *FrequencySeries) Len() int { return len(fs.Data) }

// Frequencies returns the centre of every bin.
func (fs *FrequencySeries) Frequencies() []float64 {
	out := make([]float64, len(fs.Data))
	for i := range out {
		out[i] = fs.F0 + float64(i)*fs.DF
	}

	return out
}

// Max returns the largest bin, NaN if any bin is NaN or there are none.
func (fs *FrequencySeries) Max() float64 {
	return New(0, 1, fs.Data).Max()
}

// Crop returns the bins with lo <= f <= hi.
func (fs *FrequencySeries) Crop(lo, hi float64) *FrequencySeries {
	n := len(fs.Data)
	i0 := min(max(int(math.Ceil((lo-fs.F0)/fs.DF-gridTolerance)), 0), n)
	i1 := min(max(int(math.Floor((hi-fs.F0)/fs.DF+gridTolerance))+1, i0), n)

	return &FrequencySeries{
		F0:   fs.F0 + float64(i0)*fs.DF,
		DF:   fs.DF,
		Data: fs.Data[i0:i1],
	}
}

// Interpolate resamples the spectrum linearly onto bins spaced df apart
// from F0, covering the same frequency span.
func (fs *FrequencySeries) Interpolate(df float64) (*FrequencySeries, error) {
	if len(fs.Data) == 0 {
		return nil, ErrEmpty
	}

	if !(df > 0) {
		return nil, fmt.Errorf("series: interpolate df %g: %w", df, ErrInvalidParameter)
	}

	n := int(math.Round(float64(len(fs.Data)-1)*fs.DF/df)) + 1
	at := make([]float64, n)
	for i := range at {
		at[i] = fs.F0 + float64(i)*df
	}

	var (
		data []float64
		err  error
	)

	if len(fs.Data) == 1 {
		data = make([]float64, n)
		for i := range data {
			data[i] = fs.Data[0]
		}
	} else {
		data, err = spectrum.InterpolateLinear(fs.Frequencies(), fs.Data, at)
		if err != nil {
			return nil, fmt.Errorf("series: interpolate: %w", err)
		}
	}

	return &FrequencySeries{F0: fs.F0, DF: df, Data: data}, nil
}
