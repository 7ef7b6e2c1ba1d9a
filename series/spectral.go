package series

import (
	"fmt"
	"math"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/spectrum"
	"github.com/GNiklasch/GWO-glitch-visualization/dsp/window"
)

// ASDOption configures TimeSeries.ASD and TimeSeries.Spectrogram.
type ASDOption func(*asdConfig)

type asdConfig struct {
	fftLength float64
	overlap   float64
	window    window.Type
	average   spectrum.Average
}

// WithFFTLength sets the Welch segment length in seconds.
func WithFFTLength(sec float64) ASDOption {
	return func(c *asdConfig) { c.fftLength = sec }
}

// WithOverlap sets the overlap between Welch segments in seconds.
func WithOverlap(sec float64) ASDOption {
	return func(c *asdConfig) { c.overlap = sec }
}

// WithWindow selects the segment window. Default is Hann.
func WithWindow(t window.Type) ASDOption {
	return func(c *asdConfig) { c.window = t }
}

// WithAverage selects mean or median averaging. Default is median.
func WithAverage(a spectrum.Average) ASDOption {
	return func(c *asdConfig) { c.average = a }
}

func newASDConfig(opts []ASDOption) asdConfig {
	cfg := asdConfig{overlap: -1, window: window.TypeHann, average: spectrum.AverageMedian}
	for _, o := range opts {
		o(&cfg)
	}

	return cfg
}

// PSD estimates the one-sided power spectral density with Welch's method.
// The default segment length is the whole series, and the default overlap
// is half a segment. NaN samples yield NaN bins.
func (ts *TimeSeries) PSD(opts ...ASDOption) (*FrequencySeries, error) {
	if len(ts.Data) == 0 {
		return nil, ErrEmpty
	}

	cfg := newASDConfig(opts)
	if cfg.fftLength <= 0 {
		cfg.fftLength = ts.Duration()
	}

	if cfg.overlap < 0 {
		cfg.overlap = cfg.fftLength / 2
	}

	segLen := int(math.Round(cfg.fftLength * ts.SampleRate))
	overlap := int(math.Round(cfg.overlap * ts.SampleRate))

	if segLen > len(ts.Data) {
		return nil, fmt.Errorf("series: %g s segments from %g s of data: %w", cfg.fftLength, ts.Duration(), ErrTooShort)
	}

	if segLen < 1 || overlap >= segLen {
		return nil, fmt.Errorf("series: fftlength %g s, overlap %g s: %w", cfg.fftLength, cfg.overlap, ErrInvalidParameter)
	}

	psd, err := spectrum.Welch(ts.Data, ts.SampleRate, segLen,
		spectrum.WithWindow(cfg.window),
		spectrum.WithOverlap(overlap),
		spectrum.WithAverage(cfg.average),
	)
	if err != nil {
		return nil, fmt.Errorf("series: welch: %w", err)
	}

	return &FrequencySeries{DF: ts.SampleRate / float64(segLen), Data: psd}, nil
}

// ASD returns the square root of PSD.
func (ts *TimeSeries) ASD(opts ...ASDOption) (*FrequencySeries, error) {
	psd, err := ts.PSD(opts...)
	if err != nil {
		return nil, err
	}

	for i, v := range psd.Data {
		psd.Data[i] = math.Sqrt(v)
	}

	return psd, nil
}

// Spectrogram is a sequence of spectra at regular time steps.
type Spectrogram struct {
	// T0 is the start of the first column and DT the column spacing.
	T0, DT float64
	// F0 and DF describe the bins of every column.
	F0, DF float64
	// Values[i][j] is bin j of the spectrum starting at T0+i*DT.
	Values [][]float64
}

// Frequencies returns the bin centres.
func (s *Spectrogram) Frequencies() []float64 {
	if len(s.Values) == 0 {
		return nil
	}

	fs := FrequencySeries{F0: s.F0, DF: s.DF, Data: s.Values[0]}

	return fs.Frequencies()
}

// Sqrt returns a spectrogram with the square root of every value, turning
// power into amplitude spectral density.
func (s *Spectrogram) Sqrt() *Spectrogram {
	out := *s
	out.Values = make([][]float64, len(s.Values))
	for i, col := range s.Values {
		row := make([]float64, len(col))
		for j, v := range col {
			row[j] = math.Sqrt(v)
		}

		out.Values[i] = row
	}

	return &out
}

// Spectrogram computes a Welch PSD for each consecutive stride-second
// stretch of the series. The segment length defaults to the stride, and
// trailing samples that do not fill a stride are dropped.
func (ts *TimeSeries) Spectrogram(stride float64, opts ...ASDOption) (*Spectrogram, error) {
	if !(stride > 0) {
		return nil, fmt.Errorf("series: spectrogram stride %g: %w", stride, ErrInvalidParameter)
	}

	cfg := newASDConfig(opts)
	if cfg.fftLength <= 0 {
		cfg.fftLength = stride
	}

	strideLen := int(math.Round(stride * ts.SampleRate))
	ncol := 0
	if strideLen > 0 {
		ncol = len(ts.Data) / strideLen
	}

	if ncol == 0 {
		return nil, fmt.Errorf("series: %g s stride over %g s of data: %w", stride, ts.Duration(), ErrTooShort)
	}

	// Keep the overlap within the segment if it was not set explicitly.
	if cfg.overlap < 0 {
		cfg.overlap = 0
	}

	colOpts := []ASDOption{
		WithFFTLength(cfg.fftLength),
		WithOverlap(cfg.overlap),
		WithWindow(cfg.window),
		WithAverage(cfg.average),
	}

	out := &Spectrogram{T0: ts.T0, DT: stride, Values: make([][]float64, ncol)}
	for i := range ncol {
		seg := New(ts.TimeAt(i*strideLen), ts.SampleRate, ts.Data[i*strideLen:(i+1)*strideLen])

		psd, err := seg.PSD(colOpts...)
		if err != nil {
			return nil, fmt.Errorf("series: spectrogram column %d: %w", i, err)
		}

		out.F0, out.DF = psd.F0, psd.DF
		out.Values[i] = psd.Data
	}

	return out, nil
}
