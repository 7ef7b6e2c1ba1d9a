package series

import (
	"fmt"
	"math"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/conv"
	"github.com/GNiklasch/GWO-glitch-visualization/dsp/filter/biquad"
	"github.com/GNiklasch/GWO-glitch-visualization/dsp/filter/design"
	"github.com/GNiklasch/GWO-glitch-visualization/dsp/spectrum"
	"github.com/GNiklasch/GWO-glitch-visualization/dsp/window"
)

// BandpassOrder is the order of each Butterworth half of Bandpass.
const BandpassOrder = 4

// Whitening defaults, in seconds.
const (
	DefaultWhitenFFTLength = 2.0
	DefaultFDuration       = 2.0
)

// planckTaper is the number of bins tapered at each end of the whitening
// transfer function.
const planckTaper = 5

// Bandpass filters the series between lo and hi Hz with a Butterworth
// high-pass and low-pass cascade run forward and backward, so features
// keep their timing. NaN samples spread over the whole output.
func (ts *TimeSeries) Bandpass(lo, hi float64) (*TimeSeries, error) {
	if len(ts.Data) == 0 {
		return nil, ErrEmpty
	}

	if lo >= hi {
		return nil, fmt.Errorf("series: bandpass %g-%g Hz: %w", lo, hi, ErrInvalidBand)
	}

	sections, err := design.Bandpass(lo, hi, BandpassOrder, ts.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("series: bandpass: %w", err)
	}

	chain := biquad.NewChain(sections)

	return New(ts.T0, ts.SampleRate, chain.FiltFilt(ts.Data)), nil
}

// WhitenOption configures TimeSeries.Whiten.
type WhitenOption func(*whitenConfig)

type whitenConfig struct {
	fftLength float64
	overlap   float64
	fduration float64
	window    window.Type
	asd       *FrequencySeries
}

// WithWhitenFFTLength sets the ASD segment length. Default 2 s.
func WithWhitenFFTLength(sec float64) WhitenOption {
	return func(c *whitenConfig) { c.fftLength = sec }
}

// WithWhitenOverlap sets the ASD segment overlap. Default half a segment.
func WithWhitenOverlap(sec float64) WhitenOption {
	return func(c *whitenConfig) { c.overlap = sec }
}

// WithFDuration sets the length of the whitening filter in seconds.
// Default 2 s.
func WithFDuration(sec float64) WhitenOption {
	return func(c *whitenConfig) { c.fduration = sec }
}

// WithWhitenWindow selects the ASD segment window. Default Hann.
func WithWhitenWindow(t window.Type) WhitenOption {
	return func(c *whitenConfig) { c.window = t }
}

// WithASD whitens against a precomputed ASD instead of estimating one.
func WithASD(asd *FrequencySeries) WhitenOption {
	return func(c *whitenConfig) { c.asd = asd }
}

// Whiten normalises the series by its own amplitude spectral density.
//
// The ASD is estimated with median Welch averaging and interpolated to the
// resolution of the whole series. The inverse ASD is tapered with a Planck
// window and turned into a time-domain FIR filter of fduration seconds,
// truncated with a Hann window. The mean-removed, edge-tapered input is
// convolved with that filter and scaled so white noise comes out with unit
// variance per unit bandwidth.
func (ts *TimeSeries) Whiten(opts ...WhitenOption) (*TimeSeries, error) {
	cfg := whitenConfig{
		fftLength: DefaultWhitenFFTLength,
		overlap:   -1,
		fduration: DefaultFDuration,
		window:    window.TypeHann,
	}
	for _, o := range opts {
		o(&cfg)
	}

	if len(ts.Data) == 0 {
		return nil, ErrEmpty
	}

	if cfg.overlap < 0 {
		cfg.overlap = cfg.fftLength / 2
	}

	ntaps := int(cfg.fduration * ts.SampleRate)
	if ntaps < 2 {
		return nil, fmt.Errorf("series: whitening filter of %g s: %w", cfg.fduration, ErrInvalidParameter)
	}

	if ntaps > len(ts.Data) {
		return nil, fmt.Errorf("series: %g s whitening filter on %g s of data: %w", cfg.fduration, ts.Duration(), ErrTooShort)
	}

	asd := cfg.asd
	if asd == nil {
		var err error

		asd, err = ts.ASD(WithFFTLength(cfg.fftLength), WithOverlap(cfg.overlap), WithWindow(cfg.window))
		if err != nil {
			return nil, fmt.Errorf("series: whiten: %w", err)
		}
	}

	asd, err := asd.Interpolate(1 / ts.Duration())
	if err != nil {
		return nil, fmt.Errorf("series: whiten: %w", err)
	}

	fir, err := firFromTransfer(asd.Data, ntaps)
	if err != nil {
		return nil, fmt.Errorf("series: whiten: %w", err)
	}

	in := ts.Detrend()
	taperEdges(in.Data, len(fir))

	out, err := conv.Convolve(in.Data, fir, conv.ModeSame)
	if err != nil {
		return nil, fmt.Errorf("series: whiten: %w", err)
	}

	scale := math.Sqrt(2 / ts.SampleRate)
	for i := range out {
		out[i] *= scale
	}

	return New(ts.T0, ts.SampleRate, out), nil
}

// firFromTransfer designs a zero-phase FIR filter of ntaps taps whose
// response approximates 1/asd.
func firFromTransfer(asd []float64, ntaps int) ([]float64, error) {
	if len(asd) < 2*planckTaper+1 {
		return nil, fmt.Errorf("%d ASD bins: %w", len(asd), ErrTooShort)
	}

	taper, err := window.Planck(len(asd), planckTaper, planckTaper)
	if err != nil {
		return nil, err
	}

	bins := make([]complex128, len(asd))
	for i, a := range asd {
		bins[i] = complex(taper[i]/a, 0)
	}

	// Bins tapered to zero are zero even where the ASD itself is zero.
	for i, w := range taper {
		if w == 0 {
			bins[i] = 0
		}
	}

	impulse, err := spectrum.IRFFT(bins, 2*(len(asd)-1))
	if err != nil {
		return nil, err
	}

	if ntaps > len(impulse) {
		return nil, fmt.Errorf("%d taps from a %d-sample impulse: %w", ntaps, len(impulse), ErrTooShort)
	}

	truncateImpulse(impulse, ntaps)

	// Rotate so the zero-lag tap sits in the middle of the filter.
	shift := ntaps/2 - 1
	n := len(impulse)
	fir := make([]float64, ntaps)
	for i := range fir {
		fir[i] = impulse[((i-shift)%n+n)%n]
	}

	return fir, nil
}

// truncateImpulse keeps ntaps/2 samples at each end of a circular impulse
// response, fading them out with the halves of a Hann window.
func truncateImpulse(impulse []float64, ntaps int) {
	w := window.Generate(window.TypeHann, ntaps, window.WithPeriodic())
	half := ntaps / 2
	stop := len(impulse) - half

	for i := range half {
		impulse[i] *= w[half+i]
		impulse[stop+i] *= w[i]
	}

	clear(impulse[half:stop])
}

// taperEdges fades the first and last ceil(ntaps/2) samples in and out
// with the halves of a Hann window of ntaps points.
func taperEdges(x []float64, ntaps int) {
	w := window.Generate(window.TypeHann, ntaps, window.WithPeriodic())
	pad := min((ntaps+1)/2, len(x))

	for i := range pad {
		x[i] *= w[i]
		x[len(x)-pad+i] *= w[ntaps-pad+i]
	}
}
