package spectrum

import (
	"fmt"
	"math"
	"sort"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/window"
)

// Average selects how Welch segment periodograms are combined.
type Average int

const (
	// AverageMean takes the arithmetic mean of segment periodograms.
	AverageMean Average = iota
	// AverageMedian takes the per-bin median, corrected for its bias
	// relative to the mean of an exponential distribution.
	AverageMedian
)

// WelchOption configures Welch estimation.
type WelchOption func(*welchConfig)

type welchConfig struct {
	window  window.Type
	overlap int
	average Average
	detrend bool
}

func defaultWelchConfig() welchConfig {
	return welchConfig{
		window:  window.TypeHann,
		average: AverageMedian,
		detrend: true,
	}
}

// WithWindow selects the segment window (periodic form is always used).
func WithWindow(t window.Type) WelchOption {
	return func(c *welchConfig) {
		c.window = t
	}
}

// WithOverlap sets the overlap between consecutive segments in samples.
func WithOverlap(samples int) WelchOption {
	return func(c *welchConfig) {
		if samples >= 0 {
			c.overlap = samples
		}
	}
}

// WithAverage selects mean or median averaging.
func WithAverage(a Average) WelchOption {
	return func(c *welchConfig) {
		c.average = a
	}
}

// WithoutDetrend disables per-segment mean removal.
func WithoutDetrend() WelchOption {
	return func(c *welchConfig) {
		c.detrend = false
	}
}

// Welch estimates the one-sided power spectral density of x in units of
// x²/Hz. The result has segLen/2+1 bins spaced sampleRate/segLen apart.
// Any NaN inside a segment propagates into the bins it contributes to.
func Welch(x []float64, sampleRate float64, segLen int, opts ...WelchOption) ([]float64, error) {
	cfg := defaultWelchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if segLen <= 0 || cfg.overlap >= segLen {
		return nil, fmt.Errorf("%w: segment %d, overlap %d", ErrInvalidSegment, segLen, cfg.overlap)
	}
	if len(x) < segLen {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortInput, len(x), segLen)
	}

	step := segLen - cfg.overlap
	nseg := (len(x) - cfg.overlap) / step

	win := window.Generate(cfg.window, segLen, window.WithPeriodic())
	scale := 1 / (sampleRate * window.SumSquares(win))
	nbins := segLen/2 + 1

	periodograms := make([][]float64, nseg)
	seg := make([]float64, segLen)

	for s := 0; s < nseg; s++ {
		copy(seg, x[s*step:s*step+segLen])
		if cfg.detrend {
			removeMean(seg)
		}
		if err := window.ApplyCoefficientsInPlace(seg, win); err != nil {
			return nil, err
		}

		bins, err := RFFT(seg)
		if err != nil {
			return nil, err
		}

		p := Power(bins)
		for k := range p {
			p[k] *= scale
		}
		onesided(p, segLen)
		periodograms[s] = p
	}

	out := make([]float64, nbins)
	switch cfg.average {
	case AverageMedian:
		bias := medianBias(nseg)
		col := make([]float64, nseg)
		for k := range out {
			for s := range periodograms {
				col[s] = periodograms[s][k]
			}
			out[k] = median(col) / bias
		}
	default:
		for _, p := range periodograms {
			for k, v := range p {
				out[k] += v
			}
		}
		inv := 1 / float64(nseg)
		for k := range out {
			out[k] *= inv
		}
	}

	return out, nil
}

// onesided doubles every bin except DC and, for even lengths, Nyquist.
func onesided(p []float64, n int) {
	last := len(p)
	if n%2 == 0 {
		last--
	}
	for k := 1; k < last; k++ {
		p[k] *= 2
	}
}

func removeMean(x []float64) {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	for i := range x {
		x[i] -= mean
	}
}

// medianBias returns the expected ratio of the median to the mean of n
// exponentially distributed periodogram values.
func medianBias(n int) float64 {
	bias := 1.0
	for i := 1; i <= (n-1)/2; i++ {
		ii := float64(2 * i)
		bias += 1/(ii+1) - 1/ii
	}
	return bias
}

// median sorts vals in place. A NaN anywhere yields NaN.
func median(vals []float64) float64 {
	for _, v := range vals {
		if math.IsNaN(v) {
			return math.NaN()
		}
	}

	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

// Median returns the median of vals without modifying them; NaN if any
// value is NaN.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	tmp := append([]float64(nil), vals...)
	return median(tmp)
}
