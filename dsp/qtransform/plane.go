package qtransform

import (
	"fmt"
	"math"
)

// DefaultMismatch is the maximum fractional energy loss between tiles.
const DefaultMismatch = 0.2

var sqrt11 = math.Sqrt(11)

// Tile describes one frequency row of a Plane.
type Tile struct {
	// Frequency is the row centre in Hz, a multiple of 1/duration.
	Frequency float64
	// NTiles is the number of time tiles in the row, a power of two.
	NTiles int
	// WindowSize is the odd number of spectrum bins under the window.
	WindowSize int
}

// Plane is the tiling of one Q value over a data stretch.
type Plane struct {
	Q          float64
	Duration   float64
	SampleRate float64
	Mismatch   float64
	// FMin and FMax bound the tiled frequency range.
	FMin, FMax float64
	Tiles      []Tile
}

type planeConfig struct {
	mismatch   float64
	fmin, fmax float64
}

// Option configures NewPlane.
type Option func(*planeConfig)

// WithMismatch sets the mismatch bound. Default is DefaultMismatch.
func WithMismatch(m float64) Option {
	return func(cfg *planeConfig) { cfg.mismatch = m }
}

// WithFrequencyRange restricts the tiled range. Zero bounds keep the
// defaults: 50*Q/(2*pi*duration) at the low end and the highest frequency
// whose window still fits below Nyquist at the high end. An upper bound
// above that limit is lowered to it.
func WithFrequencyRange(lo, hi float64) Option {
	return func(cfg *planeConfig) {
		cfg.fmin = lo
		cfg.fmax = hi
	}
}

// NewPlane tiles a stretch of duration seconds sampled at sampleRate.
func NewPlane(duration, sampleRate, q float64, opts ...Option) (*Plane, error) {
	cfg := planeConfig{mismatch: DefaultMismatch}
	for _, o := range opts {
		o(&cfg)
	}

	if !(q > 0) || !(duration > 0) || !(sampleRate > 0) || !(cfg.mismatch > 0) ||
		math.IsInf(q, 0) || math.IsInf(duration, 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: q=%g duration=%g rate=%g mismatch=%g",
			ErrInvalidParameter, q, duration, sampleRate, cfg.mismatch)
	}

	p := &Plane{
		Q:          q,
		Duration:   duration,
		SampleRate: sampleRate,
		Mismatch:   cfg.mismatch,
		FMin:       cfg.fmin,
		FMax:       cfg.fmax,
	}

	if p.FMin <= 0 {
		p.FMin = 50 * q / (2 * math.Pi * duration)
	}

	maxf := sampleRate / 2 / (1 + sqrt11/q)
	if p.FMax <= 0 || p.FMax > maxf {
		p.FMax = maxf
	}

	if p.FMin >= p.FMax {
		return nil, fmt.Errorf("%w: %g s at Q=%g leaves no band (%.3g-%.3g Hz)",
			ErrTooShort, duration, q, p.FMin, p.FMax)
	}

	p.Tiles = p.tile()
	if len(p.Tiles) == 0 {
		return nil, fmt.Errorf("%w: no frequency rows for %g s at Q=%g", ErrTooShort, duration, q)
	}

	return p, nil
}

// DeltaM returns the step in mismatch-metric units between adjacent tiles.
func (p *Plane) DeltaM() float64 {
	return 2 * math.Sqrt(p.Mismatch/3)
}

// Frequencies returns the row centre frequencies in ascending order.
func (p *Plane) Frequencies() []float64 {
	out := make([]float64, len(p.Tiles))
	for i, t := range p.Tiles {
		out[i] = t.Frequency
	}

	return out
}

func (p *Plane) tile() []Tile {
	q2 := math.Sqrt(2 + p.Q*p.Q)
	fcum := math.Log(p.FMax/p.FMin) * q2 / 2
	nfreq := max(1, int(math.Ceil(fcum/p.DeltaM())))
	fstep := fcum / float64(nfreq)
	df := 1 / p.Duration
	qprime := p.Q / sqrt11

	tiles := make([]Tile, 0, nfreq)
	for i := range nfreq {
		f := p.FMin * math.Exp(2/q2*(float64(i)+0.5)*fstep)
		f = math.Floor(f/df) * df
		if f <= 0 {
			continue
		}

		tcum := p.Duration * 2 * math.Pi * f / p.Q
		tiles = append(tiles, Tile{
			Frequency:  f,
			NTiles:     nextPowerOfTwo(tcum / p.DeltaM()),
			WindowSize: 2*int(f/qprime*p.Duration) + 1,
		})
	}

	return tiles
}

// window returns the bisquare window of t over its spectrum bins.
func (p *Plane) window(t Tile) []float64 {
	qprime := p.Q / sqrt11
	half := (t.WindowSize - 1) / 2
	norm := float64(t.NTiles) / (p.Duration * p.SampleRate) *
		math.Sqrt(315*qprime/(128*t.Frequency))

	w := make([]float64, t.WindowSize)
	for k := range w {
		x := float64(k-half) / p.Duration * qprime / t.Frequency
		u := 1 - x*x
		w[k] = u * u * norm
	}

	return w
}

// dataIndex returns the spectrum bin under window position k of t.
func (p *Plane) dataIndex(t Tile, k int) int {
	half := (t.WindowSize - 1) / 2
	return int(math.Round(float64(k-half) + 1 + t.Frequency*p.Duration))
}

func nextPowerOfTwo(x float64) int {
	if x <= 1 {
		return 1
	}

	return 1 << int(math.Ceil(math.Log2(x)))
}
