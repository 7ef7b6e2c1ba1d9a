package qtransform

import (
	"fmt"
	"math"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/interp"
)

// DefaultLinearFres is the frequency step in Hz used without log spacing.
const DefaultLinearFres = 0.5

// DefaultLogFres is the number of log-spaced frequencies by default.
const DefaultLogFres = 500

// Map is a regular time by frequency image of normalised energy.
type Map struct {
	Q float64
	// T0 is the time of the first column and DT the column spacing.
	T0, DT float64
	// Frequencies lists the row centres, ascending.
	Frequencies []float64
	// Values[i][j] is the energy at time T0+i*DT and Frequencies[j].
	Values [][]float64
}

type interpConfig struct {
	tres float64
	fres float64
	logf bool
}

// InterpOption configures Gram.Interpolate.
type InterpOption func(*interpConfig)

// WithTimeResolution sets the column spacing. Default is 1/1000 of the
// output segment.
func WithTimeResolution(tres float64) InterpOption {
	return func(cfg *interpConfig) { cfg.tres = tres }
}

// WithFrequencyResolution sets the row spacing in Hz, or the number of rows
// when log spacing is on.
func WithFrequencyResolution(fres float64) InterpOption {
	return func(cfg *interpConfig) { cfg.fres = fres }
}

// WithLogFrequency spaces output rows geometrically across the plane range.
func WithLogFrequency(on bool) InterpOption {
	return func(cfg *interpConfig) { cfg.logf = on }
}

// Interpolate resamples g onto columns start, start+tres, ... before end and
// onto regular frequencies. Each tile row is interpolated along time with a
// cubic Hermite kernel, then every column linearly along frequency.
func (g *Gram) Interpolate(start, end float64, opts ...InterpOption) (*Map, error) {
	var cfg interpConfig
	for _, o := range opts {
		o(&cfg)
	}

	p := g.Plane
	span := end - start
	dataEnd := g.T0 + p.Duration

	if !(span > 0) || start < g.T0-1e-9 || end > dataEnd+1e-9 {
		return nil, fmt.Errorf("%w: [%g, %g) not inside [%g, %g)", ErrOutsideSpan, start, end, g.T0, dataEnd)
	}

	if cfg.tres <= 0 {
		cfg.tres = span / 1000
	}

	times := arange(start, end, cfg.tres)
	freqs, err := outputFrequencies(p, cfg)
	if err != nil {
		return nil, err
	}

	// columns[j][i]: tile row j resampled at times[i].
	columns := make([][]float64, len(g.Energies))
	for j, row := range g.Energies {
		dt := p.Duration / float64(len(row))

		columns[j], err = interp.Uniform(row, g.T0, dt, times, interp.Hermite)
		if err != nil {
			return nil, fmt.Errorf("qtransform: row %d: %w", j, err)
		}
	}

	tileFreqs := p.Frequencies()
	m := &Map{
		Q:           p.Q,
		T0:          start,
		DT:          cfg.tres,
		Frequencies: freqs,
		Values:      make([][]float64, len(times)),
	}

	col := make([]float64, len(tileFreqs))
	for i := range times {
		for j := range columns {
			col[j] = columns[j][i]
		}

		m.Values[i], err = interp.Piecewise(tileFreqs, col, freqs)
		if err != nil {
			return nil, fmt.Errorf("qtransform: column %d: %w", i, err)
		}
	}

	return m, nil
}

func outputFrequencies(p *Plane, cfg interpConfig) ([]float64, error) {
	if cfg.logf {
		n := DefaultLogFres
		if cfg.fres > 0 {
			n = int(cfg.fres)
		}

		if n < 1 {
			return nil, fmt.Errorf("%w: %d log frequencies", ErrInvalidParameter, n)
		}

		return geomspace(p.FMin, p.FMax, n), nil
	}

	step := DefaultLinearFres
	if cfg.fres > 0 {
		step = cfg.fres
	}

	return arange(p.FMin, p.FMax, step), nil
}

// arange returns start, start+step, ... strictly below stop.
func arange(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop-start)/step - 1e-9))
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}

	return out
}

// geomspace returns n geometrically spaced values from lo to hi inclusive.
func geomspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}

	out := make([]float64, n)
	ratio := math.Log(hi / lo)
	for i := range out {
		out[i] = lo * math.Exp(ratio*float64(i)/float64(n-1))
	}

	out[0], out[n-1] = lo, hi

	return out
}
