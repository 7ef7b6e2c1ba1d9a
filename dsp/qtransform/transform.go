package qtransform

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/spectrum"
)

// Gram holds the normalised tile energies of one Plane.
type Gram struct {
	Plane *Plane
	// T0 is the time of the first data sample.
	T0 float64
	// Energies[i] holds the NTiles energies of Plane.Tiles[i], evenly
	// spaced over the duration starting at T0.
	Energies [][]float64
}

// Transform computes tile energies of data, whose first sample is at t0.
// len(data) must equal Duration*SampleRate. Rows are computed in parallel.
func (p *Plane) Transform(data []float64, t0 float64) (*Gram, error) {
	want := p.Duration * p.SampleRate
	if math.Abs(float64(len(data))-want) >= 0.5 {
		return nil, fmt.Errorf("%w: %d samples for a %g s plane at %g Hz",
			ErrInvalidParameter, len(data), p.Duration, p.SampleRate)
	}

	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFinite
		}
	}

	fdata, err := onesided(data)
	if err != nil {
		return nil, err
	}

	g := &Gram{
		Plane:    p,
		T0:       t0,
		Energies: make([][]float64, len(p.Tiles)),
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for i, tile := range p.Tiles {
		eg.Go(func() error {
			row, err := p.energy(tile, fdata)
			if err != nil {
				return fmt.Errorf("qtransform: row %.4g Hz: %w", tile.Frequency, err)
			}

			g.Energies[i] = row

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return g, nil
}

// onesided returns the normalised one-sided spectrum rfft(x)/n with every
// bin above DC doubled.
func onesided(x []float64) ([]complex128, error) {
	bins, err := spectrum.RFFT(x)
	if err != nil {
		return nil, fmt.Errorf("qtransform: %w", err)
	}

	scale := 1 / float64(len(x))
	for i := range bins {
		s := scale
		if i > 0 {
			s *= 2
		}

		bins[i] *= complex(s, 0)
	}

	return bins, nil
}

func (p *Plane) energy(t Tile, fdata []complex128) ([]float64, error) {
	n := max(t.NTiles, t.WindowSize)
	w := p.window(t)

	// The windowed bins sit centred in an n-point buffer that is then
	// rotated so its middle lands on index 0.
	pad := n - t.WindowSize
	left := (pad - 1) / 2

	buf := make([]complex128, n)
	shift := n / 2

	for k, wk := range w {
		idx := p.dataIndex(t, k)
		if idx < 0 || idx >= len(fdata) {
			continue
		}

		pos := (left + k - shift + n) % n
		buf[pos] = fdata[idx] * complex(wk, 0)
	}

	if err := spectrum.IFFT(buf, buf); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i, c := range buf {
		out[i] = real(c)*real(c) + imag(c)*imag(c)
	}

	med := spectrum.Median(out)
	for i := range out {
		out[i] /= med
	}

	return out, nil
}

// Peak returns the time, frequency and normalised energy of the loudest
// tile in g.
func (g *Gram) Peak() (t, f, energy float64) {
	energy = math.Inf(-1)

	for i, row := range g.Energies {
		dt := g.Plane.Duration / float64(len(row))
		for j, e := range row {
			if e > energy {
				energy = e
				t = g.T0 + float64(j)*dt
				f = g.Plane.Tiles[i].Frequency
			}
		}
	}

	return t, f, energy
}
