package series

import (
	"fmt"
	"math"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/qtransform"
	"github.com/GNiklasch/GWO-glitch-visualization/dsp/window"
)

// QOption configures TimeSeries.QTransform.
type QOption func(*qConfig)

type qConfig struct {
	whiten    bool
	fduration float64
	window    window.Type
	logf      bool
	fres      float64
	tres      float64
	mismatch  float64
}

// WithWhitening turns whitening before the transform on or off. Default on.
func WithWhitening(on bool) QOption {
	return func(c *qConfig) { c.whiten = on }
}

// WithQFDuration sets the whitening filter length. Default 2 s.
func WithQFDuration(sec float64) QOption {
	return func(c *qConfig) { c.fduration = sec }
}

// WithQWindow selects the window of the ASD used for whitening. Default
// Hann.
func WithQWindow(t window.Type) QOption {
	return func(c *qConfig) { c.window = t }
}

// WithLogFrequencies spaces output rows geometrically, fres of them.
func WithLogFrequencies(fres int) QOption {
	return func(c *qConfig) {
		c.logf = true
		c.fres = float64(fres)
	}
}

// WithLinearFrequencies spaces output rows fres Hz apart.
func WithLinearFrequencies(fres float64) QOption {
	return func(c *qConfig) {
		c.logf = false
		c.fres = fres
	}
}

// WithTimeResolution sets the output column spacing in seconds.
func WithTimeResolution(tres float64) QOption {
	return func(c *qConfig) { c.tres = tres }
}

// WithMismatch sets the tiling mismatch bound.
func WithMismatch(m float64) QOption {
	return func(c *qConfig) { c.mismatch = m }
}

// QTransform computes the constant-Q transform at a single Q over the whole
// series and interpolates normalised energies onto the output segment
// [start, end).
//
// Non-finite samples fail with qtransform.ErrNonFinite before any work is
// done. Data too short for the whitening filter or the tiling fails with
// ErrTooShort or qtransform.ErrTooShort, and an output segment outside the
// series with qtransform.ErrOutsideSpan.
func (ts *TimeSeries) QTransform(q, start, end float64, opts ...QOption) (*qtransform.Map, error) {
	cfg := qConfig{whiten: true, fduration: DefaultFDuration, window: window.TypeHann, mismatch: qtransform.DefaultMismatch}
	for _, o := range opts {
		o(&cfg)
	}

	if len(ts.Data) == 0 {
		return nil, ErrEmpty
	}

	for _, v := range ts.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("series: q-transform at %.3f: %w", ts.T0, qtransform.ErrNonFinite)
		}
	}

	if start < ts.T0-gridTolerance/ts.SampleRate || end > ts.End()+gridTolerance/ts.SampleRate || !(end > start) {
		return nil, fmt.Errorf("series: q-transform output [%g, %g) outside [%g, %g): %w",
			start, end, ts.T0, ts.End(), qtransform.ErrOutsideSpan)
	}

	data := ts
	if cfg.whiten {
		var err error

		data, err = ts.Whiten(WithFDuration(cfg.fduration), WithWhitenWindow(cfg.window))
		if err != nil {
			return nil, fmt.Errorf("series: q-transform: %w", err)
		}
	}

	plane, err := qtransform.NewPlane(data.Duration(), data.SampleRate, q, qtransform.WithMismatch(cfg.mismatch))
	if err != nil {
		return nil, fmt.Errorf("series: q-transform: %w", err)
	}

	gram, err := plane.Transform(data.Data, data.T0)
	if err != nil {
		return nil, fmt.Errorf("series: q-transform: %w", err)
	}

	iopts := []qtransform.InterpOption{qtransform.WithLogFrequency(cfg.logf)}
	if cfg.fres > 0 {
		iopts = append(iopts, qtransform.WithFrequencyResolution(cfg.fres))
	}

	if cfg.tres > 0 {
		iopts = append(iopts, qtransform.WithTimeResolution(cfg.tres))
	}

	m, err := gram.Interpolate(start, end, iopts...)
	if err != nil {
		return nil, fmt.Errorf("series: q-transform: %w", err)
	}

	return m, nil
}
