package series

import (
	"errors"
	"math"
	"testing"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/qtransform"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/testutil"
)

func glitchy(sec float64) *TimeSeries {
	n := int(sec * rate)
	return New(2000, rate, testutil.Add(
		testutil.DeterministicNoise(21, 1, n),
		testutil.SineGaussian(80, 8, rate, 40, n/2, n),
	))
}

func loudest(m *qtransform.Map) (t, f float64) {
	best := math.Inf(-1)
	for i, col := range m.Values {
		for j, v := range col {
			if v > best {
				best = v
				t = m.T0 + float64(i)*m.DT
				f = m.Frequencies[j]
			}
		}
	}

	return t, f
}

func TestQTransform_FindsGlitch(t *testing.T) {
	ts := glitchy(16)
	centre := ts.T0 + 8

	for _, whiten := range []bool{true, false} {
		m, err := ts.QTransform(8, centre-1, centre+1, WithWhitening(whiten), WithLogFrequencies(300))
		if err != nil {
			t.Fatalf("whiten=%v: QTransform: %v", whiten, err)
		}

		if len(m.Values) != 1000 || len(m.Frequencies) != 300 || m.Q != 8 {
			t.Fatalf("whiten=%v: shape %d x %d, Q %v", whiten, len(m.Values), len(m.Frequencies), m.Q)
		}

		tt, f := loudest(m)
		if math.Abs(tt-centre) > 0.03 {
			t.Fatalf("whiten=%v: loudest at t=%v, want %v", whiten, tt, centre)
		}

		if f < 60 || f > 110 {
			t.Fatalf("whiten=%v: loudest at f=%v, want ~80", whiten, f)
		}
	}
}

func TestQTransform_Options(t *testing.T) {
	ts := glitchy(8)

	m, err := ts.QTransform(16, 2003, 2005,
		WithQFDuration(1), WithLinearFrequencies(2), WithTimeResolution(0.01), WithMismatch(0.3))
	if err != nil {
		t.Fatalf("QTransform: %v", err)
	}

	if len(m.Values) != 200 {
		t.Fatalf("columns = %d, want 200", len(m.Values))
	}

	if d := m.Frequencies[1] - m.Frequencies[0]; math.Abs(d-2) > 1e-9 {
		t.Fatalf("frequency step = %v, want 2", d)
	}
}

func TestQTransform_Errors(t *testing.T) {
	ts := glitchy(8)

	gappy := New(ts.T0, rate, testutil.WithGap(ts.Data, 100, 120))
	if _, err := gappy.QTransform(8, 2003, 2005); !errors.Is(err, qtransform.ErrNonFinite) {
		t.Fatalf("gap err = %v, want ErrNonFinite", err)
	}

	if _, err := ts.QTransform(8, 1990, 2005); !errors.Is(err, qtransform.ErrOutsideSpan) {
		t.Fatalf("outside err = %v, want ErrOutsideSpan", err)
	}

	short := ts.Crop(2003, 2004)
	if _, err := short.QTransform(8, 2003, 2004); !errors.Is(err, ErrTooShort) {
		t.Fatalf("short err = %v, want ErrTooShort", err)
	}

	if _, err := New(0, rate, nil).QTransform(8, 0, 1); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty err = %v, want ErrEmpty", err)
	}
}
