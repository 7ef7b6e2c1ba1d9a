package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t unless got and want have the same length
// and every pair lies within eps. NaN matches only NaN, so gaps must line
// up exactly.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		g, w := got[i], want[i]
		if math.IsNaN(g) || math.IsNaN(w) {
			if math.IsNaN(g) != math.IsNaN(w) {
				t.Fatalf("[%d]: got %v, want %v", i, g, w)
			}
			continue
		}
		if d := math.Abs(g - w); d > eps {
			t.Fatalf("[%d]: got %v, want %v (|diff| %v > %v)", i, g, w, d, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or infinite.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("[%d]: non-finite %v", i, v)
		}
	}
}

// RequireGap fails t unless exactly the samples [from, to) of data are NaN.
func RequireGap(t *testing.T, data []float64, from, to int) {
	t.Helper()
	for i, v := range data {
		if inGap := i >= from && i < to; inGap != math.IsNaN(v) {
			t.Fatalf("[%d] = %v, gap is [%d, %d)", i, v, from, to)
		}
	}
}
