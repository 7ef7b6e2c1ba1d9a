package plot

import (
	"fmt"
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Tick is an axis tick in data coordinates. Minor ticks carry no label.
type Tick struct {
	Value float64
	Label string
	Minor bool
}

// FrequencyFormatter labels ticks of a logarithmic frequency axis spanning
// 8 Hz to a few kHz. Wide ranges get sparse labels so that they do not
// overlap; narrow ones get every integer.
type FrequencyFormatter struct {
	lo, hi float64
	good   map[int]bool
	anyInt bool
}

// NewFrequencyFormatter returns the formatter for a view from lo to hi Hz.
func NewFrequencyFormatter(lo, hi float64) *FrequencyFormatter {
	f := &FrequencyFormatter{lo: lo, hi: hi}
	switch {
	case hi/lo > 13 || hi == lo:
		f.good = intSet(1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000)
	case hi/lo > 5.6:
		f.good = intSet(10, 20, 30, 40, 50, 60, 80, 100, 200, 300, 400, 500, 600, 800,
			1000, 2000, 3000, 4000, 5000)
	default:
		f.anyInt = true
	}
	return f
}

// Label returns the label for a tick at x. Values more than 0.19 away from
// an integer are never labelled.
func (f *FrequencyFormatter) Label(x float64) string {
	xi := math.Round(x)
	if math.Abs(x-xi) > 0.19 {
		return ""
	}
	if f.anyInt || f.good[int(xi)] {
		return strconv.Itoa(int(xi))
	}
	return ""
}

// Labels labels every location; no locations yield no labels.
func (f *FrequencyFormatter) Labels(locs []float64) []string {
	if len(locs) == 0 {
		return nil
	}
	out := make([]string, len(locs))
	for i, x := range locs {
		out[i] = f.Label(x)
	}
	return out
}

func intSet(vals ...int) map[int]bool {
	m := make(map[int]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// ExpandLogRange widens a degenerate range to the decade containing it.
func ExpandLogRange(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	d := math.Pow(10, math.Floor(math.Log10(lo)))
	return d, d * 10
}

// FrequencyTicks returns ticks for a log10 frequency axis from lo to hi:
// decades as major ticks, 2..9 times each decade as minor ticks, labelled
// by a FrequencyFormatter for the original (lo, hi).
func FrequencyTicks(lo, hi float64) []Tick {
	f := NewFrequencyFormatter(lo, hi)
	lo, hi = ExpandLogRange(lo, hi)

	var ticks []Tick
	for e := math.Floor(math.Log10(lo)); e <= math.Ceil(math.Log10(hi)); e++ {
		decade := math.Pow(10, e)
		for k := 1; k <= 9; k++ {
			v := float64(k) * decade
			if v < lo*(1-1e-9) || v > hi*(1+1e-9) {
				continue
			}
			if k == 1 {
				ticks = append(ticks, Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
				continue
			}
			ticks = append(ticks, Tick{Value: v, Label: f.Label(v), Minor: true})
		}
	}
	return ticks
}

// DecadeTicks returns a tick at every power of ten in [lo, hi], labelled
// "10^n".
func DecadeTicks(lo, hi float64) []Tick {
	var ticks []Tick
	for e := math.Ceil(math.Log10(lo) - 1e-9); e <= math.Floor(math.Log10(hi)+1e-9); e++ {
		ticks = append(ticks, Tick{Value: math.Pow(10, e), Label: fmt.Sprintf("10^%d", int(e))})
	}
	return ticks
}

// Log2Ticks returns a tick at every power of two in [lo, hi], labelled in
// Hz.
func Log2Ticks(lo, hi float64) []Tick {
	var ticks []Tick
	for e := math.Ceil(math.Log2(lo) - 1e-9); e <= math.Floor(math.Log2(hi)+1e-9); e++ {
		v := math.Exp2(e)
		ticks = append(ticks, Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return ticks
}

var (
	decimalSteps = []float64{1, 2, 2.5, 5, 10}
	secondSteps  = []float64{1, 2, 5, 10, 15, 20, 30, 60}
)

// NiceStep picks a step from steps (scaled by a power of ten) that divides
// span into a count of intervals closest to target.
func NiceStep(span float64, target int, steps []float64) float64 {
	if !(span > 0) || target < 1 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(target))))
	best, bestScore := mag, math.Inf(1)
	for _, scale := range []float64{mag / 10, mag, mag * 10} {
		for _, s := range steps {
			step := s * scale
			score := math.Abs(span/step - float64(target))
			if score < bestScore {
				best, bestScore = step, score
			}
		}
	}
	return best
}

// NiceTicks returns about target evenly spaced ticks covering [lo, hi].
func NiceTicks(lo, hi float64, target int) []Tick {
	step := NiceStep(hi-lo, target, decimalSteps)
	var ticks []Tick
	for v := math.Ceil(lo/step-1e-9) * step; v <= hi+step*1e-9; v += step {
		ticks = append(ticks, Tick{Value: v, Label: formatValue(v, step)})
	}
	return ticks
}

// SecondsAxis describes a time axis labelled in seconds relative to an
// epoch.
type SecondsAxis struct {
	Start, End float64
	Epoch      float64
	// Major is the major tick spacing; zero picks a nice spacing.
	Major float64
	// MinorDivisions subdivides each major interval; below 2 means no
	// minor ticks.
	MinorDivisions int
}

// Ticks returns the major ticks, at absolute multiples of Major, and the
// minor ticks between them. Labels are offsets from the epoch.
func (a SecondsAxis) Ticks() []Tick {
	span := a.End - a.Start
	if !(span > 0) {
		return nil
	}
	step := a.Major
	aligned := step > 0
	if !aligned {
		steps := decimalSteps
		if span > 10 {
			steps = secondSteps
		}
		step = NiceStep(span, 6, steps)
	}

	// Unaligned steps count from the epoch so that it receives a tick.
	origin := 0.0
	if !aligned {
		origin = a.Epoch
	}
	first := origin + math.Ceil((a.Start-origin)/step-1e-9)*step

	var ticks []Tick
	eps := step * 1e-9
	for k := 0; ; k++ {
		v := first + float64(k)*step
		if v > a.End+eps {
			break
		}
		ticks = append(ticks, Tick{Value: v, Label: formatValue(v-a.Epoch, step)})
	}

	if a.MinorDivisions >= 2 {
		minor := step / float64(a.MinorDivisions)
		for k := -a.MinorDivisions; ; k++ {
			v := first + float64(k)*minor
			if v > a.End+eps {
				break
			}
			if v < a.Start-eps || k%a.MinorDivisions == 0 {
				continue
			}
			ticks = append(ticks, Tick{Value: v, Minor: true})
		}
	}
	return ticks
}

// Name returns the axis title.
func (a SecondsAxis) Name(epochUTC string) string {
	return fmt.Sprintf("Time [seconds] from %s (%s)", formatValue(a.Epoch, 1), epochUTC)
}

// formatValue prints v with as many decimals as step needs. Tiny steps,
// such as strain amplitudes, switch to exponent notation.
func formatValue(v, step float64) string {
	if step > 0 && step < 1e-4 {
		if math.Abs(v) < step*1e-6 {
			v = 0
		}
		return strconv.FormatFloat(v, 'g', 3, 64)
	}
	decimals := 0
	for s := step; decimals < 9 && math.Abs(s-math.Round(s)) > 1e-9*math.Max(1, math.Abs(s)); s *= 10 {
		decimals++
	}
	scale := math.Pow(10, float64(decimals))
	if math.Round(v*scale) == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// chartTicks converts ticks for go-chart, mapping values through f.
func chartTicks(ticks []Tick, f func(float64) float64) []chart.Tick {
	out := make([]chart.Tick, 0, len(ticks))
	for _, t := range ticks {
		out = append(out, chart.Tick{Value: f(t.Value), Label: t.Label})
	}
	return out
}
