package biquad

// PadLen returns the number of odd-extension samples FiltFilt adds on each
// side of a signal long enough to take them.
func (c *Chain) PadLen() int {
	ntaps := 2*len(c.sections) + 1

	zb, za := 0, 0
	for i := range c.sections {
		if c.sections[i].B2 == 0 {
			zb++
		}

		if c.sections[i].A2 == 0 {
			za++
		}
	}

	ntaps -= min(zb, za)

	return 3 * ntaps
}

// FiltFilt applies the cascade forward and then backward, giving a
// zero-phase result with the squared magnitude response. The signal is
// extended at both ends by odd reflection, and each pass starts from the
// steady state for its first sample so edges do not ring. The padding is
// clamped to len(x)-1 for short inputs.
//
// The chain's own state is left reset. A NaN anywhere in x spreads over the
// whole output.
func (c *Chain) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}

	pad := min(c.PadLen(), n-1)
	ext := oddExtend(x, pad)

	c.Reset()
	c.SetSteadyState(ext[0])
	c.ProcessBlock(ext)

	reverse(ext)
	c.Reset()
	c.SetSteadyState(ext[0])
	c.ProcessBlock(ext)
	reverse(ext)

	c.Reset()

	out := make([]float64, n)
	copy(out, ext[pad:pad+n])

	return out
}

func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*pad)

	first, last := x[0], x[n-1]
	for i := range pad {
		ext[i] = 2*first - x[pad-i]
		ext[pad+n+i] = 2*last - x[n-2-i]
	}

	copy(ext[pad:], x)

	return ext
}

func reverse(buf []float64) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
