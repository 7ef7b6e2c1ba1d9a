package biquad

// Chain is an ordered cascade of sections processed in series.
type Chain struct {
	sections []Section
}

// NewChain creates a cascade with one Section per coefficient set.
func NewChain(coeffs []Coefficients) *Chain {
	c := &Chain{sections: make([]Section, len(coeffs))}
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}

	return c
}

// ProcessSample cascades x through all sections.
func (c *Chain) ProcessSample(x float64) float64 {
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessBlock filters buf in place through the full cascade.
func (c *Chain) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// SetSteadyState primes every section for a constant input u. Each section
// sees the steady output of the one before it.
func (c *Chain) SetSteadyState(u float64) {
	for i := range c.sections {
		u = c.sections[i].SetSteadyState(u)
	}
}

// Reset clears all section states.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// NumSections returns the number of sections.
func (c *Chain) NumSections() int {
	return len(c.sections)
}

// Order returns the filter order, counting first-order sections as one.
func (c *Chain) Order() int {
	order := 0
	for i := range c.sections {
		order += c.sections[i].order()
	}

	return order
}

// Section returns the i-th section.
func (c *Chain) Section(i int) *Section {
	return &c.sections[i]
}

// State returns a snapshot of all delay lines.
func (c *Chain) State() [][2]float64 {
	states := make([][2]float64, len(c.sections))
	for i := range c.sections {
		states[i] = c.sections[i].State()
	}

	return states
}

// SetState restores saved delay lines. len(states) must equal NumSections.
func (c *Chain) SetState(states [][2]float64) {
	for i := range c.sections {
		c.sections[i].SetState(states[i])
	}
}

func (s *Section) order() int {
	if s.B2 == 0 && s.A2 == 0 {
		return 1
	}

	return 2
}
