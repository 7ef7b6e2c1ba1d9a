// Package biquad runs cascaded second-order IIR sections.
//
// A [Section] processes samples in Direct Form II Transposed. A [Chain]
// cascades sections for higher orders and adds zero-phase forward-backward
// filtering via [Chain.FiltFilt], the way band-limited strain views are
// produced.
//
// Coefficient design lives in dsp/filter/design.
package biquad
