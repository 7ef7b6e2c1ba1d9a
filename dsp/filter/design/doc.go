// Package design computes IIR coefficients for dsp/filter/biquad.
//
// It offers RBJ second-order low- and high-pass sections, Butterworth
// cascades built from them, and the band-pass composition used for
// filtered strain views.
package design
