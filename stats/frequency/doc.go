// Package frequency computes shape statistics of an amplitude spectral
// density over a frequency band: where its peak lies, how flat it is and
// how much strain it carries.
package frequency
