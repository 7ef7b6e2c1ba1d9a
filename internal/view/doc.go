// Package view renders the strain views of a session: raw strain, data
// availability, band-passed strain, amplitude spectral density,
// spectrogram and constant-Q transform.
//
// Each view is a value carrying its user choices. It is parsed from query
// parameters, validated against the sample-rate dependent choice lists
// and rendered by a Renderer into a Panel: a PNG image plus the messages
// shown next to it. Conditions the user can act on, such as a data gap
// near t0, become panel messages rather than errors; only the raw view
// reports a gap as an error, because nothing else can be shown then.
package view
