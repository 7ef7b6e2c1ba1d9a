// Package plot renders the glitch plotter's figures as PNG images.
//
// Line figures (raw and filtered strain, spectra, the availability strip)
// are drawn with go-chart. Time-frequency figures are painted pixel by
// pixel onto a raster with a colorbar, because their colour scales and log2
// frequency axes have no go-chart counterpart. Both share the tick helpers
// in this package: a seconds axis relative to an epoch, log10 axes with the
// frequency label filter, and log2 axes labelled in Hz.
//
// Rendering is serialized through a RenderLock so that only a bounded
// number of figures is rasterized at any time.
package plot
