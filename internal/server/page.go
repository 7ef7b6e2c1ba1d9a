package server

import (
	_ "embed"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/plot"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
)

//go:embed page.html
var pageHTML string

type pageData struct {
	Title string

	Interferometers []view.Interferometer
	Interferometer  string
	T0              string
	Widths          []float64
	Width           float64
	SampleRates     []int
	WideAllowed     bool

	// Rates holds the rate-dependent choices; the page script swaps the
	// frequency menus when the rate changes.
	Rates map[int]view.RateSettings
	Rate  view.RateSettings

	Decades            []int
	InitialDecades     [2]int
	ASDOffsets         []float64
	QValues            []float64
	InitialQ           float64
	NormalizedEnergies []float64
	InitialCutoff      float64

	Colormaps          []plot.NamedColormap
	SpectrogramDefault string
	QTransformDefault  string
}

func newPageData(wide bool) pageData {
	rates := make(map[int]view.RateSettings, len(view.SampleRates))
	for _, r := range view.SampleRates {
		rates[r] = view.ForRate(r)
	}
	return pageData{
		Title:              "GWO glitch plotter",
		Interferometers:    view.Interferometers,
		Interferometer:     view.DefaultInterferometer,
		T0:                 view.InitialT0,
		Widths:             view.Widths,
		Width:              view.InitialWidth,
		SampleRates:        view.SampleRates,
		WideAllowed:        wide,
		Rates:              rates,
		Rate:               rates[view.SampleRates[0]],
		Decades:            view.Decades,
		InitialDecades:     view.InitialDecades,
		ASDOffsets:         view.ASDOffsets,
		QValues:            view.QValues,
		InitialQ:           view.InitialQ,
		NormalizedEnergies: view.NormalizedEnergies,
		InitialCutoff:      view.InitialCutoff,
		Colormaps:          plot.ColormapChoices,
		SpectrogramDefault: plot.DefaultSpectrogramColormap,
		QTransformDefault:  plot.DefaultQTransformColormap,
	}
}
