package view

import (
	"math"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/gwosc"
)

// Interferometer is a detector with the lowest frequency at which its
// strain is calibrated.
type Interferometer struct {
	Name     string  `json:"name"`
	CalibLow float64 `json:"calib_low"`
}

// Interferometers lists the detectors in menu order.
var Interferometers = []Interferometer{
	{Name: "H1", CalibLow: 10},
	{Name: "L1", CalibLow: 10},
	{Name: "V1", CalibLow: 20},
}

// DefaultInterferometer is preselected in the menu.
const DefaultInterferometer = "L1"

// CalibLow returns the calibration floor of ifo.
func CalibLow(ifo string) (float64, bool) {
	for _, i := range Interferometers {
		if i.Name == ifo {
			return i.CalibLow, true
		}
	}
	return 0, false
}

const (
	// InitialT0 is the timestamp offered on first load (GW170817).
	InitialT0 = "1187008882.4"
	// ElbowRoom is the minimum amount of data loaded on either side of t0.
	ElbowRoom = 46.7
	// Pad is the extra data filtered or transformed on either side of the
	// plot interval.
	Pad = 8.0
	// BasicSpectrogramStride is the longest spectrogram stride.
	BasicSpectrogramStride = 0.125
	// InitialWidth is the preselected plot width in seconds.
	InitialWidth = 4.0
	// InitialQ is the preselected Q-value.
	InitialQ = 11.3
	// InitialCutoff is the preselected normalized energy cutoff.
	InitialCutoff = 25.5
)

// Choice lists.
var (
	Widths      = []float64{0.125, 0.25, 0.5, 1, 2, 4, 8, 16, 32, 64}
	SampleRates = []int{4096, gwosc.HighRate}

	FrequencyDetents = []float64{
		8, 9.51, 11.3, 13.5, 16, 19.0, 22.6, 26.9,
		32, 38.3, 45.3, 53.8, 64, 76.1, 90.5, 108,
		128, 152, 181, 215, 256, 304, 362, 431,
		512, 609, 724, 861, 1024, 1218, 1448, 1722,
		2048, 2435, 2896, 3444, 4096, 4871, 5793,
	}
	SpectrogramDetents = []float64{10, 22.6, 45.3, 90.5, 181, 362, 724, 1448, 2896, 5793}

	// Decades are exponents of ten for ASD and spectrogram ranges.
	Decades        = []int{-27, -26, -25, -24, -23, -22, -21, -20, -19, -18, -17, -16}
	InitialDecades = [2]int{-26, -19}

	// ASDOffsets are background spectrum offsets in seconds; zero means
	// no background.
	ASDOffsets = []float64{-12, -6, -3, -1.5, 0, 1.5, 3, 6, 12}

	QValues            = []float64{5.66, 8, 11.3, 16, 22.6, 32, 45.3, 64}
	NormalizedEnergies = []float64{6.3, 12.7, 25.5, 51.1, 102.3}
)

// RateSettings holds the choices and figure sizes that depend on the
// sample rate.
type RateSettings struct {
	SampleRate int `json:"sample_rate"`

	FilterDetents      []float64 `json:"filter_detents"`
	ASDDetents         []float64 `json:"asd_detents"`
	SpectrogramDetents []float64 `json:"spectrogram_detents"`

	InitialFilter      [2]float64 `json:"initial_filter"`
	InitialASD         [2]float64 `json:"initial_asd"`
	InitialSpectrogram [2]float64 `json:"initial_spectrogram"`

	// Figure heights in rows.
	SpectrogramRows float64 `json:"-"`
	QTransformRows  float64 `json:"-"`
}

// ForRate returns the settings for a sample rate.
func ForRate(rate int) RateSettings {
	rs := RateSettings{SampleRate: rate}
	if rate < gwosc.HighRate {
		rs.FilterDetents = FrequencyDetents[0:30]
		rs.ASDDetents = FrequencyDetents[0:31]
		rs.SpectrogramDetents = SpectrogramDetents[0:8]
		rs.SpectrogramRows, rs.QTransformRows = 6, 7
	} else {
		rs.FilterDetents = FrequencyDetents[0:38]
		rs.ASDDetents = FrequencyDetents
		rs.SpectrogramDetents = SpectrogramDetents
		rs.SpectrogramRows, rs.QTransformRows = 7, 8
	}
	rs.InitialFilter = [2]float64{rs.FilterDetents[1], rs.FilterDetents[28]}
	rs.InitialASD = [2]float64{rs.ASDDetents[1], rs.ASDDetents[len(rs.ASDDetents)-1]}
	rs.InitialSpectrogram = [2]float64{rs.SpectrogramDetents[0], rs.SpectrogramDetents[len(rs.SpectrogramDetents)-1]}
	return rs
}

func onDetent(detents []float64, v float64) bool {
	for _, d := range detents {
		if math.Abs(d-v) <= 1e-9*math.Max(1, math.Abs(d)) {
			return true
		}
	}
	return false
}

func isDecade(d int) bool {
	return d >= Decades[0] && d <= Decades[len(Decades)-1]
}
