package plot

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// Colormap maps a value in [0, 1] onto a colour.
type Colormap struct {
	Name string
	at   func(x float64) color.RGBA
}

// At returns the colour for x, clamped to [0, 1]. NaN maps to white.
func (c Colormap) At(x float64) color.RGBA {
	if math.IsNaN(x) {
		return color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	}
	return c.at(min(max(x, 0), 1))
}

// Reversed returns the colormap running the other way.
func (c Colormap) Reversed() Colormap {
	name := c.Name + "_r"
	if strings.HasSuffix(c.Name, "_r") {
		name = strings.TrimSuffix(c.Name, "_r")
	}
	at := c.at
	return Colormap{Name: name, at: func(x float64) color.RGBA { return at(1 - x) }}
}

// NamedColormap pairs a display name with a colormap id.
type NamedColormap struct {
	Display string `json:"display"`
	ID      string `json:"id"`
}

// ColormapChoices lists the colormaps offered to users, in menu order.
var ColormapChoices = []NamedColormap{
	{"Viridis (Gravity Spy)", "viridis"},
	{"Viridis reversed", "viridis_r"},
	{"Reds", "Reds"},
	{"Reds reversed (GwitchHunters)", "Reds_r"},
	{"Blues", "Blues"},
	{"Blues reversed", "Blues_r"},
	{"Plasma", "plasma"},
	{"Plasma reversed", "plasma_r"},
	{"Cividis", "cividis"},
	{"Cividis reversed", "cividis_r"},
	{"Cubehelix", "cubehelix"},
	{"Cubehelix reversed", "cubehelix_r"},
	{"Jetstream", "jetstream"},
	{"Jetstream reversed", "jetstream_r"},
}

// Default colormaps of the time-frequency views.
const (
	DefaultSpectrogramColormap = "jetstream"
	DefaultQTransformColormap  = "viridis"
)

var baseColormaps = map[string]Colormap{
	"viridis":   fromHex("viridis", "440154", "482878", "3e4989", "31688e", "26828e", "1f9e89", "35b779", "6ece58", "b5de2b", "fde725"),
	"plasma":    fromHex("plasma", "0d0887", "46039f", "7201a8", "9c179e", "bd3786", "d8576b", "ed7953", "fb9f3a", "fdca26", "f0f921"),
	"cividis":   fromHex("cividis", "00224e", "123570", "3b496c", "575d6d", "707173", "8a8678", "a59c74", "c3b369", "e1cc55", "fee838"),
	"Reds":      fromHex("Reds", "fff5f0", "fee0d2", "fcbba1", "fc9272", "fb6a4a", "ef3b2c", "cb181d", "a50f15", "67000d"),
	"Blues":     fromHex("Blues", "f7fbff", "deebf7", "c6dbef", "9ecae1", "6baed6", "4292c6", "2171b5", "08519c", "08306b"),
	"cubehelix": {Name: "cubehelix", at: cubehelix},
	"jetstream": fromStops("jetstream", jetstreamStops),
}

// LookupColormap returns the colormap with the given id. A "_r" suffix
// selects the reversed map.
func LookupColormap(id string) (Colormap, error) {
	if c, ok := baseColormaps[id]; ok {
		return c, nil
	}
	if base, ok := strings.CutSuffix(id, "_r"); ok {
		if c, ok := baseColormaps[base]; ok {
			return c.Reversed(), nil
		}
	}
	return Colormap{}, errors.Newf("plot: unknown colormap %q", id)
}

// ColormapByDisplay resolves a menu entry to its colormap id.
func ColormapByDisplay(display string) (string, bool) {
	for _, c := range ColormapChoices {
		if c.Display == display {
			return c.ID, true
		}
	}
	return "", false
}

func fromHex(name string, hex ...string) Colormap {
	stops := make([][3]uint8, len(hex))
	for i, h := range hex {
		var r, g, b uint8
		fmt.Sscanf(h, "%02x%02x%02x", &r, &g, &b)
		stops[i] = [3]uint8{r, g, b}
	}
	return fromStops(name, stops)
}

// fromStops interpolates linearly between evenly spaced colour stops.
func fromStops(name string, stops [][3]uint8) Colormap {
	last := float64(len(stops) - 1)
	return Colormap{Name: name, at: func(x float64) color.RGBA {
		pos := x * last
		i := min(int(pos), len(stops)-2)
		f := pos - float64(i)
		a, b := stops[i], stops[i+1]
		mix := func(p, q uint8) uint8 {
			return uint8(math.Round(float64(p) + f*(float64(q)-float64(p))))
		}
		return color.RGBA{R: mix(a[0], b[0]), G: mix(a[1], b[1]), B: mix(a[2], b[2]), A: 0xFF}
	}}
}

// cubehelix is Green's scheme with start 0.5, one and a half reverse
// rotations, hue 1 and gamma 1.
func cubehelix(x float64) color.RGBA {
	const (
		start    = 0.5
		rotation = -1.5
		hue      = 1.0
	)
	angle := 2 * math.Pi * (start/3 + rotation*x)
	amp := hue * x * (1 - x) / 2
	c, s := math.Cos(angle), math.Sin(angle)
	ch := func(v float64) uint8 {
		return uint8(math.Round(255 * min(max(v, 0), 1)))
	}
	return color.RGBA{
		R: ch(x + amp*(-0.14861*c+1.78277*s)),
		G: ch(x + amp*(-0.29227*c-0.90649*s)),
		B: ch(x + amp*(1.97294*c)),
		A: 0xFF,
	}
}

// jetstreamStops samples the Jetstream palette every eighth entry. It runs
// from dark violet through blue, cyan, green and yellow to dark red.
var jetstreamStops = [][3]uint8{
	{46, 0, 73}, {43, 10, 103}, {37, 24, 132}, {26, 35, 156},
	{18, 52, 188}, {9, 62, 217}, {0, 76, 245}, {0, 109, 254},
	{0, 136, 254}, {0, 178, 252}, {0, 212, 251}, {0, 247, 248},
	{0, 218, 201}, {0, 198, 157}, {0, 163, 103}, {0, 131, 50},
	{0, 116, 17}, {48, 133, 0}, {102, 164, 0}, {166, 203, 0},
	{205, 223, 0}, {249, 225, 0}, {248, 179, 0}, {246, 124, 0},
	{244, 76, 0}, {242, 39, 0}, {237, 2, 0}, {209, 0, 0},
	{188, 0, 0}, {158, 0, 0}, {129, 0, 0}, {100, 0, 0},
	{82, 0, 0},
}
