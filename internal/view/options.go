package view

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/plot"
)

// View names.
const (
	NameRaw          = "raw"
	NameAvailability = "availability"
	NameFiltered     = "filtered"
	NameASD          = "asd"
	NameSpectrogram  = "spectrogram"
	NameQTransform   = "qtransform"
)

// Names lists the views in page order.
var Names = []string{NameRaw, NameAvailability, NameFiltered, NameASD, NameSpectrogram, NameQTransform}

// Parse reads the options of the named view from query parameters. Absent
// parameters take the initial values for rate.
func Parse(name string, q url.Values, rate int) (View, error) {
	rs := ForRate(rate)
	switch name {
	case NameRaw:
		return ParseRaw(q)
	case NameAvailability:
		return Availability{}, nil
	case NameFiltered:
		return ParseFiltered(q, rs)
	case NameASD:
		return ParseASD(q, rs)
	case NameSpectrogram:
		return ParseSpectrogram(q, rs)
	case NameQTransform:
		return ParseQTransform(q)
	default:
		return nil, invalidOption("unknown view %q", name)
	}
}

// ParseRaw reads raw_vline.
func ParseRaw(q url.Values) (Raw, error) {
	var v Raw
	var err error
	v.VLine, err = boolParam(q, "raw_vline", true)
	return v, err
}

// ParseFiltered reads filt_lo, filt_hi, filt_whiten and filt_vline.
func ParseFiltered(q url.Values, rs RateSettings) (Filtered, error) {
	p := params{q: q}
	v := Filtered{
		Lo:     p.getFloat("filt_lo", rs.InitialFilter[0]),
		Hi:     p.getFloat("filt_hi", rs.InitialFilter[1]),
		Whiten: p.getBool("filt_whiten", true),
		VLine:  p.getBool("filt_vline", true),
	}
	return v, p.err
}

// ParseASD reads asd_lo, asd_hi, asd_ylo, asd_yhi, asd_offset and
// asd_lighten.
func ParseASD(q url.Values, rs RateSettings) (ASD, error) {
	p := params{q: q}
	v := ASD{
		Lo:      p.getFloat("asd_lo", rs.InitialASD[0]),
		Hi:      p.getFloat("asd_hi", rs.InitialASD[1]),
		YLow:    p.getInt("asd_ylo", InitialDecades[0]),
		YHigh:   p.getInt("asd_yhi", InitialDecades[1]),
		Offset:  p.getFloat("asd_offset", 0),
		Lighten: p.getBool("asd_lighten", false),
	}
	return v, p.err
}

// ParseSpectrogram reads spec_lo, spec_hi, spec_vlo, spec_vhi, spec_grid,
// spec_vline and spec_cmap.
func ParseSpectrogram(q url.Values, rs RateSettings) (Spectrogram, error) {
	p := params{q: q}
	v := Spectrogram{
		Lo:       p.getFloat("spec_lo", rs.InitialSpectrogram[0]),
		Hi:       p.getFloat("spec_hi", rs.InitialSpectrogram[1]),
		VLow:     p.getInt("spec_vlo", InitialDecades[0]),
		VHigh:    p.getInt("spec_vhi", InitialDecades[1]),
		Grid:     p.getBool("spec_grid", true),
		VLine:    p.getBool("spec_vline", true),
		Colormap: p.getColormap("spec_cmap", plot.DefaultSpectrogramColormap),
	}
	return v, p.err
}

// ParseQTransform reads q, q_cutoff, q_whiten, q_grid, q_vline and q_cmap.
func ParseQTransform(q url.Values) (QTransform, error) {
	p := params{q: q}
	v := QTransform{
		Q:        p.getFloat("q", InitialQ),
		Cutoff:   p.getFloat("q_cutoff", InitialCutoff),
		Whiten:   p.getBool("q_whiten", true),
		Grid:     p.getBool("q_grid", true),
		VLine:    p.getBool("q_vline", true),
		Colormap: p.getColormap("q_cmap", plot.DefaultQTransformColormap),
	}
	return v, p.err
}

// params reads typed query parameters, keeping the first error.
type params struct {
	q   url.Values
	err error
}

func (p *params) raw(key string) (string, bool) {
	s := strings.TrimSpace(p.q.Get(key))
	return s, s != ""
}

func (p *params) getFloat(key string, def float64) float64 {
	s, ok := p.raw(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = invalidOption("%s: %q is not a number", key, s)
	}
	return v
}

func (p *params) getInt(key string, def int) int {
	s, ok := p.raw(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = invalidOption("%s: %q is not an integer", key, s)
	}
	return v
}

func (p *params) getBool(key string, def bool) bool {
	v, err := boolParam(p.q, key, def)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

// getColormap accepts a colormap id or its menu name.
func (p *params) getColormap(key, def string) string {
	s, ok := p.raw(key)
	if !ok {
		return def
	}
	if id, ok := plot.ColormapByDisplay(s); ok {
		return id
	}
	return s
}

func boolParam(q url.Values, key string, def bool) (bool, error) {
	s := strings.TrimSpace(q.Get(key))
	switch strings.ToLower(s) {
	case "":
		return def, nil
	case "on", "yes", "do":
		return true, nil
	case "off", "no", "dont":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def, invalidOption("%s: %q is not a yes/no value", key, s)
	}
	return v, nil
}
