package app

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/progress"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
)

// ErrBadRequest marks choices that are not on offer.
var ErrBadRequest = errors.New("app: bad request")

// Request holds the user's choices for one session.
type Request struct {
	Interferometer string
	// T0 is the timestamp as typed; it is parsed when the session runs so
	// that typos are reported on the page.
	T0         string
	Width      float64
	SampleRate int
	// WideBlocks asks for extra-wide cache blocks. It only takes effect
	// when the server allows them.
	WideBlocks bool

	Show  map[string]bool
	Views map[string]view.View

	// Session receives progress events when set.
	Session string
}

// defaultShow lists which views are shown when the request is silent.
var defaultShow = map[string]bool{
	view.NameRaw:          true,
	view.NameAvailability: false,
	view.NameFiltered:     false,
	view.NameASD:          false,
	view.NameSpectrogram:  false,
	view.NameQTransform:   true,
}

// ParseRequest reads a request from query parameters. Every view's
// options are parsed; those of the shown views are also validated.
func ParseRequest(q url.Values) (*Request, error) {
	req := &Request{
		Interferometer: view.DefaultInterferometer,
		T0:             view.InitialT0,
		Width:          view.InitialWidth,
		SampleRate:     view.SampleRates[0],
		Show:           make(map[string]bool, len(view.Names)),
		Views:          make(map[string]view.View, len(view.Names)),
		Session:        q.Get("session"),
	}

	if v := q.Get("ifo"); v != "" {
		if _, ok := view.CalibLow(v); !ok {
			return nil, badRequest("unknown interferometer %q", v)
		}
		req.Interferometer = v
	}
	if v := strings.TrimSpace(q.Get("t0")); v != "" {
		req.T0 = v
	}
	if v := q.Get("width"); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil || !contains(view.Widths, w) {
			return nil, badRequest("width %q is not on offer", v)
		}
		req.Width = w
	}
	if v := q.Get("rate"); v != "" {
		r, err := strconv.Atoi(v)
		if err != nil || !containsInt(view.SampleRates, r) {
			return nil, badRequest("sample rate %q is not on offer", v)
		}
		req.SampleRate = r
	}
	var err error
	if req.WideBlocks, err = flag(q, "wide", false); err != nil {
		return nil, err
	}
	if req.Session != "" && !progress.ValidSessionID(req.Session) {
		return nil, badRequest("malformed session id %q", req.Session)
	}

	rs := view.ForRate(req.SampleRate)
	for _, name := range view.Names {
		show, err := flag(q, "show_"+name, defaultShow[name])
		if err != nil {
			return nil, err
		}
		v, err := view.Parse(name, q, req.SampleRate)
		if err != nil {
			return nil, errors.Mark(err, ErrBadRequest)
		}
		if show {
			if err := v.Validate(rs); err != nil {
				return nil, errors.Mark(err, ErrBadRequest)
			}
		}
		req.Show[name] = show || name == view.NameRaw
		req.Views[name] = v
	}
	return req, nil
}

func flag(q url.Values, key string, def bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(q.Get(key)))
	switch v {
	case "":
		return def, nil
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest("%s: %q is not a boolean", key, v)
	}
	return b, nil
}

func badRequest(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrBadRequest)
}

func contains(xs []float64, v float64) bool {
	for _, x := range xs {
		if math.Abs(x-v) <= 1e-9*math.Max(1, math.Abs(x)) {
			return true
		}
	}
	return false
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
