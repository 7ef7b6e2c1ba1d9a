package view

import (
	"context"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/window"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/cache"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/gwosc"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/plot"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
	timestats "github.com/GNiklasch/GWO-glitch-visualization/stats/time"
)

// View is one kind of figure together with the user's choices for it.
type View interface {
	Name() string
	// SkipText is shown when the user chose not to show the view.
	SkipText() string
	Validate(rs RateSettings) error
	Render(ctx context.Context, r *Renderer, in *Input) (*Panel, error)
}

// Input is the loaded data a session hands to its views.
type Input struct {
	Settings Settings
	Strain   *gwosc.Strain
	// Cropped is the strain inside the plot interval.
	Cropped *series.TimeSeries
}

// NewInput pairs settings with the strain loaded for them.
func NewInput(s Settings, strain *gwosc.Strain) *Input {
	return &Input{Settings: s, Strain: strain, Cropped: s.CropToPlot(strain.Series)}
}

// Cache sizes of the derived time-frequency maps.
const (
	SpectrogramEntries      = 4
	SpectrogramEntriesLarge = 10
	QTransformEntries       = 4
	QTransformEntriesLarge  = 16
)

// Renderer renders views, serializing the drawing through a render lock
// and memoizing spectrograms and Q-transforms.
type Renderer struct {
	lock      *plot.RenderLock
	width     int
	rowHeight int
	large     bool
	window    window.Type
	logger    *zap.Logger

	spectrograms *cache.LRU[*series.Spectrogram]
	qtransforms  *cache.LRU[*qResult]
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRenderLock shares a render lock between renderers.
func WithRenderLock(l *plot.RenderLock) Option {
	return func(r *Renderer) { r.lock = l }
}

// WithSize sets the figure width and the height of one figure row in
// pixels.
func WithSize(width, rowHeight int) Option {
	return func(r *Renderer) {
		r.width = width
		r.rowHeight = rowHeight
	}
}

// WithLargeCaches selects the larger cache sizes.
func WithLargeCaches(large bool) Option {
	return func(r *Renderer) { r.large = large }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// WithWindow selects the segment window of every spectral estimate: the
// ASD, the spectrogram and the ASD behind whitening. Default Hann.
func WithWindow(t window.Type) Option {
	return func(r *Renderer) { r.window = t }
}

// NewRenderer returns a renderer with 1200 pixel wide figures and a single
// render slot unless configured otherwise.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{width: 1200, rowHeight: 100, window: window.TypeHann}
	for _, o := range opts {
		o(r)
	}
	if r.lock == nil {
		r.lock = plot.NewRenderLock(1)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	specCap, qCap := SpectrogramEntries, QTransformEntries
	if r.large {
		specCap, qCap = SpectrogramEntriesLarge, QTransformEntriesLarge
	}
	r.spectrograms = cache.New[*series.Spectrogram](specCap, cache.WithName("spectrogram"))
	r.qtransforms = cache.New[*qResult](qCap, cache.WithName("qtransform"))
	return r
}

// Render validates v and renders it.
func (r *Renderer) Render(ctx context.Context, v View, in *Input) (*Panel, error) {
	if err := v.Validate(ForRate(in.Settings.SampleRate)); err != nil {
		return nil, err
	}

	start := time.Now()
	p, err := v.Render(ctx, r, in)
	fields := []zap.Field{
		zap.String("view", v.Name()),
		zap.String("ifo", in.Settings.Interferometer),
		zap.Float64("t0", in.Settings.T0),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		r.logger.Debug("view failed", append(fields, zap.Error(err))...)
		return p, err
	}
	r.logger.Debug("view rendered", append(fields, zap.Int("png_bytes", len(p.PNG)))...)
	return p, nil
}

// Window returns the spectral window in use.
func (r *Renderer) Window() window.Type { return r.window }

// Stats reports the view caches.
func (r *Renderer) Stats() []cache.Stats {
	return []cache.Stats{r.spectrograms.Stats(), r.qtransforms.Stats()}
}

func (r *Renderer) draw(ctx context.Context, what string, fn func() ([]byte, error)) ([]byte, error) {
	png, err := r.lock.Do(ctx, fn)
	if err != nil {
		return nil, errors.Wrapf(err, "render %s", what)
	}
	return png, nil
}

func (r *Renderer) height(rows float64) int {
	return int(math.Round(rows * float64(r.rowHeight)))
}

// timeRows is the height of the strain plots.
const timeRows = 4.5

// strainChart plots ts over the plot interval.
func (r *Renderer) strainChart(title string, s Settings, ts *series.TimeSeries, yName string, vline bool) *plot.LineChart {
	ax := s.TimeAxis()
	lo, hi := yRange(ts.Data)
	c := &plot.LineChart{
		Title:  title,
		Width:  r.width,
		Height: r.height(timeRows),
		X: plot.Axis{
			Name:  s.TimeAxisName(),
			Min:   s.PlotStart,
			Max:   s.PlotEnd,
			Ticks: ax.Ticks(),
		},
		Y: plot.Axis{
			Name:  yName,
			Min:   lo,
			Max:   hi,
			Ticks: plot.NiceTicks(lo, hi, 5),
		},
		Lines: []plot.Line{{X: ts.Times(), Y: ts.Data, Color: plot.Primary}},
	}
	if vline {
		c.Markers = append(c.Markers, plot.Marker{X: s.T0, Color: plot.VLine, Dash: plot.Dashed})
	}
	return c
}

// yRange pads the extremes of the finite samples by five percent.
func yRange(data []float64) (float64, float64) {
	st := timestats.Calculate(data)
	if st.Valid == 0 {
		return -1, 1
	}
	lo, hi := st.Min, st.Max
	if hi <= lo {
		d := math.Max(math.Abs(lo)*0.1, 1e-30)
		return lo - d, hi + d
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// gapLike reports whether a series error means the data around t0 are
// too sparse, which near a gap is the usual cause.
func gapLike(err error) bool {
	return errors.Is(err, series.ErrTooShort) || errors.Is(err, series.ErrEmpty)
}
