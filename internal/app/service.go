package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/cache"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/config"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/gpstime"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/gwosc"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/progress"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
)

// Publisher receives progress events.
type Publisher interface {
	Publish(ev progress.Event)
}

// Result is everything a session shows, in page order.
type Result struct {
	Settings *view.Settings `json:"settings,omitempty"`
	Messages []view.Message `json:"messages"`
	Panels   []*view.Panel  `json:"panels"`
	Footer   Footer         `json:"footer"`
	// Stopped is set when the session ended early; Messages say why.
	Stopped bool `json:"stopped"`
}

func (r *Result) info(text string) {
	r.Messages = append(r.Messages, view.Message{Level: view.LevelInfo, Text: text})
}

func (r *Result) warn(text string) {
	r.Messages = append(r.Messages, view.Message{Level: view.LevelWarning, Text: text})
}

func (r *Result) fail(text string) {
	r.Messages = append(r.Messages, view.Message{Level: view.LevelError, Text: text})
}

// Service runs sessions against a strain source.
type Service struct {
	source    gwosc.Source
	renderer  *view.Renderer
	overrides config.Overrides
	publisher Publisher
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithOverrides sets the overrides the server was started with.
func WithOverrides(o config.Overrides) Option {
	return func(s *Service) { s.overrides = o }
}

// WithPublisher sets where progress events go.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a service.
func New(source gwosc.Source, renderer *view.Renderer, opts ...Option) *Service {
	s := &Service{source: source, renderer: renderer}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Run executes a session. Problems the user can act on end the session
// with a message and a nil error; the error reports cancellation and
// rendering failures.
func (s *Service) Run(ctx context.Context, req *Request) (*Result, error) {
	res := &Result{}
	defer func() { res.Footer = newFooter() }()
	s.publish(req, progress.Event{Stage: progress.StageStarted})

	t0, err := gpstime.AnyToGPS(req.T0)
	if err != nil {
		res.warn("Sorry, there seems to be a typo in the timestamp input:")
		res.fail(err.Error())
		res.warn("Please correct and re-submit your load request.")
		return s.stop(req, res, "timestamp"), nil
	}

	settings := s.settings(req, t0)
	res.Settings = &settings
	res.info(fmt.Sprintf("t0 = %s (GPS) = %s (UTC)", settings.T0Label(), settings.T0ISO))
	for _, ack := range s.acknowledgements(req) {
		res.info(ack)
	}

	strain, err := s.load(ctx, req, res, settings)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		res.warn(fmt.Sprintf("Load failed; data from %s may not be available on GWOSC for "+
			"time %s, or the GWOSC data service might be temporarily unavailable. "+
			"Please try a different time and/or interferometer.",
			settings.Interferometer, settings.T0Label()))
		return s.stop(req, res, "load"), nil
	}
	res.info(fmt.Sprintf("Cache block start: %s, end: %s; plot start: %s, end: %s",
		number(settings.Start), number(settings.End),
		number(settings.PlotStart), number(settings.PlotEnd)))
	s.memProfile("after load")

	in := view.NewInput(settings, strain)
	raw, err := s.render(ctx, req, req.Views[view.NameRaw], in)
	if errors.Is(err, view.ErrDataGap) {
		res.Panels = append(res.Panels, raw)
		avail, err := s.render(ctx, req, view.Availability{}, in)
		if err != nil {
			return nil, err
		}
		res.Panels = append(res.Panels, avail)
		return s.stop(req, res, "data gap"), nil
	}
	if err != nil {
		return nil, err
	}
	res.Panels = append(res.Panels, raw)

	for _, name := range view.Names[1:] {
		v := req.Views[name]
		if !req.Show[name] {
			if v.SkipText() != "" {
				res.Panels = append(res.Panels, view.Skip(v))
			}
			continue
		}
		p, err := s.render(ctx, req, v, in)
		if err != nil {
			return nil, err
		}
		res.Panels = append(res.Panels, p)
	}

	s.memProfile("end of run")
	s.publish(req, progress.Event{Stage: progress.StageDone})
	return res, nil
}

// Panel renders a single view for req. Errors marked ErrBadRequest
// concern the request; a raw-view data gap returns the panel together
// with the error.
func (s *Service) Panel(ctx context.Context, req *Request, name string) (*view.Panel, error) {
	v, ok := req.Views[name]
	if !ok {
		return nil, badRequest("unknown view %q", name)
	}
	// Hidden views skip validation in ParseRequest.
	if err := v.Validate(view.ForRate(req.SampleRate)); err != nil {
		return nil, errors.Mark(err, ErrBadRequest)
	}
	t0, err := gpstime.AnyToGPS(req.T0)
	if err != nil {
		return nil, errors.Mark(err, ErrBadRequest)
	}
	settings := s.settings(req, t0)
	strain, err := s.source.Load(ctx, settings.Descriptor())
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", settings.Descriptor())
	}
	return s.renderer.Render(ctx, v, view.NewInput(settings, strain))
}

// Stats reports the strain and view caches.
func (s *Service) Stats() []cache.Stats {
	var out []cache.Stats
	if st, ok := s.source.(interface{ Stats() []cache.Stats }); ok {
		out = append(out, st.Stats()...)
	}
	return append(out, s.renderer.Stats()...)
}

func (s *Service) settings(req *Request, t0 float64) view.Settings {
	wide := req.WideBlocks && s.overrides.WideCacheBlocks
	return view.NewSettings(req.Interferometer, t0, req.Width, req.SampleRate, wide)
}

func (s *Service) acknowledgements(req *Request) []string {
	var acks []string
	if s.overrides.LargeCaches {
		acks = append(acks, "Using larger-sized strain data caches.")
	}
	if s.overrides.WideCacheBlocks {
		verb := "Allowing"
		if req.WideBlocks {
			verb = "Using"
		}
		acks = append(acks, verb+" extra-wide cache blocks.")
	}
	if s.overrides.URLCaching {
		acks = append(acks, "URL cache is enabled.")
	}
	if s.overrides.MemProfiling {
		acks = append(acks, "Memory profiling enabled;  watch the logs.")
	}
	return acks
}

// load fetches the strain. The waiting message is replaced by the outcome.
func (s *Service) load(ctx context.Context, req *Request, res *Result, settings view.Settings) (*gwosc.Strain, error) {
	waiting := fmt.Sprintf("Grab a coffee while we're fetching a %d s chunk of %s strain data from GWOSC...",
		gwosc.ChunkSize, settings.Interferometer)
	if settings.CrossesChunk() {
		waiting = fmt.Sprintf("Brew a pot of tea while we're fetching some %s strain data in %d s chunks from GWOSC...",
			settings.Interferometer, gwosc.ChunkSize)
	}
	res.info(waiting)
	slot := len(res.Messages) - 1
	s.publish(req, progress.Event{Stage: progress.StageLoading, Message: waiting})

	loadCtx := gwosc.WithProgress(ctx, func(ev gwosc.Event) {
		s.publish(req, progress.Event{
			Stage:   progress.StageChunk,
			Done:    ev.Done,
			Total:   ev.Total,
			Message: string(ev.Stage),
		})
	})
	d := settings.Descriptor()
	strain, err := s.source.Load(loadCtx, d)
	if err != nil {
		res.Messages = append(res.Messages[:slot], res.Messages[slot+1:]...)
		s.logger.Warn("strain load failed", zap.Stringer("descriptor", d), zap.Error(err))
		return nil, err
	}

	loaded := fmt.Sprintf("Loaded %s strain data (%d samples/s).", settings.Interferometer, settings.SampleRate)
	res.Messages[slot].Text = loaded
	s.publish(req, progress.Event{Stage: progress.StageLoaded, Message: loaded})
	return strain, nil
}

func (s *Service) render(ctx context.Context, req *Request, v view.View, in *view.Input) (*view.Panel, error) {
	p, err := s.renderer.Render(ctx, v, in)
	if err != nil && !errors.Is(err, view.ErrDataGap) {
		s.publish(req, progress.Event{Stage: progress.StageFailed, View: v.Name(), Message: err.Error()})
		return nil, errors.Wrapf(err, "render %s", v.Name())
	}
	s.publish(req, progress.Event{Stage: progress.StageView, View: v.Name()})
	return p, err
}

func (s *Service) stop(req *Request, res *Result, why string) *Result {
	res.Stopped = true
	s.logger.Debug("session stopped", zap.String("reason", why))
	s.publish(req, progress.Event{Stage: progress.StageDone, Message: why})
	return res
}

func (s *Service) publish(req *Request, ev progress.Event) {
	if s.publisher == nil || req.Session == "" {
		return
	}
	ev.Session = req.Session
	s.publisher.Publish(ev)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
