package server

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/app"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/cache"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/config"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/progress"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
)

// Runner runs sessions.
type Runner interface {
	Run(ctx context.Context, req *app.Request) (*app.Result, error)
	Panel(ctx context.Context, req *app.Request, name string) (*view.Panel, error)
	Stats() []cache.Stats
}

// Server serves the page, the APIs and the progress stream.
type Server struct {
	runner  Runner
	hub     *progress.Hub
	cfg     config.ServerConfig
	wide    bool
	logger  *zap.Logger
	started time.Time
	page    *template.Template

	handler http.Handler
	http    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithWideBlocks offers the extra-wide cache block choice on the page.
func WithWideBlocks(allowed bool) Option {
	return func(s *Server) { s.wide = allowed }
}

// New creates a server. hub may be nil, which disables /ws.
func New(runner Runner, hub *progress.Hub, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		hub:     hub,
		cfg:     cfg,
		started: time.Now(),
		page:    template.Must(template.New("page").Parse(pageHTML)),
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/v1/run", s.handleRun)
	mux.HandleFunc("GET /plot/{file}", s.handlePlot)
	mux.HandleFunc("GET /health", s.handleHealth)
	if hub != nil {
		mux.Handle("GET /ws", hub)
	}
	s.handler = withRequestID(accessLog(s.logger, recoverer(s.logger, mux)))
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the routes wrapped in the middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "listen")
	}
	return nil
}

// Shutdown closes the progress streams and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	req, err := app.ParseRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	req, err := app.ParseRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.runner.Panel(r.Context(), req, name)
	if err != nil && (p == nil || !errors.Is(err, view.ErrDataGap)) {
		s.writeError(w, r, err)
		return
	}
	if !p.HasImage() {
		var texts []string
		for _, m := range p.Messages {
			texts = append(texts, m.Text)
		}
		http.Error(w, strings.Join(texts, "\n"), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(p.PNG)
}

type health struct {
	Status string        `json:"status"`
	Uptime string        `json:"uptime"`
	Caches []cache.Stats `json:"caches"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, health{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
		Caches: s.runner.Stats(),
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, newPageData(s.wide)); err != nil {
		s.logger.Error("page template failed",
			zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	}
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	id := RequestID(r.Context())
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("request_id", id), zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: view.UserMessage(err), RequestID: id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
