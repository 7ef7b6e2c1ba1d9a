package server_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/app"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/cache"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/config"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/progress"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/server"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

// stubRunner answers with canned results and records requests.
type stubRunner struct {
	mu       sync.Mutex
	requests []*app.Request
	runErr   error
	panel    *view.Panel
	panelErr error
	panics   bool
	hub      *progress.Hub
}

func (s *stubRunner) Run(_ context.Context, req *app.Request) (*app.Result, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.panics {
		panic("boom")
	}
	if s.runErr != nil {
		return nil, s.runErr
	}
	if s.hub != nil {
		s.hub.Publish(progress.Event{Session: req.Session, Stage: progress.StageDone})
	}
	return &app.Result{
		Messages: []view.Message{{Level: view.LevelInfo, Text: "t0 = 1064 (GPS)"}},
		Panels:   []*view.Panel{{View: view.NameRaw, PNG: pngBytes}},
	}, nil
}

func (s *stubRunner) Panel(_ context.Context, req *app.Request, name string) (*view.Panel, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if name == "waterfall" {
		return nil, errors.Mark(errors.New("unknown view"), app.ErrBadRequest)
	}
	return s.panel, s.panelErr
}

func (s *stubRunner) Stats() []cache.Stats {
	return []cache.Stats{{Name: "strain-low-rate", Capacity: 8}}
}

func (s *stubRunner) last() *app.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

var _ = Describe("Server", func() {
	var (
		runner *stubRunner
		hub    *progress.Hub
		ts     *httptest.Server
	)

	BeforeEach(func() {
		hub = progress.NewHub()
		runner = &stubRunner{panel: &view.Panel{View: view.NameRaw, PNG: pngBytes}, hub: hub}
		srv := server.New(runner, hub, config.ServerConfig{}, server.WithWideBlocks(true))
		ts = httptest.NewServer(srv.Handler())
	})

	AfterEach(func() {
		hub.Close()
		ts.Close()
	})

	get := func(path string) (*http.Response, []byte) {
		resp, err := http.Get(ts.URL + path)
		Expect(err).ToNot(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).ToNot(HaveOccurred())
		return resp, body
	}

	Describe("page", func() {
		It("offers every choice", func() {
			resp, body := get("/")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/html"))
			page := string(body)
			Expect(page).To(ContainSubstring("GWO glitch plotter"))
			Expect(page).To(ContainSubstring(`value="L1" selected`))
			Expect(page).To(ContainSubstring("Jetstream reversed"))
			Expect(page).To(ContainSubstring(`name="wide"`))
			Expect(page).To(ContainSubstring("filter_detents"))
		})

		It("is only served at the root", func() {
			resp, _ := get("/nowhere")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("request ids", func() {
		It("assigns one", func() {
			resp, _ := get("/health")
			_, err := uuid.Parse(resp.Header.Get(server.RequestIDHeader))
			Expect(err).ToNot(HaveOccurred())
		})

		It("keeps a well-formed incoming one", func() {
			id := uuid.NewString()
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
			req.Header.Set(server.RequestIDHeader, id)
			resp, err := http.DefaultClient.Do(req)
			Expect(err).ToNot(HaveOccurred())
			resp.Body.Close()
			Expect(resp.Header.Get(server.RequestIDHeader)).To(Equal(id))
		})
	})

	Describe("run API", func() {
		It("returns the session with base64 figures", func() {
			resp, body := get("/api/v1/run?ifo=H1&t0=1064&width=2")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

			var res struct {
				Messages []view.Message `json:"messages"`
				Panels   []struct {
					View string `json:"view"`
					PNG  string `json:"png"`
				} `json:"panels"`
			}
			Expect(json.Unmarshal(body, &res)).To(Succeed())
			Expect(res.Messages[0].Text).To(Equal("t0 = 1064 (GPS)"))
			Expect(res.Panels).To(HaveLen(1))
			Expect(res.Panels[0].PNG).To(Equal(base64.StdEncoding.EncodeToString(pngBytes)))

			req := runner.last()
			Expect(req.Interferometer).To(Equal("H1"))
			Expect(req.T0).To(Equal("1064"))
			Expect(req.Width).To(Equal(2.0))
		})

		It("rejects choices that are not on offer", func() {
			resp, body := get("/api/v1/run?width=3")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			var e struct {
				Error     string `json:"error"`
				RequestID string `json:"request_id"`
			}
			Expect(json.Unmarshal(body, &e)).To(Succeed())
			Expect(e.Error).To(ContainSubstring("width"))
			Expect(e.RequestID).To(Equal(resp.Header.Get(server.RequestIDHeader)))
		})

		It("reports failures", func() {
			runner.runErr = errors.New("render raw: lock")
			resp, _ := get("/api/v1/run")
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		})

		It("recovers from panics", func() {
			runner.panics = true
			resp, _ := get("/api/v1/run")
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("plot endpoint", func() {
		It("serves one figure", func() {
			resp, body := get("/plot/raw.png?t0=1064")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("image/png"))
			Expect(body).To(Equal(pngBytes))
		})

		It("answers 409 when the view drew nothing", func() {
			runner.panel = &view.Panel{View: view.NameRaw, Messages: []view.Message{
				{Level: view.LevelError, Text: "t0 is too close to or inside a data gap."},
			}}
			runner.panelErr = view.ErrDataGap
			resp, body := get("/plot/raw.png")
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
			Expect(string(body)).To(ContainSubstring("data gap"))
		})

		It("answers 400 for unknown views and 404 for other files", func() {
			resp, _ := get("/plot/waterfall.png")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			resp, _ = get("/plot/raw.svg")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	It("reports health with cache statistics", func() {
		resp, body := get("/health")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var h struct {
			Status string        `json:"status"`
			Uptime string        `json:"uptime"`
			Caches []cache.Stats `json:"caches"`
		}
		Expect(json.Unmarshal(body, &h)).To(Succeed())
		Expect(h.Status).To(Equal("ok"))
		Expect(h.Uptime).ToNot(BeEmpty())
		Expect(h.Caches[0].Name).To(Equal("strain-low-rate"))
	})

	It("streams progress of a session over the websocket", func() {
		id := progress.NewSessionID()
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + id
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()
		Eventually(func() int { return hub.Subscribers(id) }).Should(Equal(1))

		resp, _ := get("/api/v1/run?session=" + id)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var ev progress.Event
		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		Expect(conn.ReadJSON(&ev)).To(Succeed())
		Expect(ev.Session).To(Equal(id))
		Expect(ev.Stage).To(Equal(progress.StageDone))
	})
})
