package app_test

import (
	"net/url"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/app"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/config"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/progress"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

func texts(ms []view.Message, level view.Level) []string {
	var out []string
	for _, m := range ms {
		if m.Level == level {
			out = append(out, m.Text)
		}
	}
	return out
}

func names(ps []*view.Panel) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.View
	}
	return out
}

var _ = Describe("Service", func() {
	var (
		source *fakeSource
		events *recorder
		svc    *app.Service
	)

	request := func(extra url.Values) *app.Request {
		q := url.Values{
			"ifo":             {"H1"},
			"t0":              {"1064"},
			"session":         {progress.NewSessionID()},
			"show_qtransform": {"false"},
		}
		for k, v := range extra {
			q[k] = v
		}
		req, err := app.ParseRequest(q)
		Expect(err).ToNot(HaveOccurred())
		return req
	}

	BeforeEach(func() {
		source = &fakeSource{}
		events = &recorder{}
		svc = app.New(source, view.NewRenderer(view.WithSize(600, 60)), app.WithPublisher(events))
	})

	Describe("Run", func() {
		It("renders the raw view and skips the rest", func() {
			res, err := svc.Run(ctx, request(nil))
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Stopped).To(BeFalse())
			Expect(res.Settings.Start).To(Equal(992.0))
			Expect(res.Settings.End).To(Equal(1120.0))

			Expect(texts(res.Messages, view.LevelInfo)).To(Equal([]string{
				"t0 = 1064 (GPS) = 1980-01-06T00:17:44.000 (UTC)",
				"Loaded H1 strain data (4096 samples/s).",
				"Cache block start: 992, end: 1120; plot start: 1062, end: 1066",
			}))
			Expect(names(res.Panels)).To(Equal([]string{
				view.NameRaw, view.NameFiltered, view.NameASD, view.NameSpectrogram, view.NameQTransform,
			}))
			Expect(res.Panels[0].HasImage()).To(BeTrue())
			for _, p := range res.Panels[1:] {
				Expect(p.Skipped).To(BeTrue())
			}
			Expect(res.Panels[4].Messages[0].Text).To(Equal("(Skipping Q-transform rendering.)"))
			Expect(res.Footer.Links).ToNot(BeEmpty())
			Expect(res.Footer.Text()).To(HavePrefix("Page refreshed "))

			Expect(events.stages()).To(Equal([]progress.Stage{
				progress.StageStarted, progress.StageLoading, progress.StageLoaded,
				progress.StageView, progress.StageDone,
			}))
		})

		It("renders the views that are shown", func() {
			res, err := svc.Run(ctx, request(url.Values{
				"show_availability": {"true"},
				"show_asd":          {"true"},
			}))
			Expect(err).ToNot(HaveOccurred())
			Expect(names(res.Panels)).To(Equal([]string{
				view.NameRaw, view.NameAvailability, view.NameFiltered, view.NameASD,
				view.NameSpectrogram, view.NameQTransform,
			}))
			Expect(res.Panels[1].HasImage()).To(BeTrue())
			Expect(res.Panels[3].HasImage()).To(BeTrue())
		})

		It("stops on a timestamp typo without loading", func() {
			res, err := svc.Run(ctx, request(url.Values{"t0": {"1187008882.4x"}}))
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Stopped).To(BeTrue())
			Expect(res.Settings).To(BeNil())
			Expect(res.Panels).To(BeEmpty())
			Expect(res.Messages).To(HaveLen(3))
			Expect(res.Messages[0]).To(Equal(view.Message{
				Level: view.LevelWarning,
				Text:  "Sorry, there seems to be a typo in the timestamp input:",
			}))
			Expect(res.Messages[1].Level).To(Equal(view.LevelError))
			Expect(res.Messages[2].Text).To(Equal("Please correct and re-submit your load request."))
			Expect(res.Footer.Refreshed).ToNot(BeEmpty())
			Expect(source.loads).To(BeEmpty())
		})

		It("stops when the load fails", func() {
			source.err = errOffline
			res, err := svc.Run(ctx, request(nil))
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Stopped).To(BeTrue())
			Expect(res.Panels).To(BeEmpty())
			Expect(texts(res.Messages, view.LevelInfo)).To(HaveLen(1))
			Expect(texts(res.Messages, view.LevelWarning)).To(ConsistOf(
				"Load failed; data from H1 may not be available on GWOSC for time 1064, " +
					"or the GWOSC data service might be temporarily unavailable. " +
					"Please try a different time and/or interferometer.",
			))
		})

		It("shows the availability after a gap in the raw view and stops", func() {
			source.gaps = []series.Segment{{Start: 1060, End: 1070}}
			res, err := svc.Run(ctx, request(nil))
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Stopped).To(BeTrue())
			Expect(names(res.Panels)).To(Equal([]string{view.NameRaw, view.NameAvailability}))
			Expect(res.Panels[0].HasImage()).To(BeFalse())
			Expect(res.Panels[0].Messages[0].Level).To(Equal(view.LevelError))
			Expect(res.Panels[1].HasImage()).To(BeTrue())
			Expect(res.Panels[1].Messages[0].Text).To(Equal("Unusable: [1060 ... 1070)"))
		})

		It("announces a multi-chunk load", func() {
			_, err := svc.Run(ctx, request(url.Values{"t0": {"4100"}}))
			Expect(err).ToNot(HaveOccurred())
			Expect(events.events[1].Stage).To(Equal(progress.StageLoading))
			Expect(events.events[1].Message).To(HavePrefix("Brew a pot of tea while we're fetching some H1 strain data"))
		})

		It("announces a single-chunk load", func() {
			_, err := svc.Run(ctx, request(nil))
			Expect(err).ToNot(HaveOccurred())
			Expect(events.events[1].Message).To(Equal(
				"Grab a coffee while we're fetching a 4096 s chunk of H1 strain data from GWOSC..."))
		})

		It("does not publish without a session", func() {
			req := request(nil)
			req.Session = ""
			_, err := svc.Run(ctx, req)
			Expect(err).ToNot(HaveOccurred())
			Expect(events.events).To(BeEmpty())
		})

		DescribeTable("acknowledges overrides",
			func(wide bool, want []string) {
				svc = app.New(source, view.NewRenderer(view.WithSize(600, 60)), app.WithOverrides(config.Overrides{
					LargeCaches:     true,
					MemProfiling:    true,
					URLCaching:      true,
					WideCacheBlocks: true,
				}))
				res, err := svc.Run(ctx, request(url.Values{"wide": {boolString(wide)}}))
				Expect(err).ToNot(HaveOccurred())
				Expect(texts(res.Messages, view.LevelInfo)[1:5]).To(Equal(want))
				if wide {
					Expect(res.Settings.Block).To(Equal(512.0))
				} else {
					Expect(res.Settings.Block).To(Equal(32.0))
				}
			},
			Entry("wide blocks requested", true, []string{
				"Using larger-sized strain data caches.",
				"Using extra-wide cache blocks.",
				"URL cache is enabled.",
				"Memory profiling enabled;  watch the logs.",
			}),
			Entry("wide blocks allowed", false, []string{
				"Using larger-sized strain data caches.",
				"Allowing extra-wide cache blocks.",
				"URL cache is enabled.",
				"Memory profiling enabled;  watch the logs.",
			}),
		)

		It("ignores wide blocks the server does not allow", func() {
			res, err := svc.Run(ctx, request(url.Values{"wide": {"true"}}))
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Settings.Block).To(Equal(32.0))
		})
	})

	Describe("Panel", func() {
		It("renders one view", func() {
			p, err := svc.Panel(ctx, request(nil), view.NameRaw)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.HasImage()).To(BeTrue())
		})

		It("reports a data gap together with the panel", func() {
			source.gaps = []series.Segment{{Start: 1060, End: 1070}}
			p, err := svc.Panel(ctx, request(nil), view.NameRaw)
			Expect(errors.Is(err, view.ErrDataGap)).To(BeTrue())
			Expect(p.HasImage()).To(BeFalse())
		})

		It("rejects unknown views and bad timestamps", func() {
			_, err := svc.Panel(ctx, request(nil), "waterfall")
			Expect(errors.Is(err, app.ErrBadRequest)).To(BeTrue())

			_, err = svc.Panel(ctx, request(url.Values{"t0": {"soon"}}), view.NameRaw)
			Expect(errors.Is(err, app.ErrBadRequest)).To(BeTrue())
		})

		It("rejects options of a view that was hidden in the query", func() {
			req := request(url.Values{"show_asd": {"false"}, "asd_lo": {"7"}})
			_, err := svc.Panel(ctx, req, view.NameASD)
			Expect(errors.Is(err, app.ErrBadRequest)).To(BeTrue())
			Expect(errors.Is(err, view.ErrInvalidOption)).To(BeTrue())
			Expect(source.loads).To(BeEmpty())
		})
	})

	It("reports the view caches", func() {
		Expect(svc.Stats()).To(HaveLen(2))
	})
})

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
