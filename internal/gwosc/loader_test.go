package gwosc_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/config"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/gwosc"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

const testRate = 16

// fakeArchive serves two adjacent 64 s files at 16 Hz. The second file
// starts with 8 s of NaN.
type fakeArchive struct {
	server    *httptest.Server
	links     atomic.Int32
	downloads atomic.Int32
	failures  atomic.Int32 // remaining 503 responses per download
	empty     bool
}

func newFakeArchive() *fakeArchive {
	fa := &fakeArchive{}
	mux := http.NewServeMux()
	mux.HandleFunc("/archive/links/", func(w http.ResponseWriter, r *http.Request) {
		fa.links.Add(1)
		files := []gwosc.StrainFile{
			{URL: fa.server.URL + "/data/a.txt.gz", GPSStart: 1000, Duration: 64, Format: "txt", SampleRate: testRate, Detector: "L1"},
			{URL: fa.server.URL + "/data/b.txt.gz", GPSStart: 1064, Duration: 64, Format: "txt", SampleRate: testRate, Detector: "L1"},
			{URL: fa.server.URL + "/data/b.hdf5", GPSStart: 1064, Duration: 64, Format: "hdf5", SampleRate: testRate, Detector: "L1"},
			{URL: fa.server.URL + "/data/c.txt.gz", GPSStart: 1064, Duration: 64, Format: "txt", SampleRate: 4 * testRate, Detector: "L1"},
		}
		if fa.empty {
			files = nil
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"strain": files})
	})
	mux.HandleFunc("/data/", func(w http.ResponseWriter, r *http.Request) {
		if fa.failures.Add(-1) >= 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fa.downloads.Add(1)
		var sb strings.Builder
		sb.WriteString("# strain\n")
		n := 64 * testRate
		switch {
		case strings.HasSuffix(r.URL.Path, "a.txt.gz"):
			for i := 0; i < n; i++ {
				fmt.Fprintf(&sb, "%g\n", float64(i))
			}
		case strings.HasSuffix(r.URL.Path, "b.txt.gz"):
			for i := 0; i < n; i++ {
				if i < 8*testRate {
					sb.WriteString("nan\n")
				} else {
					fmt.Fprintf(&sb, "%g\n", float64(n+i))
				}
			}
		default:
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(gzipText(sb.String()))
	})
	fa.server = httptest.NewServer(mux)
	return fa
}

func testRuns() []config.RunConfig {
	return []config.RunConfig{
		{Name: "T1", Start: 0, End: 5000, Datasets: map[int]string{testRate: "T1_16HZ"}},
	}
}

var _ = Describe("Client", func() {
	var fa *fakeArchive

	BeforeEach(func() {
		fa = newFakeArchive()
		DeferCleanup(fa.server.Close)
	})

	It("Should list files", func() {
		c := gwosc.NewClient(fa.server.URL)
		files, err := c.Links(ctx, "T1_16HZ", "L1", 1032, 1096.015625)
		Expect(err).ToNot(HaveOccurred())
		Expect(files).To(HaveLen(4))
		Expect(files[1].GPSStart).To(Equal(1064.0))
		Expect(files[1].End()).To(Equal(1128.0))
	})

	It("Should retry server errors", func() {
		fa.failures.Store(2)
		c := gwosc.NewClient(fa.server.URL, gwosc.WithRetries(3, time.Millisecond))
		samples, err := c.FetchSamples(ctx, fa.server.URL+"/data/a.txt.gz")
		Expect(err).ToNot(HaveOccurred())
		Expect(samples).To(HaveLen(64 * testRate))
		Expect(samples[5]).To(Equal(5.0))
	})

	It("Should give up after the retry budget", func() {
		fa.failures.Store(10)
		c := gwosc.NewClient(fa.server.URL, gwosc.WithRetries(1, time.Millisecond))
		_, err := c.FetchSamples(ctx, fa.server.URL+"/data/a.txt.gz")
		var apiErr *gwosc.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusServiceUnavailable))
		Expect(err.Error()).To(ContainSubstring("max retries exceeded"))
	})

	It("Should not retry client errors", func() {
		c := gwosc.NewClient(fa.server.URL, gwosc.WithRetries(3, time.Millisecond))
		_, err := c.FetchSamples(ctx, fa.server.URL+"/data/missing")
		var apiErr *gwosc.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusNotFound))
		Expect(apiErr.IsRetryable()).To(BeFalse())
	})

	It("Should serve repeated downloads from the URL cache", func() {
		uc, err := gwosc.OpenURLCache("", time.Hour)
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(uc.Close)

		c := gwosc.NewClient(fa.server.URL, gwosc.WithURLCache(uc))
		first, err := c.FetchSamples(ctx, fa.server.URL+"/data/a.txt.gz")
		Expect(err).ToNot(HaveOccurred())
		second, err := c.FetchSamples(ctx, fa.server.URL+"/data/a.txt.gz")
		Expect(err).ToNot(HaveOccurred())
		Expect(second).To(Equal(first))
		Expect(fa.downloads.Load()).To(Equal(int32(1)))
	})
})

var _ = Describe("Loader", func() {
	var (
		fa     *fakeArchive
		loader *gwosc.Loader
		desc   gwosc.Descriptor
	)

	BeforeEach(func() {
		fa = newFakeArchive()
		DeferCleanup(fa.server.Close)
		loader = gwosc.NewLoader(gwosc.NewClient(fa.server.URL), testRuns(), gwosc.WithParallelism(2))
		desc = gwosc.Descriptor{Interferometer: "L1", Start: 1032, End: 1096, SampleRate: testRate}
	})

	It("Should stitch files onto one grid", func() {
		s, err := loader.Load(ctx, desc)
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Files).To(Equal(2))

		ts := s.Series
		Expect(ts.T0).To(Equal(1032.0))
		Expect(ts.Len()).To(Equal(int(math.Round((1096 + gwosc.FudgeSeconds - 1032) * testRate))))

		v, err := ts.ValueAt(1032)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(float64(32 * testRate)))

		v, err = ts.ValueAt(1063.9375)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(float64(64*testRate - 1)))

		v, err = ts.ValueAt(1070)
		Expect(err).ToNot(HaveOccurred())
		Expect(math.IsNaN(v)).To(BeTrue())

		v, err = ts.ValueAt(1080)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(float64(64*testRate + 16*testRate)))
	})

	It("Should derive the availability flag from NaN samples", func() {
		s, err := loader.Load(ctx, desc)
		Expect(err).ToNot(HaveOccurred())

		Expect(s.Flag.Known).To(Equal(series.SegmentList{{Start: 1032, End: 1032 + 511.0/8}}))
		Expect(s.Flag.Inactive()).To(Equal(series.SegmentList{{Start: 1064, End: 1072}}))
		Expect(s.Flag.Active.Duration()).To(BeNumerically("~", 511.0/8-8, 1e-9))
	})

	It("Should report progress", func() {
		var mu sync.Mutex
		var stages []gwosc.Stage
		pctx := gwosc.WithProgress(ctx, func(ev gwosc.Event) {
			mu.Lock()
			defer mu.Unlock()
			stages = append(stages, ev.Stage)
		})
		_, err := loader.Load(pctx, desc)
		Expect(err).ToNot(HaveOccurred())
		Expect(stages).To(Equal([]gwosc.Stage{gwosc.StageLinks, gwosc.StageChunk, gwosc.StageChunk, gwosc.StageLoaded}))
	})

	It("Should fail with ErrNoData when no file matches", func() {
		fa.empty = true
		_, err := loader.Load(ctx, desc)
		Expect(errors.Is(err, gwosc.ErrNoData)).To(BeTrue())
	})

	It("Should fail with ErrNoRun outside every run", func() {
		desc.Start, desc.End = 9000, 9064
		_, err := loader.Load(ctx, desc)
		Expect(errors.Is(err, gwosc.ErrNoRun)).To(BeTrue())
		Expect(fa.links.Load()).To(Equal(int32(0)))
	})

	It("Should fail with ErrNoRun for a rate the run lacks", func() {
		desc.SampleRate = 4096
		_, err := loader.Load(ctx, desc)
		Expect(errors.Is(err, gwosc.ErrNoRun)).To(BeTrue())
	})

	It("Should reject inverted intervals", func() {
		desc.End = desc.Start
		_, err := loader.Load(ctx, desc)
		Expect(errors.Is(err, gwosc.ErrInvalidDescriptor)).To(BeTrue())
	})
})

type countingSource struct {
	calls atomic.Int32
	err   error
	// When set, Load signals started and waits for release.
	started   chan struct{}
	release   chan struct{}
	cancelled atomic.Bool
}

func (c *countingSource) Load(ctx context.Context, d gwosc.Descriptor) (*gwosc.Strain, error) {
	c.calls.Add(1)
	if c.release != nil {
		select {
		case c.started <- struct{}{}:
		default:
		}
		<-c.release
	}
	if ctx.Err() != nil {
		c.cancelled.Store(true)
		return nil, ctx.Err()
	}
	if c.err != nil {
		return nil, c.err
	}
	return &gwosc.Strain{Descriptor: d, Series: series.New(d.Start, float64(d.SampleRate), make([]float64, 4))}, nil
}

var _ = Describe("CachedLoader", func() {
	It("Should memoize loads per descriptor", func() {
		src := &countingSource{}
		cl := gwosc.NewCachedLoader(src, false, nil)
		d := gwosc.Descriptor{Interferometer: "H1", Start: 1000, End: 1128, SampleRate: 4096}

		a, err := cl.Load(ctx, d)
		Expect(err).ToNot(HaveOccurred())
		b, err := cl.Load(ctx, d)
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(BeIdenticalTo(a))
		Expect(src.calls.Load()).To(Equal(int32(1)))

		d.Interferometer = "L1"
		_, err = cl.Load(ctx, d)
		Expect(err).ToNot(HaveOccurred())
		Expect(src.calls.Load()).To(Equal(int32(2)))
	})

	It("Should size the high-rate cache separately", func() {
		src := &countingSource{}
		cl := gwosc.NewCachedLoader(src, false, nil)
		for i := 0; i < gwosc.HighRateEntries+1; i++ {
			d := gwosc.Descriptor{Interferometer: "L1", Start: float64(1000 + 32*i), End: float64(1128 + 32*i), SampleRate: gwosc.HighRate}
			_, err := cl.Load(ctx, d)
			Expect(err).ToNot(HaveOccurred())
		}
		stats := cl.Stats()
		Expect(stats[0].Size).To(Equal(0))
		Expect(stats[1].Size).To(Equal(gwosc.HighRateEntries))
		Expect(stats[1].Evictions).To(Equal(uint64(1)))
	})

	It("Should not cache failures", func() {
		src := &countingSource{err: gwosc.ErrNoData}
		cl := gwosc.NewCachedLoader(src, true, nil)
		d := gwosc.Descriptor{Interferometer: "V1", Start: 1000, End: 1128, SampleRate: 4096}
		_, err := cl.Load(ctx, d)
		Expect(errors.Is(err, gwosc.ErrNoData)).To(BeTrue())
		_, err = cl.Load(ctx, d)
		Expect(err).To(HaveOccurred())
		Expect(src.calls.Load()).To(Equal(int32(2)))
	})
	It("Should finish a shared load when the caller that started it goes away", func() {
		src := &countingSource{started: make(chan struct{}, 1), release: make(chan struct{})}
		cl := gwosc.NewCachedLoader(src, false, nil)
		d := gwosc.Descriptor{Interferometer: "H1", Start: 1000, End: 1128, SampleRate: 4096}

		first, cancel := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := cl.Load(first, d)
			firstErr <- err
		}()
		Eventually(src.started).Should(Receive())

		type loaded struct {
			s   *gwosc.Strain
			err error
		}
		second := make(chan loaded, 1)
		go func() {
			s, err := cl.Load(ctx, d)
			second <- loaded{s, err}
		}()

		cancel()
		Eventually(firstErr).Should(Receive(MatchError(context.Canceled)))

		close(src.release)
		var got loaded
		Eventually(second).Should(Receive(&got))
		Expect(got.err).ToNot(HaveOccurred())
		Expect(got.s.Descriptor).To(Equal(d))
		Expect(src.cancelled.Load()).To(BeFalse())
	})
})
