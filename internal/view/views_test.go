package view_test

import (
	"bytes"
	"image/png"
	"net/url"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/window"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

func expectPNG(p *view.Panel) {
	ExpectWithOffset(1, p.HasImage()).To(BeTrue())
	_, err := png.Decode(bytes.NewReader(p.PNG))
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
}

var _ = Describe("Options", func() {
	It("falls back to the initial choices", func() {
		v, err := view.Parse(view.NameFiltered, url.Values{}, 4096)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(view.Filtered{Lo: 9.51, Hi: 1024, Whiten: true, VLine: true}))

		q, err := view.ParseQTransform(url.Values{})
		Expect(err).ToNot(HaveOccurred())
		Expect(q.Q).To(Equal(11.3))
		Expect(q.Cutoff).To(Equal(25.5))
		Expect(q.Colormap).To(Equal("viridis"))

		sp, err := view.ParseSpectrogram(url.Values{}, view.ForRate(4096))
		Expect(err).ToNot(HaveOccurred())
		Expect(sp.Colormap).To(Equal("jetstream"))
		Expect([]int{sp.VLow, sp.VHigh}).To(Equal([]int{-26, -19}))
	})

	It("reads explicit choices", func() {
		q := url.Values{
			"asd_lo":      {"16"},
			"asd_hi":      {"512"},
			"asd_offset":  {"-1.5"},
			"asd_lighten": {"on"},
		}
		v, err := view.ParseASD(q, view.ForRate(4096))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Lo).To(Equal(16.0))
		Expect(v.Offset).To(Equal(-1.5))
		Expect(v.Lighten).To(BeTrue())
		Expect(v.Validate(view.ForRate(4096))).To(Succeed())
	})

	It("accepts colormap menu names", func() {
		v, err := view.ParseSpectrogram(url.Values{"spec_cmap": {"Reds reversed (GwitchHunters)"}}, view.ForRate(4096))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Colormap).To(Equal("Reds_r"))
	})

	It("rejects malformed and unavailable choices", func() {
		_, err := view.ParseFiltered(url.Values{"filt_lo": {"ten"}}, view.ForRate(4096))
		Expect(errors.Is(err, view.ErrInvalidOption)).To(BeTrue())

		_, err = view.Parse("histogram", url.Values{}, 4096)
		Expect(errors.Is(err, view.ErrInvalidOption)).To(BeTrue())

		rs := view.ForRate(4096)
		Expect(errors.Is(view.Filtered{Lo: 7, Hi: 64}.Validate(rs), view.ErrInvalidOption)).To(BeTrue())
		Expect(errors.Is(view.Filtered{Lo: 64, Hi: 32}.Validate(rs), view.ErrInvalidOption)).To(BeTrue())
		Expect(errors.Is(view.Filtered{Lo: 4096, Hi: 4096}.Validate(rs), view.ErrInvalidOption)).To(BeTrue())
		Expect(view.Filtered{Lo: 4096, Hi: 4096}.Validate(view.ForRate(16384))).To(Succeed())
		Expect(errors.Is(view.ASD{Lo: 16, Hi: 512, YLow: -19, YHigh: -26}.Validate(rs), view.ErrInvalidOption)).To(BeTrue())
		Expect(errors.Is(view.ASD{Lo: 16, Hi: 512, YLow: -26, YHigh: -19, Offset: 2}.Validate(rs), view.ErrInvalidOption)).To(BeTrue())
		Expect(errors.Is(view.QTransform{Q: 10, Cutoff: 25.5, Colormap: "viridis"}.Validate(rs), view.ErrInvalidOption)).To(BeTrue())
		Expect(errors.Is(view.QTransform{Q: 8, Cutoff: 25.5, Colormap: "rainbow"}.Validate(rs), view.ErrInvalidOption)).To(BeTrue())
	})

	It("names the skip messages", func() {
		p := view.Skip(view.ASD{})
		Expect(p.Skipped).To(BeTrue())
		Expect(messages(p, view.LevelInfo)).To(ConsistOf("(Skipping ASD spectrum plot.)"))
		Expect(view.Skip(view.QTransform{}).Messages[0].Text).To(Equal("(Skipping Q-transform rendering.)"))
	})
})

var _ = Describe("Views", func() {
	var r *view.Renderer

	BeforeEach(func() {
		r = view.NewRenderer(view.WithSize(600, 60))
	})

	Describe("Raw", func() {
		It("plots the plot interval", func() {
			p, err := r.Render(ctx, view.Raw{VLine: true}, testInput(4))
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Title).To(Equal("H1, around 1064 (1980-01-06T00:17:44.000 UTC), raw"))
			expectPNG(p)
		})

		It("stops on a data gap", func() {
			p, err := r.Render(ctx, view.Raw{}, testInput(4, series.Segment{Start: 1063, End: 1063.5}))
			Expect(errors.Is(err, view.ErrDataGap)).To(BeTrue())
			Expect(p.HasImage()).To(BeFalse())
			Expect(messages(p, view.LevelError)).To(ConsistOf(HavePrefix("t0 is too close to or inside a data gap.")))
		})
	})

	Describe("Availability", func() {
		It("plots the flag and lists unusable data", func() {
			p, err := r.Render(ctx, view.Availability{}, testInput(4, series.Segment{Start: 1000, End: 1010}))
			Expect(err).ToNot(HaveOccurred())
			expectPNG(p)
			Expect(messages(p, view.LevelInfo)).To(ConsistOf("Unusable: [1000 ... 1010)"))
		})

		It("steps between usable and unusable", func() {
			x, y := view.FlagSteps(series.Flag{
				Known:  series.SegmentList{{Start: 0, End: 4}},
				Active: series.SegmentList{{Start: 0, End: 1}, {Start: 2, End: 4}},
			})
			Expect(x).To(Equal([]float64{0, 1, 1, 2, 2, 4, 4}))
			Expect(y).To(Equal([]float64{1, 1, 0, 0, 1, 1, 0}))
		})
	})

	Describe("Filtered", func() {
		It("band-passes and warns below the calibrated range", func() {
			p, err := r.Render(ctx, view.Filtered{Lo: 8, Hi: 181, Whiten: true}, testInput(4))
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Title).To(HaveSuffix(", whitened, band pass: 8 - 181 Hz"))
			expectPNG(p)
			Expect(messages(p, view.LevelWarning)).To(ConsistOf("Caution: Strain data below 10 Hz from H1 aren't calibrated."))
		})

		It("asks for a wider range when the limits coincide", func() {
			p, err := r.Render(ctx, view.Filtered{Lo: 64, Hi: 64}, testInput(4))
			Expect(err).ToNot(HaveOccurred())
			Expect(p.HasImage()).To(BeFalse())
			Expect(messages(p, view.LevelWarning)).To(ConsistOf("Please make the frequency range wider."))
		})

		It("reports a gap in the padding", func() {
			p, err := r.Render(ctx, view.Filtered{Lo: 32, Hi: 181}, testInput(4, series.Segment{Start: 1070, End: 1071}))
			Expect(err).ToNot(HaveOccurred())
			Expect(p.HasImage()).To(BeFalse())
			Expect(messages(p, view.LevelError)).To(ConsistOf(HaveSuffix("unable to filter the data. Please try a shorter time interval or try changing the requested timestamp.")))
		})
	})

	Describe("ASD", func() {
		It("adds a labelled background spectrum", func() {
			v := view.ASD{Lo: 16, Hi: 362, YLow: -24, YHigh: -19, Offset: -6}
			p, err := r.Render(ctx, v, testInput(4))
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Title).To(Equal("H1, during 4 s around 1064 GPS (1980-01-06T00:17:44.000 UTC)"))
			expectPNG(p)
			Expect(p.Messages).To(BeEmpty())
		})

		It("warns when the background falls into a gap", func() {
			v := view.ASD{Lo: 8, Hi: 362, YLow: -24, YHigh: -19, Offset: 12}
			p, err := r.Render(ctx, v, testInput(4, series.Segment{Start: 1075, End: 1077}))
			Expect(err).ToNot(HaveOccurred())
			expectPNG(p)
			Expect(messages(p, view.LevelWarning)).To(ConsistOf(
				"Caution: Strain data below 10 Hz from H1 aren't calibrated.",
				"t0 is too close to a data gap, unable to include a background spectrum. Try changing the time offset.",
			))
		})

		It("estimates with the renderer's window", func() {
			Expect(r.Window()).To(Equal(window.TypeHann))
			tukey := view.NewRenderer(view.WithSize(600, 60), view.WithWindow(window.TypeTukey))
			Expect(tukey.Window()).To(Equal(window.TypeTukey))

			v := view.ASD{Lo: 16, Hi: 362, YLow: -24, YHigh: -19, Offset: -6}
			in := testInput(4)
			hp, err := r.Render(ctx, v, in)
			Expect(err).ToNot(HaveOccurred())
			tp, err := tukey.Render(ctx, v, in)
			Expect(err).ToNot(HaveOccurred())
			expectPNG(tp)
			Expect(tp.PNG).ToNot(Equal(hp.PNG))
		})
	})

	Describe("Spectrogram", func() {
		It("renders and memoizes", func() {
			v := view.Spectrogram{Lo: 10, Hi: 362, VLow: -24, VHigh: -19, Grid: true, VLine: true, Colormap: "jetstream"}
			in := testInput(4)
			p, err := r.Render(ctx, v, in)
			Expect(err).ToNot(HaveOccurred())
			expectPNG(p)

			v.Colormap = "Blues_r"
			_, err = r.Render(ctx, v, in)
			Expect(err).ToNot(HaveOccurred())
			Expect(r.Stats()[0].Hits).To(BeEquivalentTo(1))
			Expect(r.Stats()[0].Misses).To(BeEquivalentTo(1))
		})

		It("limits the stride to an eighth of the width", func() {
			Expect(view.Spectrogram{}.Stride(0.5)).To(Equal(0.0625))
			Expect(view.Spectrogram{}.Stride(4)).To(Equal(0.125))
		})
	})

	Describe("QTransform", func() {
		v := view.QTransform{Q: 11.3, Cutoff: 25.5, Grid: true, VLine: true, Colormap: "viridis"}

		It("sizes the frequency grid by rate and Q", func() {
			Expect(v.FrequencyRows(4096)).To(Equal(600))
			Expect(v.FrequencyRows(16384)).To(Equal(780))
			Expect(view.QTransform{Q: 64}.FrequencyRows(4096)).To(Equal(1536))
		})

		DescribeTable("backs off from padding near gaps",
			func(gap series.Segment, level int) {
				in := testInput(4, gap)
				_, got, err := v.Transform(in.Strain.Series, in.Strain.Descriptor, in.Settings)
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(Equal(level))
			},
			Entry("full padding", series.Segment{Start: 1000, End: 1001}, 0),
			Entry("reduced padding", series.Segment{Start: 1080, End: 1082}, 1),
			Entry("no padding", series.Segment{Start: 1070, End: 1071}, 2),
		)

		It("fails inside a gap", func() {
			in := testInput(4, series.Segment{Start: 1063, End: 1063.5})
			_, _, err := v.Transform(in.Strain.Series, in.Strain.Descriptor, in.Settings)
			Expect(errors.Is(err, view.ErrDataGap)).To(BeTrue())

			p, err := r.Render(ctx, v, in)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.HasImage()).To(BeFalse())
			Expect(messages(p, view.LevelError)).To(ConsistOf(HavePrefix("t0 is too close to (or inside) a data gap, unable to compute the Q-transform.")))
		})

		It("renders with a caveat after backing off, and memoizes", func() {
			in := testInput(4, series.Segment{Start: 1080, End: 1082})
			p, err := r.Render(ctx, v, in)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.Title).To(Equal("H1, around 1064 (1980-01-06T00:17:44.000 UTC), Q=11.3"))
			expectPNG(p)
			Expect(messages(p, view.LevelWarning)).To(ConsistOf(HavePrefix("t0 is close to a data gap, thus the Q-transform could not look far beyond")))

			_, err = r.Render(ctx, v, in)
			Expect(err).ToNot(HaveOccurred())
			Expect(r.Stats()[1].Hits).To(BeEquivalentTo(1))
		})
	})
})
