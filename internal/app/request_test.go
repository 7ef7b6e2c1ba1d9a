package app_test

import (
	"net/url"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/app"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/progress"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
)

var _ = Describe("ParseRequest", func() {
	It("offers the initial choices", func() {
		req, err := app.ParseRequest(url.Values{})
		Expect(err).ToNot(HaveOccurred())
		Expect(req.Interferometer).To(Equal("L1"))
		Expect(req.T0).To(Equal(view.InitialT0))
		Expect(req.Width).To(Equal(4.0))
		Expect(req.SampleRate).To(Equal(4096))
		Expect(req.WideBlocks).To(BeFalse())
		Expect(req.Show).To(Equal(map[string]bool{
			view.NameRaw:          true,
			view.NameAvailability: false,
			view.NameFiltered:     false,
			view.NameASD:          false,
			view.NameSpectrogram:  false,
			view.NameQTransform:   true,
		}))
		Expect(req.Views).To(HaveLen(len(view.Names)))
	})

	It("reads explicit choices", func() {
		id := progress.NewSessionID()
		req, err := app.ParseRequest(url.Values{
			"ifo":           {"V1"},
			"t0":            {" 2017-08-17 12:41:04 "},
			"width":         {"0.5"},
			"rate":          {"16384"},
			"wide":          {"true"},
			"show_filtered": {"true"},
			"filt_lo":       {"32"},
			"session":       {id},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(req.Interferometer).To(Equal("V1"))
		Expect(req.T0).To(Equal("2017-08-17 12:41:04"))
		Expect(req.Width).To(Equal(0.5))
		Expect(req.SampleRate).To(Equal(16384))
		Expect(req.WideBlocks).To(BeTrue())
		Expect(req.Show[view.NameFiltered]).To(BeTrue())
		Expect(req.Views[view.NameFiltered].(view.Filtered).Lo).To(Equal(32.0))
		Expect(req.Session).To(Equal(id))
	})

	It("keeps the raw view on", func() {
		req, err := app.ParseRequest(url.Values{"show_raw": {"false"}})
		Expect(err).ToNot(HaveOccurred())
		Expect(req.Show[view.NameRaw]).To(BeTrue())
	})

	It("validates only the views that are shown", func() {
		_, err := app.ParseRequest(url.Values{"filt_lo": {"33"}})
		Expect(err).ToNot(HaveOccurred())

		_, err = app.ParseRequest(url.Values{"filt_lo": {"33"}, "show_filtered": {"1"}})
		Expect(errors.Is(err, app.ErrBadRequest)).To(BeTrue())
		Expect(errors.Is(err, view.ErrInvalidOption)).To(BeTrue())
	})

	DescribeTable("rejects choices that are not on offer",
		func(key, value string) {
			_, err := app.ParseRequest(url.Values{key: {value}})
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, app.ErrBadRequest)).To(BeTrue())
		},
		Entry("interferometer", "ifo", "G1"),
		Entry("width", "width", "3"),
		Entry("sample rate", "rate", "8000"),
		Entry("wide blocks", "wide", "maybe"),
		Entry("show flag", "show_asd", "perhaps"),
		Entry("session id", "session", "abc"),
	)
})
