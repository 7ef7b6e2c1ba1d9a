package gwosc_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/gwosc"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/testutil"
)

var _ = Describe("URLCache", func() {
	var uc *gwosc.URLCache

	BeforeEach(func() {
		var err error
		uc, err = gwosc.OpenURLCache("", time.Hour)
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(uc.Close)
	})

	It("Should miss unknown URLs", func() {
		_, ok, err := uc.Get("https://example.org/none")
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("Should return the stored samples bit for bit", func() {
		samples := testutil.DeterministicNoise(3, 1e-21, 4096)
		samples[17] = math.NaN()
		Expect(uc.Put("https://example.org/a.txt.gz", samples)).To(Succeed())

		got, ok, err := uc.Get("https://example.org/a.txt.gz")
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(got).To(HaveLen(len(samples)))
		for i := range samples {
			Expect(math.Float64bits(got[i])).To(Equal(math.Float64bits(samples[i])))
		}
	})

	It("Should store empty files", func() {
		Expect(uc.Put("u", nil)).To(Succeed())
		got, ok, err := uc.Get("u")
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(got).To(BeEmpty())
	})
})
