package gwosc_test

import (
	"bytes"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/gwosc"
)

func gzipText(text string) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(text))
	Expect(err).ToNot(HaveOccurred())
	Expect(zw.Close()).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("ParseText", func() {
	const text = "# Gravitational wave strain for L1\n# starting GPS 1187008512\n" +
		"1.5e-21\n-2.25e-21\nnan\n\n3e-22\n"

	It("Should parse plain text and skip headers", func() {
		got, err := gwosc.ParseText(strings.NewReader(text))
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(HaveLen(4))
		Expect(got[0]).To(Equal(1.5e-21))
		Expect(got[1]).To(Equal(-2.25e-21))
		Expect(math.IsNaN(got[2])).To(BeTrue())
		Expect(got[3]).To(Equal(3e-22))
	})

	It("Should detect gzip input", func() {
		got, err := gwosc.ParseText(bytes.NewReader(gzipText(text)))
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(HaveLen(4))
		Expect(got[3]).To(Equal(3e-22))
	})

	It("Should accept empty input", func() {
		got, err := gwosc.ParseText(strings.NewReader(""))
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(BeEmpty())
	})

	It("Should report the offending line", func() {
		_, err := gwosc.ParseText(strings.NewReader("# h\n1\nbogus\n"))
		Expect(errors.Is(err, gwosc.ErrMalformed)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("line 3"))
	})
})
