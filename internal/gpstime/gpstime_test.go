package gpstime_test

import (
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/gpstime"
)

var _ = Describe("GPS time", func() {
	Describe("GPSToISOT", func() {
		It("Should format the GW170817 timestamp", func() {
			Expect(gpstime.GPSToISOT(1187008882.4)).To(Equal("2017-08-17T12:41:04.400"))
		})
		It("Should map the epoch onto itself", func() {
			Expect(gpstime.GPSToISOT(0)).To(Equal("1980-01-06T00:00:00.000"))
		})
		It("Should render an inserted leap second as second 60", func() {
			Expect(gpstime.GPSToISOT(1167264017.5)).To(Equal("2016-12-31T23:59:60.500"))
			Expect(gpstime.GPSToISOT(1167264018)).To(Equal("2017-01-01T00:00:00.000"))
		})
	})

	Describe("LeapSeconds", func() {
		It("Should count the table entries up to the given time", func() {
			Expect(gpstime.LeapSeconds(0)).To(Equal(0))
			Expect(gpstime.LeapSeconds(1167264017)).To(Equal(17))
			Expect(gpstime.LeapSeconds(1187008882)).To(Equal(18))
		})
	})

	Describe("FromUTC", func() {
		It("Should invert ToUTC away from leap seconds", func() {
			for _, gps := range []float64{0, 46828802, 1126259462.4, 1187008882.4, 1368975618} {
				Expect(gpstime.FromUTC(gpstime.ToUTC(gps))).To(BeNumerically("~", gps, 1e-3))
			}
		})
		It("Should add the leap seconds accumulated so far", func() {
			t := time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
			Expect(gpstime.FromUTC(t)).To(Equal(1167264018.0))
		})
	})

	Describe("AnyToGPS", func() {
		DescribeTable("Accepted spellings",
			func(in string, want float64) {
				got, err := gpstime.AnyToGPS(in)
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(BeNumerically("~", want, 1e-3))
			},
			Entry("GPS seconds", "1187008882.4", 1187008882.4),
			Entry("padded GPS seconds", "  1187008882.4 ", 1187008882.4),
			Entry("ISO with T", "2017-08-17T12:41:04.4", 1187008882.4),
			Entry("ISO with space", "2017-08-17 12:41:04.400", 1187008882.4),
			Entry("ISO with trailing Z", "2017-08-17T12:41:04.4Z", 1187008882.4),
			Entry("ISO without seconds", "2017-08-17T12:41", 1187008878.0),
			Entry("date only", "2017-01-01", 1167264018.0),
		)
		It("Should reject text that is neither a date nor a number", func() {
			_, err := gpstime.AnyToGPS("118700888x")
			Expect(errors.Is(err, gpstime.ErrInvalidTimestamp)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("118700888x"))
		})
		It("Should reject empty input and non-finite numbers", func() {
			for _, in := range []string{"", "   ", "NaN", "inf"} {
				_, err := gpstime.AnyToGPS(in)
				Expect(err).To(HaveOccurred())
			}
		})
	})
})
