package view_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

var _ = Describe("Settings", func() {
	It("aligns the load interval to 32 s blocks", func() {
		s := view.NewSettings("L1", 1187008882.4, 4, 4096, false)
		Expect(s.Block).To(Equal(32.0))
		Expect(s.Start).To(Equal(1187008832.0))
		Expect(s.End).To(Equal(1187008960.0))
		Expect(s.PlotStart).To(near(1187008880.4))
		Expect(s.PlotEnd).To(near(1187008884.4))
		Expect(s.PlotEdge - s.PlotEnd).To(near(1.0 / 4096))
		Expect(s.Epoch).To(Equal(1187008882.0))
		Expect(s.Major).To(Equal(0.5))
		Expect(s.T0ISO).To(Equal("2017-08-17T12:41:04.400"))
		Expect(s.T0Label()).To(Equal("1187008882.4"))
	})

	It("uses wide blocks depending on the rate", func() {
		low := view.NewSettings("L1", 1187008882.4, 4, 4096, true)
		Expect(low.Block).To(Equal(512.0))
		high := view.NewSettings("L1", 1187008882.4, 4, 16384, true)
		Expect(high.Block).To(Equal(256.0))
		Expect(high.Start).To(Equal(1187008768.0))
		Expect(high.End).To(Equal(1187009024.0))
	})

	It("switches the time axis for wide plots", func() {
		s := view.NewSettings("L1", 1187008882.4, 64, 4096, false)
		Expect(s.Epoch).To(Equal(1187008880.0))
		Expect(s.Major).To(Equal(5.0))

		ax := s.TimeAxis()
		Expect(ax.Major).To(Equal(5.0))
		Expect(ax.MinorDivisions).To(BeZero())
		Expect(s.TimeAxisName()).To(HavePrefix("Time [seconds] from 1187008880 ("))
	})

	It("names the load interval axis after its whole-second epoch", func() {
		s := view.NewSettings("L1", 1187008882.4, 4, 4096, false)
		ax := s.BlockAxis()
		Expect(ax.Epoch).To(Equal(1187008882.0))
		Expect(ax.Start).To(Equal(s.Start))
		Expect(ax.End).To(Equal(s.End))
		Expect(ax.MinorDivisions).To(Equal(3))
		Expect(s.BlockAxisName()).To(Equal("Time [seconds] from 1187008882 (2017-08-17T12:41:04.000)"))
	})

	It("uses nice ticks and minor divisions for narrow plots", func() {
		ax := view.NewSettings("L1", 1000.5, 0.5, 4096, false).TimeAxis()
		Expect(ax.Major).To(BeZero())
		Expect(ax.MinorDivisions).To(Equal(5))
	})

	It("reports loads that cross an archive file boundary", func() {
		Expect(view.NewSettings("L1", 4096*100+10, 4, 4096, false).CrossesChunk()).To(BeTrue())
		Expect(view.NewSettings("L1", 4096*100+2000, 4, 4096, false).CrossesChunk()).To(BeFalse())
	})

	Describe("CropToPlot", func() {
		s := view.NewSettings("H1", 10, 2, 4, false)

		It("includes the edge sample", func() {
			ts := series.New(0, 4, make([]float64, 80))
			c := s.CropToPlot(ts)
			Expect(c.T0).To(Equal(9.0))
			Expect(c.Len()).To(Equal(9))
		})

		It("drops a missing edge sample", func() {
			data := make([]float64, 80)
			data[44] = math.NaN()
			c := s.CropToPlot(series.New(0, 4, data))
			Expect(c.Len()).To(Equal(8))
		})
	})

	It("derives rate dependent choices", func() {
		low := view.ForRate(4096)
		Expect(low.InitialFilter).To(Equal([2]float64{9.51, 1024}))
		Expect(low.InitialASD).To(Equal([2]float64{9.51, 1448}))
		Expect(low.InitialSpectrogram).To(Equal([2]float64{10, 1448}))

		high := view.ForRate(16384)
		Expect(high.ASDDetents).To(HaveLen(39))
		Expect(high.InitialSpectrogram).To(Equal([2]float64{10, 5793}))
	})
})
