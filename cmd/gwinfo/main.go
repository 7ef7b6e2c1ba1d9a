// Command gwinfo prints what the glitch plotter would load for a time:
// the data settings, the availability of the loaded strain and its
// amplitude statistics.
//
// Usage:
//
//	gwinfo [flags] t0
//
// t0 is a GPS time or an ISO 8601 UTC date.
//
// Examples:
//
//	gwinfo 1187008882.4
//	gwinfo -ifo H1 -width 16 "2017-08-17 12:41:04"
//	gwinfo -view qtransform -out gw170817.png 1187008882.4
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/window"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/config"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/gpstime"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/gwosc"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
	freqstats "github.com/GNiklasch/GWO-glitch-visualization/stats/frequency"
	timestats "github.com/GNiklasch/GWO-glitch-visualization/stats/time"
)

func main() {
	ifo := flag.String("ifo", view.DefaultInterferometer, "interferometer (H1, L1 or V1)")
	width := flag.Float64("width", view.InitialWidth, "plot width in seconds")
	rate := flag.Int("rate", view.SampleRates[0], "sample rate (4096 or 16384)")
	wide := flag.Bool("wide", false, "load an extra-wide cache block")
	configPath := flag.String("config", "", "path to a YAML config file")
	viewName := flag.String("view", "", "also render this view (raw, availability, filtered, asd, spectrogram, qtransform)")
	out := flag.String("out", "panel.png", "where -view writes its PNG")
	timeout := flag.Duration("timeout", 10*time.Minute, "give up loading after this long")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gwinfo [flags] t0\n\n")
		fmt.Fprintf(os.Stderr, "Prints data settings, availability and strain statistics around t0.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gwinfo 1187008882.4\n")
		fmt.Fprintf(os.Stderr, "  gwinfo -ifo H1 -width 16 \"2017-08-17 12:41:04\"\n")
		fmt.Fprintf(os.Stderr, "  gwinfo -view qtransform -out gw170817.png 1187008882.4\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	fs := afero.NewOsFs()
	cfg, err := config.LoadAndValidate(fs, *configPath)
	if err != nil {
		fail(err)
	}

	win, err := cfg.Render.WindowType()
	if err != nil {
		fail(err)
	}

	t0, err := gpstime.AnyToGPS(flag.Arg(0))
	if err != nil {
		fail(err)
	}
	if _, ok := view.CalibLow(*ifo); !ok {
		fail(errors.Newf("unknown interferometer %q", *ifo))
	}
	s := view.NewSettings(*ifo, t0, *width, *rate, *wide)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client := gwosc.NewClient(cfg.GWOSC.BaseURL,
		gwosc.WithTimeout(cfg.GWOSC.Timeout),
		gwosc.WithRetries(cfg.GWOSC.MaxRetries, cfg.GWOSC.RetryBackoff),
	)
	loader := gwosc.NewLoader(client, cfg.GWOSC.Runs, gwosc.WithParallelism(cfg.GWOSC.Parallelism))
	ctx = gwosc.WithProgress(ctx, func(ev gwosc.Event) {
		if ev.Stage == gwosc.StageChunk {
			fmt.Fprintf(os.Stderr, "fetched %d/%d files\n", ev.Done, ev.Total)
		}
	})
	strain, err := loader.Load(ctx, s.Descriptor())
	if err != nil {
		fail(err)
	}

	if err := report(os.Stdout, s, strain, win); err != nil {
		fail(err)
	}

	if *viewName != "" {
		if err := writePanel(ctx, fs, *out, *viewName, s, strain, cfg.Render); err != nil {
			fail(err)
		}
		fmt.Printf("\nwrote %s view to %s\n", *viewName, *out)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// report prints the settings, the unusable stretches of the loaded strain
// and statistics over the load and plot intervals. The spectrum rows use
// win for the ASD segments.
func report(w io.Writer, s view.Settings, strain *gwosc.Strain, win window.Type) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Interferometer", s.Interferometer},
		{"t0 (GPS)", s.T0Label()},
		{"t0 (UTC)", s.T0ISO},
		{"Sample rate", fmt.Sprintf("%d samples/s", s.SampleRate)},
		{"Cache block", fmt.Sprintf("%g s", s.Block)},
		{"Load interval", fmt.Sprintf("%g ... %g", s.Start, s.End)},
		{"Plot interval", fmt.Sprintf("%g ... %g", s.PlotStart, s.PlotEnd)},
		{"Axis epoch", fmt.Sprintf("%g", s.Epoch)},
		{"Archive files", fmt.Sprintf("%d", strain.Files)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return errors.Wrap(err, "write settings")
		}
	}

	gaps := strain.Flag.Inactive()
	unusable := "none"
	if len(gaps) > 0 {
		unusable = gaps.String()
	}
	if _, err := fmt.Fprintf(tw, "Unusable\t%s\n\n", unusable); err != nil {
		return errors.Wrap(err, "write availability")
	}

	if _, err := fmt.Fprintf(tw, "Interval\tSamples\tCoverage\tGap runs\tRMS\tPeak\tPeak time\n"); err != nil {
		return errors.Wrap(err, "write header")
	}
	if _, err := fmt.Fprintf(tw, "--------\t-------\t--------\t--------\t---\t----\t---------\n"); err != nil {
		return errors.Wrap(err, "write header")
	}
	intervals := []struct {
		name string
		ts   *series.TimeSeries
	}{
		{"load", strain.Series.Crop(s.Start, s.End)},
		{"plot", s.CropToPlot(strain.Series)},
	}
	for _, iv := range intervals {
		st := timestats.Calculate(iv.ts.Data)
		peakPos := st.MaxPos
		if -st.Min > st.Max {
			peakPos = st.MinPos
		}
		peakTime := "-"
		if st.Valid > 0 {
			peakTime = fmt.Sprintf("%.4f", iv.ts.TimeAt(peakPos))
		}
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%d\t%.3e\t%.3e\t%s\n",
			iv.name, st.Length, 100*st.Coverage(), st.GapRuns, st.RMS, st.Peak, peakTime); err != nil {
			return errors.Wrap(err, "write statistics")
		}
	}

	if _, err := fmt.Fprintln(tw); err != nil {
		return errors.Wrap(err, "write spectrum")
	}
	for _, r := range spectrumRows(s, s.CropToPlot(strain.Series), win) {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return errors.Wrap(err, "write spectrum")
		}
	}
	return tw.Flush()
}

// spectrumRows describes the ASD of the plot interval over the calibrated
// band.
func spectrumRows(s view.Settings, ts *series.TimeSeries, win window.Type) [][2]string {
	asd, err := ts.ASD(series.WithWindow(win))
	if err != nil || math.IsNaN(asd.Max()) {
		return [][2]string{{"Spectrum", "unavailable, the plot interval holds a gap"}}
	}
	lo, _ := view.CalibLow(s.Interferometer)
	st := freqstats.Calculate(freqstats.Spectrum{F0: asd.F0, DF: asd.DF, Data: asd.Data}, lo, float64(s.SampleRate)/2)
	info := window.Info(win)
	return [][2]string{
		{"ASD window", fmt.Sprintf("%s (ENBW %.2f bins)", info.Name, info.ENBW)},
		{"Spectrum band", fmt.Sprintf("%g ... %g Hz", st.Lo, st.Hi)},
		{"ASD peak", fmt.Sprintf("%.3e Hz^-1/2 at %g Hz", st.Peak, st.PeakFreq)},
		{"ASD floor", fmt.Sprintf("%.3e Hz^-1/2", st.Floor)},
		{"Centroid", fmt.Sprintf("%.1f Hz (spread %.1f Hz)", st.Centroid, st.Spread)},
		{"Rolloff", fmt.Sprintf("%.1f Hz", st.Rolloff)},
		{"Flatness", fmt.Sprintf("%.3f", st.Flatness)},
		{"Band RMS", fmt.Sprintf("%.3e", st.BandRMS)},
	}
}

// writePanel renders one view with its initial options and writes the PNG.
func writePanel(ctx context.Context, fs afero.Fs, path, name string, s view.Settings, strain *gwosc.Strain, rc config.RenderConfig) error {
	v, err := view.Parse(name, nil, s.SampleRate)
	if err != nil {
		return err
	}
	win, err := rc.WindowType()
	if err != nil {
		return err
	}
	r := view.NewRenderer(view.WithSize(rc.Width, rc.RowHeight), view.WithWindow(win))
	p, err := r.Render(ctx, v, view.NewInput(s, strain))
	if err != nil && p == nil {
		return err
	}
	for _, m := range p.Messages {
		fmt.Fprintf(os.Stderr, "%s: %s\n", m.Level, m.Text)
	}
	if !p.HasImage() {
		return errors.Newf("the %s view drew no figure", name)
	}
	return afero.WriteFile(fs, path, p.PNG, 0o644)
}
