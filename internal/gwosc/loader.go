package gwosc

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/config"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

// Archive is the subset of Client a Loader needs.
type Archive interface {
	Links(ctx context.Context, dataset, ifo string, start, end float64) ([]StrainFile, error)
	FetchSamples(ctx context.Context, url string) ([]float64, error)
}

// Loader assembles strain for a descriptor from archive files.
type Loader struct {
	archive     Archive
	runs        []config.RunConfig
	parallelism int
	logger      *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithParallelism bounds the number of concurrent file downloads.
func WithParallelism(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.parallelism = n
		}
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader over the given observing runs.
func NewLoader(archive Archive, runs []config.RunConfig, opts ...LoaderOption) *Loader {
	l := &Loader{
		archive:     archive,
		runs:        runs,
		parallelism: 2,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches strain for d. The returned series starts at d.Start and
// extends FudgeSeconds past d.End; samples no archive file covers are NaN.
func (l *Loader) Load(ctx context.Context, d Descriptor) (*Strain, error) {
	if d.Interferometer == "" || d.SampleRate <= 0 || !(d.End > d.Start) {
		return nil, errors.Wrapf(ErrInvalidDescriptor, "%s", d)
	}

	end := d.End + FudgeSeconds
	dataset, err := l.dataset(d)
	if err != nil {
		return nil, err
	}

	report(ctx, Event{Stage: StageLinks})
	files, err := l.archive.Links(ctx, dataset, d.Interferometer, d.Start, end)
	if err != nil {
		report(ctx, Event{Stage: StageFailure})
		return nil, errors.Wrapf(err, "list %s files", dataset)
	}
	files = usable(files, d, end)
	if len(files) == 0 {
		report(ctx, Event{Stage: StageFailure})
		return nil, errors.Wrapf(ErrNoData, "%s", d)
	}

	l.logger.Info("fetching strain",
		zap.String("ifo", d.Interferometer),
		zap.Float64("t_start", d.Start),
		zap.Float64("t_end", d.End),
		zap.Int("sample_rate", d.SampleRate),
		zap.Int("files", len(files)),
	)

	chunks := make([][]float64, len(files))
	var done atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)
	for i, f := range files {
		g.Go(func() error {
			samples, err := l.archive.FetchSamples(gctx, f.URL)
			if err != nil {
				return errors.Wrapf(err, "fetch %s", f.URL)
			}
			chunks[i] = samples
			report(ctx, Event{Stage: StageChunk, Done: int(done.Add(1)), Total: len(files), URL: f.URL})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		report(ctx, Event{Stage: StageFailure})
		return nil, err
	}

	ts := stitch(d, end, files, chunks)
	flag := series.Availability(d.Interferometer+":available", ts, d.Start, d.End-d.Start, 1.0/FlagRate)

	report(ctx, Event{Stage: StageLoaded, Done: len(files), Total: len(files)})
	l.logger.Debug("strain loaded",
		zap.String("ifo", d.Interferometer),
		zap.Int("samples", ts.Len()),
		zap.Float64("available", flag.Active.Duration()),
	)

	return &Strain{Descriptor: d, Series: ts, Flag: flag, Files: len(files)}, nil
}

func (l *Loader) dataset(d Descriptor) (string, error) {
	for _, r := range l.runs {
		if d.Start < r.End && d.End > r.Start {
			if name, ok := r.Datasets[d.SampleRate]; ok {
				return name, nil
			}
			return "", errors.Wrapf(ErrNoRun, "run %s has no %d Hz dataset", r.Name, d.SampleRate)
		}
	}
	return "", errors.Wrapf(ErrNoRun, "%s", d)
}

// usable keeps the text files at the descriptor's rate and detector that
// overlap [d.Start, end).
func usable(files []StrainFile, d Descriptor, end float64) []StrainFile {
	out := files[:0:0]
	seen := make(map[string]bool)
	for _, f := range files {
		if f.Format != "txt" || f.SampleRate != d.SampleRate || seen[f.URL] {
			continue
		}
		if f.Detector != "" && f.Detector != d.Interferometer {
			continue
		}
		if f.End() <= d.Start || f.GPSStart >= end {
			continue
		}
		seen[f.URL] = true
		out = append(out, f)
	}
	return out
}

// stitch copies every file's samples onto a NaN-filled grid starting at
// d.Start.
func stitch(d Descriptor, end float64, files []StrainFile, chunks [][]float64) *series.TimeSeries {
	rate := float64(d.SampleRate)
	n := int(math.Round((end - d.Start) * rate))
	data := make([]float64, n)
	for i := range data {
		data[i] = math.NaN()
	}

	for i, f := range files {
		offset := int(math.Round((f.GPSStart - d.Start) * rate))
		src := chunks[i]
		lo := max(0, -offset)
		hi := min(len(src), n-offset)
		if lo < hi {
			copy(data[offset+lo:offset+hi], src[lo:hi])
		}
	}

	return series.New(d.Start, rate, data)
}
