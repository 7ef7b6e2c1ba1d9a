package gwosc

import (
	"fmt"
	"math"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/cache"
	"github.com/GNiklasch/GWO-glitch-visualization/series"
)

// FudgeSeconds is added to the end of every requested interval. Asking for
// a little more than a chunk boundary keeps the archive from dropping the
// last file when the interval ends exactly on that boundary.
const FudgeSeconds = 1.0 / 64

// ChunkSize is the duration of one archive file in seconds.
const ChunkSize = 4096

// FlagRate is the rate in Hz at which loaded strain is checked for gaps.
const FlagRate = 8

// Descriptor identifies a loaded stretch of strain data. It is the prefix
// of every derived cache key.
type Descriptor struct {
	Interferometer string  `json:"interferometer"`
	Start          float64 `json:"t_start"`
	End            float64 `json:"t_end"`
	SampleRate     int     `json:"sample_rate"`
}

// Key returns a stable hash of the descriptor.
func (d Descriptor) Key() string {
	return cache.Key(d.Interferometer, d.Start, d.End, d.SampleRate)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s [%g, %g) @ %d Hz", d.Interferometer, d.Start, d.End, d.SampleRate)
}

// Chunks returns how many archive files the interval touches.
func (d Descriptor) Chunks() int {
	first := math.Floor(d.Start / ChunkSize)
	last := math.Floor(d.End / ChunkSize)
	return int(last-first) + 1
}

// StrainFile is one entry of the archive's links listing.
type StrainFile struct {
	URL        string  `json:"url"`
	GPSStart   float64 `json:"GPSstart"`
	Duration   float64 `json:"duration"`
	Format     string  `json:"format"`
	SampleRate int     `json:"sampling_rate"`
	Detector   string  `json:"detector"`
}

// End returns the GPS end of the file.
func (f StrainFile) End() float64 { return f.GPSStart + f.Duration }

type linksResponse struct {
	Strain []StrainFile `json:"strain"`
}

// Strain is a loaded interval together with its availability flag.
type Strain struct {
	Descriptor Descriptor
	Series     *series.TimeSeries
	Flag       series.Flag
	// Files is the number of archive files stitched together.
	Files int
}
