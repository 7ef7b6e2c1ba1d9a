package config

import (
	"fmt"
	"time"

	"github.com/GNiklasch/GWO-glitch-visualization/dsp/window"
)

// Config is the root configuration for the glitch plotter.
type Config struct {
	Server    ServerConfig `yaml:"server"`
	GWOSC     GWOSCConfig  `yaml:"gwosc"`
	URLCache  URLCache     `yaml:"url_cache"`
	Render    RenderConfig `yaml:"render"`
	Log       LogConfig    `yaml:"log"`
	Overrides Overrides    `yaml:"overrides"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GWOSCConfig holds open-data archive settings.
type GWOSCConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	Parallelism  int           `yaml:"parallelism"`
	Runs         []RunConfig   `yaml:"runs"`
}

// RunConfig describes one observing run: its GPS span and the archive
// dataset to query for each sample rate.
type RunConfig struct {
	Name     string         `yaml:"name"`
	Start    float64        `yaml:"start"`
	End      float64        `yaml:"end"`
	Datasets map[int]string `yaml:"datasets"`
}

// URLCache configures the on-disk cache of downloaded strain files.
type URLCache struct {
	Dir string        `yaml:"dir"`
	TTL time.Duration `yaml:"ttl"`
}

// RenderConfig holds plotting settings.
type RenderConfig struct {
	// Concurrency bounds the number of panels rendered at once.
	Concurrency int `yaml:"concurrency"`
	Width       int `yaml:"width"`
	// RowHeight is the height of a one-row figure; figures are sized in
	// multiples of it.
	RowHeight int `yaml:"row_height"`
	// Window names the segment window of the ASD, spectrogram and
	// whitening estimates: hann, tukey or rectangular.
	Window string `yaml:"window"`
}

// WindowType resolves Window.
func (r RenderConfig) WindowType() (window.Type, error) {
	t, err := window.Parse(r.Window)
	if err != nil {
		return 0, fmt.Errorf("render.window: %w", err)
	}
	return t, nil
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Overrides unlock settings for hosts with more memory than the default
// deployment target.
type Overrides struct {
	LargeCaches     bool `yaml:"large_caches"`
	MemProfiling    bool `yaml:"mem_profiling"`
	URLCaching      bool `yaml:"url_caching"`
	WideCacheBlocks bool `yaml:"wide_cache_blocks"`
}

// Merge turns on every override set in o.
func (ov *Overrides) Merge(o Overrides) {
	ov.LargeCaches = ov.LargeCaches || o.LargeCaches
	ov.MemProfiling = ov.MemProfiling || o.MemProfiling
	ov.URLCaching = ov.URLCaching || o.URLCaching
	ov.WideCacheBlocks = ov.WideCacheBlocks || o.WideCacheBlocks
}

// Run returns the run whose span contains gps, or false.
func (g *GWOSCConfig) Run(gps float64) (RunConfig, bool) {
	for _, r := range g.Runs {
		if gps >= r.Start && gps < r.End {
			return r, true
		}
	}
	return RunConfig{}, false
}
