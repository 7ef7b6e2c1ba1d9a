package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAddr              = ":8501"
	DefaultReadTimeout       = 30 * time.Second
	DefaultWriteTimeout      = 5 * time.Minute
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultGWOSCURL          = "https://gwosc.org"
	DefaultGWOSCTimeout      = 10 * time.Minute
	DefaultMaxRetries        = 3
	DefaultRetryBackoff      = 2 * time.Second
	DefaultParallelism       = 2
	DefaultURLCacheDir       = ".cache/glitchplot"
	DefaultURLCacheTTL       = 7 * 24 * time.Hour
	DefaultRenderConcurrency = 1
	DefaultRenderWidth       = 1200
	DefaultRowHeight         = 100
	DefaultWindow            = "hann"
	DefaultLogLevel          = "info"
)

// DefaultRuns lists the observing runs with public strain data.
func DefaultRuns() []RunConfig {
	return []RunConfig{
		{Name: "O1", Start: 1126051217, End: 1137254417,
			Datasets: map[int]string{4096: "O1", 16384: "O1_16KHZ"}},
		{Name: "O2", Start: 1164556817, End: 1187733618,
			Datasets: map[int]string{4096: "O2_4KHZ_R1", 16384: "O2_16KHZ_R1"}},
		{Name: "O3a", Start: 1238166018, End: 1253977218,
			Datasets: map[int]string{4096: "O3a_4KHZ_R1", 16384: "O3a_16KHZ_R1"}},
		{Name: "O3b", Start: 1256655618, End: 1269363618,
			Datasets: map[int]string{4096: "O3b_4KHZ_R1", 16384: "O3b_16KHZ_R1"}},
		{Name: "O4a", Start: 1368975618, End: 1389456018,
			Datasets: map[int]string{4096: "O4a_4KHZ_R1", 16384: "O4a_16KHZ_R1"}},
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// GWOSC defaults
	if c.GWOSC.BaseURL == "" {
		c.GWOSC.BaseURL = DefaultGWOSCURL
	}
	if c.GWOSC.Timeout == 0 {
		c.GWOSC.Timeout = DefaultGWOSCTimeout
	}
	if c.GWOSC.MaxRetries == 0 {
		c.GWOSC.MaxRetries = DefaultMaxRetries
	}
	if c.GWOSC.RetryBackoff == 0 {
		c.GWOSC.RetryBackoff = DefaultRetryBackoff
	}
	if c.GWOSC.Parallelism == 0 {
		c.GWOSC.Parallelism = DefaultParallelism
	}
	if len(c.GWOSC.Runs) == 0 {
		c.GWOSC.Runs = DefaultRuns()
	}

	// URL cache defaults
	if c.URLCache.Dir == "" {
		c.URLCache.Dir = DefaultURLCacheDir
	}
	if c.URLCache.TTL == 0 {
		c.URLCache.TTL = DefaultURLCacheTTL
	}

	// Render defaults
	if c.Render.Concurrency == 0 {
		c.Render.Concurrency = DefaultRenderConcurrency
	}
	if c.Render.Width == 0 {
		c.Render.Width = DefaultRenderWidth
	}
	if c.Render.RowHeight == 0 {
		c.Render.RowHeight = DefaultRowHeight
	}
	if c.Render.Window == "" {
		c.Render.Window = DefaultWindow
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
