package config

import (
	"errors"
	"fmt"
	"net/url"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	u, err := url.Parse(c.GWOSC.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("gwosc.base_url must be an absolute URL, got %q", c.GWOSC.BaseURL)
	}
	if c.GWOSC.Timeout <= 0 {
		return errors.New("gwosc.timeout must be > 0")
	}
	if c.GWOSC.MaxRetries < 0 {
		return errors.New("gwosc.max_retries must be >= 0")
	}
	if c.GWOSC.Parallelism < 1 {
		return errors.New("gwosc.parallelism must be >= 1")
	}
	if len(c.GWOSC.Runs) == 0 {
		return errors.New("gwosc.runs must not be empty")
	}
	for i, r := range c.GWOSC.Runs {
		if err := r.validate(fmt.Sprintf("gwosc.runs[%d]", i)); err != nil {
			return err
		}
	}

	if c.Overrides.URLCaching {
		if c.URLCache.Dir == "" {
			return errors.New("url_cache.dir is required when URL caching is enabled")
		}
		if c.URLCache.TTL <= 0 {
			return errors.New("url_cache.ttl must be > 0")
		}
	}

	if c.Render.Concurrency < 1 {
		return errors.New("render.concurrency must be >= 1")
	}
	if c.Render.Width < 200 || c.Render.RowHeight < 50 {
		return fmt.Errorf("render size %dx%d is too small", c.Render.Width, c.Render.RowHeight)
	}
	if _, err := c.Render.WindowType(); err != nil {
		return err
	}

	if !logLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

func (r *RunConfig) validate(prefix string) error {
	if r.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if r.End <= r.Start {
		return fmt.Errorf("%s: end must be after start", prefix)
	}
	if len(r.Datasets) == 0 {
		return fmt.Errorf("%s.datasets must not be empty", prefix)
	}
	for rate, name := range r.Datasets {
		if rate <= 0 || name == "" {
			return fmt.Errorf("%s.datasets: invalid entry %d: %q", prefix, rate, name)
		}
	}
	return nil
}
