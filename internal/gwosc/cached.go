package gwosc

import (
	"context"

	"go.uber.org/zap"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/cache"
)

// HighRate is the sample rate from which loads use the smaller cache.
const HighRate = 16384

// Strain cache sizes. One low-rate entry of 128 s holds roughly 4 MiB of
// samples; a high-rate entry four times as much.
const (
	LowRateEntries       = 8
	LowRateEntriesLarge  = 16
	HighRateEntries      = 3
	HighRateEntriesLarge = 8
)

// Source loads strain for a descriptor.
type Source interface {
	Load(ctx context.Context, d Descriptor) (*Strain, error)
}

// CachedLoader memoizes loads in two LRU caches, one per sample-rate class.
// Concurrent loads of the same descriptor share one download.
type CachedLoader struct {
	source Source
	low    *cache.LRU[*Strain]
	high   *cache.LRU[*Strain]
	logger *zap.Logger
}

// NewCachedLoader wraps source. large selects the bigger cache sizes.
func NewCachedLoader(source Source, large bool, logger *zap.Logger) *CachedLoader {
	lowCap, highCap := LowRateEntries, HighRateEntries
	if large {
		lowCap, highCap = LowRateEntriesLarge, HighRateEntriesLarge
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLoader{
		source: source,
		low:    cache.New[*Strain](lowCap, cache.WithName("strain-low-rate")),
		high:   cache.New[*Strain](highCap, cache.WithName("strain-high-rate")),
		logger: logger,
	}
}

// Load returns cached strain for d or loads it.
func (c *CachedLoader) Load(ctx context.Context, d Descriptor) (*Strain, error) {
	lru := c.low
	if d.SampleRate >= HighRate {
		lru = c.high
	}

	// The load is shared with concurrent callers, so it must outlive the
	// cancellation of whichever request started it.
	type outcome struct {
		s      *Strain
		cached bool
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		s, cached, err := lru.GetOrLoad(d.Key(), func() (*Strain, error) {
			return c.source.Load(context.WithoutCancel(ctx), d)
		})
		done <- outcome{s, cached, err}
	}()

	var o outcome
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o = <-done:
	}
	s, cached, err := o.s, o.cached, o.err
	if err != nil {
		return nil, err
	}
	if cached {
		c.logger.Debug("strain cache hit", zap.Stringer("descriptor", d))
		report(ctx, Event{Stage: StageCached, Done: s.Files, Total: s.Files})
	}
	return s, nil
}

// Stats reports both caches.
func (c *CachedLoader) Stats() []cache.Stats {
	return []cache.Stats{c.low.Stats(), c.high.Stats()}
}
