// Package cache provides the bounded in-memory memoization used for strain
// loads, spectrograms and Q-transforms.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LRU is a least-recently-used cache with string keys and an optional
// time-to-live. Concurrent GetOrLoad calls for the same key share one load.
type LRU[V any] struct {
	name     string
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	items     map[string]*list.Element
	lru       *list.List
	hits      uint64
	misses    uint64
	evictions uint64

	group singleflight.Group
}

type entry[V any] struct {
	key    string
	value  V
	stored time.Time
}

// Option configures an LRU.
type Option func(*options)

type options struct {
	name string
	ttl  time.Duration
	now  func() time.Time
}

// WithTTL expires entries older than ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithName labels the cache in Stats.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a cache holding at most capacity entries (minimum 1).
func New[V any](capacity int, opts ...Option) *LRU[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[V]{
		name:     o.name,
		capacity: capacity,
		ttl:      o.ttl,
		now:      o.now,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached value for key.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	e := el.Value.(*entry[V])
	if c.expiredLocked(e) {
		c.removeLocked(el)
		c.misses++
		var zero V
		return zero, false
	}
	c.lru.MoveToFront(el)
	c.hits++
	return e.value, true
}

// Put stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *LRU[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.stored = c.now()
		c.lru.MoveToFront(el)
		return
	}

	c.items[key] = c.lru.PushFront(&entry[V]{key: key, value: value, stored: c.now()})
	for c.lru.Len() > c.capacity {
		c.removeLocked(c.lru.Back())
		c.evictions++
	}
}

// GetOrLoad returns the cached value for key or calls load once, shared
// among concurrent callers, and caches its result. Errors are not cached.
// The boolean reports whether the value came from the cache.
func (c *LRU[V]) GetOrLoad(key string, load func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	res, err, shared := c.group.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return v, err
		}
		c.Put(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, _ := res.(V)
	return v, shared, nil
}

// Remove drops key from the cache.
func (c *LRU[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Clear drops every entry. Counters are kept.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.lru = list.New()
}

// Len returns the number of entries, including expired ones not yet purged.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats reports cache occupancy and counters.
type Stats struct {
	Name      string  `json:"name"`
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	Expired   int     `json:"expired"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// Stats returns a snapshot of the cache counters.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired := 0
	for el := c.lru.Front(); el != nil; el = el.Next() {
		if c.expiredLocked(el.Value.(*entry[V])) {
			expired++
		}
	}
	s := Stats{
		Name:      c.name,
		Size:      c.lru.Len(),
		Capacity:  c.capacity,
		Expired:   expired,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

func (c *LRU[V]) expiredLocked(e *entry[V]) bool {
	return c.ttl > 0 && c.now().Sub(e.stored) > c.ttl
}

func (c *LRU[V]) removeLocked(el *list.Element) {
	e := el.Value.(*entry[V])
	c.lru.Remove(el)
	delete(c.items, e.key)
}

// Key derives a deterministic cache key from its parts.
func Key(parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = []byte(fmt.Sprint(parts...))
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}
