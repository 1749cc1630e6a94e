// Package cache memoizes derived theme color maps by their serialized input.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dchest/siphash"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"themeplane/theme"
)

// Fixed siphash keys. The hash only buckets entries; the full serialized
// input is compared on lookup, so the keys need not be secret.
const (
	hashK0 = 0x7468656d65706c61
	hashK1 = 0x6e652d6d656d6f31
)

var (
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "themeplane_cache_lookups_total",
			Help: "Derived color map cache lookups by result.",
		},
		[]string{"result"},
	)
	entriesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "themeplane_cache_entries",
			Help: "Derived color maps currently cached.",
		},
	)
)

func init() {
	prometheus.MustRegister(lookupsTotal, entriesGauge)
}

// Options controls expiry and size of a Cache.
type Options struct {
	TTL        time.Duration
	SweepEvery time.Duration
	MaxEntries int
}

type entry struct {
	input   string
	vars    *theme.Vars
	expires time.Time
}

// Cache is an in-memory theme.Memo with TTL expiry.
type Cache struct {
	mu      sync.Mutex
	entries map[uint64][]entry
	count   int
	opts    Options
	now     func() time.Time
	hash    func(string) uint64
	logger  *zap.Logger
}

var _ theme.Memo = (*Cache)(nil)

// New creates a Cache. Zero option values fall back to a 10 minute TTL,
// a one minute sweep interval and 1024 entries.
func New(opts Options, logger *zap.Logger) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.SweepEvery <= 0 {
		opts.SweepEvery = time.Minute
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries: make(map[uint64][]entry),
		opts:    opts,
		now:     time.Now,
		hash:    hashKey,
		logger:  logger,
	}
}

func hashKey(input string) uint64 {
	return siphash.Hash(hashK0, hashK1, []byte(input))
}

// Get returns the cached map for the serialized input key.
func (c *Cache) Get(key string) (*theme.Vars, bool) {
	h := c.hash(key)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries[h] {
		if e.input == key && now.Before(e.expires) {
			lookupsTotal.WithLabelValues("hit").Inc()
			return e.vars, true
		}
	}
	lookupsTotal.WithLabelValues("miss").Inc()
	return nil, false
}

// Put stores vars under key, replacing an older value. When the cache is
// full, expired entries are dropped first; if that frees nothing the new
// value is not stored.
func (c *Cache) Put(key string, vars *theme.Vars) {
	h := c.hash(key)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	bucket := c.entries[h]
	for i := range bucket {
		if bucket[i].input == key {
			bucket[i].vars = vars
			bucket[i].expires = now.Add(c.opts.TTL)
			return
		}
	}

	if c.count >= c.opts.MaxEntries {
		c.sweepLocked(now)
		if c.count >= c.opts.MaxEntries {
			c.logger.Debug("cache full, skipping store", zap.Int("entries", c.count))
			return
		}
		// The sweep compacts buckets in place.
		bucket = c.entries[h]
	}

	c.entries[h] = append(bucket, entry{input: key, vars: vars, expires: now.Add(c.opts.TTL)})
	c.count++
	entriesGauge.Set(float64(c.count))
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Sweep drops expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(now)
}

func (c *Cache) sweepLocked(now time.Time) int {
	removed := 0
	for h, bucket := range c.entries {
		kept := bucket[:0]
		for _, e := range bucket {
			if now.Before(e.expires) {
				kept = append(kept, e)
				continue
			}
			removed++
		}
		if len(kept) == 0 {
			delete(c.entries, h)
			continue
		}
		c.entries[h] = kept
	}
	c.count -= removed
	entriesGauge.Set(float64(c.count))
	return removed
}

// Start runs the sweeper until ctx is done.
func (c *Cache) Start(ctx context.Context) {
	go func() {
		c.logger.Info("cache sweeper started", zap.Duration("every", c.opts.SweepEvery), zap.Duration("ttl", c.opts.TTL))
		ticker := time.NewTicker(c.opts.SweepEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.logger.Info("cache sweeper stopped")
				return
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					c.logger.Debug("cache swept", zap.Int("removed", n))
				}
			}
		}
	}()
}
