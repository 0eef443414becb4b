package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const defaultTTL = 10 * time.Minute

// Source produces a fresh dashboard.
type Source interface {
	Load(ctx context.Context) (model.Dashboard, error)
}

// Cache serves a dashboard for TTL after it was loaded. Concurrent misses
// share one load.
type Cache struct {
	src   Source
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	current *model.Dashboard
	expires time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL sets how long a load stays fresh.
func WithTTL(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithCacheClock replaces time.Now.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache wraps src.
func NewCache(src Source, opts ...CacheOption) *Cache {
	c := &Cache{src: src, ttl: defaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached dashboard or loads a new one.
func (c *Cache) Get(ctx context.Context) (model.Dashboard, error) {
	if d, ok := c.fresh(); ok {
		metrics.RecordDashboardCache("hit")
		return d, nil
	}
	metrics.RecordDashboardCache("miss")
	return c.load(ctx, false)
}

// Refresh loads unconditionally and stores the result. Callers arriving
// while a load is running wait for it instead of starting another. The
// shared load is detached from ctx cancellation so one departing caller
// cannot fail the others; the loader's fetch timeout still bounds it.
func (c *Cache) Refresh(ctx context.Context) (model.Dashboard, error) {
	return c.load(ctx, true)
}

func (c *Cache) load(ctx context.Context, force bool) (model.Dashboard, error) {
	v, err, shared := c.group.Do("dashboard", func() (any, error) {
		// a miss that lost the race to a finished load reuses its result
		if d, ok := c.fresh(); ok && !force {
			return d, nil
		}
		d, err := c.src.Load(context.WithoutCancel(ctx))
		if err != nil {
			return model.Dashboard{}, err
		}
		return c.Offer(d), nil
	})
	if shared {
		metrics.RecordDashboardCache("shared")
	}
	if err != nil {
		return model.Dashboard{}, err
	}
	return v.(model.Dashboard), nil
}

// Offer stores d unless no source answered while the cached value has
// real data; that value is then kept and served for another TTL. It
// returns whichever dashboard is now cached.
func (c *Cache) Offer(d model.Dashboard) model.Dashboard {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !d.Sources.Any() && c.current != nil && c.current.Sources.Any() {
		metrics.RecordDashboardCache("kept")
		c.expires = c.now().Add(c.ttl)
		return *c.current
	}
	c.current = &d
	c.expires = c.now().Add(c.ttl)
	return d
}

// Peek returns the cached value even if stale.
func (c *Cache) Peek() (model.Dashboard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return model.Dashboard{}, false
	}
	return *c.current, true
}

func (c *Cache) fresh() (model.Dashboard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil || !c.now().Before(c.expires) {
		return model.Dashboard{}, false
	}
	return *c.current, true
}
