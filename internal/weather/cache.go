package weather

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/personalai/assistant/internal/observability"
)

type cacheEntry struct {
	forecast  *Forecast
	expiresAt time.Time
}

// CachedForecaster keeps each location's forecast for ttl. Concurrent misses
// for the same location share one upstream call.
type CachedForecaster struct {
	next Forecaster
	ttl  time.Duration
	now  func() time.Time

	mu    sync.RWMutex
	store map[string]cacheEntry
	sf    singleflight.Group
}

func NewCachedForecaster(next Forecaster, ttl time.Duration) *CachedForecaster {
	return &CachedForecaster{
		next:  next,
		ttl:   ttl,
		now:   time.Now,
		store: make(map[string]cacheEntry),
	}
}

func (c *CachedForecaster) get(key string) (*Forecast, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.store[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.store, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.forecast, true
}

// set stores f and drops every other expired entry, so keys for locations
// that are never asked for again do not accumulate.
func (c *CachedForecaster) set(key string, f *Forecast) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, k)
		}
	}
	c.store[key] = cacheEntry{forecast: f, expiresAt: now.Add(c.ttl)}
}

func (c *CachedForecaster) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *CachedForecaster) Forecast(ctx context.Context, location string) (*Forecast, error) {
	if c.ttl <= 0 {
		return c.next.Forecast(ctx, location)
	}
	key := strings.ToLower(strings.TrimSpace(location))

	if f, ok := c.get(key); ok {
		observability.ObserveWeatherCache(true)
		log.Debug().Str("location", key).Msg("forecast cache hit")
		return f, nil
	}
	observability.ObserveWeatherCache(false)

	// The shared call outlives any single caller; the client timeout bounds it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if f, ok := c.get(key); ok {
			return f, nil
		}
		f, err := c.next.Forecast(shared, location)
		if err != nil {
			return nil, err
		}
		c.set(key, f)
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Forecast), nil
}
