package store

import (
	"log"
	"sync"
	"time"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

// ForecastCache keeps the latest forecast report per location for ttl.
// Reports are replaced whole; an older report never overwrites a newer one,
// so a slow refresh finishing late cannot roll the cache back.
type ForecastCache struct {
	mu      sync.RWMutex
	entries map[string]weather.Report
	ttl     time.Duration
	now     func() time.Time

	hits, misses int
}

// NewForecastCache creates a cache. ttl <= 0 disables expiry.
func NewForecastCache(ttl time.Duration) *ForecastCache {
	return &ForecastCache{
		entries: make(map[string]weather.Report),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a report that has not expired.
func (c *ForecastCache) Get(key string) (weather.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.entries[key]
	if ok && c.expired(r) {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		c.misses++
		return weather.Report{}, false
	}

	c.hits++
	log.Printf("DEBUG: forecast cache hit for %s (age %s)", key, c.now().Sub(r.FetchedAt).Round(time.Second))
	return r, true
}

// Put stores r unless the cache holds a report fetched after it. Expired
// entries for other keys are dropped on the way.
func (c *ForecastCache) Put(key string, r weather.Report) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, cur := range c.entries {
		if k != key && c.expired(cur) {
			delete(c.entries, k)
		}
	}

	if cur, ok := c.entries[key]; ok && cur.FetchedAt.After(r.FetchedAt) {
		return false
	}
	c.entries[key] = r
	return true
}

// Len returns the number of cached reports, expired or not.
func (c *ForecastCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ForecastCache) expired(r weather.Report) bool {
	return c.ttl > 0 && c.now().Sub(r.FetchedAt) >= c.ttl
}

// Stats returns cache hit and miss counts.
func (c *ForecastCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

var _ weather.ForecastCache = (*ForecastCache)(nil)
