package cache

import (
	"fmt"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/dgraph-io/ristretto"
)

// InsightsCache keeps the last complete insights result per user
type InsightsCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewInsightsCache creates a cache whose entries expire after ttl.
// A non-positive ttl disables caching.
func NewInsightsCache(ttl time.Duration) (*InsightsCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     1000,
		BufferItems: 64, // number of keys per Get buffer
		// one result costs 1 regardless of size
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize insights cache: %w", err)
	}
	return &InsightsCache{cache: c, ttl: ttl}, nil
}

func key(userID int64) string {
	return fmt.Sprintf("insights:%d", userID)
}

// Get returns the cached insights of a user, if any
func (c *InsightsCache) Get(userID int64) (*models.Insights, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	v, ok := c.cache.Get(key(userID))
	if !ok {
		return nil, false
	}
	res, ok := v.(*models.Insights)
	return res, ok
}

// Set stores a result. Partial results are never cached so that a failing
// section is retried on the next request.
func (c *InsightsCache) Set(res *models.Insights) {
	if c == nil || c.ttl <= 0 || res == nil || !res.Complete() {
		return
	}
	c.cache.SetWithTTL(key(res.UserID), res, 1, c.ttl)
	c.cache.Wait()
}

// Invalidate drops the cached result of a user
func (c *InsightsCache) Invalidate(userID int64) {
	if c == nil {
		return
	}
	c.cache.Del(key(userID))
}

// Close stops the cache's background goroutines
func (c *InsightsCache) Close() {
	if c != nil {
		c.cache.Close()
	}
}
