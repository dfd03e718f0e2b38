package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds recent provider responses so repeated scoring runs over the
// same window do not hammer a flaky upstream. Backed by Redis; a nil Cache
// disables caching entirely.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(start, end time.Time) string {
	return fmt.Sprintf("telemetry:scores:%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// Get returns the cached scores for a window, or ok=false on miss or any
// Redis failure. A broken cache must never degrade the operation.
func (c *Cache) Get(ctx context.Context, start, end time.Time) ([]DriverScore, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(start, end)).Bytes()
	if err != nil {
		return nil, false
	}
	var scores []DriverScore
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, false
	}
	return scores, true
}

// Put stores scores for a window. Failures are ignored; caching is best
// effort. Degraded results are never cached.
func (c *Cache) Put(ctx context.Context, start, end time.Time, scores []DriverScore) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(scores)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(start, end), raw, c.ttl).Err()
}
