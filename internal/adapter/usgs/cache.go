package usgs

import (
	"context"
	"time"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
	gocache "github.com/patrickmn/go-cache"
)

// CachedFetcher wraps a FeedFetcher with an in-memory TTL cache keyed by URL.
// Entries live only for the process lifetime.
type CachedFetcher struct {
	inner   domain.FeedFetcher
	cache   *gocache.Cache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher. Entries expire
// after ttl.
func NewCachedFetcher(inner domain.FeedFetcher, ttl time.Duration, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   gocache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if v, ok := c.cache.Get(url); ok {
		c.metrics.FeedCache.WithLabelValues("hit").Inc()
		return v.(string), nil
	}
	c.metrics.FeedCache.WithLabelValues("miss").Inc()

	body, err := c.inner.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	// Empty bodies are not cached so a transient "no data" answer is retried.
	if body != "" {
		c.cache.SetDefault(url, body)
	}
	return body, nil
}

// Flush drops every cached body.
func (c *CachedFetcher) Flush() {
	c.cache.Flush()
}
