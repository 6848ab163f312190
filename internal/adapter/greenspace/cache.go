package greenspace

import (
	"context"

	"github.com/couchcryptid/heat-response/internal/adapter/cache"
	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/observability"
)

// CachedProvider wraps a GreenspaceProvider with an LRU keyed by postcode.
type CachedProvider struct {
	inner   domain.GreenspaceProvider
	cache   *cache.LRU[string, domain.GreenspaceStats]
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.GreenspaceProvider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   cache.NewLRU[string, domain.GreenspaceStats](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedProvider) Lookup(ctx context.Context, postcode string) (domain.GreenspaceStats, error) {
	if stats, ok := c.cache.Get(postcode); ok {
		c.metrics.GreenspaceCache.WithLabelValues("hit").Inc()
		return stats, nil
	}
	c.metrics.GreenspaceCache.WithLabelValues("miss").Inc()

	// Failures, including unknown postcodes, are left uncached so they can be
	// retried.
	stats, err := c.inner.Lookup(ctx, postcode)
	if err != nil {
		return stats, err
	}
	c.cache.Put(postcode, stats)
	return stats, nil
}
