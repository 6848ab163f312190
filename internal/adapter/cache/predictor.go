package cache

import (
	"context"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/observability"
)

type predictionKey struct {
	person domain.BiophysicalFeatures
	env    domain.EnvironmentalFeatures
}

// CachedPredictor wraps a Predictor with an LRU keyed by person and
// environment. Out-of-range results are cached like computed ones; errors
// are never cached.
type CachedPredictor struct {
	inner   domain.Predictor
	cache   *LRU[predictionKey, domain.ExposureResult]
	metrics *observability.Metrics
}

// NewCachedPredictor creates a cache decorator around a predictor.
func NewCachedPredictor(inner domain.Predictor, maxEntries int, metrics *observability.Metrics) *CachedPredictor {
	return &CachedPredictor{
		inner:   inner,
		cache:   NewLRU[predictionKey, domain.ExposureResult](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedPredictor) PredictExposure(ctx context.Context, person domain.BiophysicalFeatures, env domain.EnvironmentalFeatures) (domain.ExposureResult, error) {
	key := predictionKey{person: person, env: env}
	if result, ok := c.cache.Get(key); ok {
		c.metrics.PredictionCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.PredictionCache.WithLabelValues("miss").Inc()

	result, err := c.inner.PredictExposure(ctx, person, env)
	if err != nil {
		return result, err
	}
	c.cache.Put(key, result)
	return result, nil
}
