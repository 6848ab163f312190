package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPredictor struct {
	calls  int
	result domain.ExposureResult
	err    error
}

func (m *countingPredictor) PredictExposure(_ context.Context, _ domain.BiophysicalFeatures, _ domain.EnvironmentalFeatures) (domain.ExposureResult, error) {
	m.calls++
	return m.result, m.err
}

var (
	person = domain.BiophysicalFeatures{Sex: domain.Female, Age: 52, HeightCm: 165, MassKg: 68}
	hot    = domain.EnvironmentalFeatures{AmbientTemp: 40, Humidity: 30}
)

func TestCachedPredictor_Hit(t *testing.T) {
	inner := &countingPredictor{result: domain.Computed(1.2, 3.1, 2.2)}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedPredictor(inner, 10, metrics)

	r1, err := cached.PredictExposure(context.Background(), person, hot)
	require.NoError(t, err)
	r2, err := cached.PredictExposure(context.Background(), person, hot)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PredictionCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PredictionCache.WithLabelValues("miss")), 0)
}

func TestCachedPredictor_DifferentKeysMiss(t *testing.T) {
	inner := &countingPredictor{result: domain.Computed(1, 1, 1)}
	cached := NewCachedPredictor(inner, 10, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, _ = cached.PredictExposure(ctx, person, hot)
	_, _ = cached.PredictExposure(ctx, person, domain.EnvironmentalFeatures{AmbientTemp: 40, Humidity: 31})
	older := person
	older.Age++
	_, _ = cached.PredictExposure(ctx, older, hot)

	assert.Equal(t, 3, inner.calls)
}

func TestCachedPredictor_CachesOutOfRange(t *testing.T) {
	inner := &countingPredictor{result: domain.OutOfRange(7.4)}
	cached := NewCachedPredictor(inner, 10, observability.NewMetricsForTesting())

	for range 3 {
		result, err := cached.PredictExposure(context.Background(), person, hot)
		require.NoError(t, err)
		assert.False(t, result.IsComputed())
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCachedPredictor_DoesNotCacheErrors(t *testing.T) {
	inner := &countingPredictor{err: errors.New("unavailable")}
	cached := NewCachedPredictor(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.PredictExposure(context.Background(), person, hot)
	require.Error(t, err)
	_, err = cached.PredictExposure(context.Background(), person, hot)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}
