package sweep

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/model"
	"github.com/couchcryptid/heat-response/internal/observability"
	"github.com/couchcryptid/heat-response/internal/thermo"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPerson = domain.BiophysicalFeatures{Sex: domain.Male, Age: 30, HeightCm: 175, MassKg: 75}

// Cells whose vapour pressure reaches 6 kPa on the default axes, as
// (humidity, temperature).
var gatedCells = map[[2]float64]bool{
	{70, 43}: true, {70, 45}: true,
	{80, 41}: true, {80, 43}: true, {80, 45}: true,
	{90, 39}: true, {90, 41}: true, {90, 43}: true, {90, 45}: true,
	{100, 37}: true, {100, 39}: true, {100, 41}: true, {100, 43}: true, {100, 45}: true,
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSimulator(t *testing.T) *thermo.Simulator {
	t.Helper()
	sim, err := thermo.NewSimulator(testPerson, model.DefaultParams())
	require.NoError(t, err)
	return sim
}

func TestDefaultAxes(t *testing.T) {
	axes := DefaultAxes()
	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, axes.Humidity)
	assert.Equal(t, []float64{23, 25, 27, 29, 31, 33, 35, 37, 39, 41, 43, 45}, axes.Temperature)
	assert.Equal(t, 132, axes.Cells())
}

func TestAxesOrDefault(t *testing.T) {
	axes := AxesOrDefault([]float64{25, 75}, nil)
	assert.Equal(t, []float64{25, 75}, axes.Humidity)
	assert.Equal(t, DefaultAxes().Temperature, axes.Temperature)

	assert.Equal(t, DefaultAxes(), AxesOrDefault(nil, nil))
}

func TestAxesValidate(t *testing.T) {
	require.NoError(t, DefaultAxes().Validate())
	require.ErrorIs(t, Axes{Temperature: []float64{30}}.Validate(), domain.ErrInvalidInput)
	require.ErrorIs(t, Axes{Humidity: []float64{110}, Temperature: []float64{30}}.Validate(), domain.ErrInvalidInput)
}

func TestAxesCheckSize(t *testing.T) {
	require.NoError(t, DefaultAxes().CheckSize(132))
	require.ErrorIs(t, DefaultAxes().CheckSize(131), domain.ErrInvalidInput)

	huge := Axes{Humidity: make([]float64, 200_000), Temperature: make([]float64, 200_000)}
	require.ErrorIs(t, huge.CheckSize(DefaultMaxCells), domain.ErrInvalidInput)
}

func TestRun_RejectsOversizedGrid(t *testing.T) {
	var evaluated atomic.Int64
	eval := evaluatorFunc(func(domain.EnvironmentalFeatures) (domain.ExposureResult, error) {
		evaluated.Add(1)
		return domain.Computed(0, 0, 0), nil
	})
	metrics := observability.NewMetricsForTesting()

	t.Run("default limit", func(t *testing.T) {
		axes := Axes{Humidity: make([]float64, 200_000), Temperature: make([]float64, 200_000)}
		_, err := New(Options{}, discardLogger(), metrics).Run(context.Background(), eval, axes)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "40000000000 cells")
	})

	t.Run("configured limit", func(t *testing.T) {
		sweeper := New(Options{MaxCells: 100}, discardLogger(), metrics)
		_, err := sweeper.Run(context.Background(), eval, DefaultAxes())
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = sweeper.Run(context.Background(), eval, Axes{Humidity: make([]float64, 10), Temperature: make([]float64, 10)})
		require.NoError(t, err)
	})

	assert.Equal(t, int64(100), evaluated.Load())
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.SweepsRunning), 0)
}

func TestRun_DefaultGrid(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := observability.NewMetricsForTesting()
	var yields int
	sweeper := New(Options{Yield: func() { yields++ }}, discardLogger(), metrics)

	sim := newSimulator(t)
	grid, err := sweeper.Run(context.Background(), sim, DefaultAxes())
	require.NoError(t, err)

	require.Len(t, grid.Cells, 11)
	for _, row := range grid.Cells {
		require.Len(t, row, 12)
	}
	assert.Equal(t, 13, yields)
	assert.Equal(t, fake.Now(), grid.ComputedAt)

	for i, h := range grid.Humidity {
		for j, temp := range grid.Temperature {
			cell := grid.Cells[i][j]
			assert.Equal(t, !gatedCells[[2]float64{h, temp}], cell.IsComputed(), "humidity=%v temp=%v", h, temp)
		}
	}

	// Each cell matches an independent call.
	want, err := sim.PredictExposure(domain.EnvironmentalFeatures{AmbientTemp: 39, Humidity: 50}, nil)
	require.NoError(t, err)
	assert.Equal(t, want, grid.Cells[5][8])

	assert.InDelta(t, 118, testutil.ToFloat64(metrics.SweepCells.WithLabelValues("computed")), 0)
	assert.InDelta(t, 14, testutil.ToFloat64(metrics.SweepCells.WithLabelValues("out_of_range")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.SweepsRunning), 0)
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	sim := newSimulator(t)
	ctx := context.Background()

	seq, err := New(Options{}, discardLogger(), observability.NewMetricsForTesting()).Run(ctx, sim, DefaultAxes())
	require.NoError(t, err)

	var yields atomic.Int64
	par, err := New(Options{Workers: 4, Yield: func() { yields.Add(1) }}, discardLogger(), observability.NewMetricsForTesting()).
		Run(ctx, sim, DefaultAxes())
	require.NoError(t, err)

	assert.Equal(t, seq.Cells, par.Cells)
	assert.Equal(t, int64(13), yields.Load())
}

func TestRun_Progress(t *testing.T) {
	var calls []int
	sweeper := New(Options{Workers: 3, Progress: func(done, total int) {
		assert.Equal(t, 132, total)
		calls = append(calls, done)
	}}, discardLogger(), observability.NewMetricsForTesting())

	_, err := sweeper.Run(context.Background(), newSimulator(t), DefaultAxes())
	require.NoError(t, err)
	require.Len(t, calls, 132)
	assert.ElementsMatch(t, func() []int {
		out := make([]int, 132)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}(), calls)
}

func TestRun_CancelAtYieldPoint(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var evaluated atomic.Int64
	eval := evaluatorFunc(func(env domain.EnvironmentalFeatures) (domain.ExposureResult, error) {
		evaluated.Add(1)
		return domain.Computed(1, 1, 1), nil
	})

	sweeper := New(Options{Yield: cancel}, discardLogger(), observability.NewMetricsForTesting())
	_, err := sweeper.Run(ctx, eval, DefaultAxes())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(DefaultYieldEvery), evaluated.Load())
}

func TestRun_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}, discardLogger(), observability.NewMetricsForTesting()).Run(ctx, newSimulator(t), DefaultAxes())
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_EvaluatorError(t *testing.T) {
	boom := errors.New("boom")
	eval := evaluatorFunc(func(env domain.EnvironmentalFeatures) (domain.ExposureResult, error) {
		if env.Humidity == 30 {
			return domain.ExposureResult{}, boom
		}
		return domain.Computed(0, 0, 0), nil
	})

	for _, workers := range []int{1, 4} {
		_, err := New(Options{Workers: workers}, discardLogger(), observability.NewMetricsForTesting()).
			Run(context.Background(), eval, DefaultAxes())
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "humidity=30")
	}
}

func TestSummarize(t *testing.T) {
	grid := domain.Grid{
		Humidity:    []float64{10, 90},
		Temperature: []float64{30, 45},
		Cells: [][]domain.ExposureResult{
			{domain.Computed(0.5, 2, 1), domain.Computed(1.5, 4, 2)},
			{domain.Computed(1.0, 3, 4), domain.OutOfRange(9)},
		},
	}

	got := Summarize(grid)
	assert.Equal(t, 3, got.Computed)
	assert.Equal(t, 1, got.OutOfRange)
	assert.InDelta(t, 0.5, got.MinRectalDelta, 1e-12)
	assert.InDelta(t, 1.5, got.MaxRectalDelta, 1e-12)
	assert.InDelta(t, 1.0, got.MeanRectalDelta, 1e-12)
	assert.InDelta(t, 4, got.MaxSkinDelta, 1e-12)
}

func TestSummarize_AllOutOfRange(t *testing.T) {
	grid := domain.Grid{Cells: [][]domain.ExposureResult{{domain.OutOfRange(7), domain.OutOfRange(8)}}}
	assert.Equal(t, domain.GridSummary{OutOfRange: 2}, Summarize(grid))
}

type evaluatorFunc func(env domain.EnvironmentalFeatures) (domain.ExposureResult, error)

func (f evaluatorFunc) PredictExposure(env domain.EnvironmentalFeatures, _ thermo.ProgressFunc) (domain.ExposureResult, error) {
	return f(env)
}
