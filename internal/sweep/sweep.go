// Package sweep evaluates the exposure protocol over a humidity x temperature
// grid while periodically handing control back to the scheduler.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/observability"
	"github.com/couchcryptid/heat-response/internal/thermo"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultYieldEvery is the number of cells evaluated between yields.
	DefaultYieldEvery = 10

	// DefaultMaxCells bounds the grid a single sweep may request.
	DefaultMaxCells = 10_000
)

// Evaluator computes one grid cell. *thermo.Simulator satisfies it.
type Evaluator interface {
	PredictExposure(env domain.EnvironmentalFeatures, progress thermo.ProgressFunc) (domain.ExposureResult, error)
}

// Axes are the humidity rows and temperature columns of a grid.
type Axes struct {
	Humidity    []float64
	Temperature []float64
}

// DefaultAxes is 0–100 %RH in steps of 10 by 23–45 °C in steps of 2.
func DefaultAxes() Axes {
	a := Axes{
		Humidity:    make([]float64, 11),
		Temperature: make([]float64, 12),
	}
	for i := range a.Humidity {
		a.Humidity[i] = float64(i * 10)
	}
	for i := range a.Temperature {
		a.Temperature[i] = float64(23 + i*2)
	}
	return a
}

// AxesOrDefault uses the default grid for whichever axis is empty.
func AxesOrDefault(humidity, temperature []float64) Axes {
	axes := DefaultAxes()
	if len(humidity) > 0 {
		axes.Humidity = humidity
	}
	if len(temperature) > 0 {
		axes.Temperature = temperature
	}
	return axes
}

// Validate rejects empty axes and humidity outside [0, 100].
func (a Axes) Validate() error {
	if len(a.Humidity) == 0 || len(a.Temperature) == 0 {
		return fmt.Errorf("%w: sweep axes must not be empty", domain.ErrInvalidInput)
	}
	for _, h := range a.Humidity {
		if err := (domain.EnvironmentalFeatures{Humidity: h}).Validate(); err != nil {
			return err
		}
	}
	for _, tc := range a.Temperature {
		if err := (domain.EnvironmentalFeatures{AmbientTemp: tc}).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Cells is the number of grid cells.
func (a Axes) Cells() int { return len(a.Humidity) * len(a.Temperature) }

// CheckSize rejects grids with more than maxCells cells.
func (a Axes) CheckSize(maxCells int) error {
	if n := a.Cells(); n > maxCells {
		return fmt.Errorf("%w: sweep of %d cells exceeds the limit of %d", domain.ErrInvalidInput, n, maxCells)
	}
	return nil
}

// Options tune a Sweeper. Zero values select the defaults.
type Options struct {
	// YieldEvery is how many cells are evaluated between yields.
	YieldEvery int

	// Workers > 1 evaluates rows concurrently.
	Workers int

	// MaxCells is the largest grid Run accepts.
	MaxCells int

	// Yield hands control back to the host. Defaults to runtime.Gosched.
	Yield func()

	// Progress is called after every cell with the number of cells done.
	// Calls are serialized even when Workers > 1.
	Progress func(done, total int)
}

// Sweeper runs grid sweeps.
type Sweeper struct {
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Sweeper.
func New(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Sweeper {
	if opts.YieldEvery <= 0 {
		opts.YieldEvery = DefaultYieldEvery
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxCells <= 0 {
		opts.MaxCells = DefaultMaxCells
	}
	if opts.Yield == nil {
		opts.Yield = runtime.Gosched
	}
	return &Sweeper{opts: opts, logger: logger, metrics: metrics}
}

// Run evaluates every cell of axes. Cancellation is checked at each yield
// point; a cancelled sweep returns the context error and no grid. Grids over
// the MaxCells limit are rejected before anything is allocated.
func (s *Sweeper) Run(ctx context.Context, eval Evaluator, axes Axes) (domain.Grid, error) {
	if err := axes.CheckSize(s.opts.MaxCells); err != nil {
		return domain.Grid{}, err
	}
	if err := axes.Validate(); err != nil {
		return domain.Grid{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Grid{}, err
	}

	start := time.Now()
	s.metrics.SweepsRunning.Inc()
	defer s.metrics.SweepsRunning.Dec()

	cells := make([][]domain.ExposureResult, len(axes.Humidity))
	for i := range cells {
		cells[i] = make([]domain.ExposureResult, len(axes.Temperature))
	}

	t := &tracker{sweeper: s, total: axes.Cells()}
	var err error
	if s.opts.Workers > 1 && len(axes.Humidity) > 1 {
		err = s.runParallel(ctx, eval, axes, cells, t)
	} else {
		err = s.runSequential(ctx, eval, axes, cells, t)
	}
	if err != nil {
		return domain.Grid{}, err
	}

	s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	s.logger.Debug("sweep complete",
		"cells", axes.Cells(),
		"workers", s.opts.Workers,
		"duration", time.Since(start),
	)

	return domain.Grid{
		Humidity:    append([]float64(nil), axes.Humidity...),
		Temperature: append([]float64(nil), axes.Temperature...),
		Cells:       cells,
		ComputedAt:  domain.Now(),
	}, nil
}

func (s *Sweeper) runSequential(ctx context.Context, eval Evaluator, axes Axes, cells [][]domain.ExposureResult, t *tracker) error {
	for i, h := range axes.Humidity {
		if err := s.runRow(ctx, eval, h, axes.Temperature, cells[i], t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sweeper) runParallel(ctx context.Context, eval Evaluator, axes Axes, cells [][]domain.ExposureResult, t *tracker) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, h := range axes.Humidity {
		g.Go(func() error {
			return s.runRow(gctx, eval, h, axes.Temperature, cells[i], t)
		})
	}
	return g.Wait()
}

// runRow fills one humidity row. Each row writes only its own slice.
func (s *Sweeper) runRow(ctx context.Context, eval Evaluator, humidity float64, temps []float64, row []domain.ExposureResult, t *tracker) error {
	for j, temp := range temps {
		env := domain.EnvironmentalFeatures{AmbientTemp: temp, Humidity: humidity}
		result, err := eval.PredictExposure(env, nil)
		if err != nil {
			return fmt.Errorf("sweep cell humidity=%g ambient_temp=%g: %w", humidity, temp, err)
		}
		row[j] = result
		s.metrics.SweepCells.WithLabelValues(string(result.Status)).Inc()

		if err := t.cellDone(ctx); err != nil {
			return err
		}
	}
	return nil
}

// tracker counts finished cells across workers and drives progress and
// yielding.
type tracker struct {
	sweeper *Sweeper
	total   int
	done    atomic.Int64
	mu      sync.Mutex
}

func (t *tracker) cellDone(ctx context.Context) error {
	n := int(t.done.Add(1))
	if p := t.sweeper.opts.Progress; p != nil {
		t.mu.Lock()
		p(n, t.total)
		t.mu.Unlock()
	}
	if n%t.sweeper.opts.YieldEvery == 0 {
		t.sweeper.opts.Yield()
		return ctx.Err()
	}
	return nil
}
