package thermo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/model"
	"github.com/couchcryptid/heat-response/internal/observability"
)

// Service answers one-off predictions for arbitrary people from a shared set
// of parameters. It implements domain.Predictor.
type Service struct {
	params  model.Params
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService validates params once so per-request simulators cannot fail on
// configuration.
func NewService(params model.Params, logger *slog.Logger, metrics *observability.Metrics) (*Service, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}
	return &Service{params: params, logger: logger, metrics: metrics}, nil
}

// Params returns the parameters the service was built with.
func (s *Service) Params() model.Params { return s.params }

// Simulator binds person to the service parameters.
func (s *Service) Simulator(person domain.BiophysicalFeatures) (*Simulator, error) {
	return NewSimulator(person, s.params)
}

// Predict is the raw entry point: absolute temperatures after steps steps in
// env from the default resting seed.
func (s *Service) Predict(ctx context.Context, person domain.BiophysicalFeatures, env domain.EnvironmentalFeatures, steps int) (domain.Temperatures, error) {
	if err := ctx.Err(); err != nil {
		return domain.Temperatures{}, err
	}
	start := time.Now()

	sim, err := s.prepare(person, env)
	if err != nil {
		s.metrics.Predictions.WithLabelValues("raw", "error").Inc()
		return domain.Temperatures{}, err
	}
	out, err := sim.Run(env, steps, DefaultSeed, nil)
	if err != nil {
		s.metrics.Predictions.WithLabelValues("raw", "error").Inc()
		return domain.Temperatures{}, err
	}

	s.metrics.Predictions.WithLabelValues("raw", "computed").Inc()
	s.metrics.SimulationSteps.Add(float64(steps))
	s.metrics.PredictionDuration.WithLabelValues("raw").Observe(time.Since(start).Seconds())
	return out, nil
}

// PredictExposure is the gated entry point. See Simulator.PredictExposure.
func (s *Service) PredictExposure(ctx context.Context, person domain.BiophysicalFeatures, env domain.EnvironmentalFeatures) (domain.ExposureResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExposureResult{}, err
	}
	start := time.Now()

	sim, err := s.prepare(person, env)
	if err != nil {
		s.metrics.Predictions.WithLabelValues("exposure", "error").Inc()
		return domain.ExposureResult{}, err
	}
	result, err := sim.PredictExposure(env, nil)
	if err != nil {
		s.metrics.Predictions.WithLabelValues("exposure", "error").Inc()
		return domain.ExposureResult{}, err
	}

	s.metrics.Predictions.WithLabelValues("exposure", string(result.Status)).Inc()
	if result.IsComputed() {
		s.metrics.SimulationSteps.Add(BaselineSteps + ExposureSteps)
	} else {
		s.logger.Debug("condition outside operating range",
			"ambient_temp", env.AmbientTemp,
			"humidity", env.Humidity,
			"vapour_pressure_kpa", result.VapourPressureKPa,
		)
	}
	s.metrics.PredictionDuration.WithLabelValues("exposure").Observe(time.Since(start).Seconds())
	return result, nil
}

func (s *Service) prepare(person domain.BiophysicalFeatures, env domain.EnvironmentalFeatures) (*Simulator, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return s.Simulator(person)
}
