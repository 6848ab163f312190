package sweep

import (
	"context"
	"fmt"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/thermo"
)

// SimulatorFactory binds a person to shared model parameters.
// *thermo.Service satisfies it.
type SimulatorFactory interface {
	Simulator(person domain.BiophysicalFeatures) (*thermo.Simulator, error)
}

// Service answers sweep requests.
type Service struct {
	factory SimulatorFactory
	sweeper *Sweeper
}

// NewService creates a Service.
func NewService(factory SimulatorFactory, sweeper *Sweeper) *Service {
	return &Service{factory: factory, sweeper: sweeper}
}

// Sweep computes the grid for req and its summary. Empty axes fall back to
// the defaults. The request id is copied through unchanged.
func (s *Service) Sweep(ctx context.Context, req domain.SweepRequest) (domain.SweepResult, error) {
	sim, err := s.factory.Simulator(req.Person)
	if err != nil {
		return domain.SweepResult{}, fmt.Errorf("sweep %s: %w", req.ID, err)
	}
	grid, err := s.sweeper.Run(ctx, sim, AxesOrDefault(req.Humidity, req.Temperature))
	if err != nil {
		return domain.SweepResult{}, fmt.Errorf("sweep %s: %w", req.ID, err)
	}
	return domain.SweepResult{
		ID:      req.ID,
		Person:  req.Person,
		Grid:    grid,
		Summary: Summarize(grid),
	}, nil
}
