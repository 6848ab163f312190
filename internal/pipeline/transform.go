package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/heat-response/internal/domain"
)

// Sweeper computes the grid for one request. *sweep.Service satisfies it.
type Sweeper interface {
	Sweep(ctx context.Context, req domain.SweepRequest) (domain.SweepResult, error)
}

// SweepTransformer implements Transformer by running a grid sweep for each
// request.
type SweepTransformer struct {
	sweeper Sweeper
	logger  *slog.Logger
}

// NewTransformer creates a SweepTransformer.
func NewTransformer(sweeper Sweeper, logger *slog.Logger) *SweepTransformer {
	return &SweepTransformer{
		sweeper: sweeper,
		logger:  logger,
	}
}

func (t *SweepTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseSweepRequest(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	result, err := t.sweeper.Sweep(ctx, req)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	t.logger.Debug("sweep request computed",
		"request_id", result.ID,
		"computed", result.Summary.Computed,
		"out_of_range", result.Summary.OutOfRange,
	)
	return domain.SerializeSweepResult(result)
}
