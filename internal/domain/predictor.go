package domain

import "context"

// Predictor produces the gated exposure response for a person in a condition.
type Predictor interface {
	PredictExposure(ctx context.Context, person BiophysicalFeatures, env EnvironmentalFeatures) (ExposureResult, error)
}
