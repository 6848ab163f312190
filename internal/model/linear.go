package model

import (
	"fmt"

	"github.com/couchcryptid/heat-response/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// Feature vector layout. The order must match the order used in training;
// reordering produces wrong predictions with no runtime signal.
const (
	FeatureSex = iota
	FeatureAge
	FeatureHeight
	FeatureMass
	FeatureAmbientTemp
	FeatureHumidity
	FeatureCoreTemp
	FeatureSkinTemp

	// NumFeatures is the full feature vector length.
	NumFeatures = 8
	// NumStaticFeatures is the number of leading features that stay fixed for a
	// whole run. The remaining two are the autoregressive state.
	NumStaticFeatures = 6
	// NumOutputs is the output vector length: core and skin temperature.
	NumOutputs = 2
)

// Coefficients is one trained linear regression: a weight per feature plus an
// intercept.
type Coefficients struct {
	Weights   []float64 `json:"weights" yaml:"weights"`
	Intercept float64   `json:"intercept" yaml:"intercept"`
}

// Validate checks there is exactly one finite weight per feature.
func (c Coefficients) Validate() error {
	if len(c.Weights) != NumFeatures {
		return fmt.Errorf("%w: expected %d weights, got %d", domain.ErrConfig, NumFeatures, len(c.Weights))
	}
	for i, w := range c.Weights {
		if !finite(w) {
			return fmt.Errorf("%w: weight %d is not finite", domain.ErrConfig, i)
		}
	}
	if !finite(c.Intercept) {
		return fmt.Errorf("%w: intercept is not finite", domain.ErrConfig)
	}
	return nil
}

// StaticComponent returns the part of the regression output that does not
// change across simulation steps: the weighted sum of the six static features
// plus the intercept. The two autoregressive slots are left to the recurrence.
func StaticComponent(features []float64, coeffs Coefficients) (float64, error) {
	if len(features) < NumFeatures {
		return 0, fmt.Errorf("static component: %w: need %d features, got %d", domain.ErrDimension, NumFeatures, len(features))
	}
	if len(coeffs.Weights) < NumFeatures {
		return 0, fmt.Errorf("static component: %w: need %d weights, got %d", domain.ErrDimension, NumFeatures, len(coeffs.Weights))
	}
	return floats.Dot(coeffs.Weights[:NumStaticFeatures], features[:NumStaticFeatures]) + coeffs.Intercept, nil
}
