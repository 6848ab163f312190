package thermo

import (
	"fmt"

	"github.com/couchcryptid/heat-response/internal/domain"
)

// Exposure protocol constants. The coefficients are calibrated to these
// durations, so they are not configurable.
const (
	BaselineSteps = 120
	ExposureSteps = 540
)

// BaselineEnvironment is the indoor room every exposure is measured against.
var BaselineEnvironment = domain.EnvironmentalFeatures{AmbientTemp: 23, Humidity: 50}

// PredictExposure returns the temperature change attributable to env.
//
// Conditions whose actual vapour pressure is at or above the configured cutoff
// yield an out-of-range result. Otherwise the person is first settled in the
// baseline room, then exposed to env starting from the settled state, and the
// result is exposure minus baseline. progress, if set, observes the exposure
// run.
func (s *Simulator) PredictExposure(env domain.EnvironmentalFeatures, progress ProgressFunc) (domain.ExposureResult, error) {
	if s == nil || s.featureScaler == nil {
		return domain.ExposureResult{}, fmt.Errorf("predict exposure: %w", domain.ErrInvalidState)
	}

	avp := domain.ActualVapourPressure(env.AmbientTemp, env.Humidity)
	if avp >= s.maxVapourPressure {
		return domain.OutOfRange(avp), nil
	}

	baseline, err := s.Run(BaselineEnvironment, BaselineSteps, DefaultSeed, nil)
	if err != nil {
		return domain.ExposureResult{}, fmt.Errorf("predict exposure: baseline: %w", err)
	}
	exposure, err := s.Run(env, ExposureSteps, baseline, progress)
	if err != nil {
		return domain.ExposureResult{}, fmt.Errorf("predict exposure: exposure: %w", err)
	}

	return domain.Computed(exposure.Rectal-baseline.Rectal, exposure.Skin-baseline.Skin, avp), nil
}

// MaxVapourPressure is the gate cutoff in kPa.
func (s *Simulator) MaxVapourPressure() float64 { return s.maxVapourPressure }
