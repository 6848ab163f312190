package model

import (
	"fmt"
	"os"

	"github.com/couchcryptid/heat-response/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultMaxVapourPressureKPa is the upper bound of the model's validated
// operating range.
const DefaultMaxVapourPressureKPa = 6.0

// Params bundles every trained constant the predictor needs. The values ship
// as placeholders and can be replaced from a file without a rebuild.
type Params struct {
	// FeatureScaler maps the 8 raw features into normalized space.
	FeatureScaler ScalerParams `json:"feature_scaler" yaml:"feature_scaler"`

	// OutputScaler maps normalized (core, skin) back to °C.
	OutputScaler ScalerParams `json:"output_scaler" yaml:"output_scaler"`

	// Core drives rectal temperature; Skin drives mean skin temperature.
	Core Coefficients `json:"core" yaml:"core"`
	Skin Coefficients `json:"skin" yaml:"skin"`

	// MaxVapourPressureKPa is the gate: conditions at or above it are not
	// predicted.
	MaxVapourPressureKPa float64 `json:"max_vapour_pressure_kpa" yaml:"max_vapour_pressure_kpa"`
}

// DefaultParams returns a fresh copy of the shipped constants.
func DefaultParams() Params {
	return Params{
		FeatureScaler: ScalerParams{
			Min: []float64{
				0.0, -0.3114754098360656, -3.020833333333333, -0.6183587248751761,
				-1.222222222222222, -0.21951219512195122, -11.197107405358395, -2.105553500973682,
			},
			Scale: []float64{
				1.0, 0.01639344262295082, 0.020833333333333332, 0.012802458071949815,
				0.05555555555555555, 0.024390243902439025, 0.31613056192207334, 0.08119094120192633,
			},
		},
		OutputScaler: ScalerParams{
			Min:   []float64{-11.197107405358395, -2.0197777680408033},
			Scale: []float64{0.31613056192207334, 0.07894843838015173},
		},
		Core: Coefficients{
			Weights: []float64{
				1.6261586852849347e-4, 7.3681421437795942e-4, -4.3916987857211637e-4, 4.6532701146677997e-4,
				8.4439348066203668e-4, 6.6633790662377142e-4, 9.9328104284890562e-1, 6.0162332082507909e-3,
			},
			Intercept: -1.3528489525256315e-3,
		},
		Skin: Coefficients{
			Weights: []float64{
				6.1578454528691509e-4, 1.4854705372386215e-4, -4.3298261693481378e-4, -1.1471088118388912e-3,
				1.8904677058503336e-2, 3.1889957127636558e-3, -1.0477636196332153e-3, 9.3391821058056301e-1,
			},
			Intercept: 4.3563287283298391e-2,
		},
		MaxVapourPressureKPa: DefaultMaxVapourPressureKPa,
	}
}

// Validate checks dimensions and values of every constant.
func (p Params) Validate() error {
	if err := p.FeatureScaler.Validate(); err != nil {
		return fmt.Errorf("feature_scaler: %w", err)
	}
	if len(p.FeatureScaler.Min) != NumFeatures {
		return fmt.Errorf("feature_scaler: %w: expected %d dimensions, got %d", domain.ErrConfig, NumFeatures, len(p.FeatureScaler.Min))
	}
	if err := p.OutputScaler.Validate(); err != nil {
		return fmt.Errorf("output_scaler: %w", err)
	}
	if len(p.OutputScaler.Min) != NumOutputs {
		return fmt.Errorf("output_scaler: %w: expected %d dimensions, got %d", domain.ErrConfig, NumOutputs, len(p.OutputScaler.Min))
	}
	if err := p.Core.Validate(); err != nil {
		return fmt.Errorf("core: %w", err)
	}
	if err := p.Skin.Validate(); err != nil {
		return fmt.Errorf("skin: %w", err)
	}
	if !(p.MaxVapourPressureKPa > 0) || !finite(p.MaxVapourPressureKPa) {
		return fmt.Errorf("max_vapour_pressure_kpa: %w: must be a positive number, got %g", domain.ErrConfig, p.MaxVapourPressureKPa)
	}
	return nil
}

// LoadParams reads a YAML (or JSON) parameter file. Keys missing from the file
// keep their default values.
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read params: %w", err)
	}
	return ParseParams(data)
}

// ResolveParams loads path, or returns the defaults when path is empty.
func ResolveParams(path string) (Params, error) {
	if path == "" {
		return DefaultParams(), nil
	}
	return LoadParams(path)
}

// ParseParams decodes YAML or JSON parameter data over the defaults.
func ParseParams(data []byte) (Params, error) {
	p := DefaultParams()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("decode params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Encode renders the parameters as YAML, the format LoadParams reads.
func (p Params) Encode() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	return data, nil
}
