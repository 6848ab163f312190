package model

import (
	"fmt"
	"math"

	"github.com/couchcryptid/heat-response/internal/domain"
)

// ScalerParams are the min_ and scale_ attributes of a fitted min-max scaler.
// Entries correspond positionally to one feature or output dimension.
type ScalerParams struct {
	Min   []float64 `json:"min" yaml:"min"`
	Scale []float64 `json:"scale" yaml:"scale"`
}

// Validate checks the parameters can build a Scaler.
func (p ScalerParams) Validate() error {
	if len(p.Min) != len(p.Scale) {
		return fmt.Errorf("%w: scaler min has %d entries, scale has %d", domain.ErrConfig, len(p.Min), len(p.Scale))
	}
	if len(p.Min) == 0 {
		return fmt.Errorf("%w: scaler has no dimensions", domain.ErrConfig)
	}
	for i := range p.Scale {
		if p.Scale[i] == 0 {
			return fmt.Errorf("%w: scaler scale[%d] is zero", domain.ErrConfig, i)
		}
		if !finite(p.Scale[i]) || !finite(p.Min[i]) {
			return fmt.Errorf("%w: scaler entry %d is not finite", domain.ErrConfig, i)
		}
	}
	return nil
}

// Scaler is an immutable elementwise affine transform between raw physical
// units and the normalized space the coefficients were trained in.
type Scaler struct {
	min   []float64
	scale []float64
}

// NewScaler copies params into a Scaler. Mismatched lengths and zero scale
// factors are rejected here so the transforms never divide by zero.
func NewScaler(params ScalerParams) (*Scaler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Scaler{
		min:   append([]float64(nil), params.Min...),
		scale: append([]float64(nil), params.Scale...),
	}, nil
}

// Dim is the number of dimensions the scaler accepts.
func (s *Scaler) Dim() int { return len(s.min) }

// Transform maps raw values into normalized space: v*scale + min.
func (s *Scaler) Transform(values []float64) ([]float64, error) {
	if err := s.checkDim(values); err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v*s.scale[i] + s.min[i]
	}
	return out, nil
}

// InverseTransform maps normalized values back to raw units: (v-min)/scale.
func (s *Scaler) InverseTransform(values []float64) ([]float64, error) {
	if err := s.checkDim(values); err != nil {
		return nil, fmt.Errorf("inverse transform: %w", err)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.min[i]) / s.scale[i]
	}
	return out, nil
}

func (s *Scaler) checkDim(values []float64) error {
	if len(values) != len(s.min) {
		return fmt.Errorf("%w: got %d values, scaler has %d dimensions", domain.ErrDimension, len(values), len(s.min))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
