package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Sex is encoded exactly as the regression was trained: 0 male, 1 female.
type Sex int

const (
	Male   Sex = 0
	Female Sex = 1
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return fmt.Sprintf("Sex(%d)", int(s))
	}
}

// ParseSex accepts "male"/"m"/"0" and "female"/"f"/"1".
func ParseSex(s string) (Sex, error) {
	switch s {
	case "male", "m", "M", "0":
		return Male, nil
	case "female", "f", "F", "1":
		return Female, nil
	default:
		return 0, fmt.Errorf("%w: unknown sex %q", ErrInvalidInput, s)
	}
}

// MarshalJSON encodes the sex as "male" or "female".
func (s Sex) MarshalJSON() ([]byte, error) {
	if s != Male && s != Female {
		return nil, fmt.Errorf("%w: unknown sex %d", ErrInvalidInput, int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the names ParseSex does, or the bare numbers 0 and 1.
func (s *Sex) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: sex must be a string or 0/1", ErrInvalidInput)
		}
		text = strconv.Itoa(n)
	}
	parsed, err := ParseSex(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// BiophysicalFeatures describes one person. It is fixed for the lifetime of a
// simulator.
type BiophysicalFeatures struct {
	Sex      Sex     `json:"sex"`
	Age      float64 `json:"age"`       // years
	HeightCm float64 `json:"height_cm"` // cm
	MassKg   float64 `json:"mass_kg"`   // kg
}

// Validate reports the first field outside its domain.
func (b BiophysicalFeatures) Validate() error {
	if b.Sex != Male && b.Sex != Female {
		return fmt.Errorf("%w: sex must be 0 (male) or 1 (female), got %d", ErrInvalidInput, int(b.Sex))
	}
	if !positive(b.Age) {
		return fmt.Errorf("%w: age must be > 0, got %g", ErrInvalidInput, b.Age)
	}
	if !positive(b.HeightCm) {
		return fmt.Errorf("%w: height_cm must be > 0, got %g", ErrInvalidInput, b.HeightCm)
	}
	if !positive(b.MassKg) {
		return fmt.Errorf("%w: mass_kg must be > 0, got %g", ErrInvalidInput, b.MassKg)
	}
	return nil
}

// EnvironmentalFeatures is one evaluated condition.
type EnvironmentalFeatures struct {
	AmbientTemp float64 `json:"ambient_temp"` // °C
	Humidity    float64 `json:"humidity"`     // %RH
}

// Validate checks humidity is a percentage and temperature is finite.
func (e EnvironmentalFeatures) Validate() error {
	if math.IsNaN(e.AmbientTemp) || math.IsInf(e.AmbientTemp, 0) {
		return fmt.Errorf("%w: ambient_temp must be finite", ErrInvalidInput)
	}
	if math.IsNaN(e.Humidity) || e.Humidity < 0 || e.Humidity > 100 {
		return fmt.Errorf("%w: humidity must be within [0, 100], got %g", ErrInvalidInput, e.Humidity)
	}
	return nil
}

// Temperatures is a (rectal, skin) pair in °C. It is both the simulation state
// at a step and the result of a raw prediction.
type Temperatures struct {
	Rectal float64 `json:"rectal_temp"`
	Skin   float64 `json:"skin_temp"`
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
