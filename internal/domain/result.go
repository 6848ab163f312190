package domain

import (
	"encoding/json"
	"fmt"
)

// ExposureStatus tags which variant an ExposureResult holds.
type ExposureStatus string

const (
	// StatusComputed means the deltas are valid numbers.
	StatusComputed ExposureStatus = "computed"
	// StatusOutOfRange means the condition tripped the vapour pressure gate.
	// It is a valid outcome, not an error.
	StatusOutOfRange ExposureStatus = "out_of_range"
)

// ExposureResult is the exposure-minus-baseline response for one condition.
// Deltas are only meaningful when Status is StatusComputed; use Deltas to read
// them.
type ExposureResult struct {
	Status            ExposureStatus
	RectalTempDelta   float64
	SkinTempDelta     float64
	VapourPressureKPa float64
}

// Computed builds a result carrying deltas.
func Computed(rectalDelta, skinDelta, vapourPressure float64) ExposureResult {
	return ExposureResult{
		Status:            StatusComputed,
		RectalTempDelta:   rectalDelta,
		SkinTempDelta:     skinDelta,
		VapourPressureKPa: vapourPressure,
	}
}

// OutOfRange builds a result for a condition outside the model's operating range.
func OutOfRange(vapourPressure float64) ExposureResult {
	return ExposureResult{Status: StatusOutOfRange, VapourPressureKPa: vapourPressure}
}

// IsComputed reports whether the result holds deltas.
func (r ExposureResult) IsComputed() bool {
	return r.Status == StatusComputed
}

// Deltas returns the rectal and skin deltas, and false when the condition was
// out of range.
func (r ExposureResult) Deltas() (rectal, skin float64, ok bool) {
	if !r.IsComputed() {
		return 0, 0, false
	}
	return r.RectalTempDelta, r.SkinTempDelta, true
}

// exposureJSON is the wire form: out-of-range deltas are null.
type exposureJSON struct {
	Status            ExposureStatus `json:"status"`
	RectalTempDelta   *float64       `json:"rectal_temp_delta"`
	SkinTempDelta     *float64       `json:"skin_temp_delta"`
	VapourPressureKPa float64        `json:"vapour_pressure_kpa"`
}

func (r ExposureResult) MarshalJSON() ([]byte, error) {
	out := exposureJSON{Status: r.Status, VapourPressureKPa: r.VapourPressureKPa}
	if rectal, skin, ok := r.Deltas(); ok {
		out.RectalTempDelta = &rectal
		out.SkinTempDelta = &skin
	}
	return json.Marshal(out)
}

func (r *ExposureResult) UnmarshalJSON(data []byte) error {
	var in exposureJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode exposure result: %w", err)
	}
	status := in.Status
	if status == "" {
		status = StatusOutOfRange
		if in.RectalTempDelta != nil && in.SkinTempDelta != nil {
			status = StatusComputed
		}
	}
	switch status {
	case StatusComputed:
		if in.RectalTempDelta == nil || in.SkinTempDelta == nil {
			return fmt.Errorf("decode exposure result: computed result without deltas")
		}
		*r = Computed(*in.RectalTempDelta, *in.SkinTempDelta, in.VapourPressureKPa)
	case StatusOutOfRange:
		*r = OutOfRange(in.VapourPressureKPa)
	default:
		return fmt.Errorf("decode exposure result: unknown status %q", status)
	}
	return nil
}
