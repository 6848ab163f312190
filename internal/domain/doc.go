// Package domain models the inputs and outputs of the heat-response predictor.
//
// # Records
//
// A prediction session is bound to one person ([BiophysicalFeatures]) and is
// evaluated against any number of conditions ([EnvironmentalFeatures]). Units:
//
//	sex          0 = male, 1 = female (the encoding used during training)
//	age          years, > 0
//	height_cm    centimetres, > 0
//	mass_kg      kilograms, > 0
//	ambient_temp degrees Celsius
//	humidity     percent relative humidity, 0–100
//
// Temperatures are reported in degrees Celsius: rectal (core) and mean skin.
//
// # Exposure Results
//
// The gated entry point returns an [ExposureResult] with one of two statuses:
//
//	computed      rectal/skin deltas (exposure minus baseline) are valid numbers
//	out_of_range  the vapour pressure gate tripped; no deltas exist
//
// An out-of-range condition is not an error. On the wire it keeps the shape
// consumers already expect:
//
//	{"status":"out_of_range","rectal_temp_delta":null,"skin_temp_delta":null,"vapour_pressure_kpa":6.27}
//
// # Vapour Pressure
//
// Saturation vapour pressure uses the Magnus-Tetens approximation in kPa:
//
//	svp = 0.61094 * exp(17.625*T / (T + 243.04))
//	avp = svp * RH / 100
//
// # Errors
//
// Contract violations are reported with sentinel errors ([ErrConfig],
// [ErrDimension], [ErrInvalidState], [ErrInvalidInput]) wrapped with context.
// Numeric divergence is not trapped and surfaces as ordinary float values.
package domain
