package domain

import "math"

// SaturationVapourPressure returns the saturation vapour pressure in kPa at
// tempC using the Magnus-Tetens approximation.
func SaturationVapourPressure(tempC float64) float64 {
	return 0.61094 * math.Exp(17.625*tempC/(tempC+243.04))
}

// ActualVapourPressure returns the partial pressure of water vapour in kPa.
func ActualVapourPressure(tempC, humidity float64) float64 {
	return SaturationVapourPressure(tempC) * humidity / 100
}
