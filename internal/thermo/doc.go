// Package thermo simulates core and skin temperature for one person with a
// discrete-time linear recurrence, and wraps it in the baseline/exposure
// protocol that reports temperature deltas.
package thermo
