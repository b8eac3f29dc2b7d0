// Package photons models the dephasing a qubit suffers from photons left in
// its readout resonator after a measurement.
//
// The resonator is populated with a coherent state of amplitude Alpha0 at
// the end of a measurement, which then leaks out at rate Kappa. While
// photons remain, the dispersive shift Chi dephases the qubit at rate
// 8χ²|α(t)|²/κ with |α(t)|² = |α0|² e^{-κt}.
package photons

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/quantumsim/quantumsim/sim/ptm"
)

// Resonator holds the readout resonator parameters. Times are measured
// from the end of the measurement that populated it.
type Resonator struct {
	Alpha0 float64 `yaml:"alpha0"`
	Kappa  float64 `yaml:"kappa"`
	Chi    float64 `yaml:"chi"`
}

// Validate rejects negative decay rates and dispersive shifts.
func (r Resonator) Validate() error {
	if r.Kappa < 0 || math.IsNaN(r.Kappa) {
		return fmt.Errorf("resonator kappa must be >= 0, got %v", r.Kappa)
	}
	if r.Chi < 0 || math.IsNaN(r.Chi) {
		return fmt.Errorf("resonator chi must be >= 0, got %v", r.Chi)
	}
	return nil
}

// Photons returns the mean photon number at time t.
func (r Resonator) Photons(t float64) float64 {
	return r.Alpha0 * r.Alpha0 * math.Exp(-r.Kappa*t)
}

// CoherenceFactor returns the factor by which the qubit coherences shrink
// between t0 and t1.
func (r Resonator) CoherenceFactor(t0, t1 float64) float64 {
	if r.Kappa == 0 || r.Alpha0 == 0 || t1 <= t0 {
		return 1
	}
	k2 := r.Kappa * r.Kappa
	exponent := 8 * r.Chi * r.Chi * r.Alpha0 * r.Alpha0 / k2 * (math.Exp(-r.Kappa*t0) - math.Exp(-r.Kappa*t1))
	return math.Exp(-exponent)
}

// PTM returns the pure-dephasing PTM for the interval [t0, t1].
func (r Resonator) PTM(t0, t1 float64) *mat.Dense {
	f := r.CoherenceFactor(t0, t1)
	return ptm.Dephasing(1-f, 1-f, 0)
}
