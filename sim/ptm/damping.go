package ptm

import (
	"math"

	"github.com/sirupsen/logrus"
)

// DampingParameters converts an idle interval of the given duration on a
// qubit with lifetimes t1 and t2 into the (gamma, lamda) pair for
// AmpPhDamping. gamma = 1 - exp(-d/T1); lamda is the pure dephasing needed
// so that coherences decay by exactly exp(-d/T2) overall.
//
// T2 > 2·T1 cannot be reached by any channel; lamda is clamped to 0 and a
// warning is logged. A lifetime of 0 means instant decay.
func DampingParameters(duration, t1, t2 float64) (gamma, lamda float64) {
	if duration <= 0 {
		return 0, 0
	}
	r1 := rate(t1)
	r2 := rate(t2)

	gamma = 1 - math.Exp(-duration*r1)

	switch {
	case math.IsInf(r2, 1):
		lamda = 1
	case math.IsInf(r1, 1):
		// amplitude damping already removed every coherence
		lamda = 0
	default:
		phi := 2*r2 - r1
		if phi < 0 {
			if -phi > 1e-12*r1 {
				logrus.Warnf("T2=%g exceeds 2*T1=%g; pure dephasing clamped to zero", t2, 2*t1)
			}
			phi = 0
		}
		lamda = 1 - math.Exp(-duration*phi)
	}
	return gamma, lamda
}

func rate(lifetime float64) float64 {
	if lifetime == 0 {
		return math.Inf(1)
	}
	return 1 / lifetime
}
