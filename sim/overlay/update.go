package overlay

import (
	"math"

	"github.com/quantumsim/quantumsim/sim/circuit"
)

// GateRequest is a gate about to be scheduled. Update rules may rewrite any
// field before the gate is built.
type GateRequest struct {
	Kind     string
	Qubits   []string
	Params   circuit.Params
	Duration float64
}

// UpdateRule adjusts a gate request to the device state described by the
// setup.
type UpdateRule func(s *Setup, req *GateRequest)

// UpdateQuasistaticFlux turns a CZ into a controlled phase that misses π by
// the summed quasistatic flux of the pair.
func UpdateQuasistaticFlux(s *Setup, req *GateRequest) {
	if req.Kind != "cphase" {
		return
	}
	var offset float64
	var found bool
	for _, q := range req.Qubits {
		if f := s.Qubits[q].QuasistaticFlux; f != nil {
			offset += *f
			found = true
		}
	}
	if !found {
		return
	}
	req.Kind = "cphase_rotation"
	if req.Params == nil {
		req.Params = circuit.Params{}
	}
	req.Params["angle"] = math.Pi + offset
}
