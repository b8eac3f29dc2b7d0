package circuit

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownGate is returned when a gate name is not registered.
var ErrUnknownGate = errors.New("unknown gate")

// Params carries the numeric arguments of a gate built by name.
type Params map[string]float64

// Get returns the named parameter or def when it is absent.
func (p Params) Get(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Constructor builds a gate on bits at time.
type Constructor func(bits []string, time float64, p Params) Gate

type gateKind struct {
	arity int
	build Constructor
}

func rotationOpts(p Params) []RotationOption {
	if d, ok := p["dephasing_angle"]; ok {
		return []RotationOption{WithDephasingAngle(d)}
	}
	return nil
}

var gateKinds = map[string]gateKind{
	"hadamard": {1, func(b []string, t float64, _ Params) Gate { return NewHadamard(b[0], t) }},
	"rotate_x": {1, func(b []string, t float64, p Params) Gate {
		return NewRotateX(b[0], t, p.Get("angle", 0), rotationOpts(p)...)
	}},
	"rotate_y": {1, func(b []string, t float64, p Params) Gate {
		return NewRotateY(b[0], t, p.Get("angle", 0), rotationOpts(p)...)
	}},
	"rotate_z": {1, func(b []string, t float64, p Params) Gate {
		return NewRotateZ(b[0], t, p.Get("angle", 0), rotationOpts(p)...)
	}},
	"rotate_euler": {1, func(b []string, t float64, p Params) Gate {
		return NewRotateEuler(b[0], t, p.Get("theta", 0), p.Get("phi", 0), p.Get("lamda", 0))
	}},
	"amp_ph_damp": {1, func(b []string, t float64, p Params) Gate {
		return NewAmpPhDamp(b[0], t, p.Get("duration", 0), p.Get("t1", 0), p.Get("t2", 0))
	}},
	"reset":         {1, func(b []string, t float64, _ Params) Gate { return NewReset(b[0], t) }},
	"depolarize":    {1, func(b []string, t float64, p Params) Gate { return NewDepolarize(b[0], t, p.Get("p", 0)) }},
	"classical_not": {1, func(b []string, t float64, _ Params) Gate { return NewClassicalNOT(b[0], t) }},
	"cphase":        {2, func(b []string, t float64, _ Params) Gate { return NewCPhase(b[0], b[1], t) }},
	"cphase_rotation": {2, func(b []string, t float64, p Params) Gate {
		return NewCPhaseRotation(b[0], b[1], t, p.Get("angle", 0))
	}},
	"iswap": {2, func(b []string, t float64, _ Params) Gate { return NewISwap(b[0], b[1], t) }},
	"iswap_rotation": {2, func(b []string, t float64, p Params) Gate {
		return NewISwapRotation(b[0], b[1], t, p.Get("angle", 0))
	}},
	"cnot":           {2, func(b []string, t float64, _ Params) Gate { return NewCNOT(b[0], b[1], t) }},
	"classical_cnot": {2, func(b []string, t float64, _ Params) Gate { return NewClassicalCNOT(b[0], b[1], t) }},
}

// GateNames returns the registered gate names, sorted.
func GateNames() []string {
	names := make([]string, 0, len(gateKinds))
	for n := range gateKinds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GateArity returns the number of bits the named gate acts on.
func GateArity(name string) (int, error) {
	k, ok := gateKinds[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGate, name)
	}
	return k.arity, nil
}

// NewGate builds a registered gate by name.
func NewGate(name string, bits []string, time float64, p Params) (Gate, error) {
	k, ok := gateKinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %v)", ErrUnknownGate, name, GateNames())
	}
	if len(bits) != k.arity {
		return nil, fmt.Errorf("gate %q acts on %d bits, got %d", name, k.arity, len(bits))
	}
	return k.build(bits, time, p), nil
}
