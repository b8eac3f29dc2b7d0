package overlay

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/quantumsim/quantumsim/sim/circuit"
	"github.com/quantumsim/quantumsim/sim/ptm"
)

// Builder schedules gates on a circuit as soon as possible: a gate starts
// once every qubit it touches is free and is placed at the center of its
// duration.
type Builder struct {
	setup        *Setup
	circuit      *circuit.Circuit
	free         map[string]float64
	photons      map[string]*photonWindow
	measurements []*circuit.Measurement
}

// NewBuilder returns a builder over a new circuit holding every qubit of
// the setup.
func NewBuilder(setup *Setup, title string) (*Builder, error) {
	b := &Builder{
		setup:   setup,
		circuit: circuit.New(title),
		free:    make(map[string]float64),
		photons: make(map[string]*photonWindow),
	}
	for _, q := range setup.QubitNames() {
		p := setup.Qubits[q]
		if err := b.circuit.AddQubit(circuit.NewQubit(q, p.T1, p.T2)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Circuit exposes the circuit under construction.
func (b *Builder) Circuit() *circuit.Circuit { return b.circuit }

// Measurements returns the measurements added so far in scheduling order.
func (b *Builder) Measurements() []*circuit.Measurement { return b.measurements }

// Time returns the end of the latest scheduled gate.
func (b *Builder) Time() float64 {
	var t float64
	for _, f := range b.free {
		if f > t {
			t = f
		}
	}
	return t
}

// AddGate schedules the named gate with the device duration of its first
// qubit.
func (b *Builder) AddGate(name string, qubits []string, params circuit.Params) (circuit.Gate, error) {
	kind, err := b.setup.Resolve(name)
	if err != nil {
		return nil, err
	}
	if len(qubits) == 0 {
		return nil, fmt.Errorf("gate %q needs at least one qubit", name)
	}
	p, ok := b.setup.Qubits[qubits[0]]
	if !ok {
		return nil, fmt.Errorf("qubit %q is not part of the setup", qubits[0])
	}
	return b.AddTimedGate(name, qubits, params, p.Duration(kind))
}

// AddTimedGate schedules the named gate with an explicit duration.
func (b *Builder) AddTimedGate(name string, qubits []string, params circuit.Params, duration float64) (circuit.Gate, error) {
	kind, err := b.setup.Resolve(name)
	if err != nil {
		return nil, err
	}
	for _, q := range qubits {
		if _, ok := b.setup.Qubits[q]; !ok {
			return nil, fmt.Errorf("qubit %q is not part of the setup", q)
		}
	}
	if kind == KindMeasure {
		if len(qubits) != 1 {
			return nil, fmt.Errorf("measure acts on one qubit, got %d", len(qubits))
		}
		return b.addMeasurement(qubits[0], "", duration)
	}

	req := &GateRequest{Kind: kind, Qubits: qubits, Params: copyParams(params), Duration: duration}
	if len(qubits) == 1 {
		if _, set := req.Params["dephasing_angle"]; !set {
			if d := b.setup.Qubits[qubits[0]].DephasingAngle; d != 0 {
				req.Params["dephasing_angle"] = d
			}
		}
	}
	for _, rule := range b.setup.UpdateRules {
		rule(b.setup, req)
	}

	start := b.start(req.Qubits)
	g, err := circuit.NewGate(req.Kind, req.Qubits, start+req.Duration/2, req.Params)
	if err != nil {
		return nil, err
	}
	b.circuit.AddGate(g)
	end := start + req.Duration
	b.occupy(req.Qubits, end)
	if req.Kind == "reset" {
		p := b.setup.Qubits[req.Qubits[0]]
		b.addPopulationFlip(req.Qubits[0], end, p.PExcInit, p.PDecInit)
	}
	return g, nil
}

// AddMeasurement schedules a measurement of qubit with the setup's sampler.
// A non-empty outputBit is added to the circuit as a classical bit.
func (b *Builder) AddMeasurement(qubit, outputBit string) (*circuit.Measurement, error) {
	p, ok := b.setup.Qubits[qubit]
	if !ok {
		return nil, fmt.Errorf("qubit %q is not part of the setup", qubit)
	}
	g, err := b.addMeasurement(qubit, outputBit, p.MsmtTime)
	if err != nil {
		return nil, err
	}
	return g.(*circuit.Measurement), nil
}

func (b *Builder) addMeasurement(qubit, outputBit string, duration float64) (circuit.Gate, error) {
	if outputBit != "" && !contains(b.circuit.QubitNames(), outputBit) {
		if err := b.circuit.AddQubit(circuit.NewClassicalBit(outputBit)); err != nil {
			return nil, err
		}
	}
	start := b.start([]string{qubit})
	p := b.setup.Qubits[qubit]
	b.addPopulationFlip(qubit, start, p.PExcFin, p.PDecFin)
	m := circuit.NewMeasurement(qubit, start+duration/2, b.setup.Samplers[qubit], outputBit)
	b.circuit.AddGate(m)
	b.measurements = append(b.measurements, m)
	end := start + duration
	b.occupy([]string{qubit}, end)
	if p.Photons {
		b.photons[qubit] = &photonWindow{since: end, applied: end}
	}
	return m, nil
}

// Wait advances the given qubits, or all of them, by their interval time.
func (b *Builder) Wait(qubits ...string) {
	if len(qubits) == 0 {
		qubits = b.setup.QubitNames()
	}
	for _, q := range qubits {
		b.free[q] += b.setup.Qubits[q].IntervalTime
	}
}

// Align makes the given qubits free at the same time, the latest of their
// free times, so the next gates on them start together.
func (b *Builder) Align(qubits ...string) {
	var t float64
	for _, q := range qubits {
		if b.free[q] > t {
			t = b.free[q]
		}
	}
	for _, q := range qubits {
		b.free[q] = t
	}
}

// Finish flushes pending photon dephasing, adds waiting gates up to tmax
// and orders the circuit. A tmax not after the latest gate end is replaced
// by that end.
func (b *Builder) Finish(tmax float64) *circuit.Circuit {
	if end := b.Time(); tmax < end {
		tmax = end
	}
	for _, q := range sortedNames(b.photons) {
		b.addPhotonDephasing(q, tmax)
	}
	b.circuit.AddWaitingGates(circuit.WaitingOptions{TMin: circuit.Bound(0), TMax: circuit.Bound(tmax)})
	b.circuit.Order()
	logrus.Debugf("overlay: built %q with %d gates ending at t=%g", b.circuit.Title, len(b.circuit.Gates), tmax)
	return b.circuit
}

// start returns the earliest time all qubits are free, first inserting the
// photon dephasing accumulated on any of them since their last measurement.
func (b *Builder) start(qubits []string) float64 {
	var t float64
	for _, q := range qubits {
		if b.free[q] > t {
			t = b.free[q]
		}
	}
	for _, q := range qubits {
		b.addPhotonDephasing(q, t)
	}
	return t
}

// photonWindow tracks a resonator populated by the measurement ending at
// since; dephasing up to applied is already in the circuit.
type photonWindow struct {
	since, applied float64
}

func (b *Builder) addPhotonDephasing(qubit string, until float64) {
	w, ok := b.photons[qubit]
	if !ok || until <= w.applied {
		return
	}
	res := b.setup.Qubits[qubit].Resonator
	p := res.PTM(w.applied-w.since, until-w.since)
	b.circuit.AddGate(circuit.NewSinglePTMGate(qubit, (w.applied+until)/2, p, "photons"))
	w.applied = until
}

// addPopulationFlip places a zero-duration flip channel at time t unless
// both probabilities are zero.
func (b *Builder) addPopulationFlip(qubit string, t, pExc, pDec float64) {
	if pExc == 0 && pDec == 0 {
		return
	}
	b.circuit.AddGate(circuit.NewSinglePTMGate(qubit, t, ptm.PopulationFlip(pExc, pDec), "flip"))
}

func (b *Builder) occupy(qubits []string, until float64) {
	for _, q := range qubits {
		b.free[q] = until
	}
}

func copyParams(p circuit.Params) circuit.Params {
	out := make(circuit.Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
