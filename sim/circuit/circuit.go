// Package circuit describes timed quantum circuits: the bits they act on,
// the gates applied to them, and how measurements sample outcomes.
//
// A Circuit is a list of gates with absolute times. Applying it to a State
// runs the gates in list order, so Order should be called after gates were
// added out of sequence. Idle decoherence is not implicit: AddWaitingGates
// inserts an amplitude and phase damping gate into every gap between two
// gates on a decohering qubit.
package circuit

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDuplicateQubit is returned when a bit name is added twice.
var ErrDuplicateQubit = errors.New("duplicate qubit")

// Circuit is a titled list of timed gates over named bits.
type Circuit struct {
	Title  string
	Gates  []Gate
	qubits []Bit
}

// New returns an empty circuit.
func New(title string) *Circuit {
	return &Circuit{Title: title}
}

// AddQubit registers a bit.
func (c *Circuit) AddQubit(b Bit) error {
	for _, q := range c.qubits {
		if q.Name() == b.Name() {
			return fmt.Errorf("%w: trying to add qubit with name %q, but it already exists", ErrDuplicateQubit, b.Name())
		}
	}
	c.qubits = append(c.qubits, b)
	return nil
}

// AddNamedQubit registers a Qubit with the given lifetimes.
func (c *Circuit) AddNamedQubit(name string, t1, t2 float64) error {
	return c.AddQubit(NewQubit(name, t1, t2))
}

// Qubits returns the registered bits in insertion order.
func (c *Circuit) Qubits() []Bit {
	out := make([]Bit, len(c.qubits))
	copy(out, c.qubits)
	return out
}

// QubitNames returns the names of the registered bits.
func (c *Circuit) QubitNames() []string {
	names := make([]string, len(c.qubits))
	for i, q := range c.qubits {
		names[i] = q.Name()
	}
	return names
}

// AddGate appends g.
func (c *Circuit) AddGate(g Gate) {
	c.Gates = append(c.Gates, g)
}

// AddGateByName builds a registered gate and appends it.
func (c *Circuit) AddGateByName(name string, bits []string, time float64, p Params) (Gate, error) {
	g, err := NewGate(name, bits, time, p)
	if err != nil {
		return nil, err
	}
	c.AddGate(g)
	return g, nil
}

// AddHadamard appends a Hadamard on bit.
func (c *Circuit) AddHadamard(bit string, time float64) {
	c.AddGate(NewHadamard(bit, time))
}

// AddRotateX appends an x rotation by angle.
func (c *Circuit) AddRotateX(bit string, time, angle float64, opts ...RotationOption) {
	c.AddGate(NewRotateX(bit, time, angle, opts...))
}

// AddRotateY appends a y rotation by angle.
func (c *Circuit) AddRotateY(bit string, time, angle float64, opts ...RotationOption) {
	c.AddGate(NewRotateY(bit, time, angle, opts...))
}

// AddRotateZ appends a z rotation by angle.
func (c *Circuit) AddRotateZ(bit string, time, angle float64, opts ...RotationOption) {
	c.AddGate(NewRotateZ(bit, time, angle, opts...))
}

// AddCPhase appends a controlled-Z on the pair.
func (c *Circuit) AddCPhase(bit0, bit1 string, time float64) {
	c.AddGate(NewCPhase(bit0, bit1, time))
}

// AddMeasurement appends a measurement and returns it so callers can read
// its recorded outcomes.
func (c *Circuit) AddMeasurement(bit string, time float64, sampler Sampler, outputBit string) *Measurement {
	m := NewMeasurement(bit, time, sampler, outputBit)
	c.AddGate(m)
	return m
}

// AddSubcircuit copies the gates of sub into c, shifted by time. Bits found
// in nameMap are renamed; a nil map keeps names.
func (c *Circuit) AddSubcircuit(sub *Circuit, time float64, nameMap map[string]string) {
	rename := func(n string) string {
		if m, ok := nameMap[n]; ok {
			return m
		}
		return n
	}
	for _, g := range sub.Gates {
		c.AddGate(g.Remap(time, rename))
	}
}

// NameMapFromList pairs the bits of sub, in insertion order, with names.
func NameMapFromList(sub *Circuit, names []string) (map[string]string, error) {
	from := sub.QubitNames()
	if len(from) != len(names) {
		return nil, fmt.Errorf("subcircuit %q has %d bits, got %d names", sub.Title, len(from), len(names))
	}
	m := make(map[string]string, len(from))
	for i, n := range from {
		m[n] = names[i]
	}
	return m, nil
}

// WaitingOptions restricts AddWaitingGates. Nil bounds are ignored.
type WaitingOptions struct {
	OnlyQubits []string
	TMin, TMax *float64
}

// Bound is a helper for the optional WaitingOptions fields.
func Bound(t float64) *float64 { return &t }

// AddWaitingGates inserts an AmpPhDamp gate in the middle of every interval
// between consecutive gate times of each decohering qubit. TMin and TMax
// add interval end points and drop gate times outside them.
func (c *Circuit) AddWaitingGates(opts WaitingOptions) {
	only := make(map[string]bool, len(opts.OnlyQubits))
	for _, q := range opts.OnlyQubits {
		only[q] = true
	}

	var added []Gate
	for _, q := range c.qubits {
		name := q.Name()
		if len(only) > 0 && !only[name] {
			continue
		}
		times := c.waitingTimes(name, opts.TMin, opts.TMax)
		for i := 1; i < len(times); i++ {
			start, end := times[i-1], times[i]
			t1, t2, ok := q.Decoherence(start, end)
			if !ok {
				continue
			}
			added = append(added, NewAmpPhDamp(name, (start+end)/2, end-start, t1, t2))
		}
	}
	c.Gates = append(c.Gates, added...)
}

func (c *Circuit) waitingTimes(bit string, tmin, tmax *float64) []float64 {
	lo, hi := math.Inf(-1), math.Inf(1)
	var times []float64
	if tmin != nil {
		lo = *tmin
		times = append(times, lo)
	}
	if tmax != nil {
		hi = *tmax
		times = append(times, hi)
	}
	for _, g := range c.Gates {
		if t := g.Time(); g.InvolvesQubit(bit) && t >= lo && t <= hi {
			times = append(times, t)
		}
	}
	sort.Float64s(times)
	var out []float64
	for _, t := range times {
		if len(out) == 0 || t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}

// Order sorts the gates by time. Gates with equal times keep their
// insertion order.
func (c *Circuit) Order() {
	sort.SliceStable(c.Gates, func(i, j int) bool {
		return c.Gates[i].Time() < c.Gates[j].Time()
	})
}

// ApplyTo applies every gate to s in list order and stops at the first
// failure.
func (c *Circuit) ApplyTo(s State) error {
	for _, g := range c.Gates {
		if err := g.ApplyTo(s); err != nil {
			return fmt.Errorf("circuit %q: %s at t=%g: %w", c.Title, g.Label(), g.Time(), err)
		}
	}
	return nil
}
