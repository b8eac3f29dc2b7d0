package circuit

import "math"

// Bit is a named register element: a decohering qubit or a classical bit.
type Bit interface {
	Name() string
	// Decoherence returns the effective lifetimes over [start, end]. ok is
	// false when the bit does not decay at all and needs no idle noise.
	Decoherence(start, end float64) (t1, t2 float64, ok bool)
}

// Qubit is a qubit with constant lifetimes. Infinite lifetimes mean no
// idle noise.
type Qubit struct {
	name   string
	T1, T2 float64
}

// NewQubit returns a qubit with the given lifetimes.
func NewQubit(name string, t1, t2 float64) *Qubit {
	return &Qubit{name: name, T1: t1, T2: t2}
}

// NewIdealQubit returns a qubit with infinite lifetimes.
func NewIdealQubit(name string) *Qubit {
	return NewQubit(name, math.Inf(1), math.Inf(1))
}

// Name returns the qubit name.
func (q *Qubit) Name() string { return q.name }

// Decoherence returns the constant lifetimes.
func (q *Qubit) Decoherence(_, _ float64) (float64, float64, bool) {
	if math.IsInf(q.T1, 1) && math.IsInf(q.T2, 1) {
		return q.T1, q.T2, false
	}
	return q.T1, q.T2, true
}

// ClassicalBit holds a classical value only; it never decoheres.
type ClassicalBit struct {
	name string
}

// NewClassicalBit returns a classical bit.
func NewClassicalBit(name string) *ClassicalBit {
	return &ClassicalBit{name: name}
}

// Name returns the bit name.
func (c *ClassicalBit) Name() string { return c.name }

// Decoherence always reports no idle noise.
func (c *ClassicalBit) Decoherence(_, _ float64) (float64, float64, bool) {
	return math.Inf(1), math.Inf(1), false
}

// Window is an interval [Start, End] during which an extra decay channel
// with lifetime Value acts on a qubit.
type Window struct {
	Start, End, Value float64
}

// VariableDecoherenceQubit is a qubit whose decay rate is raised during
// windows, e.g. while a neighbour is being driven.
type VariableDecoherenceQubit struct {
	name           string
	BaseT1, BaseT2 float64
	T1s, T2s       []Window
}

// NewVariableDecoherenceQubit returns a qubit with base lifetimes and extra
// decay windows.
func NewVariableDecoherenceQubit(name string, baseT1, baseT2 float64, t1s, t2s []Window) *VariableDecoherenceQubit {
	return &VariableDecoherenceQubit{name: name, BaseT1: baseT1, BaseT2: baseT2, T1s: t1s, T2s: t2s}
}

// Name returns the qubit name.
func (v *VariableDecoherenceQubit) Name() string { return v.name }

// Decoherence returns lifetimes whose rates are the time average over
// [start, end] of the base rate plus every active window's rate.
func (v *VariableDecoherenceQubit) Decoherence(start, end float64) (float64, float64, bool) {
	r1 := averagedRate(v.BaseT1, v.T1s, start, end)
	r2 := averagedRate(v.BaseT2, v.T2s, start, end)
	if r1 == 0 && r2 == 0 {
		return math.Inf(1), math.Inf(1), false
	}
	return 1 / r1, 1 / r2, true
}

func averagedRate(base float64, windows []Window, start, end float64) float64 {
	r := 1 / base
	for _, w := range windows {
		var frac float64
		if end > start {
			overlap := math.Min(end, w.End) - math.Max(start, w.Start)
			if overlap <= 0 {
				continue
			}
			frac = overlap / (end - start)
		} else if start >= w.Start && start <= w.End {
			frac = 1
		}
		r += frac / w.Value
	}
	return r
}
