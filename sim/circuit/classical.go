package circuit

import "fmt"

// ClassicalNOT flips a classical bit.
type ClassicalNOT struct {
	base
}

// NewClassicalNOT flips bit at time.
func NewClassicalNOT(bit string, time float64) *ClassicalNOT {
	return &ClassicalNOT{base: newBase(time, "NOT", bit)}
}

// ApplyTo makes the bit classical before flipping it.
func (g *ClassicalNOT) ApplyTo(s State) error {
	bit := g.bits[0]
	if err := s.EnsureClassical(bit); err != nil {
		return err
	}
	v, err := s.ClassicalValue(bit)
	if err != nil {
		return err
	}
	return s.SetBit(bit, 1-v)
}

func (g *ClassicalNOT) Remap(dt float64, rename func(string) string) Gate {
	return &ClassicalNOT{base: g.remapped(dt, rename)}
}

// ClassicalCNOT xors a classical control bit into a classical target bit.
type ClassicalCNOT struct {
	base
}

// NewClassicalCNOT xors control into target at time.
func NewClassicalCNOT(control, target string, time float64) *ClassicalCNOT {
	return &ClassicalCNOT{base: newBase(time, "XOR", control, target)}
}

func (g *ClassicalCNOT) ApplyTo(s State) error {
	control, target := g.bits[0], g.bits[1]
	for _, b := range g.bits {
		if err := s.EnsureClassical(b); err != nil {
			return err
		}
	}
	c, err := s.ClassicalValue(control)
	if err != nil {
		return err
	}
	t, err := s.ClassicalValue(target)
	if err != nil {
		return err
	}
	return s.SetBit(target, c^t)
}

func (g *ClassicalCNOT) Remap(dt float64, rename func(string) string) Gate {
	return &ClassicalCNOT{base: g.remapped(dt, rename)}
}

// ConditionalGate applies ZeroGates or OneGates depending on the value of a
// classical control bit at application time. The inner gates' own times are
// ignored; they run in list order at the conditional gate's time.
type ConditionalGate struct {
	base
	Control   string
	ZeroGates []Gate
	OneGates  []Gate
}

// NewConditionalGate builds a classically controlled block.
func NewConditionalGate(control string, time float64, zeroGates, oneGates []Gate) *ConditionalGate {
	g := &ConditionalGate{Control: control, ZeroGates: zeroGates, OneGates: oneGates}
	g.base = newBase(time, fmt.Sprintf("if %s", control), g.collectBits()...)
	return g
}

func (g *ConditionalGate) collectBits() []string {
	seen := map[string]bool{g.Control: true}
	bits := []string{g.Control}
	for _, list := range [][]Gate{g.ZeroGates, g.OneGates} {
		for _, inner := range list {
			for _, b := range inner.InvolvedQubits() {
				if !seen[b] {
					seen[b] = true
					bits = append(bits, b)
				}
			}
		}
	}
	return bits
}

func (g *ConditionalGate) ApplyTo(s State) error {
	if err := s.EnsureClassical(g.Control); err != nil {
		return err
	}
	v, err := s.ClassicalValue(g.Control)
	if err != nil {
		return err
	}
	branch := g.ZeroGates
	if v == 1 {
		branch = g.OneGates
	}
	for _, inner := range branch {
		if err := inner.ApplyTo(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *ConditionalGate) Remap(dt float64, rename func(string) string) Gate {
	remapAll := func(gates []Gate) []Gate {
		out := make([]Gate, len(gates))
		for i, inner := range gates {
			out[i] = inner.Remap(dt, rename)
		}
		return out
	}
	return NewConditionalGate(rename(g.Control), g.time+dt, remapAll(g.ZeroGates), remapAll(g.OneGates))
}
