package circuit

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/quantumsim/quantumsim/sim/backend"
	"github.com/quantumsim/quantumsim/sim/ptm"
	"github.com/quantumsim/quantumsim/sim/tp"
)

// State is what a gate needs from the register it acts on.
// *sparsedm.SparseDM satisfies it.
type State interface {
	ApplyPTM(bit string, p backend.PTM) error
	ApplyTwoPTM(bit0, bit1 string, p backend.PTM) error
	PeakMeasurement(bit string) (p0, p1 float64, err error)
	ProjectMeasurement(bit string, state int) error
	SetBit(bit string, value int) error
	EnsureClassical(bit string) error
	ClassicalValue(bit string) (int, error)
	ScaleClassicalProbability(p float64)
}

// Gate is a timed operation on one or more bits.
type Gate interface {
	Time() float64
	InvolvedQubits() []string
	InvolvesQubit(bit string) bool
	IsMeasurement() bool
	Label() string
	ApplyTo(s State) error
	// Remap returns a copy shifted by dt with every bit passed through rename.
	Remap(dt float64, rename func(string) string) Gate
}

type base struct {
	time  float64
	bits  []string
	label string
}

func newBase(time float64, label string, bits ...string) base {
	return base{time: time, bits: bits, label: label}
}

// Time is the point of the gate on the circuit clock, in ns.
func (b *base) Time() float64 { return b.time }

// InvolvedQubits returns a copy of the bits the gate acts on.
func (b *base) InvolvedQubits() []string {
	out := make([]string, len(b.bits))
	copy(out, b.bits)
	return out
}

func (b *base) InvolvesQubit(bit string) bool {
	for _, q := range b.bits {
		if q == bit {
			return true
		}
	}
	return false
}

func (b *base) IsMeasurement() bool { return false }

// Label names the gate in plots and errors.
func (b *base) Label() string { return b.label }

func (b *base) remapped(dt float64, rename func(string) string) base {
	bits := make([]string, len(b.bits))
	for i, q := range b.bits {
		bits[i] = rename(q)
	}
	return base{time: b.time + dt, bits: bits, label: b.label}
}

// SinglePTMGate applies a fixed 4x4 PTM to one qubit.
type SinglePTMGate struct {
	base
	PTM *mat.Dense
}

// NewSinglePTMGate wraps an arbitrary single-qubit PTM.
func NewSinglePTMGate(bit string, time float64, p *mat.Dense, label string) *SinglePTMGate {
	return &SinglePTMGate{base: newBase(time, label, bit), PTM: p}
}

func (g *SinglePTMGate) ApplyTo(s State) error {
	logrus.Debugf("circuit: %s on %s at t=%g", g.label, g.bits[0], g.time)
	return s.ApplyPTM(g.bits[0], g.PTM)
}

func (g *SinglePTMGate) Remap(dt float64, rename func(string) string) Gate {
	return &SinglePTMGate{base: g.remapped(dt, rename), PTM: g.PTM}
}

// TwoPTMGate applies a fixed 16x16 PTM to a pair; the first bit is the
// first tensor factor.
type TwoPTMGate struct {
	base
	PTM *mat.Dense
}

// NewTwoPTMGate wraps an arbitrary two-qubit PTM.
func NewTwoPTMGate(bit0, bit1 string, time float64, p *mat.Dense, label string) *TwoPTMGate {
	return &TwoPTMGate{base: newBase(time, label, bit0, bit1), PTM: p}
}

func (g *TwoPTMGate) ApplyTo(s State) error {
	logrus.Debugf("circuit: %s on %s,%s at t=%g", g.label, g.bits[0], g.bits[1], g.time)
	return s.ApplyTwoPTM(g.bits[0], g.bits[1], g.PTM)
}

func (g *TwoPTMGate) Remap(dt float64, rename func(string) string) Gate {
	return &TwoPTMGate{base: g.remapped(dt, rename), PTM: g.PTM}
}

// RotationOption configures a rotation gate.
type RotationOption func(*rotation)

type rotation struct {
	dephasing float64
}

// WithDephasingAngle adds dephasing in the plane perpendicular to the
// rotation axis, as produced by an imperfectly calibrated pulse.
func WithDephasingAngle(angle float64) RotationOption {
	return func(r *rotation) { r.dephasing = angle }
}

func newRotation(axis, bit string, time, angle float64, opts []RotationOption) *SinglePTMGate {
	var cfg rotation
	for _, opt := range opts {
		opt(&cfg)
	}
	var p *mat.Dense
	var px, py, pz float64
	switch axis {
	case "x":
		p, py, pz = ptm.RotateX(angle), cfg.dephasing, cfg.dephasing
	case "y":
		p, px, pz = ptm.RotateY(angle), cfg.dephasing, cfg.dephasing
	default:
		p, px, py = ptm.RotateZ(angle), cfg.dephasing, cfg.dephasing
	}
	if cfg.dephasing != 0 {
		// dephasing is isotropic in the rotation plane, so it commutes with p
		p = mustProduct(p, ptm.Dephasing(px, py, pz))
	}
	label := fmt.Sprintf("$R_%s(%s)$", axis, AngleLabel(angle))
	return NewSinglePTMGate(bit, time, p, label)
}

// NewRotateX is a rotation around the x axis.
func NewRotateX(bit string, time, angle float64, opts ...RotationOption) *SinglePTMGate {
	return newRotation("x", bit, time, angle, opts)
}

// NewRotateY is a rotation around the y axis.
func NewRotateY(bit string, time, angle float64, opts ...RotationOption) *SinglePTMGate {
	return newRotation("y", bit, time, angle, opts)
}

// NewRotateZ is a rotation around the z axis.
func NewRotateZ(bit string, time, angle float64, opts ...RotationOption) *SinglePTMGate {
	return newRotation("z", bit, time, angle, opts)
}

// NewRotateEuler is the general single-qubit unitary in U3 convention.
func NewRotateEuler(bit string, time, theta, phi, lamda float64) *SinglePTMGate {
	label := fmt.Sprintf("$U(%s,%s,%s)$", AngleLabel(theta), AngleLabel(phi), AngleLabel(lamda))
	return NewSinglePTMGate(bit, time, ptm.RotateEuler(theta, phi, lamda), label)
}

// NewHadamard applies the Hadamard gate.
func NewHadamard(bit string, time float64) *SinglePTMGate {
	return NewSinglePTMGate(bit, time, ptm.Hadamard(), "H")
}

// NewReset forces the qubit to |0>.
func NewReset(bit string, time float64) *SinglePTMGate {
	return NewSinglePTMGate(bit, time, ptm.Reset(), "R")
}

// NewDepolarize applies a depolarizing channel of strength p.
func NewDepolarize(bit string, time, p float64) *SinglePTMGate {
	return NewSinglePTMGate(bit, time, ptm.Depolarizing(p), fmt.Sprintf("D(%.3g)", p))
}

// AmpPhDamp is idle decay over Duration with lifetimes T1 and T2.
type AmpPhDamp struct {
	SinglePTMGate
	Duration, T1, T2 float64
}

// NewAmpPhDamp builds the damping gate for one idle interval.
func NewAmpPhDamp(bit string, time, duration, t1, t2 float64) *AmpPhDamp {
	gamma, lamda := ptm.DampingParameters(duration, t1, t2)
	return &AmpPhDamp{
		SinglePTMGate: SinglePTMGate{base: newBase(time, "AmpPhDamp", bit), PTM: ptm.AmpPhDamping(gamma, lamda)},
		Duration:      duration,
		T1:            t1,
		T2:            t2,
	}
}

// Remap keeps the damping and moves it to the renamed bit.
func (g *AmpPhDamp) Remap(dt float64, rename func(string) string) Gate {
	return &AmpPhDamp{
		SinglePTMGate: SinglePTMGate{base: g.remapped(dt, rename), PTM: g.PTM},
		Duration:      g.Duration,
		T1:            g.T1,
		T2:            g.T2,
	}
}

// NewCPhase is the controlled-Z gate.
func NewCPhase(bit0, bit1 string, time float64) *TwoPTMGate {
	return NewTwoPTMGate(bit0, bit1, time, ptm.CPhase(), "CZ")
}

// NewCPhaseRotation adds phase angle to |11>.
func NewCPhaseRotation(bit0, bit1 string, time, angle float64) *TwoPTMGate {
	return NewTwoPTMGate(bit0, bit1, time, ptm.CPhaseRotation(angle), fmt.Sprintf("$CZ(%s)$", AngleLabel(angle)))
}

// NewISwap is the full iSWAP gate.
func NewISwap(bit0, bit1 string, time float64) *TwoPTMGate {
	return NewTwoPTMGate(bit0, bit1, time, ptm.ISwap(), "iSWAP")
}

// NewISwapRotation rotates by angle in the {|01>,|10>} subspace.
func NewISwapRotation(bit0, bit1 string, time, angle float64) *TwoPTMGate {
	return NewTwoPTMGate(bit0, bit1, time, ptm.ISwapRotation(angle), fmt.Sprintf("$iSWAP(%s)$", AngleLabel(angle)))
}

// NewCNOT flips target when control is 1.
func NewCNOT(control, target string, time float64) *TwoPTMGate {
	return NewTwoPTMGate(control, target, time, ptm.CNOT(), "CNOT")
}

// AngleLabel formats an angle as a multiple of π when it is one.
func AngleLabel(angle float64) string {
	if math.Abs(angle) < 1e-12 {
		return "0"
	}
	ratio := angle / math.Pi
	for _, den := range []int{1, 2, 3, 4, 8} {
		x := ratio * float64(den)
		num := math.Round(x)
		if num == 0 || math.Abs(x-num) > 1e-9 {
			continue
		}
		var b strings.Builder
		if num < 0 {
			b.WriteString("-")
			num = -num
		}
		if num != 1 {
			fmt.Fprintf(&b, "%d", int(num))
		}
		b.WriteString(`\pi`)
		if den != 1 {
			fmt.Fprintf(&b, "/%d", den)
		}
		return b.String()
	}
	return fmt.Sprintf("%.3g", angle)
}

func mustProduct(ptms ...mat.Matrix) *mat.Dense {
	p, err := tp.Product(ptms...)
	if err != nil {
		panic(err)
	}
	return p
}
