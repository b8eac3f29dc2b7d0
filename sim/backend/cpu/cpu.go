// Package cpu is the single-goroutine density-matrix backend.
package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/quantumsim/quantumsim/sim/backend"
)

// Name is the registry name of this backend.
const Name = "cpu"

// DM is a dense density matrix over n qubits stored as 4^n coefficients in
// the 0xy1 basis.
type DM struct {
	n    int
	data []float64
}

// New returns a zero-qubit density matrix with unit trace.
func New() *DM {
	return &DM{n: 0, data: []float64{1}}
}

// NumQubits returns the number of qubits held.
func (d *DM) NumQubits() int {
	return d.n
}

// Raw exposes the coefficient slice without copying. Callers that write to it
// must preserve its length.
func (d *DM) Raw() []float64 {
	return d.data
}

// ApplyPTM applies a single-qubit PTM to qubit q.
func (d *DM) ApplyPTM(q int, p backend.PTM) {
	backend.CheckSingle(d.n, q, p)
	backend.SingleKernel(d.data, q, p, 0, backend.SingleGroups(d.n))
}

// ApplyTwoPTM applies a two-qubit PTM to qubits (q0, q1).
func (d *DM) ApplyTwoPTM(q0, q1 int, p backend.PTM) {
	backend.CheckTwo(d.n, q0, q1, p)
	backend.TwoKernel(d.data, q0, q1, p, 0, backend.TwoGroups(d.n))
}

// AddQubit appends a qubit in the given computational basis state.
func (d *DM) AddQubit(state int) {
	digit := digitFor(state)
	size := len(d.data)
	next := make([]float64, size*4)
	copy(next[digit*size:], d.data)
	d.data = next
	d.n++
}

// ProjectMeasurement keeps the branch with qubit q in state and removes q.
func (d *DM) ProjectMeasurement(q, state int) {
	if q < 0 || q >= d.n {
		panic(fmt.Sprintf("qubit index %d out of range [0,%d)", q, d.n))
	}
	digit := digitFor(state)
	stride := backend.Pow4(q)
	next := make([]float64, len(d.data)/4)
	for m := range next {
		hi, lo := m/stride, m%stride
		next[m] = d.data[hi*stride*4+digit*stride+lo]
	}
	d.data = next
	d.n--
}

// PeakMeasurement returns the unnormalized probabilities of qubit q.
func (d *DM) PeakMeasurement(q int) (p0, p1 float64) {
	if q < 0 || q >= d.n {
		panic(fmt.Sprintf("qubit index %d out of range [0,%d)", q, d.n))
	}
	for bits, v := range d.Diag() {
		if bits>>q&1 == 0 {
			p0 += v
		} else {
			p1 += v
		}
	}
	return p0, p1
}

// Diag returns the computational-basis populations.
func (d *DM) Diag() []float64 {
	out := make([]float64, 1<<d.n)
	for bits := range out {
		out[bits] = d.data[backend.DiagIndex(bits, d.n)]
	}
	return out
}

// Trace returns Tr(ρ).
func (d *DM) Trace() float64 {
	return floats.Sum(d.Diag())
}

// Renormalize scales ρ to unit trace. A zero-trace matrix is left as is.
func (d *DM) Renormalize() {
	tr := d.Trace()
	if tr == 0 {
		return
	}
	floats.Scale(1/tr, d.data)
}

// Coefficients returns a copy of the 0xy1 coefficients.
func (d *DM) Coefficients() []float64 {
	out := make([]float64, len(d.data))
	copy(out, d.data)
	return out
}

// Copy returns an independent copy.
func (d *DM) Copy() backend.Backend {
	return d.Clone()
}

// Clone returns an independent copy with the concrete type.
func (d *DM) Clone() *DM {
	return &DM{n: d.n, data: d.Coefficients()}
}

func digitFor(state int) int {
	switch state {
	case 0:
		return 0
	case 1:
		return 3
	default:
		panic(fmt.Sprintf("basis state must be 0 or 1, got %d", state))
	}
}
