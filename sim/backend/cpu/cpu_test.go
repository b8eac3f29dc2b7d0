package cpu

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/quantumsim/quantumsim/sim/ptm"
	"github.com/quantumsim/quantumsim/sim/tp"
)

// xyHadamard swaps the X and Y coordinates; it squares to the identity.
var xyHadamard = mat.NewDense(4, 4, []float64{
	1, 0, 0, 0,
	0, 0, 1, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
})

func randomDM(t *testing.T, n int, seed int64) *DM {
	t.Helper()
	d := New()
	for i := 0; i < n; i++ {
		d.AddQubit(0)
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range d.data {
		d.data[i] = rng.Float64()
	}
	return d
}

func TestNew_IsUnitTraceScalar(t *testing.T) {
	d := New()
	assert.Equal(t, 0, d.NumQubits())
	assert.Equal(t, 1.0, d.Trace())
	assert.Equal(t, []float64{1}, d.Diag())
}

func TestApplyPTM_Identity(t *testing.T) {
	d := randomDM(t, 4, 1)
	before := d.Coefficients()

	d.ApplyPTM(2, ptm.Identity(4))

	assert.InDeltaSlice(t, before, d.Coefficients(), 1e-14)
}

func TestApplyPTM_XYHadamardSquaresToOne(t *testing.T) {
	d := randomDM(t, 4, 2)
	before := d.Coefficients()

	d.ApplyPTM(2, xyHadamard)
	assert.False(t, floats.EqualApprox(before, d.Coefficients(), 1e-9))

	d.ApplyPTM(2, xyHadamard)
	assert.InDeltaSlice(t, before, d.Coefficients(), 1e-12)
}

func TestApplyPTM_HadamardSquaresToOne(t *testing.T) {
	d := randomDM(t, 4, 3)
	before := d.Coefficients()

	d.ApplyPTM(1, ptm.Hadamard())
	assert.False(t, floats.EqualApprox(before, d.Coefficients(), 1e-9))

	d.ApplyPTM(1, ptm.Hadamard())
	assert.InDeltaSlice(t, before, d.Coefficients(), 1e-12)
}

func TestApplyTwoPTM_Identity(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		d := randomDM(t, n, int64(n))
		before := d.Coefficients()
		d.ApplyTwoPTM(1, 0, ptm.Identity(16))
		assert.InDeltaSlice(t, before, d.Coefficients(), 1e-14, "n=%d", n)
	}
}

func TestApplyTwoPTM_ActsAsTwoSingles(t *testing.T) {
	// GIVEN xy-Hadamard on qubit 2, then xy-Hadamard⊗xy-Hadamard on (2, 0)
	d := randomDM(t, 4, 4)
	before := d.Coefficients()

	d.ApplyPTM(2, xyHadamard)
	d.ApplyTwoPTM(2, 0, tp.Kron(xyHadamard, xyHadamard))
	assert.False(t, floats.EqualApprox(before, d.Coefficients(), 1e-9))

	// WHEN xy-Hadamard is applied to qubit 0 as well
	d.ApplyPTM(0, xyHadamard)

	// THEN every application has cancelled
	assert.InDeltaSlice(t, before, d.Coefficients(), 1e-12)
}

func TestApplyTwoPTM_OrderOfQubitsMatters(t *testing.T) {
	// CNOT with control 0 on |10> (qubit 0 set) flips qubit 1.
	d := New()
	d.AddQubit(1)
	d.AddQubit(0)

	d.ApplyTwoPTM(0, 1, ptm.CNOT())

	diag := d.Diag()
	assert.InDelta(t, 1, diag[0b11], 1e-12)
}

func TestAddQubit_AndDiag(t *testing.T) {
	d := New()
	d.AddQubit(1)
	d.AddQubit(0)
	d.AddQubit(1)

	assert.Equal(t, 3, d.NumQubits())
	diag := d.Diag()
	require.Len(t, diag, 8)
	assert.Equal(t, 1.0, diag[0b101])
	assert.Equal(t, 1.0, d.Trace())
}

func TestPeakAndProject_PlusState(t *testing.T) {
	// GIVEN |0> ⊗ |+>
	d := New()
	d.AddQubit(0)
	d.AddQubit(0)
	d.ApplyPTM(1, ptm.Hadamard())

	p0, p1 := d.PeakMeasurement(1)
	assert.InDelta(t, 0.5, p0, 1e-12)
	assert.InDelta(t, 0.5, p1, 1e-12)

	p0, p1 = d.PeakMeasurement(0)
	assert.InDelta(t, 1, p0, 1e-12)
	assert.InDelta(t, 0, p1, 1e-12)

	// WHEN qubit 1 is projected onto 1
	d.ProjectMeasurement(1, 1)

	// THEN one qubit remains and half the trace is kept
	assert.Equal(t, 1, d.NumQubits())
	assert.InDelta(t, 0.5, d.Trace(), 1e-12)

	d.Renormalize()
	assert.InDelta(t, 1, d.Trace(), 1e-12)
}

func TestProjectMeasurement_ShiftsHigherQubits(t *testing.T) {
	// |q2 q1 q0> = |1 0 1>; removing q1 leaves |q1' q0'> = |1 1>
	d := New()
	d.AddQubit(1)
	d.AddQubit(0)
	d.AddQubit(1)

	d.ProjectMeasurement(1, 0)

	assert.Equal(t, 2, d.NumQubits())
	assert.InDelta(t, 1, d.Diag()[0b11], 1e-12)
}

func TestTrace_SumsPopulationsByBit(t *testing.T) {
	d := randomDM(t, 5, 5)
	diag := d.Diag()
	for q := 0; q < 5; q++ {
		p0, p1 := d.PeakMeasurement(q)
		var w0, w1 float64
		for bits, v := range diag {
			if bits&(1<<q) == 0 {
				w0 += v
			} else {
				w1 += v
			}
		}
		assert.InDelta(t, w0, p0, 1e-12)
		assert.InDelta(t, w1, p1, 1e-12)
		assert.InDelta(t, d.Trace(), p0+p1, 1e-12)
	}
}

func TestCopy_IsIndependent(t *testing.T) {
	d := New()
	d.AddQubit(0)
	c := d.Copy()

	d.ApplyPTM(0, ptm.RotateY(math.Pi))

	assert.InDelta(t, 1, c.Diag()[0], 1e-12)
	assert.InDelta(t, 0, d.Diag()[0], 1e-12)
}

func TestPanics_OnInvalidArguments(t *testing.T) {
	d := New()
	d.AddQubit(0)
	assert.Panics(t, func() { d.ApplyPTM(1, ptm.Hadamard()) })
	assert.Panics(t, func() { d.ApplyPTM(0, ptm.CPhase()) })
	assert.Panics(t, func() { d.ApplyTwoPTM(0, 0, ptm.CPhase()) })
	assert.Panics(t, func() { d.AddQubit(2) })
	assert.Panics(t, func() { d.ProjectMeasurement(3, 0) })
}
