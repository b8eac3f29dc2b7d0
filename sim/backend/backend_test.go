package backend_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumsim/quantumsim/sim/backend"
	_ "github.com/quantumsim/quantumsim/sim/backend/cpu"
	_ "github.com/quantumsim/quantumsim/sim/backend/parallel"
	"github.com/quantumsim/quantumsim/sim/ptm"
)

func TestRegistry_ListsBothBackends(t *testing.T) {
	assert.Equal(t, []string{"cpu", "parallel"}, backend.Names())
	assert.True(t, backend.IsValid(""))
	assert.True(t, backend.IsValid("parallel"))
	assert.False(t, backend.IsValid("gpu"))
}

func TestNew_DefaultAndUnknown(t *testing.T) {
	b, err := backend.New("")
	require.NoError(t, err)
	assert.Equal(t, 0, b.NumQubits())

	_, err = backend.New("gpu")
	assert.Error(t, err)
}

func TestRegister_DuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		backend.Register("cpu", nil)
	})
}

func TestToMatrix_PlusState(t *testing.T) {
	b, err := backend.New("cpu")
	require.NoError(t, err)
	b.AddQubit(0)
	b.ApplyPTM(0, ptm.Hadamard())

	rho, err := backend.ToMatrix(b)
	require.NoError(t, err)

	for _, row := range rho {
		for _, v := range row {
			assert.InDelta(t, 0.5, real(v), 1e-12)
			assert.InDelta(t, 0, imag(v), 1e-12)
		}
	}
}

func TestToMatrix_YEigenstateHasImaginaryCoherence(t *testing.T) {
	// R_x(-π/2)|0> = (|0> + i|1>)/√2, so ρ01 = -i/2.
	b, err := backend.New("cpu")
	require.NoError(t, err)
	b.AddQubit(0)
	b.ApplyPTM(0, ptm.RotateX(-math.Pi/2))

	rho, err := backend.ToMatrix(b)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, imag(rho[0][1]), 1e-12)
	assert.InDelta(t, 0.5, imag(rho[1][0]), 1e-12)
}

func TestEigenvalues_PureTwoQubitState(t *testing.T) {
	// GIVEN an entangled pure state
	b, err := backend.New("cpu")
	require.NoError(t, err)
	b.AddQubit(0)
	b.AddQubit(0)
	b.ApplyPTM(0, ptm.RotateY(1.2))
	b.ApplyPTM(1, ptm.RotateY(0.2))
	b.ApplyPTM(0, ptm.RotateZ(0.1))
	b.ApplyPTM(1, ptm.RotateX(0.3))
	b.ApplyTwoPTM(0, 1, ptm.CPhase())

	// THEN its spectrum is {0, 0, 0, 1} and its purity is 1
	vals, err := backend.Eigenvalues(b)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 1}, vals, 1e-10)
	assert.InDelta(t, 1, backend.Purity(b), 1e-12)
}

func TestEigenvalues_MixedState(t *testing.T) {
	b, err := backend.New("cpu")
	require.NoError(t, err)
	b.AddQubit(0)
	b.ApplyPTM(0, ptm.Hadamard())
	b.ApplyPTM(0, ptm.Dephasing(1, 1, 1))

	vals, err := backend.Eigenvalues(b)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, vals, 1e-10)
	assert.InDelta(t, 0.5, backend.Purity(b), 1e-12)
}

func TestToMatrix_RefusesHugeRegisters(t *testing.T) {
	b, err := backend.New("cpu")
	require.NoError(t, err)
	for i := 0; i <= backend.MaxMatrixQubits; i++ {
		b.AddQubit(0)
	}
	_, err = backend.ToMatrix(b)
	assert.Error(t, err)
}

func TestDiagIndex(t *testing.T) {
	assert.Equal(t, 0, backend.DiagIndex(0, 3))
	assert.Equal(t, 3, backend.DiagIndex(0b001, 3))
	assert.Equal(t, 3*16+3, backend.DiagIndex(0b101, 3))
}
