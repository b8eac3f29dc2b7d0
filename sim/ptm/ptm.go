// Package ptm builds Pauli transfer matrices (PTMs) for single- and
// two-qubit operations.
//
// All PTMs are expressed in the 0xy1 basis {|0><0|, σx/√2, σy/√2, |1><1|},
// which is orthonormal under the Hilbert-Schmidt product. In this basis the
// computational-basis populations of a density matrix are plain coefficients,
// so measurement and projection never need a change of basis. Two-qubit
// elements are indexed a*4+b for B_a ⊗ B_b, where the first factor is the
// first qubit of the pair.
package ptm

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// FromKraus builds the PTM of the channel ρ → Σ K ρ K†. All operators must
// share dimension 2 or 4.
func FromKraus(kraus ...Operator) (*mat.Dense, error) {
	if len(kraus) == 0 {
		return nil, fmt.Errorf("at least one Kraus operator is required")
	}
	dim := kraus[0].Dim()
	var basis []Operator
	switch dim {
	case 2:
		basis = singleBasis[:]
	case 4:
		basis = twoBasis[:]
	default:
		return nil, fmt.Errorf("unsupported operator dimension %d", dim)
	}
	for _, k := range kraus {
		if k.Dim() != dim {
			return nil, fmt.Errorf("Kraus operators differ in dimension: %d and %d", dim, k.Dim())
		}
	}

	n := len(basis)
	out := mat.NewDense(n, n, nil)
	for _, k := range kraus {
		kd := k.Dagger()
		for j := 0; j < n; j++ {
			img := k.Mul(basis[j]).Mul(kd)
			for i := 0; i < n; i++ {
				out.Set(i, j, out.At(i, j)+real(basis[i].Mul(img).Trace()))
			}
		}
	}
	return out, nil
}

// FromUnitary builds the PTM of ρ → UρU†.
func FromUnitary(u Operator) (*mat.Dense, error) {
	return FromKraus(u)
}

func mustKraus(kraus ...Operator) *mat.Dense {
	p, err := FromKraus(kraus...)
	if err != nil {
		panic(err)
	}
	return p
}

// Identity returns the n x n identity PTM (n = 4 or 16).
func Identity(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// Hadamard returns the PTM of the Hadamard gate.
func Hadamard() *mat.Dense {
	return mustKraus(Operator{
		{invSqrt2, invSqrt2},
		{invSqrt2, -invSqrt2},
	})
}

// RotateX returns the PTM of exp(-iθX/2).
func RotateX(angle float64) *mat.Dense {
	c, s := complex(math.Cos(angle/2), 0), complex(math.Sin(angle/2), 0)
	return mustKraus(Operator{
		{c, -1i * s},
		{-1i * s, c},
	})
}

// RotateY returns the PTM of exp(-iθY/2).
func RotateY(angle float64) *mat.Dense {
	c, s := complex(math.Cos(angle/2), 0), complex(math.Sin(angle/2), 0)
	return mustKraus(Operator{
		{c, -s},
		{s, c},
	})
}

// RotateZ returns the PTM of exp(-iθZ/2).
func RotateZ(angle float64) *mat.Dense {
	return mustKraus(Operator{
		{cmplx.Exp(complex(0, -angle/2)), 0},
		{0, cmplx.Exp(complex(0, angle/2))},
	})
}

// RotateEuler returns the PTM of the general rotation U3(θ, φ, λ).
// U3(-θ, -λ, -φ) is its inverse.
func RotateEuler(theta, phi, lamda float64) *mat.Dense {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return mustKraus(Operator{
		{c, -cmplx.Exp(complex(0, lamda)) * s},
		{cmplx.Exp(complex(0, phi)) * s, cmplx.Exp(complex(0, phi+lamda)) * c},
	})
}

// AmpPhDamping returns the PTM of amplitude damping with probability gamma
// followed by pure dephasing with parameter lamda. Off-diagonal elements
// decay by √(1-γ)·√(1-λ).
func AmpPhDamping(gamma, lamda float64) *mat.Dense {
	ad := mustKraus(
		Operator{{1, 0}, {0, complex(math.Sqrt(1-gamma), 0)}},
		Operator{{0, complex(math.Sqrt(gamma), 0)}, {0, 0}},
	)
	pd := mustKraus(
		Operator{{1, 0}, {0, complex(math.Sqrt(1-lamda), 0)}},
		Operator{{0, 0}, {0, complex(math.Sqrt(lamda), 0)}},
	)
	var out mat.Dense
	out.Mul(pd, ad)
	return &out
}

// Dephasing returns the PTM that shrinks the X, Y and Z Bloch components
// by factors 1-px, 1-py and 1-pz.
func Dephasing(px, py, pz float64) *mat.Dense {
	diag := mat.NewDense(4, 4, nil)
	diag.Set(0, 0, 1)
	diag.Set(1, 1, 1-px)
	diag.Set(2, 2, 1-py)
	diag.Set(3, 3, 1-pz)
	return FromPauliBasis(diag)
}

// Depolarizing returns the PTM of the depolarizing channel with strength p.
func Depolarizing(p float64) *mat.Dense {
	return Dephasing(p, p, p)
}

// Reset returns the PTM that maps every state to |0><0|.
func Reset() *mat.Dense {
	return mustKraus(
		Operator{{1, 0}, {0, 0}},
		Operator{{0, 1}, {0, 0}},
	)
}

// PopulationFlip returns the PTM that excites |0> with probability pExc and
// decays |1> with probability pDec. Coherences shrink by √((1-pExc)(1-pDec)).
func PopulationFlip(pExc, pDec float64) *mat.Dense {
	return mustKraus(
		Operator{{complex(math.Sqrt(1-pExc), 0), 0}, {0, complex(math.Sqrt(1-pDec), 0)}},
		Operator{{0, 0}, {complex(math.Sqrt(pExc), 0), 0}},
		Operator{{0, complex(math.Sqrt(pDec), 0)}, {0, 0}},
	)
}

// CPhaseRotation returns the two-qubit PTM of diag(1, 1, 1, e^{iθ}).
func CPhaseRotation(angle float64) *mat.Dense {
	u := NewOperator(4)
	u[0][0], u[1][1], u[2][2] = 1, 1, 1
	u[3][3] = cmplx.Exp(complex(0, angle))
	return mustKraus(u)
}

// CPhase returns the two-qubit PTM of the controlled-Z gate.
func CPhase() *mat.Dense {
	return CPhaseRotation(math.Pi)
}

// ISwapRotation returns the two-qubit PTM of the partial iSWAP
// exp(iθ(XX+YY)/2); θ = π/2 is the full iSWAP.
func ISwapRotation(angle float64) *mat.Dense {
	c, s := complex(math.Cos(angle), 0), complex(math.Sin(angle), 0)
	u := NewOperator(4)
	u[0][0], u[3][3] = 1, 1
	u[1][1], u[2][2] = c, c
	u[1][2], u[2][1] = 1i*s, 1i*s
	return mustKraus(u)
}

// ISwap returns the two-qubit PTM of the iSWAP gate.
func ISwap() *mat.Dense {
	return ISwapRotation(math.Pi / 2)
}

// CNOT returns the two-qubit PTM of a CNOT with the first qubit as control.
func CNOT() *mat.Dense {
	u := NewOperator(4)
	u[0][0], u[1][1] = 1, 1
	u[2][3], u[3][2] = 1, 1
	return mustKraus(u)
}

// pauliToZXY1 maps normalized Pauli coordinates to 0xy1 coordinates.
var pauliToZXY1 = func() *mat.Dense {
	t := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			t.Set(i, j, real(singleBasis[i].Mul(pauliBasis[j]).Trace()))
		}
	}
	return t
}()

// FromPauliBasis converts a single-qubit PTM given in the normalized
// IXYZ basis into the 0xy1 basis.
func FromPauliBasis(p mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Product(pauliToZXY1, p, pauliToZXY1.T())
	return &out
}

// ToPauliBasis converts a single-qubit PTM from the 0xy1 basis into the
// normalized IXYZ basis.
func ToPauliBasis(p mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Product(pauliToZXY1.T(), p, pauliToZXY1)
	return &out
}
