package ptm

import (
	"math"
	"math/cmplx"
)

// Operator is a small dense complex matrix (2x2 or 4x4) used for unitaries
// and Kraus operators. Rows are indexed first.
type Operator [][]complex128

// NewOperator returns an n x n zero operator.
func NewOperator(n int) Operator {
	op := make(Operator, n)
	for i := range op {
		op[i] = make([]complex128, n)
	}
	return op
}

// Dim returns the operator dimension.
func (a Operator) Dim() int {
	return len(a)
}

// Mul returns a·b.
func (a Operator) Mul(b Operator) Operator {
	n := len(a)
	out := NewOperator(n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			if a[i][k] == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

// Dagger returns the conjugate transpose.
func (a Operator) Dagger() Operator {
	n := len(a)
	out := NewOperator(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[j][i] = cmplx.Conj(a[i][j])
		}
	}
	return out
}

// Trace returns the sum of diagonal elements.
func (a Operator) Trace() complex128 {
	var tr complex128
	for i := range a {
		tr += a[i][i]
	}
	return tr
}

// Kron returns the Kronecker product a⊗b.
func Kron(a, b Operator) Operator {
	na, nb := len(a), len(b)
	out := NewOperator(na * nb)
	for i := 0; i < na; i++ {
		for j := 0; j < na; j++ {
			if a[i][j] == 0 {
				continue
			}
			for k := 0; k < nb; k++ {
				for l := 0; l < nb; l++ {
					out[i*nb+k][j*nb+l] = a[i][j] * b[k][l]
				}
			}
		}
	}
	return out
}

var invSqrt2 = complex(1/math.Sqrt2, 0)

// singleBasis is the 0xy1 basis: |0><0|, X/√2, Y/√2, |1><1|.
var singleBasis = [4]Operator{
	{{1, 0}, {0, 0}},
	{{0, invSqrt2}, {invSqrt2, 0}},
	{{0, -1i * invSqrt2}, {1i * invSqrt2, 0}},
	{{0, 0}, {0, 1}},
}

// pauliBasis is the normalized Pauli basis: I/√2, X/√2, Y/√2, Z/√2.
var pauliBasis = [4]Operator{
	{{invSqrt2, 0}, {0, invSqrt2}},
	{{0, invSqrt2}, {invSqrt2, 0}},
	{{0, -1i * invSqrt2}, {1i * invSqrt2, 0}},
	{{invSqrt2, 0}, {0, -invSqrt2}},
}

var twoBasis = func() [16]Operator {
	var out [16]Operator
	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			out[a*4+b] = Kron(singleBasis[a], singleBasis[b])
		}
	}
	return out
}()

// BasisElement returns element i of the single-qubit 0xy1 basis.
func BasisElement(i int) Operator {
	src := singleBasis[i]
	out := NewOperator(2)
	for r := range src {
		copy(out[r], src[r])
	}
	return out
}
