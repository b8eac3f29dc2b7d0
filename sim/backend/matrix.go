package backend

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MaxMatrixQubits bounds ToMatrix and Eigenvalues, which build 2^n x 2^n
// matrices.
const MaxMatrixQubits = 10

// basis element entries: element d contributes value at (row, col).
type entry struct {
	row, col int
	value    complex128
}

var basisEntries = [4][]entry{
	{{0, 0, 1}},
	{{0, 1, complex(1/math.Sqrt2, 0)}, {1, 0, complex(1/math.Sqrt2, 0)}},
	{{0, 1, complex(0, -1/math.Sqrt2)}, {1, 0, complex(0, 1/math.Sqrt2)}},
	{{1, 1, 1}},
}

// ToMatrix reconstructs ρ in the computational basis; entry [r][c] uses bit
// i of r and c for qubit i.
func ToMatrix(b Backend) ([][]complex128, error) {
	n := b.NumQubits()
	if n > MaxMatrixQubits {
		return nil, fmt.Errorf("refusing to build a %d-qubit matrix (max %d)", n, MaxMatrixQubits)
	}
	dim := 1 << n
	rho := make([][]complex128, dim)
	for i := range rho {
		rho[i] = make([]complex128, dim)
	}

	coeffs := b.Coefficients()
	digits := make([]int, n)
	for k, c := range coeffs {
		if c == 0 {
			continue
		}
		x := k
		for i := 0; i < n; i++ {
			digits[i] = x % 4
			x /= 4
		}
		accumulate(rho, digits, 0, 0, 0, complex(c, 0))
	}
	return rho, nil
}

func accumulate(rho [][]complex128, digits []int, q, row, col int, value complex128) {
	if q == len(digits) {
		rho[row][col] += value
		return
	}
	for _, e := range basisEntries[digits[q]] {
		accumulate(rho, digits, q+1, row|e.row<<q, col|e.col<<q, value*e.value)
	}
}

// Purity returns Tr(ρ²). The basis is orthonormal, so this is the squared
// norm of the coefficient vector.
func Purity(b Backend) float64 {
	c := b.Coefficients()
	return floats.Dot(c, c)
}

// Eigenvalues returns the eigenvalues of ρ in ascending order.
func Eigenvalues(b Backend) ([]float64, error) {
	rho, err := ToMatrix(b)
	if err != nil {
		return nil, err
	}
	// A Hermitian H = A + iB has the same spectrum, doubled, as the real
	// symmetric matrix [[A, -B], [B, A]].
	dim := len(rho)
	sym := mat.NewSymDense(2*dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			re, im := real(rho[i][j]), imag(rho[i][j])
			sym.SetSym(i, j, re)
			sym.SetSym(dim+i, dim+j, re)
			sym.SetSym(i, dim+j, -im)
			sym.SetSym(j, dim+i, im)
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(sym, false); !ok {
		return nil, fmt.Errorf("eigendecomposition did not converge")
	}
	all := es.Values(nil)
	sort.Float64s(all)
	out := make([]float64, dim)
	for i := range out {
		out[i] = all[2*i]
	}
	return out, nil
}
