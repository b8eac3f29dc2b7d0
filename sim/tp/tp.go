// Package tp composes Pauli transfer matrices: products of channels applied
// in sequence and tensor products of channels acting on different qubits.
package tp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/quantumsim/quantumsim/sim/ptm"
)

// Product returns the PTM of applying ptms in order; the first argument is
// applied first. All PTMs must have the same shape.
func Product(ptms ...mat.Matrix) (*mat.Dense, error) {
	if len(ptms) == 0 {
		return nil, fmt.Errorf("product of zero PTMs")
	}
	r, c := ptms[0].Dims()
	if r != c {
		return nil, fmt.Errorf("PTM must be square, got %dx%d", r, c)
	}
	out := mat.DenseCopyOf(ptms[0])
	for i, p := range ptms[1:] {
		pr, pc := p.Dims()
		if pr != r || pc != c {
			return nil, fmt.Errorf("PTM %d has shape %dx%d, want %dx%d", i+1, pr, pc, r, c)
		}
		var next mat.Dense
		next.Mul(p, out)
		out = &next
	}
	return out, nil
}

// Kron returns the two-qubit PTM of a acting on the first qubit and b on
// the second.
func Kron(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Kronecker(a, b)
	return &out
}

// Lift embeds a single-qubit PTM into a two-qubit PTM acting on position 0
// (first qubit) or 1 (second qubit) of the pair.
func Lift(p mat.Matrix, position int) (*mat.Dense, error) {
	switch position {
	case 0:
		return Kron(p, ptm.Identity(4)), nil
	case 1:
		return Kron(ptm.Identity(4), p), nil
	default:
		return nil, fmt.Errorf("position must be 0 or 1, got %d", position)
	}
}

// Conjugate returns aroundᵀ·p·around, which for an orthogonal (unitary)
// PTM is around⁻¹ ∘ p ∘ around: first around, then p, then undo around.
func Conjugate(p, around mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Product(around.T(), p, around)
	return &out
}
