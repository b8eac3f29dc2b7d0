package backend

import "fmt"

// Pow4 returns 4^k.
func Pow4(k int) int {
	return 1 << (2 * k)
}

// CheckSingle panics unless q is a valid qubit of an n-qubit register and p
// is 4x4.
func CheckSingle(n, q int, p PTM) {
	if q < 0 || q >= n {
		panic(fmt.Sprintf("qubit index %d out of range [0,%d)", q, n))
	}
	if r, c := p.Dims(); r != 4 || c != 4 {
		panic(fmt.Sprintf("single-qubit PTM must be 4x4, got %dx%d", r, c))
	}
}

// CheckTwo panics unless q0 != q1 are valid qubits of an n-qubit register
// and p is 16x16.
func CheckTwo(n, q0, q1 int, p PTM) {
	if q0 < 0 || q0 >= n || q1 < 0 || q1 >= n {
		panic(fmt.Sprintf("qubit indices (%d,%d) out of range [0,%d)", q0, q1, n))
	}
	if q0 == q1 {
		panic(fmt.Sprintf("two-qubit PTM applied twice to qubit %d", q0))
	}
	if r, c := p.Dims(); r != 16 || c != 16 {
		panic(fmt.Sprintf("two-qubit PTM must be 16x16, got %dx%d", r, c))
	}
}

// SingleGroups returns the number of independent 4-element groups touched
// by a single-qubit PTM on an n-qubit register.
func SingleGroups(n int) int {
	return Pow4(n - 1)
}

// TwoGroups returns the number of independent 16-element groups touched by
// a two-qubit PTM on an n-qubit register.
func TwoGroups(n int) int {
	return Pow4(n - 2)
}

// insertZeroDigit widens x by inserting a zero base-4 digit at position pos.
func insertZeroDigit(x, pos int) int {
	s := Pow4(pos)
	return (x/s)*s*4 + x%s
}

// SingleKernel applies p to qubit q for groups [from, to). Groups are
// disjoint, so distinct ranges may run concurrently on the same data.
func SingleKernel(data []float64, q int, p PTM, from, to int) {
	var m [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = p.At(i, j)
		}
	}
	stride := Pow4(q)
	var in [4]float64
	for g := from; g < to; g++ {
		base := insertZeroDigit(g, q)
		for j := 0; j < 4; j++ {
			in[j] = data[base+j*stride]
		}
		for i := 0; i < 4; i++ {
			acc := 0.0
			for j := 0; j < 4; j++ {
				acc += m[i][j] * in[j]
			}
			data[base+i*stride] = acc
		}
	}
}

// TwoKernel applies p to qubits (q0, q1) for groups [from, to).
func TwoKernel(data []float64, q0, q1 int, p PTM, from, to int) {
	var m [16][16]float64
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			m[i][j] = p.At(i, j)
		}
	}
	lo, hi := q0, q1
	if lo > hi {
		lo, hi = hi, lo
	}
	s0, s1 := Pow4(q0), Pow4(q1)
	var offsets [16]int
	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			offsets[a*4+b] = a*s0 + b*s1
		}
	}
	var in [16]float64
	for g := from; g < to; g++ {
		base := insertZeroDigit(insertZeroDigit(g, lo), hi)
		for j := 0; j < 16; j++ {
			in[j] = data[base+offsets[j]]
		}
		for i := 0; i < 16; i++ {
			acc := 0.0
			for j := 0; j < 16; j++ {
				acc += m[i][j] * in[j]
			}
			data[base+offsets[i]] = acc
		}
	}
}

// DiagIndex returns the coefficient index of the population of
// computational basis state bits in an n-qubit register.
func DiagIndex(bits, n int) int {
	idx := 0
	for i := 0; i < n; i++ {
		if bits>>i&1 == 1 {
			idx += 3 * Pow4(i)
		}
	}
	return idx
}
