// Package backend defines the dense density-matrix backends that hold the
// quantum part of a simulated register.
//
// A backend stores 4^n real coefficients of ρ in the 0xy1 basis
// {|0><0|, σx/√2, σy/√2, |1><1|}; qubit i is base-4 digit i of the index.
// Implementations live in sub-packages and register themselves through
// Register from an init() function:
//   - sim/backend/cpu: single-goroutine kernels
//   - sim/backend/parallel: the same kernels split across goroutines
package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Backend is a dense density matrix over n qubits.
//
// Methods taking a qubit index or a PTM panic on out-of-range indices or
// wrong PTM shapes; callers validate first.
type Backend interface {
	// NumQubits returns the number of qubits held.
	NumQubits() int
	// ApplyPTM applies a 4x4 PTM to qubit q.
	ApplyPTM(q int, p PTM)
	// ApplyTwoPTM applies a 16x16 PTM to qubits (q0, q1); q0 is the first
	// tensor factor.
	ApplyTwoPTM(q0, q1 int, p PTM)
	// AddQubit appends a qubit in computational basis state 0 or 1 at
	// index NumQubits().
	AddQubit(state int)
	// ProjectMeasurement keeps the branch where qubit q is in state, without
	// renormalizing, and removes q. Qubits above q shift down by one.
	ProjectMeasurement(q, state int)
	// PeakMeasurement returns the unnormalized probabilities of qubit q.
	PeakMeasurement(q int) (p0, p1 float64)
	// Diag returns the computational-basis populations, qubit i being bit i.
	Diag() []float64
	// Trace returns Tr(ρ).
	Trace() float64
	// Renormalize scales ρ to unit trace.
	Renormalize()
	// Coefficients returns a copy of the 0xy1 coefficients.
	Coefficients() []float64
	// Copy returns an independent copy.
	Copy() Backend
}

// PTM is the matrix view a backend needs from a Pauli transfer matrix.
// *mat.Dense satisfies it.
type PTM interface {
	At(i, j int) float64
	Dims() (r, c int)
}

// Factory creates an empty (zero-qubit, unit-trace) backend.
type Factory func() Backend

// DefaultName is the backend used when none is configured.
const DefaultName = "cpu"

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a backend available under name. Registering a name twice
// panics.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("backend %q registered twice", name))
	}
	registry[name] = f
}

// New creates an empty backend by name. The empty name selects DefaultName.
func New(name string) (Backend, error) {
	if name == "" {
		name = DefaultName
	}
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (registered: %v)", name, Names())
	}
	return f(), nil
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsValid reports whether name is registered (or empty, meaning default).
func IsValid(name string) bool {
	if name == "" {
		return true
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
