// Package parallel is a density-matrix backend that splits PTM kernels
// across goroutines. Results are bit-identical to the cpu backend because
// every coefficient group is computed by exactly one goroutine with the
// same arithmetic.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/quantumsim/quantumsim/sim/backend"
	"github.com/quantumsim/quantumsim/sim/backend/cpu"
)

// Name is the registry name of this backend.
const Name = "parallel"

// minGroupsPerWorker keeps small registers on one goroutine.
const minGroupsPerWorker = 256

// DM embeds the cpu backend and overrides the PTM kernels.
type DM struct {
	*cpu.DM
	workers int
}

// New returns a zero-qubit density matrix that uses up to workers
// goroutines per kernel. workers <= 0 means GOMAXPROCS.
func New(workers int) *DM {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &DM{DM: cpu.New(), workers: workers}
}

// Workers returns the goroutine limit per kernel.
func (d *DM) Workers() int {
	return d.workers
}

// ApplyPTM applies a single-qubit PTM to qubit q.
func (d *DM) ApplyPTM(q int, p backend.PTM) {
	backend.CheckSingle(d.NumQubits(), q, p)
	data := d.Raw()
	d.run(backend.SingleGroups(d.NumQubits()), func(from, to int) {
		backend.SingleKernel(data, q, p, from, to)
	})
}

// ApplyTwoPTM applies a two-qubit PTM to qubits (q0, q1).
func (d *DM) ApplyTwoPTM(q0, q1 int, p backend.PTM) {
	backend.CheckTwo(d.NumQubits(), q0, q1, p)
	data := d.Raw()
	d.run(backend.TwoGroups(d.NumQubits()), func(from, to int) {
		backend.TwoKernel(data, q0, q1, p, from, to)
	})
}

// Copy returns an independent copy.
func (d *DM) Copy() backend.Backend {
	return &DM{DM: d.DM.Clone(), workers: d.workers}
}

func (d *DM) run(groups int, kernel func(from, to int)) {
	chunks := d.workers
	if limit := groups / minGroupsPerWorker; limit < chunks {
		chunks = limit
	}
	if chunks <= 1 {
		kernel(0, groups)
		return
	}
	size := (groups + chunks - 1) / chunks
	var g errgroup.Group
	for from := 0; from < groups; from += size {
		from, to := from, min(from+size, groups)
		g.Go(func() error {
			kernel(from, to)
			return nil
		})
	}
	_ = g.Wait()
}
