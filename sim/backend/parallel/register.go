// register.go wires the parallel backend into the backend registry.
package parallel

import "github.com/quantumsim/quantumsim/sim/backend"

func init() {
	backend.Register(Name, func() backend.Backend { return New(0) })
}
