// register.go wires the cpu backend into the backend registry. Importing this
// package (directly or blank) makes "cpu" available to backend.New.
package cpu

import "github.com/quantumsim/quantumsim/sim/backend"

func init() {
	backend.Register(Name, func() backend.Backend { return New() })
}
