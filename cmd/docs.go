package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quantumsim/quantumsim/sim/backend"
)

// modulePath prefixes the package of every documentation page.
const modulePath = "github.com/quantumsim/quantumsim/"

// DocPage is one entry of the documentation index.
type DocPage struct {
	Name    string
	Package string
	Summary string
}

// DocSection groups pages under a heading.
type DocSection struct {
	Title string
	Pages []DocPage
}

// DocIndex returns the documentation table of contents. It is static.
func DocIndex() []DocSection {
	return []DocSection{
		{
			Title: "High-level interface",
			Pages: []DocPage{
				{"circuit", "sim/circuit", "qubits, gates, samplers and circuits"},
				{"sparsedm", "sim/sparsedm", "sparse density matrices over named bits"},
				{"ptm", "sim/ptm", "Pauli transfer matrices of gates and noise"},
				{"qasm", "sim/qasm", "configurable QASM parser"},
				{"photons", "sim/photons", "resonator photon dephasing"},
				{"tp", "sim/tp", "composition of Pauli transfer matrices"},
			},
		},
		{
			Title: "Backends",
			Pages: []DocPage{
				{"cpu", "sim/backend/cpu", "serial CPU backend"},
				{"parallel", "sim/backend/parallel", "parallel backend splitting kernels across goroutines"},
			},
		},
	}
}

// writeDocIndex prints the documentation index.
func writeDocIndex(w io.Writer) error {
	fmt.Fprintln(w, "quantumsim documentation")
	for _, section := range DocIndex() {
		fmt.Fprintf(w, "\n%s\n", section.Title)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, p := range section.Pages {
			fmt.Fprintf(tw, "  %s\t%s%s\t%s\n", p.Name, modulePath, p.Package, p.Summary)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Print the documentation index",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeDocIndex(os.Stdout)
	},
}

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the registered density-matrix backends",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range backend.Names() {
			suffix := ""
			if name == backend.DefaultName {
				suffix = " (default)"
			}
			fmt.Fprintf(os.Stdout, "%s%s\n", name, suffix)
		}
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(backendsCmd)
}
