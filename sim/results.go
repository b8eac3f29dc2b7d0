package sim

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Results aggregates what the measurements of all shots declared.
// Outcome keys have the form "bit@time=value"; P1 keys drop the value.
type Results struct {
	RunID                    string             `yaml:"run_id"`
	Circuit                  string             `yaml:"circuit"`
	Shots                    int                `yaml:"shots"`
	Rounds                   int                `yaml:"rounds"`
	Seed                     int64              `yaml:"seed"`
	Histogram                []map[string]int   `yaml:"histogram"` // one outcome histogram per round
	P1                       map[string]float64 `yaml:"p1"`        // fraction of declared ones per measurement, over all rounds
	MeanTrace                float64            `yaml:"mean_trace"`
	MeanClassicalProbability float64            `yaml:"mean_classical_probability"`
}

// Print writes a human-readable summary of the results.
func (r *Results) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Results ===")
	fmt.Fprintf(w, "Run ID               : %s\n", r.RunID)
	fmt.Fprintf(w, "Circuit              : %s\n", r.Circuit)
	fmt.Fprintf(w, "Shots                : %d\n", r.Shots)
	fmt.Fprintf(w, "Rounds               : %d\n", r.Rounds)
	fmt.Fprintf(w, "Mean Trace           : %.6f\n", r.MeanTrace)
	fmt.Fprintf(w, "Mean Classical Prob. : %.6f\n", r.MeanClassicalProbability)
	for i, h := range r.Histogram {
		if len(h) == 0 {
			continue
		}
		fmt.Fprintf(w, "--- Round %d ---\n", i+1)
		for _, key := range sortedKeys(h) {
			fmt.Fprintf(w, "  %-24s : %d (%.4f)\n", key, h[key], float64(h[key])/float64(r.Shots))
		}
	}
	if len(r.P1) > 0 {
		fmt.Fprintln(w, "--- P(1) ---")
		for _, key := range sortedKeys(r.P1) {
			fmt.Fprintf(w, "  %-24s : %.4f\n", key, r.P1[key])
		}
	}
}

// SaveYAML writes the results to path.
func (r *Results) SaveYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
