package sim

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResults() *Results {
	return &Results{
		RunID:   "run-1",
		Circuit: "bell",
		Shots:   4,
		Rounds:  1,
		Seed:    42,
		Histogram: []map[string]int{
			{"b@3=1": 1, "a@2=0": 3, "a@2=1": 1, "b@3=0": 3},
		},
		P1:                       map[string]float64{"b@3": 0.25, "a@2": 0.25},
		MeanTrace:                0.5,
		MeanClassicalProbability: 1,
	}
}

func TestResults_Print(t *testing.T) {
	var buf bytes.Buffer
	sampleResults().Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "=== Simulation Results ===")
	assert.Contains(t, out, "Run ID               : run-1")
	assert.Contains(t, out, "Mean Trace           : 0.500000")
	assert.Contains(t, out, "--- Round 1 ---")
	assert.Contains(t, out, "(0.7500)")

	// THEN outcomes are listed in sorted order
	first := strings.Index(out, "a@2=0")
	last := strings.Index(out, "b@3=1")
	require.True(t, first >= 0 && last >= 0)
	assert.Less(t, first, last)
	assert.Contains(t, out, "--- P(1) ---")
}

func TestResults_SaveYAML(t *testing.T) {
	// GIVEN results saved to disk
	path := filepath.Join(t.TempDir(), "results.yaml")
	require.NoError(t, sampleResults().SaveYAML(path))

	// WHEN the file is read back
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Results
	require.NoError(t, yaml.Unmarshal(data, &got))

	// THEN the histogram and estimates survive with snake_case keys
	assert.Equal(t, sampleResults(), &got)
	assert.Contains(t, string(data), "mean_classical_probability: 1")
}

func TestResults_SaveYAML_BadPath(t *testing.T) {
	err := sampleResults().SaveYAML(filepath.Join(t.TempDir(), "missing", "results.yaml"))
	assert.Error(t, err)
}
