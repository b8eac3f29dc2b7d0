// Package testutil provides shared test infrastructure for the simulator
// packages: float assertions, scripted random sources and golden circuits.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"
)

// GoldenDataset represents the structure of testdata/golden_circuits.yaml.
type GoldenDataset struct {
	Circuits []GoldenCircuit `yaml:"circuits"`
}

// GoldenCircuit is a noiseless QASM program and the exact P(1) of each
// qubit after it ran.
type GoldenCircuit struct {
	Name string             `yaml:"name"`
	QASM string             `yaml:"qasm"`
	P1   map[string]float64 `yaml:"p1"`
}

// LoadGoldenDataset loads the golden circuits from the repo-root testdata
// directory. The path is resolved relative to this source file.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_circuits.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// ScriptedSource returns the given values in order, cycling when they run
// out. It stands in for a seeded RNG where a test needs exact draws.
type ScriptedSource struct {
	Values []float64
	next   int
}

// NewScriptedSource returns a source that yields values cyclically.
func NewScriptedSource(values ...float64) *ScriptedSource {
	return &ScriptedSource{Values: values}
}

// Float64 returns the next scripted value.
func (s *ScriptedSource) Float64() float64 {
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

// Draws reports how many values were consumed.
func (s *ScriptedSource) Draws() int {
	return s.next
}
