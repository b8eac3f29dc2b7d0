// Package trace provides per-shot trace recording for simulation runs.
// This package has no dependencies on sim/ or its engine packages; it stores pure data types.
package trace

// TraceLevel controls the verbosity of tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelShots captures one record per shot.
	TraceLevelShots TraceLevel = "shots"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelShots: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected at all.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelShots
}

// SimulationTrace collects shot records during a run.
type SimulationTrace struct {
	Config TraceConfig
	RunID  string
	Shots  []ShotRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig, runID string) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		RunID:  runID,
		Shots:  make([]ShotRecord, 0),
	}
}

// RecordShot appends a shot record.
func (st *SimulationTrace) RecordShot(record ShotRecord) {
	st.Shots = append(st.Shots, record)
}
