package trace

import "math"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalShots          int
	MeanTrace           float64
	MinTrace            float64
	MeanWeight          float64        // mean classical probability
	UniqueOutcomes      int            // distinct "bit@time=value" strings
	OutcomeDistribution map[string]int // outcome → number of occurrences
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		OutcomeDistribution: make(map[string]int),
	}
	if st == nil || len(st.Shots) == 0 {
		return summary
	}

	summary.TotalShots = len(st.Shots)
	summary.MinTrace = math.Inf(1)
	totalTrace, totalWeight := 0.0, 0.0
	for _, s := range st.Shots {
		totalTrace += s.Trace
		totalWeight += s.ClassicalProbability
		if s.Trace < summary.MinTrace {
			summary.MinTrace = s.Trace
		}
		for _, o := range s.Outcomes {
			summary.OutcomeDistribution[o]++
		}
	}
	summary.MeanTrace = totalTrace / float64(len(st.Shots))
	summary.MeanWeight = totalWeight / float64(len(st.Shots))
	summary.UniqueOutcomes = len(summary.OutcomeDistribution)

	return summary
}
