package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelShots}, "")

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalShots != 0 {
		t.Errorf("expected 0 shots, got %d", summary.TotalShots)
	}
	if summary.MeanTrace != 0 || summary.MinTrace != 0 || summary.MeanWeight != 0 {
		t.Error("expected zero trace statistics")
	}
	if summary.UniqueOutcomes != 0 || len(summary.OutcomeDistribution) != 0 {
		t.Error("expected empty outcome distribution")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalShots != 0 || summary.OutcomeDistribution == nil {
		t.Errorf("unexpected summary of nil trace: %+v", summary)
	}
}

func TestSummarize_TraceStatistics_CorrectMeanAndMin(t *testing.T) {
	// GIVEN shots with known traces and weights
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelShots}, "")
	st.RecordShot(ShotRecord{Shot: 0, Trace: 0.5, ClassicalProbability: 1})
	st.RecordShot(ShotRecord{Shot: 1, Trace: 0.25, ClassicalProbability: 0.5})
	st.RecordShot(ShotRecord{Shot: 2, Trace: 0.75, ClassicalProbability: 0.9})

	// WHEN summarized
	summary := Summarize(st)

	// THEN mean trace = (0.5 + 0.25 + 0.75) / 3 = 0.5
	if summary.MeanTrace < 0.5-1e-9 || summary.MeanTrace > 0.5+1e-9 {
		t.Errorf("expected mean trace 0.5, got %.4f", summary.MeanTrace)
	}

	// THEN min trace = 0.25
	if summary.MinTrace != 0.25 {
		t.Errorf("expected min trace 0.25, got %.4f", summary.MinTrace)
	}

	// THEN mean weight = 2.4 / 3 = 0.8
	if summary.MeanWeight < 0.8-1e-9 || summary.MeanWeight > 0.8+1e-9 {
		t.Errorf("expected mean weight 0.8, got %.4f", summary.MeanWeight)
	}
}

func TestSummarize_OutcomeDistribution_CountsPerOutcome(t *testing.T) {
	// GIVEN shots declaring overlapping outcomes
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelShots}, "")
	st.RecordShot(ShotRecord{Shot: 0, Outcomes: []string{"a@10=0", "b@20=1"}})
	st.RecordShot(ShotRecord{Shot: 1, Outcomes: []string{"a@10=0", "b@20=0"}})
	st.RecordShot(ShotRecord{Shot: 2, Outcomes: []string{"a@10=1", "b@20=1"}})

	// WHEN summarized
	summary := Summarize(st)

	// THEN the distribution reflects counts
	if summary.OutcomeDistribution["a@10=0"] != 2 {
		t.Errorf("expected a@10=0 count 2, got %d", summary.OutcomeDistribution["a@10=0"])
	}
	if summary.OutcomeDistribution["b@20=1"] != 2 {
		t.Errorf("expected b@20=1 count 2, got %d", summary.OutcomeDistribution["b@20=1"])
	}
	if summary.UniqueOutcomes != 4 {
		t.Errorf("expected 4 unique outcomes, got %d", summary.UniqueOutcomes)
	}
}
