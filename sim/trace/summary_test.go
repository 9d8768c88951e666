package trace

import (
	"reflect"
	"testing"
)

func TestSummarize_NilAndEmptyTrace_ZeroValues(t *testing.T) {
	for _, st := range []*SimulationTrace{nil, NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})} {
		summary := Summarize(st)
		if summary.TotalDecisions != 0 || summary.AdmittedCount != 0 || summary.RejectedCount != 0 {
			t.Error("expected zero decision counts")
		}
		if summary.ScaleUps != 0 || summary.ScaleDowns != 0 || summary.TierChanges != 0 {
			t.Error("expected zero scale and tier counts")
		}
		if summary.MeanAdmittedQ != 0 {
			t.Errorf("expected 0 mean Q, got %v", summary.MeanAdmittedQ)
		}
		if len(summary.RejectReasons) != 0 {
			t.Error("expected empty reject reasons")
		}
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with admissions, scalings and price changes
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordAdmission(AdmissionRecord{SessionID: 1, Admitted: true, Q: 1})
	st.RecordAdmission(AdmissionRecord{SessionID: 2, Admitted: false, Reason: "no-capacity"})
	st.RecordAdmission(AdmissionRecord{SessionID: 3, Admitted: true, Q: 0.5})
	st.RecordAdmission(AdmissionRecord{SessionID: 4, Admitted: false, Reason: "quality"})
	st.RecordAdmission(AdmissionRecord{SessionID: 5, Admitted: false, Reason: "no-capacity"})
	st.RecordScale(ScaleRecord{Direction: ScaleUp, FromServers: 3, ToServers: 4})
	st.RecordScale(ScaleRecord{Direction: ScaleDown, FromServers: 4, ToServers: 3})
	st.RecordScale(ScaleRecord{Direction: ScaleDown, FromServers: 3, ToServers: 2})
	st.RecordPrice(PriceRecord{Tier: "low"})
	st.RecordPrice(PriceRecord{Tier: "medium"})
	st.RecordPrice(PriceRecord{Tier: "high"})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalDecisions != 5 {
		t.Errorf("expected 5 total decisions, got %d", summary.TotalDecisions)
	}
	if summary.AdmittedCount != 2 || summary.RejectedCount != 3 {
		t.Errorf("expected 2 admitted / 3 rejected, got %d / %d", summary.AdmittedCount, summary.RejectedCount)
	}
	if summary.MeanAdmittedQ != 0.75 {
		t.Errorf("expected mean admitted Q 0.75, got %v", summary.MeanAdmittedQ)
	}
	if summary.ScaleUps != 1 || summary.ScaleDowns != 2 {
		t.Errorf("expected 1 up / 2 down, got %d / %d", summary.ScaleUps, summary.ScaleDowns)
	}
	if summary.MinServers != 2 || summary.MaxServers != 4 {
		t.Errorf("expected server range [2, 4], got [%d, %d]", summary.MinServers, summary.MaxServers)
	}
	if summary.TierChanges != 2 {
		t.Errorf("expected 2 tier changes, got %d", summary.TierChanges)
	}
	if got, want := summary.SortedReasons(), []string{"no-capacity", "quality"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SortedReasons() = %v, want %v", got, want)
	}
}
