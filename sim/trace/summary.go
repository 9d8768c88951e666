package trace

import "sort"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions int
	AdmittedCount  int
	RejectedCount  int
	MeanAdmittedQ  float64
	RejectReasons  map[string]int // reason → count of rejected arrivals
	ScaleUps       int
	ScaleDowns     int
	MinServers     int
	MaxServers     int
	TierChanges    int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		RejectReasons: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Admissions)
	totalQ := 0.0
	for _, a := range st.Admissions {
		if a.Admitted {
			summary.AdmittedCount++
			totalQ += a.Q
		} else {
			summary.RejectedCount++
			summary.RejectReasons[a.Reason]++
		}
	}
	if summary.AdmittedCount > 0 {
		summary.MeanAdmittedQ = totalQ / float64(summary.AdmittedCount)
	}

	for i, s := range st.Scalings {
		switch s.Direction {
		case ScaleUp:
			summary.ScaleUps++
		case ScaleDown:
			summary.ScaleDowns++
		}
		lo, hi := min(s.FromServers, s.ToServers), max(s.FromServers, s.ToServers)
		if i == 0 || lo < summary.MinServers {
			summary.MinServers = lo
		}
		if i == 0 || hi > summary.MaxServers {
			summary.MaxServers = hi
		}
	}

	if len(st.Prices) > 0 {
		summary.TierChanges = len(st.Prices) - 1
	}
	return summary
}

// SortedReasons returns the rejection reasons ordered by descending count,
// ties broken by name.
func (s *TraceSummary) SortedReasons() []string {
	reasons := make([]string, 0, len(s.RejectReasons))
	for r := range s.RejectReasons {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool {
		ci, cj := s.RejectReasons[reasons[i]], s.RejectReasons[reasons[j]]
		if ci != cj {
			return ci > cj
		}
		return reasons[i] < reasons[j]
	})
	return reasons
}
