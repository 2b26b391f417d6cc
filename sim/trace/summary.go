package trace

// TraceSummary counts patients by how their journey ended.
type TraceSummary struct {
	TotalPatients int
	Seen          int
	Removed       int // ROT patients, removal week set
	Unresolved    int // still waiting at the horizon
	SecondVisits  int // DNA re-queues that took a second appointment
	ByExit        map[string]int
	ByReferral    map[string]int
}

// Summarize computes aggregate counts from a run's tables.
// Safe for nil or empty tables (returns zero-value fields).
func Summarize(t *Tables) *TraceSummary {
	summary := &TraceSummary{
		ByExit:     make(map[string]int),
		ByReferral: make(map[string]int),
	}
	if t == nil {
		return summary
	}

	summary.TotalPatients = len(t.Patients)
	for _, p := range t.Patients {
		summary.ByReferral[p.ReferralType]++
		switch {
		case p.SeenWeek != nil:
			summary.Seen++
			summary.ByExit[p.Exit]++
		case p.ROTWeek != nil:
			summary.Removed++
			summary.ByExit[p.Exit]++
		default:
			summary.Unresolved++
		}
		if p.DNAWeek != nil {
			summary.SecondVisits++
		}
	}
	return summary
}
