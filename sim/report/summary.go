package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/waitlist-sim/waitlist-sim/sim/trace"
)

// LengthOfWait returns the weeks a patient spent on the list: until seen, or
// until the horizon if never seen. ok is false for ROT patients, whose wait
// is not reported.
func LengthOfWait(rec trace.PatientRecord, horizon int64) (weeks int64, ok bool) {
	if rec.ROT {
		return 0, false
	}
	end := horizon
	if rec.SeenWeek != nil {
		end = *rec.SeenWeek
	}
	return end - rec.WaitStart, true
}

// WaitStats describes a length-of-wait distribution in weeks.
type WaitStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

func newWaitStats(weeks []float64) WaitStats {
	if len(weeks) == 0 {
		return WaitStats{}
	}
	sort.Float64s(weeks)
	return WaitStats{
		Count:  len(weeks),
		Mean:   stat.Mean(weeks, nil),
		Median: stat.Quantile(0.5, stat.Empirical, weeks, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, weeks, nil),
		Max:    weeks[len(weeks)-1],
	}
}

// WeeklyRow is an occupancy row joined with what happened to patients that week.
type WeeklyRow struct {
	trace.OccupancySnapshot
	Seen         int `json:"seen"`
	Removed      int `json:"rot"`
	SecondVisits int `json:"dna"`
}

// WeekExits counts exit outcomes among patients first seen in one week.
type WeekExits struct {
	Week   int64          `json:"week"`
	Counts map[string]int `json:"counts"`
}

// Summary aggregates one run.
type Summary struct {
	RunID   string `json:"run_id"`
	Horizon int64  `json:"horizon"`

	Patients     int            `json:"patients"`
	Seen         int            `json:"seen"`
	Removed      int            `json:"removed"`
	Unresolved   int            `json:"unresolved"`
	SecondVisits int            `json:"second_visits"`
	ByExit       map[string]int `json:"by_exit"`
	ByReferral   map[string]int `json:"by_referral"`

	Wait            WaitStats         `json:"wait"`
	WaitSeen        WaitStats         `json:"wait_seen"`
	WaitStillOnList WaitStats         `json:"wait_still_on_list"`
	WaitByPriority  map[int]WaitStats `json:"wait_by_priority"`

	FinalQueueDepth int         `json:"final_queue_depth"`
	Weekly          []WeeklyRow `json:"weekly"`
	ExitsByWeek     []WeekExits `json:"exits_by_week"`
}

// Summarize computes the Summary of a run's tables.
// Safe for nil tables (returns an empty summary).
func Summarize(t *trace.Tables) *Summary {
	counts := trace.Summarize(t)
	s := &Summary{
		Patients:       counts.TotalPatients,
		Seen:           counts.Seen,
		Removed:        counts.Removed,
		Unresolved:     counts.Unresolved,
		SecondVisits:   counts.SecondVisits,
		ByExit:         counts.ByExit,
		ByReferral:     counts.ByReferral,
		WaitByPriority: make(map[int]WaitStats),
		Weekly:         make([]WeeklyRow, 0),
		ExitsByWeek:    make([]WeekExits, 0),
	}
	if t == nil {
		return s
	}
	s.RunID = t.RunID
	s.Horizon = t.Horizon

	var all, seen, waiting []float64
	byPriority := make(map[int][]float64)
	for _, rec := range t.Patients {
		w, ok := LengthOfWait(rec, t.Horizon)
		if !ok {
			continue
		}
		all = append(all, float64(w))
		byPriority[rec.Priority] = append(byPriority[rec.Priority], float64(w))
		if rec.SeenWeek != nil {
			seen = append(seen, float64(w))
		} else {
			waiting = append(waiting, float64(w))
		}
	}
	s.Wait = newWaitStats(all)
	s.WaitSeen = newWaitStats(seen)
	s.WaitStillOnList = newWaitStats(waiting)
	for p, ws := range byPriority {
		s.WaitByPriority[p] = newWaitStats(ws)
	}

	s.Weekly = weeklyRows(t)
	if n := len(t.Occupancy); n > 0 {
		s.FinalQueueDepth = t.Occupancy[n-1].QueueDepth
	}
	s.ExitsByWeek = exitsByWeek(t.Patients)
	return s
}

// weeklyRows joins per-week patient events onto the occupancy table. A
// removal week equal to the horizon has no occupancy row and is dropped.
func weeklyRows(t *trace.Tables) []WeeklyRow {
	rows := make([]WeeklyRow, len(t.Occupancy))
	index := make(map[int64]int, len(t.Occupancy))
	for i, o := range t.Occupancy {
		rows[i].OccupancySnapshot = o
		index[o.Week] = i
	}
	bump := func(week *int64, f func(*WeeklyRow)) {
		if week == nil {
			return
		}
		if i, ok := index[*week]; ok {
			f(&rows[i])
		}
	}
	for _, rec := range t.Patients {
		bump(rec.SeenWeek, func(r *WeeklyRow) { r.Seen++ })
		bump(rec.ROTWeek, func(r *WeeklyRow) { r.Removed++ })
		bump(rec.DNAWeek, func(r *WeeklyRow) { r.SecondVisits++ })
	}
	return rows
}

func exitsByWeek(patients []trace.PatientRecord) []WeekExits {
	byWeek := make(map[int64]map[string]int)
	for _, rec := range patients {
		if rec.SeenWeek == nil {
			continue
		}
		counts, ok := byWeek[*rec.SeenWeek]
		if !ok {
			counts = make(map[string]int)
			byWeek[*rec.SeenWeek] = counts
		}
		counts[rec.Exit]++
	}
	out := make([]WeekExits, 0, len(byWeek))
	for _, w := range slices.Sorted(maps.Keys(byWeek)) {
		out = append(out, WeekExits{Week: w, Counts: byWeek[w]})
	}
	return out
}

// Print writes a human-readable digest of the summary.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Wait List Summary ===")
	if s.RunID != "" {
		fmt.Fprintf(w, "Run                  : %s\n", s.RunID)
	}
	fmt.Fprintf(w, "Weeks simulated      : %d\n", s.Horizon)
	fmt.Fprintf(w, "Patients referred    : %d\n", s.Patients)
	for _, k := range slices.Sorted(maps.Keys(s.ByReferral)) {
		fmt.Fprintf(w, "  %-19s: %d\n", k, s.ByReferral[k])
	}
	fmt.Fprintf(w, "Seen                 : %d\n", s.Seen)
	fmt.Fprintf(w, "Removed (ROT)        : %d\n", s.Removed)
	fmt.Fprintf(w, "Second visits (DNA)  : %d\n", s.SecondVisits)
	fmt.Fprintf(w, "Still on list        : %d\n", s.Unresolved)
	fmt.Fprintf(w, "Final queue depth    : %d\n", s.FinalQueueDepth)
	for _, k := range slices.Sorted(maps.Keys(s.ByExit)) {
		fmt.Fprintf(w, "Exit %-16s: %d\n", k, s.ByExit[k])
	}
	if s.Wait.Count > 0 {
		fmt.Fprintf(w, "Mean wait            : %.2f weeks (median %.0f, p90 %.0f, max %.0f)\n",
			s.Wait.Mean, s.Wait.Median, s.Wait.P90, s.Wait.Max)
		for _, p := range slices.Sorted(maps.Keys(s.WaitByPriority)) {
			ws := s.WaitByPriority[p]
			fmt.Fprintf(w, "  priority %d         : %.2f weeks over %d patients\n", p, ws.Mean, ws.Count)
		}
	}
}
