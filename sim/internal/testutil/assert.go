// Package testutil provides shared test infrastructure for the wait-list simulator.
// It consolidates table invariants and assertion helpers used across
// sim/waitlist/ and sim/report/ test packages.
package testutil

import (
	"math"
	"testing"

	"github.com/waitlist-sim/waitlist-sim/sim/trace"
)

// AssertRecordInvariants checks the properties every finished run must hold:
// a patient is never both seen and removed; a removal week is present
// exactly for ROT patients and lies in [referral week+1, horizon]; a second
// visit only follows a first one, strictly later, for DNA patients; ROT
// patients always exit as Discharge; pool sizes are never negative; there is
// one occupancy row per week.
func AssertRecordInvariants(t *testing.T, tables *trace.Tables) {
	t.Helper()
	for _, p := range tables.Patients {
		if p.SeenWeek != nil && p.ROTWeek != nil {
			t.Errorf("patient %d: both seen (week %d) and removed (week %d)", p.ID, *p.SeenWeek, *p.ROTWeek)
		}
		if (p.ROTWeek != nil) != p.ROT {
			t.Errorf("patient %d: ROT is %v but removal week is %v", p.ID, p.ROT, p.ROTWeek)
		}
		if p.ROTWeek != nil && (*p.ROTWeek <= p.WaitStart || *p.ROTWeek > tables.Horizon) {
			t.Errorf("patient %d: removal week %d outside [%d, %d]", p.ID, *p.ROTWeek, p.WaitStart+1, tables.Horizon)
		}
		if p.ROT && p.Exit != "Discharge" {
			t.Errorf("patient %d: ROT patient exits as %q, want Discharge", p.ID, p.Exit)
		}
		if p.DNAWeek != nil {
			if !p.DNA {
				t.Errorf("patient %d: DNA week set but DNA is false", p.ID)
			}
			if p.SeenWeek == nil {
				t.Errorf("patient %d: DNA week set without a seen week", p.ID)
			} else if *p.DNAWeek <= *p.SeenWeek {
				t.Errorf("patient %d: DNA week %d not after seen week %d", p.ID, *p.DNAWeek, *p.SeenWeek)
			}
		}
		if p.SeenWeek != nil && *p.SeenWeek < p.WaitStart {
			t.Errorf("patient %d: seen at week %d before referral at week %d", p.ID, *p.SeenWeek, p.WaitStart)
		}
		if p.Priority < 1 || p.Priority > 3 {
			t.Errorf("patient %d: priority %d out of range", p.ID, p.Priority)
		}
	}
	if int64(len(tables.Occupancy)) != tables.Horizon {
		t.Errorf("got %d occupancy rows, want one per week (%d)", len(tables.Occupancy), tables.Horizon)
	}
	for i, o := range tables.Occupancy {
		if o.Week != int64(i) {
			t.Errorf("occupancy row %d has week %d", i, o.Week)
		}
		if o.PoolSize < 0 {
			t.Errorf("week %d: negative pool size %d", o.Week, o.PoolSize)
		}
		if o.QueueDepth < 0 {
			t.Errorf("week %d: negative queue depth %d", o.Week, o.QueueDepth)
		}
	}
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
