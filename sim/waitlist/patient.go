package waitlist

import (
	"cmp"
	"maps"
	"math/rand"
	"slices"

	"github.com/waitlist-sim/waitlist-sim/sim/trace"
)

// Trajectory is everything random about a patient, drawn once at creation.
// The journey only reveals these values; it never draws new ones.
type Trajectory struct {
	Priority          int
	Removed           bool        // ROT: leaves the list without an appointment
	RemovalWeek       int64       // valid iff Removed; in [creation week+1, run time]
	MissesAppointment bool        // DNA: misses the first appointment and queues once more
	Exit              ExitOutcome // Discharge whenever Removed
}

// Progress holds what the journey has revealed so far. A nil week has not
// happened (yet).
type Progress struct {
	SeenWeek        *int64
	RemovalWeek     *int64
	SecondVisitWeek *int64
}

// Patient is one referral on the wait list.
type Patient struct {
	ID        int64
	Referral  ReferralType
	WaitStart int64

	trajectory Trajectory
	progress   Progress
	state      JourneyState
}

// NewPatient creates a patient in the Created state.
func NewPatient(id int64, referral ReferralType, waitStart int64, tr Trajectory) *Patient {
	return &Patient{
		ID:         id,
		Referral:   referral,
		WaitStart:  waitStart,
		trajectory: tr,
		state:      StateCreated,
	}
}

// Trajectory returns the patient's predetermined trajectory.
func (p *Patient) Trajectory() Trajectory { return p.trajectory }

// Progress returns a copy of what has been revealed so far.
func (p *Patient) Progress() Progress {
	return Progress{
		SeenWeek:        trace.CopyWeek(p.progress.SeenWeek),
		RemovalWeek:     trace.CopyWeek(p.progress.RemovalWeek),
		SecondVisitWeek: trace.CopyWeek(p.progress.SecondVisitWeek),
	}
}

// State returns the patient's current journey state.
func (p *Patient) State() JourneyState { return p.state }

// Record renders the patient as an output row. The ROT week comes from the
// trajectory; the seen and second-visit weeks only once they have happened.
func (p *Patient) Record() trace.PatientRecord {
	return trace.PatientRecord{
		ID:           p.ID,
		ReferralType: string(p.Referral),
		ROT:          p.trajectory.Removed,
		DNA:          p.trajectory.MissesAppointment,
		Priority:     p.trajectory.Priority,
		WaitStart:    p.WaitStart,
		SeenWeek:     trace.CopyWeek(p.progress.SeenWeek),
		ROTWeek:      p.removalWeek(),
		DNAWeek:      trace.CopyWeek(p.progress.SecondVisitWeek),
		Exit:         string(p.trajectory.Exit),
	}
}

// removalWeek is the predetermined removal week of a ROT patient. It is part
// of every record, including the one written at creation, whether or not the
// patient has reached the gate yet.
func (p *Patient) removalWeek() *int64 {
	if !p.trajectory.Removed {
		return nil
	}
	return trace.Week(p.trajectory.RemovalWeek)
}

// TrajectorySampler draws patient trajectories from one RNG stream.
// Draw order per patient is fixed: ROT, removal week (ROT only), DNA,
// priority, exit outcome (non-ROT only).
type TrajectorySampler struct {
	rng        *rand.Rand
	rotRate    float64
	dnaRate    float64
	runTime    int64
	priorities weightedChoice[int]
	exits      weightedChoice[ExitOutcome]
}

// NewTrajectorySampler creates a sampler for validated params.
func NewTrajectorySampler(rng *rand.Rand, p Params) *TrajectorySampler {
	return &TrajectorySampler{
		rng:        rng,
		rotRate:    p.ROTRate,
		dnaRate:    p.DNARate,
		runTime:    p.RunTime,
		priorities: newWeightedChoice(p.Priorities),
		exits:      newWeightedChoice(p.Exits),
	}
}

// Sample draws the trajectory of a patient created at the given week.
func (s *TrajectorySampler) Sample(createdWeek int64) Trajectory {
	var tr Trajectory
	tr.Removed = s.rng.Float64() < s.rotRate
	if tr.Removed {
		// uniform over [createdWeek+1, runTime]
		tr.RemovalWeek = createdWeek + 1 + s.rng.Int63n(s.runTime-createdWeek)
	}
	tr.MissesAppointment = s.rng.Float64() < s.dnaRate
	tr.Priority = s.priorities.pick(s.rng)
	if tr.Removed {
		tr.Exit = Discharge
	} else {
		tr.Exit = s.exits.pick(s.rng)
	}
	return tr
}

// weightedChoice samples keys in proportion to non-negative weights.
// Keys are held in sorted order so map iteration never affects the draw.
type weightedChoice[K cmp.Ordered] struct {
	keys       []K
	cumulative []float64
}

func newWeightedChoice[K cmp.Ordered](weights map[K]float64) weightedChoice[K] {
	var wc weightedChoice[K]
	total := 0.0
	for _, k := range slices.Sorted(maps.Keys(weights)) {
		if weights[k] <= 0 {
			continue
		}
		total += weights[k]
		wc.keys = append(wc.keys, k)
		wc.cumulative = append(wc.cumulative, total)
	}
	return wc
}

func (wc weightedChoice[K]) pick(rng *rand.Rand) K {
	u := rng.Float64() * wc.cumulative[len(wc.cumulative)-1]
	for i, c := range wc.cumulative {
		if u < c {
			return wc.keys[i]
		}
	}
	return wc.keys[len(wc.keys)-1]
}
