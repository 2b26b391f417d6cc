package waitlist

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSampler(seed int64, mutate func(*Params)) *TrajectorySampler {
	p := DefaultParams()
	if mutate != nil {
		mutate(&p)
	}
	return NewTrajectorySampler(rand.New(rand.NewSource(seed)), p)
}

func TestTrajectorySampler_AlwaysRemoved_WeekInRange(t *testing.T) {
	s := newTestSampler(1, func(p *Params) { p.ROTRate = 1 })
	for created := int64(0); created < 52; created++ {
		for range 20 {
			tr := s.Sample(created)
			require.True(t, tr.Removed)
			assert.GreaterOrEqual(t, tr.RemovalWeek, created+1)
			assert.LessOrEqual(t, tr.RemovalWeek, int64(52))
			assert.Equal(t, Discharge, tr.Exit, "removed patients always exit as Discharge")
		}
	}
}

func TestTrajectorySampler_NeverRemoved(t *testing.T) {
	s := newTestSampler(1, func(p *Params) { p.ROTRate = 0; p.DNARate = 0 })
	for range 500 {
		tr := s.Sample(10)
		assert.False(t, tr.Removed)
		assert.False(t, tr.MissesAppointment)
		assert.Zero(t, tr.RemovalWeek)
	}
}

func TestTrajectorySampler_ZeroWeightsNeverDrawn(t *testing.T) {
	s := newTestSampler(5, func(p *Params) {
		p.ROTRate = 0
		p.Priorities = PriorityWeights{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 0}
		p.Exits = OutcomeWeights{Discharge: 0, FollowUp: 0, Treatment: 3}
	})
	for range 500 {
		tr := s.Sample(0)
		assert.Equal(t, PriorityMedium, tr.Priority)
		assert.Equal(t, Treatment, tr.Exit)
	}
}

func TestTrajectorySampler_WeightsShapeTheDistribution(t *testing.T) {
	s := newTestSampler(11, func(p *Params) {
		p.ROTRate = 0
		p.Priorities = PriorityWeights{PriorityHigh: 1, PriorityLow: 3}
	})
	counts := map[int]int{}
	const n = 20000
	for range n {
		counts[s.Sample(0).Priority]++
	}
	assert.Zero(t, counts[PriorityMedium])
	assert.InDelta(t, 0.25, float64(counts[PriorityHigh])/n, 0.02)
	assert.InDelta(t, 0.75, float64(counts[PriorityLow])/n, 0.02)
}

func TestTrajectorySampler_Deterministic(t *testing.T) {
	a := newTestSampler(99, nil)
	b := newTestSampler(99, nil)
	for w := range int64(52) {
		assert.Equal(t, a.Sample(w), b.Sample(w))
	}
}

func TestPatient_RecordIsASnapshot(t *testing.T) {
	p := NewPatient(7, External, 3, Trajectory{Priority: 2, Exit: FollowUp})
	seen := int64(4)
	p.progress.SeenWeek = &seen

	rec := p.Record()
	seen = 9

	require.NotNil(t, rec.SeenWeek)
	assert.Equal(t, int64(4), *rec.SeenWeek)
	assert.Equal(t, "External", rec.ReferralType)
	assert.Equal(t, "Follow Up", rec.Exit)
	assert.Equal(t, int64(3), rec.WaitStart)
	assert.Nil(t, rec.ROTWeek)
	assert.Nil(t, rec.DNAWeek)
	assert.Equal(t, StateCreated, p.State())
}

func TestPatient_RecordCarriesRemovalWeekFromCreation(t *testing.T) {
	removed := NewPatient(3, Internal, 2, Trajectory{Removed: true, RemovalWeek: 6, Priority: 1, Exit: Discharge})
	kept := NewPatient(4, Internal, 2, Trajectory{Priority: 1, Exit: Treatment})

	// no journey step has run, so neither patient has reached the gate
	rec := removed.Record()
	assert.True(t, rec.ROT)
	require.NotNil(t, rec.ROTWeek)
	assert.Equal(t, int64(6), *rec.ROTWeek)
	assert.Nil(t, removed.Progress().RemovalWeek)

	rec = kept.Record()
	assert.False(t, rec.ROT)
	assert.Nil(t, rec.ROTWeek)
}

func TestPatient_ProgressReturnsCopies(t *testing.T) {
	p := NewPatient(1, Internal, 0, Trajectory{Priority: 1})
	w := int64(2)
	p.progress.RemovalWeek = &w

	got := p.Progress()
	*got.RemovalWeek = 40
	assert.Equal(t, int64(2), *p.progress.RemovalWeek)
}

func TestJourneyState_String(t *testing.T) {
	assert.Equal(t, "AdmittedROT", StateAdmittedRemoved.String())
	assert.Equal(t, "Exited", StateExited.String())
	assert.Equal(t, "JourneyState(42)", JourneyState(42).String())
}
