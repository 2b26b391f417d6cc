package waitlist

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waitlist-sim/waitlist-sim/sim/internal/testutil"
	"github.com/waitlist-sim/waitlist-sim/sim/trace"
)

// quietParams returns params with no randomness in the journey itself:
// nobody is removed, nobody misses an appointment, one priority tier.
func quietParams(schedule WeeklySchedule) Params {
	p := DefaultParams()
	p.Name = "test"
	p.RunTime = int64(len(schedule))
	p.Schedule = schedule
	p.ROTRate = 0
	p.DNARate = 0
	p.Priorities = PriorityWeights{PriorityHigh: 1}
	return p
}

func mustRun(t *testing.T, p Params) (*Model, *trace.Tables) {
	t.Helper()
	m, err := NewModel(p)
	require.NoError(t, err)
	tables, err := m.Run()
	require.NoError(t, err)
	testutil.AssertRecordInvariants(t, tables)
	return m, tables
}

func TestNewModel_InvalidParams(t *testing.T) {
	p := DefaultParams()
	p.DNARate = 2
	m, err := NewModel(p)
	assert.Nil(t, m)
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestModel_OneReferralOneAppointment_SeenOnArrival(t *testing.T) {
	// GIVEN one internal referral and one appointment per week for 3 weeks
	_, tables := mustRun(t, quietParams(ConstantSchedule(3, 1, 0, 1)))

	// THEN every patient is seen in the week they were referred
	require.Len(t, tables.Patients, 3)
	for i, rec := range tables.Patients {
		assert.Equal(t, int64(i+1), rec.ID)
		assert.Equal(t, "Internal", rec.ReferralType)
		assert.Equal(t, int64(i), rec.WaitStart)
		require.NotNil(t, rec.SeenWeek, "patient %d", rec.ID)
		assert.Equal(t, rec.WaitStart, *rec.SeenWeek)
		assert.Nil(t, rec.ROTWeek)
		assert.Nil(t, rec.DNAWeek)
	}
	// AND the queue is empty and the pool full whenever it is sampled
	assert.Equal(t, []trace.OccupancySnapshot{
		{Week: 0, QueueDepth: 0, ScheduledCapacity: 1, PoolSize: 1},
		{Week: 1, QueueDepth: 0, ScheduledCapacity: 1, PoolSize: 1},
		{Week: 2, QueueDepth: 0, ScheduledCapacity: 1, PoolSize: 1},
	}, tables.Occupancy)
}

func TestModel_NoCapacity_QueueGrowsAndNobodyIsSeen(t *testing.T) {
	m, tables := mustRun(t, quietParams(ConstantSchedule(5, 1, 0, 0)))

	depths := make([]int, 0, len(tables.Occupancy))
	for _, o := range tables.Occupancy {
		depths = append(depths, o.QueueDepth)
		assert.Zero(t, o.PoolSize)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, depths)

	require.Len(t, tables.Patients, 5)
	for _, rec := range tables.Patients {
		assert.True(t, rec.Unresolved(), "patient %d should still be waiting", rec.ID)
	}
	// the first patient holds the gate, waiting on the empty pool
	assert.Equal(t, StateAwaitingAppointment, m.Patients()[0].State())
	for _, p := range m.Patients()[1:] {
		assert.Equal(t, StateAwaitingAdmission, p.State())
	}
}

func TestModel_NoCapacity_RemovedPatientsCarryRemovalWeek(t *testing.T) {
	// GIVEN referrals but no appointments, and half the patients removed
	p := quietParams(ConstantSchedule(4, 3, 0, 0))
	p.ROTRate = 0.5
	p.Seed = 1
	m, tables := mustRun(t, p)

	// THEN nobody is seen, and every ROT row carries its removal week even
	// when the patient never got past the blocked gate
	blocked, waiting := 0, 0
	for i, rec := range tables.Patients {
		assert.Nil(t, rec.SeenWeek, "patient %d", rec.ID)
		if !rec.ROT {
			assert.Nil(t, rec.ROTWeek, "patient %d", rec.ID)
			if rec.Unresolved() {
				waiting++
			}
			continue
		}
		require.NotNil(t, rec.ROTWeek, "patient %d", rec.ID)
		assert.GreaterOrEqual(t, *rec.ROTWeek, rec.WaitStart+1)
		assert.LessOrEqual(t, *rec.ROTWeek, p.RunTime)
		assert.Equal(t, "Discharge", rec.Exit)
		if m.Patients()[i].State() != StateExited {
			blocked++
		}
	}
	assert.Positive(t, blocked, "some ROT patients should still be queued behind the gate")
	assert.Positive(t, waiting, "the gate holder waits on the empty pool")
}

func TestModel_HeadOfLineBlocking_OneAppointmentPerWeek(t *testing.T) {
	// GIVEN three referrals in week 0 with no capacity, then one slot a week
	schedule := WeeklySchedule{
		{Internal: 3},
		{Appointments: 1},
		{Appointments: 1},
		{Appointments: 1},
	}
	_, tables := mustRun(t, quietParams(schedule))

	// THEN they are seen one per week in referral order
	for i, rec := range tables.Patients {
		require.NotNil(t, rec.SeenWeek)
		assert.Equal(t, int64(i+1), *rec.SeenWeek, "patient %d", rec.ID)
	}
	// AND a token handed to a waiting patient never shows up in the pool
	assert.Equal(t, []trace.OccupancySnapshot{
		{Week: 0, QueueDepth: 0, ScheduledCapacity: 0, PoolSize: 0},
		{Week: 1, QueueDepth: 3, ScheduledCapacity: 1, PoolSize: 0},
		{Week: 2, QueueDepth: 2, ScheduledCapacity: 1, PoolSize: 0},
		{Week: 3, QueueDepth: 1, ScheduledCapacity: 1, PoolSize: 0},
	}, tables.Occupancy)
}

func TestModel_AdmissionOrder_PriorityThenReferral(t *testing.T) {
	// GIVEN six referrals in week 0 over mixed priorities and one slot a week
	schedule := WeeklySchedule{{Internal: 6}}
	for range 6 {
		schedule = append(schedule, Week{Appointments: 1})
	}
	p := quietParams(schedule)
	p.Seed = 3
	p.Priorities = DefaultParams().Priorities
	_, tables := mustRun(t, p)
	require.Len(t, tables.Patients, 6)

	// The first referral takes the free gate before anyone else asks.
	require.NotNil(t, tables.Patients[0].SeenWeek)
	assert.Equal(t, int64(1), *tables.Patients[0].SeenWeek)

	// The rest are admitted by (priority, referral order).
	rest := slices.Clone(tables.Patients[1:])
	slices.SortFunc(rest, func(a, b trace.PatientRecord) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		return int(a.ID - b.ID)
	})
	for i, rec := range rest {
		require.NotNil(t, rec.SeenWeek, "patient %d", rec.ID)
		assert.Equal(t, int64(i+2), *rec.SeenWeek, "patient %d priority %d", rec.ID, rec.Priority)
	}
}

func TestModel_AllRemoved_PoolNeverConsumed(t *testing.T) {
	p := quietParams(ConstantSchedule(6, 2, 1, 3))
	p.ROTRate = 1
	p.Priorities = DefaultParams().Priorities
	m, tables := mustRun(t, p)

	require.Len(t, tables.Patients, 18)
	for _, rec := range tables.Patients {
		assert.True(t, rec.ROT)
		assert.Equal(t, "Discharge", rec.Exit)
		assert.Nil(t, rec.SeenWeek)
		require.NotNil(t, rec.ROTWeek, "patient %d", rec.ID)
		assert.GreaterOrEqual(t, *rec.ROTWeek, rec.WaitStart+1)
		assert.LessOrEqual(t, *rec.ROTWeek, p.RunTime)
	}
	for _, o := range tables.Occupancy {
		assert.Equal(t, 3, o.PoolSize, "week %d", o.Week)
		assert.Zero(t, o.QueueDepth, "week %d", o.Week)
	}
	assert.Zero(t, m.pool.Taken)
	for _, pt := range m.Patients() {
		assert.Equal(t, StateExited, pt.State())
	}
}

func TestModel_MissedAppointment_RebookedTheFollowingWeek(t *testing.T) {
	// GIVEN every patient misses their first appointment, with room for two a week
	p := quietParams(ConstantSchedule(4, 1, 0, 2))
	p.DNARate = 1
	m, tables := mustRun(t, p)

	require.Len(t, tables.Patients, 4)
	for _, rec := range tables.Patients[:3] {
		require.NotNil(t, rec.SeenWeek)
		require.NotNil(t, rec.DNAWeek)
		assert.Equal(t, rec.WaitStart, *rec.SeenWeek)
		assert.Equal(t, *rec.SeenWeek+1, *rec.DNAWeek)
	}
	// The last patient was seen in the final week; the rebooking falls past
	// the horizon, so only the creation snapshot exists.
	last := tables.Patients[3]
	assert.Nil(t, last.SeenWeek)
	assert.Nil(t, last.DNAWeek)
	assert.Equal(t, StateAwaitingSecondAdmission, m.Patients()[3].State())
	require.NotNil(t, m.Patients()[3].Progress().SeenWeek)
	assert.Equal(t, int64(3), *m.Patients()[3].Progress().SeenWeek)

	for _, o := range tables.Occupancy {
		assert.Equal(t, trace.OccupancySnapshot{Week: o.Week, ScheduledCapacity: 2, PoolSize: 2}, o)
	}
}

func TestModel_DefaultParams_HoldsInvariants(t *testing.T) {
	p := DefaultParams()
	m, tables := mustRun(t, p)

	assert.Len(t, tables.Occupancy, 52)
	assert.Len(t, tables.Patients, 52*30)
	assert.Equal(t, m.RunID(), tables.RunID)
	assert.Equal(t, int64(52), tables.Horizon)

	for _, rec := range tables.Patients {
		if rec.ROTWeek != nil {
			assert.Greater(t, *rec.ROTWeek, rec.WaitStart)
			assert.LessOrEqual(t, *rec.ROTWeek, p.RunTime)
		}
		if rec.SeenWeek != nil {
			assert.Less(t, *rec.SeenWeek, p.RunTime)
		}
	}
	// Exited patients have a final record showing how they left.
	for _, pt := range m.Patients() {
		if pt.State() != StateExited {
			continue
		}
		rec := tables.Patients[pt.ID-1]
		assert.True(t, rec.SeenWeek != nil || rec.ROTWeek != nil, "patient %d exited unresolved", pt.ID)
	}
}

func TestModel_SameParams_SameTables(t *testing.T) {
	_, a := mustRun(t, DefaultParams())
	_, b := mustRun(t, DefaultParams())
	assert.Equal(t, a, b)

	other := DefaultParams()
	other.Seed = 7
	_, c := mustRun(t, other)
	assert.NotEqual(t, a.Patients, c.Patients)
	assert.NotEqual(t, a.RunID, c.RunID)
}

func TestModel_RunTwice_Panics(t *testing.T) {
	m, err := NewModel(quietParams(ConstantSchedule(2, 1, 0, 1)))
	require.NoError(t, err)
	_, err = m.Run()
	require.NoError(t, err)
	assert.Panics(t, func() { _, _ = m.Run() })
}

func TestRunID_StableAndSensitive(t *testing.T) {
	assert.Equal(t, RunID(DefaultParams()), RunID(DefaultParams()))
	p := DefaultParams()
	p.ROTRate = 0.04
	assert.NotEqual(t, RunID(DefaultParams()), RunID(p))
}
