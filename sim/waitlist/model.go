package waitlist

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/waitlist-sim/waitlist-sim/sim"
	"github.com/waitlist-sim/waitlist-sim/sim/trace"
)

// runNamespace scopes run identifiers derived by RunID.
var runNamespace = uuid.MustParse("8f1d4c62-3b0e-5d7a-9c41-2a6f0e9b7d13")

// RunID derives a stable identifier for a configuration: the same params
// always produce the same ID.
func RunID(p Params) uuid.UUID {
	return uuid.NewSHA1(runNamespace, []byte(fmt.Sprintf("%+v", p)))
}

// Model is one wait-list simulation: the kernel, the shared gate and pool,
// the four fixed processes and every patient journey spawned during the run.
type Model struct {
	params   Params
	runID    uuid.UUID
	sim      *sim.Simulator
	gate     *sim.Gate
	pool     *sim.Pool
	sampler  *TrajectorySampler
	recorder *trace.Recorder
	patients []*Patient
	nextID   int64
}

// NewModel validates params and builds a model ready to Run.
func NewModel(params Params) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := sim.NewSimulator(params.RunTime)
	streams := sim.NewStreams(params.Seed)
	return &Model{
		params:   params,
		runID:    RunID(params),
		sim:      s,
		gate:     sim.NewGate(s, "screening"),
		pool:     sim.NewPool(s, "appointments"),
		sampler:  NewTrajectorySampler(streams.Stream(sim.StreamPatients), params),
		recorder: trace.NewRecorder(),
	}, nil
}

// RunID returns the model's run identifier.
func (m *Model) RunID() string { return m.runID.String() }

// Patients returns every patient spawned so far, in ID order.
// The returned slice MUST NOT be modified.
func (m *Model) Patients() []*Patient { return m.patients }

// Run simulates weeks [0, RunTime) and returns the output tables.
// Patients still waiting at the horizon appear with their unresolved fields
// left empty. Returns an error wrapping *sim.InvariantViolation if the run
// aborted. Panics if called twice.
func (m *Model) Run() (*trace.Tables, error) {
	logrus.Infof("starting run %q (%s): %d weeks, seed %d", m.params.Name, m.RunID(), m.params.RunTime, m.params.Seed)

	rep := &replenisher{m: m, proc: sim.NewProcess("replenish", 0, RankReplenish)}
	internal := &referralGenerator{
		m:     m,
		proc:  sim.NewProcess("internal-referrals", 0, RankInternalReferrals),
		kind:  Internal,
		count: func(w Week) int { return w.Internal },
	}
	external := &referralGenerator{
		m:     m,
		proc:  sim.NewProcess("external-referrals", 0, RankExternalReferrals),
		kind:  External,
		count: func(w Week) int { return w.External },
	}
	occ := &occupancySampler{m: m, proc: sim.NewProcess("occupancy", 0, RankOccupancy)}

	m.sim.Start(rep.proc, rep.tick)
	m.sim.Start(internal.proc, internal.tick)
	m.sim.Start(external.proc, external.tick)
	m.sim.Start(occ.proc, occ.tick)

	if err := m.sim.Run(); err != nil {
		return nil, fmt.Errorf("run %q: %w", m.params.Name, err)
	}

	unresolved := 0
	for _, p := range m.patients {
		if p.state != StateExited {
			unresolved++
		}
	}
	if unresolved > 0 {
		logrus.Warnf("run %q: %d of %d patients still on the wait list at week %d",
			m.params.Name, unresolved, len(m.patients), m.params.RunTime)
	}

	tables := m.recorder.Flush(m.params.RunTime)
	tables.RunID = m.RunID()
	return tables, nil
}

// spawn creates the next patient at the current week and starts its journey.
func (m *Model) spawn(kind ReferralType) *Patient {
	m.nextID++
	week := m.sim.Now()
	p := NewPatient(m.nextID, kind, week, m.sampler.Sample(week))
	m.patients = append(m.patients, p)
	j := newJourney(m, p)
	m.sim.Start(j.proc, j.start)
	return p
}

func (m *Model) record(p *Patient) {
	m.recorder.RecordPatient(p.Record())
}
