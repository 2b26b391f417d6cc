package waitlist

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/waitlist-sim/waitlist-sim/sim"
)

// JourneyState is a patient's position in the wait-list state machine.
//
//	Created → AwaitingAdmission → AwaitingAppointment → AdmittedSeen → Exited
//	                            ↘ AdmittedRemoved → Exited
//	AdmittedSeen → AwaitingSecondAdmission → SecondAdmitted → Exited   (DNA)
type JourneyState int

const (
	StateCreated JourneyState = iota
	StateAwaitingAdmission
	StateAwaitingAppointment // holding the gate, waiting for a pool token
	StateAdmittedSeen
	StateAdmittedRemoved
	StateAwaitingSecondAdmission
	StateSecondAdmitted
	StateExited
)

var journeyStateNames = map[JourneyState]string{
	StateCreated:                 "Created",
	StateAwaitingAdmission:       "AwaitingAdmission",
	StateAwaitingAppointment:     "AwaitingAppointment",
	StateAdmittedSeen:            "AdmittedSeen",
	StateAdmittedRemoved:         "AdmittedROT",
	StateAwaitingSecondAdmission: "AwaitingSecondAdmission",
	StateSecondAdmitted:          "SecondAdmitted",
	StateExited:                  "Exited",
}

func (s JourneyState) String() string {
	if name, ok := journeyStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("JourneyState(%d)", int(s))
}

// validTransitions lists the states reachable from each state.
var validTransitions = map[JourneyState][]JourneyState{
	StateCreated:                 {StateAwaitingAdmission},
	StateAwaitingAdmission:       {StateAwaitingAppointment, StateAdmittedRemoved},
	StateAwaitingAppointment:     {StateAdmittedSeen},
	StateAdmittedSeen:            {StateAwaitingSecondAdmission, StateExited},
	StateAdmittedRemoved:         {StateExited},
	StateAwaitingSecondAdmission: {StateSecondAdmitted},
	StateSecondAdmitted:          {StateExited},
}

// journey drives one patient through the wait list. Every step runs as a
// continuation of the patient's process; the gate is held from admission
// until the appointment token has been taken.
type journey struct {
	m    *Model
	p    *Patient
	proc *sim.Process
}

func newJourney(m *Model, p *Patient) *journey {
	return &journey{
		m:    m,
		p:    p,
		proc: sim.NewProcess("patient", p.ID, RankJourney),
	}
}

func (j *journey) start() {
	j.m.record(j.p)
	j.transition(StateAwaitingAdmission)
	logrus.Infof("patient %d requesting appointment at week %d with priority %d",
		j.p.ID, j.m.sim.Now(), j.p.trajectory.Priority)
	j.m.gate.Admit(j.proc, j.p.trajectory.Priority, j.onAdmitted)
}

func (j *journey) onAdmitted(t *sim.Ticket) {
	logrus.Infof("patient %d at front of queue at week %d", j.p.ID, j.m.sim.Now())
	if j.p.trajectory.Removed {
		// ROT: the predetermined removal week is revealed and no token is used.
		w := j.p.trajectory.RemovalWeek
		j.p.progress.RemovalWeek = &w
		j.transition(StateAdmittedRemoved)
		logrus.Infof("patient %d is ROT, removed from list at week %d", j.p.ID, w)
		j.m.gate.Release(t)
		j.exit()
		return
	}
	j.transition(StateAwaitingAppointment)
	j.m.pool.Take(j.proc, func() { j.onSeen(t) })
}

func (j *journey) onSeen(t *sim.Ticket) {
	now := j.m.sim.Now()
	j.p.progress.SeenWeek = &now
	j.transition(StateAdmittedSeen)
	logrus.Infof("patient %d seen at week %d", j.p.ID, now)
	j.m.gate.Release(t)

	if !j.p.trajectory.MissesAppointment {
		j.exit()
		return
	}
	j.transition(StateAwaitingSecondAdmission)
	j.m.sim.Timeout(j.proc, 1, j.requeue)
}

// requeue books the second appointment after a DNA. There is no second
// removal check.
func (j *journey) requeue() {
	logrus.Infof("patient %d DNA - requesting 2nd appointment at week %d with priority %d",
		j.p.ID, j.m.sim.Now(), j.p.trajectory.Priority)
	j.m.gate.Admit(j.proc, j.p.trajectory.Priority, func(t *sim.Ticket) {
		logrus.Infof("patient %d at front of queue at week %d", j.p.ID, j.m.sim.Now())
		j.m.pool.Take(j.proc, func() {
			now := j.m.sim.Now()
			j.p.progress.SecondVisitWeek = &now
			j.transition(StateSecondAdmitted)
			j.m.gate.Release(t)
			j.exit()
		})
	})
}

func (j *journey) exit() {
	switch j.p.trajectory.Exit {
	case Discharge:
		logrus.Infof("patient %d discharged and removed from wait list", j.p.ID)
	case FollowUp:
		logrus.Infof("patient %d requires follow up apt, put on FU wait list", j.p.ID)
	case Treatment:
		logrus.Infof("patient %d requires treatment, put on day case list", j.p.ID)
	}
	if j.p.progress.SeenWeek != nil && j.p.progress.RemovalWeek != nil {
		j.m.sim.Violation("patient %d both seen and removed", j.p.ID)
	}
	j.transition(StateExited)
	j.m.record(j.p)
}

func (j *journey) transition(to JourneyState) {
	from := j.p.state
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			j.p.state = to
			return
		}
	}
	j.m.sim.Violation("patient %d: invalid journey transition %s → %s", j.p.ID, from, to)
}
