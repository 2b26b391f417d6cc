// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulation time and the event loop.
// Time advances in whole weeks. Events scheduled at or after the horizon are
// never dispatched, so the last simulated week is Horizon-1.
//
// Thread-safety: NOT thread-safe. All processes run on the goroutine that
// calls Run.
type Simulator struct {
	clock   int64
	horizon int64
	events  EventQueue
	nextSeq int64
	current *Process
	hasRun  bool

	// Dispatched counts executed events.
	Dispatched int64
}

// NewSimulator creates a Simulator that runs weeks [0, horizon).
// Panics if horizon < 1.
func NewSimulator(horizon int64) *Simulator {
	if horizon < 1 {
		panic(fmt.Sprintf("NewSimulator: horizon must be >= 1, got %d", horizon))
	}
	return &Simulator{
		horizon: horizon,
		events:  make(EventQueue, 0),
	}
}

// Now returns the current simulated week.
func (sim *Simulator) Now() int64 { return sim.clock }

// Horizon returns the first week that is not simulated.
func (sim *Simulator) Horizon() int64 { return sim.horizon }

// Pending returns the number of events still queued.
func (sim *Simulator) Pending() int { return len(sim.events) }

// Schedule pushes an event into the event queue.
func (sim *Simulator) Schedule(ev Event) {
	if ev.Timestamp() < sim.clock {
		sim.Violation("event %T scheduled at week %d, before current week %d", ev, ev.Timestamp(), sim.clock)
	}
	sim.nextSeq++
	heap.Push(&sim.events, eventEntry{event: ev, seqID: sim.nextSeq})
}

// Start schedules the first step of a process at the current week.
func (sim *Simulator) Start(p *Process, fn func()) {
	sim.resume(p, "start", fn)
}

// Timeout suspends p for the given number of weeks and then calls fn.
func (sim *Simulator) Timeout(p *Process, weeks int64, fn func()) {
	if weeks < 0 {
		sim.Violation("negative timeout %d for %s", weeks, p)
	}
	sim.Schedule(&ResumeEvent{time: sim.clock + weeks, proc: p, reason: "timeout", fn: fn})
}

func (sim *Simulator) resume(p *Process, reason string, fn func()) {
	sim.Schedule(&ResumeEvent{time: sim.clock, proc: p, reason: reason, fn: fn})
}

// Run dispatches events in (week, priority, sequence) order until the queue
// drains or the next event falls on or after the horizon. Processes still
// suspended at that point are left as they are.
// Returns an *InvariantViolation if one was raised. Panics if called twice.
func (sim *Simulator) Run() (err error) {
	if sim.hasRun {
		panic("Simulator.Run() called more than once")
	}
	sim.hasRun = true

	defer func() {
		if r := recover(); r != nil {
			v, ok := r.(*InvariantViolation)
			if !ok {
				panic(r)
			}
			logrus.Errorf("[week %04d] Simulation aborted: %v", sim.clock, v)
			err = v
		}
	}()

	for len(sim.events) > 0 {
		if sim.events[0].event.Timestamp() >= sim.horizon {
			break
		}
		entry := heap.Pop(&sim.events).(eventEntry)
		sim.clock = entry.event.Timestamp()
		logrus.Debugf("[week %04d] Executing %T", sim.clock, entry.event)
		entry.event.Execute(sim)
		sim.Dispatched++
	}
	sim.clock = sim.horizon
	logrus.Infof("[week %04d] Simulation ended with %d pending events", sim.clock, len(sim.events))
	return nil
}
