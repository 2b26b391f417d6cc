package sim

import "fmt"

// InvariantViolation reports a defect in simulation state, such as a pool
// withdrawal larger than the pool or a release by a ticket that does not hold
// the gate. Admission order is not checked here: the gate's heap fixes it.
// Raised by panicking inside the event loop and returned as an error from
// Simulator.Run.
type InvariantViolation struct {
	Week      int64
	Process   string
	ProcessID int64
	Reason    string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation at week %d in %s (id %d): %s", v.Week, v.Process, v.ProcessID, v.Reason)
}

// Violation aborts the run with an InvariantViolation attributed to the
// process currently executing.
func (sim *Simulator) Violation(format string, args ...any) {
	v := &InvariantViolation{
		Week:   sim.clock,
		Reason: fmt.Sprintf(format, args...),
	}
	if sim.current != nil {
		v.Process = sim.current.Name
		v.ProcessID = sim.current.ID
	} else {
		v.Process = "scheduler"
	}
	panic(v)
}
