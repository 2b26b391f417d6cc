package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event has a Timestamp (in weeks), a Priority used to order events
// sharing a timestamp, and an Execute method that advances simulation state.
type Event interface {
	Timestamp() int64
	Priority() int
	Execute(*Simulator)
}

// eventEntry wraps an Event with a sequence ID for deterministic FIFO
// tie-breaking when timestamp and priority are equal.
type eventEntry struct {
	event Event
	seqID int64
}

// EventQueue is a min-heap ordered by (Timestamp, Priority, seqID).
// Implements heap.Interface.
type EventQueue []eventEntry

func (q EventQueue) Len() int { return len(q) }

func (q EventQueue) Less(i, j int) bool {
	if q[i].event.Timestamp() != q[j].event.Timestamp() {
		return q[i].event.Timestamp() < q[j].event.Timestamp()
	}
	if q[i].event.Priority() != q[j].event.Priority() {
		return q[i].event.Priority() < q[j].event.Priority()
	}
	return q[i].seqID < q[j].seqID
}

func (q EventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *EventQueue) Push(x any) {
	*q = append(*q, x.(eventEntry))
}

func (q *EventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ResumeEvent continues a suspended Process at a given week.
// Timeouts, gate grants and pool hand-offs are all delivered as ResumeEvents.
type ResumeEvent struct {
	time   int64
	proc   *Process
	reason string
	fn     func()
}

// Timestamp returns the week at which the process resumes.
func (e *ResumeEvent) Timestamp() int64 { return e.time }

// Priority returns the owning process's rank.
func (e *ResumeEvent) Priority() int { return e.proc.Rank }

// Execute runs the continuation with the owning process marked as current.
func (e *ResumeEvent) Execute(s *Simulator) {
	logrus.Debugf("<< Resume %s (%s) at week %d", e.proc, e.reason, e.time)
	s.current = e.proc
	e.fn()
	s.current = nil
}
