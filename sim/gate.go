package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// Ticket is one admission request at a Gate.
type Ticket struct {
	Proc        *Process
	Priority    int   // lower value is admitted first
	RequestedAt int64 // week the request was queued
	GrantedAt   int64 // week the slot was granted; valid once Granted()

	seq      int64
	granted  bool
	released bool
	onGrant  func(*Ticket)
}

// Granted reports whether the ticket currently or previously held the slot.
func (t *Ticket) Granted() bool { return t.granted }

// Released reports whether the holder has given the slot back.
func (t *Ticket) Released() bool { return t.released }

// before reports whether t must be admitted ahead of o.
func (t *Ticket) before(o *Ticket) bool {
	if t.Priority != o.Priority {
		return t.Priority < o.Priority
	}
	return t.seq < o.seq
}

type ticketHeap []*Ticket

func (h ticketHeap) Len() int           { return len(h) }
func (h ticketHeap) Less(i, j int) bool { return h[i].before(h[j]) }
func (h ticketHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *ticketHeap) Push(x any)        { *h = append(*h, x.(*Ticket)) }
func (h *ticketHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Gate is a capacity-1 resource that grants its slot in (priority, arrival)
// order. The holder keeps the slot until it calls Release, so any work the
// holder suspends on while admitted blocks every request queued behind it.
// There is no preemption and no priority aging. Waiting tickets live in a
// min-heap keyed by (priority, arrival sequence), so grant order needs no
// runtime check.
type Gate struct {
	sim     *Simulator
	name    string
	holder  *Ticket
	waiting ticketHeap
	nextSeq int64

	// Grants counts slots handed out over the run.
	Grants int64
}

// NewGate creates an idle Gate bound to sim.
func NewGate(sim *Simulator, name string) *Gate {
	g := &Gate{sim: sim, name: name}
	heap.Init(&g.waiting)
	return g
}

// Admit queues a request for p at the given priority. fn is called, as a
// resume event of p, once the request holds the slot.
func (g *Gate) Admit(p *Process, priority int, fn func(*Ticket)) *Ticket {
	if fn == nil {
		panic("Gate.Admit: fn must not be nil")
	}
	g.nextSeq++
	t := &Ticket{
		Proc:        p,
		Priority:    priority,
		RequestedAt: g.sim.Now(),
		seq:         g.nextSeq,
		onGrant:     fn,
	}
	if g.holder == nil && len(g.waiting) == 0 {
		g.grant(t)
		return t
	}
	heap.Push(&g.waiting, t)
	logrus.Debugf("[week %04d] %s: %s queued at priority %d (depth %d)", g.sim.Now(), g.name, p, priority, g.QueueDepth())
	return t
}

// Release frees the slot held by t and grants it to the next request, if any.
func (g *Gate) Release(t *Ticket) {
	if t == nil || g.holder != t {
		g.sim.Violation("%s: release by a ticket that does not hold the slot", g.name)
	}
	t.released = true
	g.holder = nil
	if len(g.waiting) == 0 {
		return
	}
	g.grant(heap.Pop(&g.waiting).(*Ticket))
}

func (g *Gate) grant(t *Ticket) {
	g.holder = t
	g.Grants++
	t.granted = true
	t.GrantedAt = g.sim.Now()
	logrus.Debugf("[week %04d] %s: slot granted to %s", g.sim.Now(), g.name, t.Proc)
	g.sim.resume(t.Proc, "admitted", func() { t.onGrant(t) })
}

// Busy reports whether the slot is held.
func (g *Gate) Busy() bool { return g.holder != nil }

// Waiting returns the number of queued requests, excluding the holder.
func (g *Gate) Waiting() int { return len(g.waiting) }

// QueueDepth returns the number of requests queued at or holding the gate.
func (g *Gate) QueueDepth() int {
	if g.holder != nil {
		return len(g.waiting) + 1
	}
	return len(g.waiting)
}
