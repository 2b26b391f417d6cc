package waitlist

import (
	"github.com/sirupsen/logrus"

	"github.com/waitlist-sim/waitlist-sim/sim"
	"github.com/waitlist-sim/waitlist-sim/sim/trace"
)

// Process ranks. Events at the same week run in this order, so the pool is
// replenished before any referral or journey of that week touches it.
const (
	RankReplenish = iota
	RankInternalReferrals
	RankExternalReferrals
	RankOccupancy
	RankJourney
)

// replenisher tops the appointment pool up (or down) to the week's capacity.
type replenisher struct {
	m    *Model
	proc *sim.Process
}

func (r *replenisher) tick() {
	week := r.m.sim.Now()
	remaining := r.m.pool.Size()
	target := r.m.params.Schedule[week].Appointments
	delta := target - remaining
	logrus.Infof("[week %04d] %d appointments left, this week has %d", week, remaining, target)
	switch {
	case delta > 0:
		logrus.Infof("[week %04d] adding %d new appointments to reach %d", week, delta, target)
		r.m.pool.Put(delta)
	case delta < 0:
		logrus.Infof("[week %04d] removing %d appointments to reach %d", week, -delta, target)
		r.m.pool.Withdraw(-delta)
	}
	r.m.sim.Timeout(r.proc, 1, r.tick)
}

// referralGenerator spawns the week's referrals of one type.
type referralGenerator struct {
	m     *Model
	proc  *sim.Process
	kind  ReferralType
	count func(Week) int
}

func (g *referralGenerator) tick() {
	week := g.m.sim.Now()
	n := g.count(g.m.params.Schedule[week])
	for range n {
		p := g.m.spawn(g.kind)
		logrus.Infof("spawning patient %d from %s referral at week %d", p.ID, g.kind, week)
	}
	g.m.sim.Timeout(g.proc, 1, g.tick)
}

// occupancySampler records queue depth, capacity and pool size each week.
type occupancySampler struct {
	m    *Model
	proc *sim.Process
}

func (o *occupancySampler) tick() {
	week := o.m.sim.Now()
	o.m.recorder.RecordOccupancy(trace.OccupancySnapshot{
		Week:              week,
		QueueDepth:        o.m.gate.QueueDepth(),
		ScheduledCapacity: o.m.params.Schedule[week].Appointments,
		PoolSize:          o.m.pool.Size(),
	})
	o.m.sim.Timeout(o.proc, 1, o.tick)
}
