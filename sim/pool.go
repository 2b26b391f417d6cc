package sim

import "github.com/sirupsen/logrus"

type poolTaker struct {
	proc *Process
	fn   func()
}

// Pool is an unbounded multiset of interchangeable tokens.
// A token put while takers are waiting goes straight to the longest waiter
// and never becomes visible in Size.
type Pool struct {
	sim    *Simulator
	name   string
	size   int
	takers []poolTaker

	// Taken counts tokens consumed by Take over the run.
	Taken int64
}

// NewPool creates an empty Pool bound to sim.
func NewPool(sim *Simulator, name string) *Pool {
	return &Pool{sim: sim, name: name}
}

// Put adds n tokens.
func (p *Pool) Put(n int) {
	if n < 0 {
		p.sim.Violation("%s: put of %d tokens", p.name, n)
	}
	for range n {
		if len(p.takers) > 0 {
			w := p.takers[0]
			p.takers = p.takers[1:]
			p.Taken++
			logrus.Debugf("[week %04d] %s: token handed to waiting %s", p.sim.Now(), p.name, w.proc)
			p.sim.resume(w.proc, "token", w.fn)
			continue
		}
		p.size++
	}
}

// Take removes one token for proc and resumes it with fn. If the pool is
// empty, proc waits behind earlier takers until a token is put.
func (p *Pool) Take(proc *Process, fn func()) {
	if fn == nil {
		panic("Pool.Take: fn must not be nil")
	}
	if p.size > 0 && len(p.takers) == 0 {
		p.size--
		p.Taken++
		p.sim.resume(proc, "token", fn)
		return
	}
	p.takers = append(p.takers, poolTaker{proc: proc, fn: fn})
	logrus.Debugf("[week %04d] %s: %s waiting for a token (%d waiting)", p.sim.Now(), p.name, proc, len(p.takers))
}

// Withdraw removes n tokens without waiting. Withdrawing more tokens than
// the pool holds is an invariant violation.
func (p *Pool) Withdraw(n int) {
	if n < 0 || n > p.size {
		p.sim.Violation("%s: withdraw of %d tokens from a pool of %d", p.name, n, p.size)
	}
	p.size -= n
}

// Size returns the number of tokens available.
func (p *Pool) Size() int { return p.size }

// Waiting returns the number of suspended takers.
func (p *Pool) Waiting() int { return len(p.takers) }
