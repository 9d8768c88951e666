package sim

import "fmt"

// ProcessState is the lifecycle state of a Process.
type ProcessState int

const (
	// ProcessRunnable: executing, or queued on the calendar to execute.
	ProcessRunnable ProcessState = iota
	// ProcessSuspended: waiting on exactly one pending resumption source.
	ProcessSuspended
	// ProcessTerminated: the body completed.
	ProcessTerminated
)

func (st ProcessState) String() string {
	switch st {
	case ProcessRunnable:
		return "runnable"
	case ProcessSuspended:
		return "suspended"
	case ProcessTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("ProcessState(%d)", int(st))
	}
}

// Process is a unit of suspendable work. Its body is written as a chain of
// continuations: each wait takes a callback and the current step returns.
// The primitive holding the pending waiter owns the right to resume it.
type Process struct {
	id    uint64
	name  string
	sched *Scheduler
	state ProcessState
	wait  *waiter

	// queued is set while a resumed step sits on the calendar. A resumption
	// can be queued during the process's own step, when it waits on a source
	// that has already fired.
	queued bool
}

// ID returns the scheduler-unique process identifier, in spawn order.
func (p *Process) ID() uint64 { return p.id }

// Name returns the name given at spawn.
func (p *Process) Name() string { return p.name }

// State returns the current lifecycle state.
func (p *Process) State() ProcessState { return p.state }

func (p *Process) String() string {
	return fmt.Sprintf("%s#%d", p.name, p.id)
}

// Waitable is a resumption source a process can suspend on.
type Waitable interface {
	subscribe(w *waiter)
	unsubscribe(w *waiter)
}

// waiter is the single pending resumption of a suspended process. It may be
// subscribed to several sources; the first to settle it wins.
type waiter struct {
	proc    *Process
	sources []Waitable
	then    func(fired Waitable)
	settled bool
}

// settle transfers ownership of the process from src to the calendar and
// unregisters the waiter from every other source.
func (w *waiter) settle(src Waitable) {
	if w.settled {
		return
	}
	w.settled = true
	for _, other := range w.sources {
		if other != src {
			other.unsubscribe(w)
		}
	}
	w.proc.sched.resume(w.proc, func() { w.then(src) })
}

func removeWaiter(ws []*waiter, w *waiter) []*waiter {
	for i, x := range ws {
		if x == w {
			copy(ws[i:], ws[i+1:])
			ws[len(ws)-1] = nil
			return ws[:len(ws)-1]
		}
	}
	return ws
}

// suspend parks the running process on w.
func (p *Process) suspend(w *waiter) {
	s := p.sched
	if s.current != p {
		s.Violate("single-resumption-source", "process %s must suspend from its own step", p)
	}
	if p.state != ProcessRunnable {
		s.Violate("single-resumption-source", "process %s suspended while %s", p, p.state)
	}
	if p.queued {
		s.Violate("single-resumption-source", "process %s suspended with a resumption already queued", p)
	}
	p.state = ProcessSuspended
	p.wait = w
}

// WaitAny suspends p until the first of srcs fires, then runs then with the
// source that fired. p is unregistered from the remaining sources.
func (p *Process) WaitAny(then func(fired Waitable), srcs ...Waitable) {
	if len(srcs) == 0 {
		p.sched.Violate("single-resumption-source", "process %s waits on no source", p)
	}
	w := &waiter{proc: p, sources: srcs, then: then}
	p.suspend(w)
	for _, src := range srcs {
		src.subscribe(w)
		if w.settled {
			break
		}
	}
}

// Wait suspends p until src fires.
func (p *Process) Wait(src Waitable, then func()) {
	p.WaitAny(func(Waitable) { then() }, src)
}

// Sleep suspends p for delay time units.
func (p *Process) Sleep(delay float64, then func()) {
	p.Wait(p.sched.Timeout(delay), then)
}

// Timeout fires once, a fixed delay after it was created.
type Timeout struct {
	delay   float64
	fired   bool
	waiters []*waiter
}

// Delay returns the delay the timeout was created with.
func (t *Timeout) Delay() float64 { return t.delay }

// Fired reports whether the timeout has expired.
func (t *Timeout) Fired() bool { return t.fired }

func (t *Timeout) expire() {
	t.fired = true
	ws := t.waiters
	t.waiters = nil
	for _, w := range ws {
		w.settle(t)
	}
}

func (t *Timeout) subscribe(w *waiter) {
	if t.fired {
		w.settle(t)
		return
	}
	t.waiters = append(t.waiters, w)
}

func (t *Timeout) unsubscribe(w *waiter) {
	t.waiters = removeWaiter(t.waiters, w)
}
