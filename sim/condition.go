package sim

// ConditionEvent is a single-shot latch. Fire resumes every process waiting
// at that moment; a process that waits on an already fired event resumes at
// the current time.
type ConditionEvent struct {
	sched   *Scheduler
	name    string
	fired   bool
	waiters []*waiter
}

// NewConditionEvent creates an unfired event.
func NewConditionEvent(s *Scheduler, name string) *ConditionEvent {
	return &ConditionEvent{sched: s, name: name}
}

// Name returns the label used in logs and violations.
func (e *ConditionEvent) Name() string { return e.name }

// Fired reports whether the event has fired.
func (e *ConditionEvent) Fired() bool { return e.fired }

// Waiting returns the number of processes currently registered.
func (e *ConditionEvent) Waiting() int { return len(e.waiters) }

// Fire resumes all current waiters and returns how many there were.
func (e *ConditionEvent) Fire() int {
	if e.fired {
		e.sched.Violate("single-shot-event", "condition %q fired twice", e.name)
	}
	e.fired = true
	ws := e.waiters
	e.waiters = nil
	for _, w := range ws {
		w.settle(e)
	}
	return len(ws)
}

func (e *ConditionEvent) subscribe(w *waiter) {
	if e.fired {
		w.settle(e)
		return
	}
	e.waiters = append(e.waiters, w)
}

func (e *ConditionEvent) unsubscribe(w *waiter) {
	e.waiters = removeWaiter(e.waiters, w)
}

// Pulse is an edge-triggered signal. Each Fire wakes only the processes
// registered on the current instance and installs a fresh, unfired instance,
// so a process that registers after a pulse blocks until the next one.
type Pulse struct {
	sched   *Scheduler
	name    string
	current *ConditionEvent
	fires   uint64
}

// NewPulse creates a pulse with an unfired current instance.
func NewPulse(s *Scheduler, name string) *Pulse {
	return &Pulse{sched: s, name: name, current: NewConditionEvent(s, name)}
}

// Name returns the label used in logs and violations.
func (p *Pulse) Name() string { return p.name }

// Event returns the instance the next Fire will trigger.
func (p *Pulse) Event() *ConditionEvent { return p.current }

// Fires returns the number of pulses emitted so far.
func (p *Pulse) Fires() uint64 { return p.fires }

// Fire triggers the current instance, replaces it, and returns the number of
// processes woken.
func (p *Pulse) Fire() int {
	ev := p.current
	p.current = NewConditionEvent(p.sched, p.name)
	p.fires++
	return ev.Fire()
}
