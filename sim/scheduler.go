// sim/scheduler.go
package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Scheduler is the virtual-time event calendar. It owns the clock exclusively
// and runs processes cooperatively: a step runs until it returns or registers
// a wait, and is never preempted.
//
// Thread-safety: NOT thread-safe. A Scheduler and every primitive built on it
// must be driven from a single goroutine.
type Scheduler struct {
	clock    float64
	seq      uint64 // insertion counter, breaks time ties FIFO
	calendar *EventHeap
	nextPID  uint64
	current  *Process // process whose step is executing, nil between steps
	fired    uint64
	err      *InvariantViolation
}

// NewScheduler creates a scheduler with the clock at zero and an empty calendar.
func NewScheduler() *Scheduler {
	return &Scheduler{
		calendar: NewEventHeap(),
	}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() float64 {
	return s.clock
}

// Pending returns the number of calendar entries not yet fired.
func (s *Scheduler) Pending() int {
	return s.calendar.Len()
}

// EventsFired returns the number of calendar entries fired so far.
func (s *Scheduler) EventsFired() uint64 {
	return s.fired
}

// Current returns the process whose step is executing, or nil.
func (s *Scheduler) Current() *Process {
	return s.current
}

// after queues fn at Now()+delay.
func (s *Scheduler) after(delay float64, fn func()) {
	if math.IsNaN(delay) || delay < 0 {
		s.Violate("non-negative-delay", "cannot schedule %v time units ahead", delay)
	}
	s.seq++
	s.calendar.Schedule(&event{time: s.clock + delay, seq: s.seq, fire: fn})
}

// Timeout returns a waitable that fires delay time units from now.
func (s *Scheduler) Timeout(delay float64) *Timeout {
	t := &Timeout{delay: delay}
	s.after(delay, t.expire)
	return t
}

// Process spawns a process whose first step runs at the current time, after
// every entry already scheduled for this instant.
func (s *Scheduler) Process(name string, body func(p *Process)) *Process {
	s.nextPID++
	p := &Process{id: s.nextPID, name: name, sched: s, state: ProcessRunnable, queued: true}
	s.after(0, func() { s.step(p, func() { body(p) }) })
	return p
}

// resume hands a suspended process back to the calendar at the current time.
// Only the waiter that owns p may call it.
func (s *Scheduler) resume(p *Process, fn func()) {
	if p.state != ProcessSuspended {
		s.Violate("single-resumption-source", "process %s resumed while %s", p, p.state)
	}
	p.state = ProcessRunnable
	p.wait = nil
	p.queued = true
	s.after(0, func() { s.step(p, fn) })
}

// step runs fn as the body of p. A step that returns without registering a
// wait terminates the process.
func (s *Scheduler) step(p *Process, fn func()) {
	if s.current != nil {
		s.Violate("cooperative-execution", "process %s started inside step of %s", p, s.current)
	}
	s.current = p
	p.queued = false
	fn()
	s.current = nil
	if p.state == ProcessRunnable && !p.queued {
		p.state = ProcessTerminated
		logrus.Tracef("[t=%10.4f] process %s terminated", s.clock, p)
	}
}

// Run fires calendar entries in (time, sequence) order while the next entry
// is earlier than until, then parks the clock at until. Processes still
// suspended at that point are abandoned. Run returns the InvariantViolation
// that aborted the run, if any; once aborted, further calls return the same error.
func (s *Scheduler) Run(until float64) (err error) {
	if s.err != nil {
		return s.err
	}
	defer func() {
		if r := recover(); r != nil {
			v, ok := r.(*InvariantViolation)
			if !ok {
				panic(r)
			}
			s.current = nil
			s.err = v
			err = v
		}
	}()

	for s.calendar.Len() > 0 {
		if s.calendar.Peek().time >= until {
			break
		}
		ev := s.calendar.PopNext()
		if ev.time < s.clock {
			s.Violate("monotonic-clock", "event at %v popped after clock reached %v", ev.time, s.clock)
		}
		s.clock = ev.time
		s.fired++
		ev.fire()
	}
	if !math.IsInf(until, 1) && s.clock < until {
		s.clock = until
	}
	return nil
}
