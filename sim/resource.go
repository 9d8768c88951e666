package sim

import "fmt"

// CountingResource is a pool of capacity identical slots with a FIFO wait
// queue. Invariant: 0 <= inUse <= capacity, queue order is request order.
type CountingResource struct {
	sched    *Scheduler
	name     string
	capacity int
	inUse    int
	queue    []*waiter
}

// NewCountingResource creates a resource with every slot free.
// Panics if capacity < 1.
func NewCountingResource(s *Scheduler, name string, capacity int) *CountingResource {
	if capacity < 1 {
		panic(fmt.Sprintf("resource %q: capacity must be >= 1, got %d", name, capacity))
	}
	return &CountingResource{sched: s, name: name, capacity: capacity}
}

// Name returns the label used in logs and violations.
func (r *CountingResource) Name() string { return r.name }

// Capacity returns the number of slots.
func (r *CountingResource) Capacity() int { return r.capacity }

// InUse returns the number of slots held.
func (r *CountingResource) InUse() int { return r.inUse }

// Queued returns the number of processes waiting for a slot.
func (r *CountingResource) Queued() int { return len(r.queue) }

// Acquire takes a slot for p. When one is free the slot is taken and then runs
// immediately, without suspending; otherwise p joins the tail of the queue and
// then runs once a release hands it a slot.
func (r *CountingResource) Acquire(p *Process, then func()) {
	if r.TryAcquire() {
		then()
		return
	}
	w := &waiter{proc: p, then: func(Waitable) { then() }}
	p.suspend(w)
	r.queue = append(r.queue, w)
}

// TryAcquire takes a slot if one is free and nobody is queued ahead.
func (r *CountingResource) TryAcquire() bool {
	if r.inUse >= r.capacity || len(r.queue) > 0 {
		return false
	}
	r.inUse++
	return true
}

// Release frees a slot. A queued process receives it directly, so inUse is
// unchanged and no later acquirer can overtake the queue.
func (r *CountingResource) Release() {
	if r.inUse == 0 {
		r.sched.Violate("resource-in-use-non-negative", "release of idle resource %q", r.name)
	}
	if len(r.queue) > 0 {
		head := r.queue[0]
		r.queue[0] = nil
		r.queue = r.queue[1:]
		head.settle(nil)
		return
	}
	r.inUse--
}
