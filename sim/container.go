package sim

import "fmt"

// LevelContainer holds an amount 0 <= level <= capacity of an undifferentiated
// quantity. Getters and putters that cannot be served wait in separate FIFO
// queues; a blocked head blocks everyone behind it.
type LevelContainer struct {
	sched    *Scheduler
	name     string
	capacity int
	level    int
	getters  []levelRequest
	putters  []levelRequest
}

type levelRequest struct {
	amount int
	w      *waiter
}

// NewLevelContainer creates a container. Panics if capacity < 1 or initial is
// outside [0, capacity].
func NewLevelContainer(s *Scheduler, name string, capacity, initial int) *LevelContainer {
	if capacity < 1 {
		panic(fmt.Sprintf("container %q: capacity must be >= 1, got %d", name, capacity))
	}
	if initial < 0 || initial > capacity {
		panic(fmt.Sprintf("container %q: initial level %d outside [0, %d]", name, initial, capacity))
	}
	return &LevelContainer{sched: s, name: name, capacity: capacity, level: initial}
}

// Name returns the label used in logs and violations.
func (c *LevelContainer) Name() string { return c.name }

// Level returns the amount currently held.
func (c *LevelContainer) Level() int { return c.level }

// Capacity returns the maximum level.
func (c *LevelContainer) Capacity() int { return c.capacity }

// QueuedGetters and QueuedPutters return the number of waiting processes.
func (c *LevelContainer) QueuedGetters() int { return len(c.getters) }
func (c *LevelContainer) QueuedPutters() int { return len(c.putters) }

func (c *LevelContainer) checkAmount(amount int) {
	if amount <= 0 || amount > c.capacity {
		c.sched.Violate("container-amount", "container %q: amount %d outside [1, %d]", c.name, amount, c.capacity)
	}
}

// Get removes amount from the container, suspending p until enough is present.
func (c *LevelContainer) Get(p *Process, amount int, then func()) {
	if c.TryGet(amount) {
		then()
		return
	}
	w := &waiter{proc: p, then: func(Waitable) { then() }}
	p.suspend(w)
	c.getters = append(c.getters, levelRequest{amount: amount, w: w})
}

// Put adds amount to the container, suspending p until there is room.
func (c *LevelContainer) Put(p *Process, amount int, then func()) {
	if c.TryPut(amount) {
		then()
		return
	}
	w := &waiter{proc: p, then: func(Waitable) { then() }}
	p.suspend(w)
	c.putters = append(c.putters, levelRequest{amount: amount, w: w})
}

// TryGet removes amount if it is present and no getter is queued ahead.
func (c *LevelContainer) TryGet(amount int) bool {
	c.checkAmount(amount)
	if len(c.getters) > 0 || c.level < amount {
		return false
	}
	c.level -= amount
	c.serveQueues()
	return true
}

// TryPut adds amount if it fits and no putter is queued ahead.
func (c *LevelContainer) TryPut(amount int) bool {
	c.checkAmount(amount)
	if len(c.putters) > 0 || c.level+amount > c.capacity {
		return false
	}
	c.level += amount
	c.serveQueues()
	return true
}

// serveQueues admits queue heads for as long as either side makes progress.
func (c *LevelContainer) serveQueues() {
	for progress := true; progress; {
		progress = false
		for len(c.putters) > 0 && c.level+c.putters[0].amount <= c.capacity {
			req := c.putters[0]
			c.putters = c.putters[1:]
			c.level += req.amount
			req.w.settle(nil)
			progress = true
		}
		for len(c.getters) > 0 && c.level >= c.getters[0].amount {
			req := c.getters[0]
			c.getters = c.getters[1:]
			c.level -= req.amount
			req.w.settle(nil)
			progress = true
		}
	}
	if c.level < 0 || c.level > c.capacity {
		c.sched.Violate("container-level-bounds", "container %q level %d outside [0, %d]", c.name, c.level, c.capacity)
	}
}
