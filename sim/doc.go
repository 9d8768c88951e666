// Package sim provides the discrete-event simulation kernel for the elastic
// streaming cluster simulator.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - scheduler.go: the virtual-time calendar, Run loop and clock ownership
//   - process.go: Process lifecycle (runnable → suspended → terminated) and waits
//   - condition.go: single-shot ConditionEvent and edge-triggered Pulse
//   - resource.go, container.go: CountingResource and LevelContainer
//
// # Execution Model
//
// Everything runs on one goroutine. A process body is a chain of continuations:
// Sleep, Wait, WaitAny, Acquire, Get and Put take a callback and the current
// step returns. A source that fires never runs a waiter inline; it queues the
// waiter's next step on the calendar at the current time, so code between two
// wait points is atomic with respect to every other process.
//
// Same-time entries fire in scheduling order, which makes runs reproducible
// for a fixed seed (see PartitionedRNG).
//
// # Errors
//
// Broken internal guarantees raise an InvariantViolation, which aborts
// Scheduler.Run. Configuration problems are reported as ConfigError before a
// run starts.
//
// The domain layers live in sub-packages:
//   - sim/workload/: arrival and service-time samplers
//   - sim/price/: electricity price tiers and cost accrual
//   - sim/cluster/: admission control, autoscaling, metrics and the Simulation context
//   - sim/trace/: decision trace records
package sim
