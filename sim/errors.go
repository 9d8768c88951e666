package sim

import (
	"fmt"
)

// ConfigError reports an invalid configuration. It is returned before a run
// starts; the run never begins.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InvariantViolation reports a broken internal guarantee (double counting, a
// resource going negative, a process resumed twice). It is fatal to the run:
// Scheduler.Run aborts and returns it.
type InvariantViolation struct {
	Invariant string  // short name of the violated invariant
	Time      float64 // virtual time at which it was detected
	Detail    string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant %q violated at t=%.6f: %s", v.Invariant, v.Time, v.Detail)
}

// Violate aborts the current run with an InvariantViolation stamped with the
// scheduler's clock. It must only be called from code driven by Scheduler.Run.
func (s *Scheduler) Violate(invariant, format string, args ...any) {
	panic(&InvariantViolation{
		Invariant: invariant,
		Time:      s.clock,
		Detail:    fmt.Sprintf(format, args...),
	})
}
