package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionEvent_FireWakesAllCurrentWaiters(t *testing.T) {
	s := NewScheduler()
	ev := NewConditionEvent(s, "go")
	woken := 0
	for i := 0; i < 3; i++ {
		s.Process("waiter", func(p *Process) {
			p.Wait(ev, func() { woken++ })
		})
	}
	var n int
	s.Process("firer", func(p *Process) {
		p.Sleep(1, func() { n = ev.Fire() })
	})

	require.NoError(t, s.Run(5))
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, woken)
	assert.True(t, ev.Fired())
}

func TestConditionEvent_FireTwiceIsViolation(t *testing.T) {
	s := NewScheduler()
	ev := NewConditionEvent(s, "once")
	s.Process("firer", func(p *Process) {
		ev.Fire()
		ev.Fire()
	})

	err := s.Run(1)
	var v *InvariantViolation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "single-shot-event", v.Invariant)
}

func TestPulse_WaiterRegisteredAfterPulseWaitsForNext(t *testing.T) {
	// GIVEN a pulse fired at t=1 and t=3
	s := NewScheduler()
	pulse := NewPulse(s, "up")
	s.Process("firer", func(p *Process) {
		p.Sleep(1, func() {
			pulse.Fire()
			p.Sleep(2, func() { pulse.Fire() })
		})
	})

	// WHEN a process registers at t=2, between the two pulses
	var resumedAt float64 = -1
	s.Process("late", func(p *Process) {
		p.Sleep(2, func() {
			p.Wait(pulse.Event(), func() { resumedAt = s.Now() })
		})
	})

	// THEN it resumes on the second pulse, not on the one it missed
	require.NoError(t, s.Run(10))
	assert.Equal(t, 3.0, resumedAt)
	assert.Equal(t, uint64(2), pulse.Fires())
}

func TestPulse_FireReplacesInstanceBeforeWaking(t *testing.T) {
	s := NewScheduler()
	pulse := NewPulse(s, "tick")
	rounds := 0
	s.Process("loop", func(p *Process) {
		var wait func()
		wait = func() {
			p.Wait(pulse.Event(), func() {
				rounds++
				wait()
			})
		}
		wait()
	})
	s.Process("firer", func(p *Process) {
		p.Sleep(1, func() {
			// both pulses in one step: the loop registers again only after
			// this step, so it sees just the first
			pulse.Fire()
			pulse.Fire()
		})
	})

	require.NoError(t, s.Run(5))
	assert.Equal(t, 1, rounds)
	assert.False(t, pulse.Event().Fired())
}

func TestPulse_FireWithNoWaiters(t *testing.T) {
	s := NewScheduler()
	pulse := NewPulse(s, "down")
	var n int
	s.Process("firer", func(p *Process) { n = pulse.Fire() })
	require.NoError(t, s.Run(1))
	assert.Equal(t, 0, n)
	assert.Equal(t, "down", pulse.Name())
}
