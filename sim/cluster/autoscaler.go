package cluster

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/elastic-sim/sim"
	"github.com/inference-sim/elastic-sim/sim/price"
	"github.com/inference-sim/elastic-sim/sim/trace"
)

// Autoscaler wake-up triggers.
const (
	TriggerUp   = "up"
	TriggerDown = "down"
	TriggerTick = "tick"
)

// TierReader exposes the current price tier.
type TierReader interface {
	Tier() price.Tier
}

// Autoscaler grows the cluster when load is high and energy is cheap, and
// shrinks it when energy is expensive and load is low.
//
// It waits on the up and down pulses and on a periodic tick. A tick with no
// active users is ignored: there is no load whose wakeups could have been
// missed.
type Autoscaler struct {
	cluster       *Cluster
	prices        TierReader
	up, down      *sim.Pulse
	tick          *sim.Pulse
	upThreshold   int
	downThreshold int
	metrics       *Metrics
	trace         *trace.SimulationTrace
	onScale       func()
	evaluations   int
}

// ShouldScaleUp reports n < Nmax, a cheap tier and floor(k/n) >= threshold.
func (a *Autoscaler) ShouldScaleUp(s Snapshot, tier price.Tier) bool {
	return s.ServerCount < a.cluster.MaxServers() && tier.Cheap() && s.UsersPerServer() >= a.upThreshold
}

// ShouldScaleDown reports n > Nmin, the high tier and floor(k/n) < threshold.
func (a *Autoscaler) ShouldScaleDown(s Snapshot, tier price.Tier) bool {
	return s.ServerCount > a.cluster.MinServers() && tier == price.High && s.UsersPerServer() < a.downThreshold
}

// Evaluations returns the number of wakeups on which the rules were applied.
func (a *Autoscaler) Evaluations() int { return a.evaluations }

func (a *Autoscaler) run(p *sim.Process) {
	var wait func()
	wait = func() {
		up, down, tick := a.up.Event(), a.down.Event(), a.tick.Event()
		p.WaitAny(func(src sim.Waitable) {
			trigger := TriggerTick
			switch src {
			case up:
				trigger = TriggerUp
			case down:
				trigger = TriggerDown
			}
			a.evaluate(trigger)
			wait()
		}, up, down, tick)
	}
	wait()
}

// evaluate applies at most one scaling step. Scale up is checked first.
func (a *Autoscaler) evaluate(trigger string) {
	snap := a.cluster.Snapshot()
	if trigger == TriggerTick && snap.ActiveUsers == 0 {
		return
	}
	a.evaluations++
	tier := a.prices.Tier()

	direction := ""
	switch {
	case a.ShouldScaleUp(snap, tier):
		a.cluster.scaleUp()
		a.metrics.ScaleUps++
		direction = trace.ScaleUp
	case a.ShouldScaleDown(snap, tier):
		a.cluster.scaleDown()
		a.metrics.ScaleDowns++
		direction = trace.ScaleDown
	default:
		return
	}

	logrus.Infof("[t=%10.4f] servers %s: %d -> %d (k=%d, m=%d, tier=%s, trigger=%s)",
		snap.Clock, direction, snap.ServerCount, a.cluster.ServerCount(),
		a.cluster.ActiveUsers(), a.cluster.AvailableResources(), tier, trigger)
	if a.trace != nil {
		a.trace.RecordScale(trace.ScaleRecord{
			Clock:              snap.Clock,
			Direction:          direction,
			Trigger:            trigger,
			FromServers:        snap.ServerCount,
			ToServers:          a.cluster.ServerCount(),
			ActiveUsers:        a.cluster.ActiveUsers(),
			AvailableResources: a.cluster.AvailableResources(),
			Tier:               string(tier),
		})
	}
	if a.onScale != nil {
		a.onScale()
	}
}

// runTicker fires the tick pulse every period.
func runTicker(p *sim.Process, tick *sim.Pulse, period float64) {
	var loop func()
	loop = func() {
		p.Sleep(period, func() {
			tick.Fire()
			loop()
		})
	}
	loop()
}
