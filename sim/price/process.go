package price

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inference-sim/elastic-sim/sim"
)

// dwellEpsilon absorbs float residue when a dwell is split into accrual steps.
const dwellEpsilon = 1e-9

// Load reads the population billed for energy.
type Load interface {
	ActiveUsers() int
}

// CostRecorder receives accrued energy cost.
type CostRecorder interface {
	AccrueCost(amount float64)
}

// ChangeFunc observes a tier change. It runs inside the price process step
// and must not suspend.
type ChangeFunc func(now float64, tier Tier, price float64)

// Process is the energy price state machine. It is the only writer of the
// current tier and price; everything else reads them.
//
// Over every dwell of duration D in a tier with price P the process bills
// P * activeUsers * energyPerUser / D per unit of time, in steps of
// Config.AccrualStep, reading the population at the start of each step.
type Process struct {
	sched         *sim.Scheduler
	cfg           Config
	energyPerUser float64
	policy        TransitionPolicy
	rng           *rand.Rand
	load          Load
	rec           CostRecorder

	tier      Tier
	price     float64
	dwell     float64 // length of the current dwell
	changes   int
	listeners []ChangeFunc
}

// NewProcess builds the price process in its initial tier. cfg must already
// be validated. Start must be called to run it.
func NewProcess(s *sim.Scheduler, cfg Config, energyPerUser float64, rng *rand.Rand, load Load, rec CostRecorder) *Process {
	pp := &Process{
		sched:         s,
		cfg:           cfg,
		energyPerUser: energyPerUser,
		policy:        NewTransitionPolicy(cfg, rng),
		rng:           rng,
		load:          load,
		rec:           rec,
	}
	pp.enter(pp.policy.Initial())
	return pp
}

// Tier returns the current tier.
func (pp *Process) Tier() Tier { return pp.tier }

// Price returns the current price.
func (pp *Process) Price() float64 { return pp.price }

// Dwell returns the length of the current dwell.
func (pp *Process) Dwell() float64 { return pp.dwell }

// Changes returns the number of tier changes after the initial tier.
func (pp *Process) Changes() int { return pp.changes }

// OnChange registers fn to run on entering every tier, the initial one included.
func (pp *Process) OnChange(fn ChangeFunc) {
	pp.listeners = append(pp.listeners, fn)
}

// Start spawns the price process.
func (pp *Process) Start() *sim.Process {
	return pp.sched.Process("price", pp.hold)
}

func (pp *Process) enter(t Tier) {
	spec := pp.cfg.Tiers[t]
	pp.tier = t
	if spec.Ranged() {
		pp.price = distuv.Uniform{Min: *spec.Min, Max: *spec.Max, Src: pp.rng}.Rand()
	} else {
		pp.price = *spec.Price
	}
	pp.dwell = spec.Duration
	if pp.cfg.StochasticDwell {
		pp.dwell = distuv.Exponential{Rate: 1 / spec.Duration, Src: pp.rng}.Rand()
	}
}

// hold announces the current tier, bills it for its dwell, then moves on.
func (pp *Process) hold(p *sim.Process) {
	now := pp.sched.Now()
	logrus.Infof("[t=%10.4f] energy price changed to %s (%.4f per unit)", now, pp.tier, pp.price)
	for _, fn := range pp.listeners {
		fn(now, pp.tier, pp.price)
	}

	base := pp.cfg.Tiers[pp.tier].Duration
	remaining := pp.dwell
	var accrue func()
	accrue = func() {
		if remaining <= dwellEpsilon {
			pp.enter(pp.policy.Next(pp.tier))
			pp.changes++
			pp.hold(p)
			return
		}
		step := min(pp.cfg.AccrualStep, remaining)
		users := pp.load.ActiveUsers()
		pp.rec.AccrueCost(pp.price * float64(users) * pp.energyPerUser / base * step)
		remaining -= step
		p.Sleep(step, accrue)
	}
	accrue()
}
