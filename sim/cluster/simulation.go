package cluster

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/elastic-sim/sim"
	"github.com/inference-sim/elastic-sim/sim/price"
	"github.com/inference-sim/elastic-sim/sim/trace"
	"github.com/inference-sim/elastic-sim/sim/workload"
)

// Simulation is the context of one run. It owns the scheduler, the cluster,
// the price process, the pulses and the metrics; nothing is shared with
// other Simulations, so independent runs may execute on separate goroutines.
type Simulation struct {
	cfg   Config
	sched *sim.Scheduler
	rng   *sim.PartitionedRNG

	cluster    *Cluster
	prices     *price.Process
	arrivals   workload.ArrivalSampler
	service    workload.ServiceSampler
	admission  AdmissionPolicy
	autoscaler *Autoscaler

	up, down, tick *sim.Pulse

	metrics     *Metrics
	trace       *trace.SimulationTrace
	sessions    []*Session // retained only with the decision trace enabled
	nextSession int
	hasRun      bool
}

// NewSimulation validates cfg and wires every component. A *sim.ConfigError
// is returned when the configuration is invalid.
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sched := sim.NewScheduler()
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))

	arrivals, err := workload.NewArrivalSampler(cfg.Lambda, rng.ForSubsystem(sim.SubsystemArrivals))
	if err != nil {
		return nil, &sim.ConfigError{Err: err}
	}
	service, err := workload.NewServiceSampler(cfg.ServiceModel, cfg.Mu, rng.ForSubsystem(sim.SubsystemService))
	if err != nil {
		return nil, &sim.ConfigError{Err: err}
	}

	s := &Simulation{
		cfg:       cfg,
		sched:     sched,
		rng:       rng,
		cluster:   NewCluster(sched, cfg),
		arrivals:  arrivals,
		service:   service,
		admission: NewAdmissionPolicy(cfg.AdmissionPolicy, cfg.QMin, cfg.LoadCeiling),
		up:        sim.NewPulse(sched, "up"),
		down:      sim.NewPulse(sched, "down"),
		tick:      sim.NewPulse(sched, "tick"),
		metrics:   NewMetrics(),
	}
	if tc := (trace.TraceConfig{Level: trace.TraceLevel(cfg.TraceLevel)}); tc.Enabled() {
		s.trace = trace.NewSimulationTrace(tc)
	}
	s.prices = price.NewProcess(sched, cfg.Price, cfg.EnergyPerUser, rng.ForSubsystem(sim.SubsystemPrice), s.cluster, s.metrics)
	s.prices.OnChange(s.onPriceChange)
	s.autoscaler = &Autoscaler{
		cluster:       s.cluster,
		prices:        s.prices,
		up:            s.up,
		down:          s.down,
		tick:          s.tick,
		upThreshold:   cfg.ScaleUpThreshold,
		downThreshold: cfg.ScaleDownThreshold,
		metrics:       s.metrics,
		trace:         s.trace,
		onScale:       s.recordSeries,
	}
	return s, nil
}

// Accessors for the components of the run, for inspection after Run.
func (s *Simulation) Config() Config                { return s.cfg }
func (s *Simulation) Scheduler() *sim.Scheduler     { return s.sched }
func (s *Simulation) Cluster() *Cluster             { return s.cluster }
func (s *Simulation) Prices() *price.Process        { return s.prices }
func (s *Simulation) Autoscaler() *Autoscaler       { return s.autoscaler }
func (s *Simulation) Metrics() *Metrics             { return s.metrics }
func (s *Simulation) Trace() *trace.SimulationTrace { return s.trace }

// Sessions returns every arrival of the run, in arrival order, when the
// decision trace is enabled; otherwise sessions are dropped once they end and
// Sessions returns nil.
func (s *Simulation) Sessions() []*Session { return s.sessions }

// Run executes the simulation to the configured horizon and returns its
// metrics. A non-nil error is the *sim.InvariantViolation that aborted the
// run; the metrics then describe the state at the abort.
// Panics if called more than once.
func (s *Simulation) Run() (*Metrics, error) {
	if s.hasRun {
		panic("Simulation.Run() called more than once")
	}
	s.hasRun = true

	logrus.Infof("Starting simulation: seed=%d horizon=%v lambda=%v mu=%v servers=%d in [%d, %d]",
		s.cfg.Seed, s.cfg.Horizon, s.cfg.Lambda, s.cfg.Mu,
		s.cfg.InitialServers, s.cfg.MinServers, s.cfg.MaxServers)

	// spawn order fixes the order of same-time steps at t=0
	s.prices.Start()
	s.sched.Process("autoscaler", s.autoscaler.run)
	s.sched.Process("ticker", func(p *sim.Process) { runTicker(p, s.tick, s.cfg.AutoscaleTick) })
	s.sched.Process("generator", s.generate)
	if s.cfg.MOSWindow > 0 {
		s.sched.Process("mos-window", s.windowMOS)
	}
	if s.cfg.MonitorInterval > 0 {
		s.sched.Process("monitor", s.monitor)
	}

	err := s.sched.Run(s.cfg.Horizon)
	s.finalize()
	if err != nil {
		logrus.Errorf("simulation aborted: %v", err)
		return s.metrics, err
	}
	logrus.Infof("Simulation complete: %d events, %d arrivals, %d rejected, cost %.4f",
		s.metrics.EventsFired, s.metrics.Arrivals, s.metrics.Rejected, s.metrics.TotalCost)
	return s.metrics, nil
}

func (s *Simulation) finalize() {
	m := s.metrics
	m.SimEndedTime = s.sched.Now()
	m.EventsFired = s.sched.EventsFired()
	m.PeakServers = s.cluster.PeakServers()
	m.FinalServers = s.cluster.ServerCount()
	m.FinalActiveUsers = s.cluster.ActiveUsers()
	m.FinalAvailableResources = s.cluster.AvailableResources()
}

func (s *Simulation) onPriceChange(now float64, tier price.Tier, p float64) {
	if s.trace != nil {
		s.trace.RecordPrice(trace.PriceRecord{Clock: now, Tier: string(tier), Price: p})
	}
	s.recordSeries()
}

// recordSeries appends the current (time, servers, tier, price) sample.
func (s *Simulation) recordSeries() {
	s.metrics.Series = append(s.metrics.Series, SeriesPoint{
		Time:               s.sched.Now(),
		ServerCount:        s.cluster.ServerCount(),
		Tier:               s.prices.Tier(),
		Price:              s.prices.Price(),
		ActiveUsers:        s.cluster.ActiveUsers(),
		AvailableResources: s.cluster.AvailableResources(),
	})
}

// windowMOS closes a MOS window every MOSWindow units.
func (s *Simulation) windowMOS(p *sim.Process) {
	var loop func()
	loop = func() {
		p.Sleep(s.cfg.MOSWindow, func() {
			avg := s.metrics.closeWindow()
			logrus.Infof("[t=%10.4f] windowed MOS %.4f", s.sched.Now(), avg)
			loop()
		})
	}
	loop()
}

// monitor samples the series every MonitorInterval units.
func (s *Simulation) monitor(p *sim.Process) {
	var loop func()
	loop = func() {
		s.recordSeries()
		logrus.Infof("[t=%10.4f] active users %d, free units %d, servers %d",
			s.sched.Now(), s.cluster.ActiveUsers(), s.cluster.AvailableResources(), s.cluster.ServerCount())
		p.Sleep(s.cfg.MonitorInterval, loop)
	}
	loop()
}
