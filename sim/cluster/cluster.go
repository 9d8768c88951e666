package cluster

import (
	"github.com/inference-sim/elastic-sim/sim"
)

// Snapshot is a read-only view of cluster state handed to policies.
type Snapshot struct {
	Clock              float64
	ServerCount        int
	AvailableResources int
	ActiveUsers        int
	ResourcesPerServer int
	Draining           int
}

// UsersPerServer returns floor(activeUsers / serverCount).
func (s Snapshot) UsersPerServer() int {
	return s.ActiveUsers / s.ServerCount
}

// Cluster owns the shared state of the elastic cluster: running servers,
// the pool of free resource units and the active session population.
//
// Servers are slots of a CountingResource (in use = running) and free units
// are the level of a LevelContainer. Every mutation is a non-suspending
// Try* call followed by an invariant check, so a caller that checks and then
// mutates inside one process step cannot race another process.
//
// Invariants, checked after every mutation:
//
//	minServers <= n <= maxServers
//	0 <= draining <= activeUsers
//	m + activeUsers == n*resourcesPerServer + draining
//
// draining counts units held by sessions whose server was removed while the
// pool could not give back a full server's worth. Those units are retired
// when their sessions complete instead of returning to the pool. With
// draining == 0 the last invariant is plain resource conservation.
type Cluster struct {
	sched       *sim.Scheduler
	servers     *sim.CountingResource
	pool        *sim.LevelContainer
	rps         int
	minServers  int
	activeUsers int
	draining    int
	peakServers int
}

// NewCluster starts cfg.InitialServers servers with all their units free.
// cfg must already be validated.
func NewCluster(s *sim.Scheduler, cfg Config) *Cluster {
	c := &Cluster{
		sched:      s,
		servers:    sim.NewCountingResource(s, "servers", cfg.MaxServers),
		pool:       sim.NewLevelContainer(s, "resources", cfg.MaxServers*cfg.ResourcesPerServer, cfg.InitialServers*cfg.ResourcesPerServer),
		rps:        cfg.ResourcesPerServer,
		minServers: cfg.MinServers,
	}
	for i := 0; i < cfg.InitialServers; i++ {
		c.servers.TryAcquire()
	}
	c.peakServers = c.servers.InUse()
	return c
}

// ServerCount and the accessors that follow report n, Nmax, Nmin, m, units
// per server, draining units and the largest n reached so far.
func (c *Cluster) ServerCount() int        { return c.servers.InUse() }
func (c *Cluster) MaxServers() int         { return c.servers.Capacity() }
func (c *Cluster) MinServers() int         { return c.minServers }
func (c *Cluster) AvailableResources() int { return c.pool.Level() }
func (c *Cluster) ResourcesPerServer() int { return c.rps }
func (c *Cluster) Draining() int           { return c.draining }
func (c *Cluster) PeakServers() int        { return c.peakServers }

// ActiveUsers returns the number of sessions holding a unit. It is the
// population billed by the price process.
func (c *Cluster) ActiveUsers() int { return c.activeUsers }

// Snapshot returns the current state.
func (c *Cluster) Snapshot() Snapshot {
	return Snapshot{
		Clock:              c.sched.Now(),
		ServerCount:        c.ServerCount(),
		AvailableResources: c.AvailableResources(),
		ActiveUsers:        c.activeUsers,
		ResourcesPerServer: c.rps,
		Draining:           c.draining,
	}
}

// reserve hands one free unit to a newly admitted session.
func (c *Cluster) reserve() {
	if c.pool.Level() == 0 || !c.pool.TryGet(1) {
		c.sched.Violate("available-resources-non-negative", "admitted a session with no free unit (m=%d, k=%d)", c.pool.Level(), c.activeUsers)
	}
	c.activeUsers++
	c.checkInvariants()
}

// release returns the unit of a completed session, or retires it if the
// cluster is draining.
func (c *Cluster) release() {
	if c.activeUsers == 0 {
		c.sched.Violate("active-users-non-negative", "session completed with no active users")
	}
	c.activeUsers--
	if c.draining > 0 {
		c.draining--
	} else if !c.pool.TryPut(1) {
		c.sched.Violate("resource-conservation", "returned unit does not fit the pool (m=%d)", c.pool.Level())
	}
	c.checkInvariants()
}

// scaleUp starts one server and adds its units to the pool.
func (c *Cluster) scaleUp() {
	if !c.servers.TryAcquire() {
		c.sched.Violate("server-count-bounds", "scale up beyond %d servers", c.servers.Capacity())
	}
	if !c.pool.TryPut(c.rps) {
		c.sched.Violate("resource-conservation", "units of a new server do not fit the pool (m=%d)", c.pool.Level())
	}
	c.peakServers = max(c.peakServers, c.servers.InUse())
	c.checkInvariants()
}

// scaleDown stops one server. Its units are taken from the free pool, as far
// as the pool has them: m = max(m - resourcesPerServer, 0).
func (c *Cluster) scaleDown() {
	if c.servers.InUse() <= c.minServers {
		c.sched.Violate("server-count-bounds", "scale down below %d servers", c.minServers)
	}
	c.servers.Release()
	take := min(c.pool.Level(), c.rps)
	if take > 0 && !c.pool.TryGet(take) {
		c.sched.Violate("resource-conservation", "cannot withdraw %d units (m=%d)", take, c.pool.Level())
	}
	c.draining += c.rps - take
	c.checkInvariants()
}

func (c *Cluster) checkInvariants() {
	n, m, k := c.ServerCount(), c.AvailableResources(), c.activeUsers
	switch {
	case n < c.minServers || n > c.servers.Capacity():
		c.sched.Violate("server-count-bounds", "n=%d outside [%d, %d]", n, c.minServers, c.servers.Capacity())
	case m < 0:
		c.sched.Violate("available-resources-non-negative", "m=%d", m)
	case c.draining < 0 || c.draining > k:
		c.sched.Violate("resource-conservation", "draining=%d outside [0, k=%d]", c.draining, k)
	case m+k != n*c.rps+c.draining:
		c.sched.Violate("resource-conservation", "m=%d + k=%d != n=%d * %d + draining=%d", m, k, n, c.rps, c.draining)
	}
}
