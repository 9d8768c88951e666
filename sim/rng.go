package sim

import (
	"hash/fnv"
	"math/rand/v2"
)

// SimulationKey is the seed of a run. Two runs with the same key and the same
// configuration draw identical random sequences.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Random stream names.
const (
	// SubsystemArrivals draws inter-arrival times.
	SubsystemArrivals = "arrivals"
	// SubsystemService draws session holding times.
	SubsystemService = "service"
	// SubsystemPrice draws ranged tier prices, Markov transitions and dwells.
	SubsystemPrice = "price"
)

// pcgStream is the PCG stream selector of the arrival stream.
const pcgStream = 0x9e3779b97f4a7c15

// PartitionedRNG hands out one PCG generator per subsystem. All generators
// share the run seed and differ in their stream selector, so a burst of
// arrivals never shifts the service times or the price draws of the run.
//
// Not safe for concurrent use; every Simulation owns its own instance.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, streams: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the generator of the named stream, creating it on
// first use. Later calls return the same instance.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if r, ok := p.streams[name]; ok {
		return r
	}
	r := rand.New(rand.NewPCG(uint64(p.key), streamSelector(name)))
	p.streams[name] = r
	return r
}

// Key returns the run seed.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// streamSelector maps a subsystem name to its PCG stream. The arrival stream
// keeps the fixed selector, so it depends on the seed alone.
func streamSelector(name string) uint64 {
	if name == SubsystemArrivals {
		return pcgStream
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	return pcgStream ^ h.Sum64()
}
