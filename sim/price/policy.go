package price

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Transition policy names.
const (
	PolicyCyclic = "cyclic"
	PolicyMarkov = "markov"
)

// ValidPolicies lists the accepted price policy names.
var ValidPolicies = map[string]bool{
	PolicyCyclic: true,
	PolicyMarkov: true,
	"":           true, // empty defaults to cyclic
}

// IsValidPolicy returns true if name is a recognized transition policy.
func IsValidPolicy(name string) bool {
	return ValidPolicies[name]
}

// PolicyNames returns the non-empty policy names, sorted.
func PolicyNames() []string {
	names := make([]string, 0, len(ValidPolicies))
	for n := range ValidPolicies {
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// TransitionPolicy chooses the tier sequence of the price process.
type TransitionPolicy interface {
	// Initial returns the tier the process starts in.
	Initial() Tier
	// Next returns the tier that follows current.
	Next(current Tier) Tier
}

// CyclicPolicy walks a fixed sequence and wraps around. The position is kept
// internally because a tier may appear more than once.
type CyclicPolicy struct {
	seq []Tier
	pos int
}

// NewCyclicPolicy panics on an empty sequence.
func NewCyclicPolicy(seq []Tier) *CyclicPolicy {
	if len(seq) == 0 {
		panic("cyclic price policy needs at least one tier")
	}
	return &CyclicPolicy{seq: append([]Tier(nil), seq...)}
}

func (c *CyclicPolicy) Initial() Tier {
	c.pos = 0
	return c.seq[0]
}

func (c *CyclicPolicy) Next(Tier) Tier {
	c.pos = (c.pos + 1) % len(c.seq)
	return c.seq[c.pos]
}

// MarkovPolicy moves low → medium and high → medium; from medium it goes to
// high with probability PMediumToHigh and back to low otherwise.
type MarkovPolicy struct {
	coin distuv.Bernoulli
}

// NewMarkovPolicy draws its coin flips from rng.
func NewMarkovPolicy(pMediumToHigh float64, rng *rand.Rand) *MarkovPolicy {
	return &MarkovPolicy{coin: distuv.Bernoulli{P: pMediumToHigh, Src: rng}}
}

func (m *MarkovPolicy) Initial() Tier { return Low }

func (m *MarkovPolicy) Next(current Tier) Tier {
	switch current {
	case Low, High:
		return Medium
	case Medium:
		if m.coin.Rand() == 1 {
			return High
		}
		return Low
	}
	panic(fmt.Sprintf("markov price policy: unknown tier %q", current))
}

// NewTransitionPolicy creates the policy named by cfg.Policy.
// Panics on unrecognized names.
func NewTransitionPolicy(cfg Config, rng *rand.Rand) TransitionPolicy {
	switch cfg.Policy {
	case "", PolicyCyclic:
		return NewCyclicPolicy(cfg.Sequence)
	case PolicyMarkov:
		return NewMarkovPolicy(cfg.PMediumToHigh, rng)
	default:
		panic(fmt.Sprintf("unknown price policy %q", cfg.Policy))
	}
}
