// Package workload provides the stochastic inputs of a run: session
// inter-arrival times and session service times.
package workload

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// ArrivalSampler generates session inter-arrival times.
type ArrivalSampler interface {
	// Next returns the time until the next arrival. ok is false when the
	// stream is exhausted and the generator should stop.
	Next() (iat float64, ok bool)
}

// PoissonArrivals generates exponentially-distributed inter-arrival times,
// i.e. a Poisson arrival process with rate Lambda.
type PoissonArrivals struct {
	dist distuv.Exponential
}

func (a *PoissonArrivals) Next() (float64, bool) {
	return a.dist.Rand(), true
}

// Rate returns the arrival rate.
func (a *PoissonArrivals) Rate() float64 {
	return a.dist.Rate
}

// NoArrivals is the empty arrival stream (lambda == 0).
type NoArrivals struct{}

func (NoArrivals) Next() (float64, bool) { return 0, false }

// NewArrivalSampler returns a Poisson stream with rate lambda drawing from
// rng, or NoArrivals when lambda is zero. A negative rate is an error.
func NewArrivalSampler(lambda float64, rng *rand.Rand) (ArrivalSampler, error) {
	switch {
	case lambda < 0:
		return nil, errors.Errorf("arrival rate must be >= 0, got %v", lambda)
	case lambda == 0:
		return NoArrivals{}, nil
	}
	return &PoissonArrivals{dist: distuv.Exponential{Rate: lambda, Src: rng}}, nil
}
