package workload

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Service time models.
const (
	ServiceExponential = "exponential"
	ServiceFixed       = "fixed"
)

// ValidServiceModels lists the accepted service_model names.
var ValidServiceModels = map[string]bool{
	ServiceExponential: true,
	ServiceFixed:       true,
	"":                 true, // empty defaults to exponential
}

// IsValidServiceModel returns true if name is a recognized service model.
func IsValidServiceModel(name string) bool {
	return ValidServiceModels[name]
}

// ServiceModelNames returns the non-empty model names, sorted.
func ServiceModelNames() []string {
	names := make([]string, 0, len(ValidServiceModels))
	for n := range ValidServiceModels {
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// ServiceSampler generates session holding times.
type ServiceSampler interface {
	// Next returns a positive service time.
	Next() float64
}

// ExponentialService draws holding times with rate mu (mean 1/mu).
type ExponentialService struct {
	dist distuv.Exponential
}

func (s *ExponentialService) Next() float64 {
	return s.dist.Rand()
}

// FixedService always returns the mean holding time 1/mu.
type FixedService struct {
	duration float64
}

func (s *FixedService) Next() float64 {
	return s.duration
}

// NewServiceSampler creates the named service model with rate mu.
func NewServiceSampler(model string, mu float64, rng *rand.Rand) (ServiceSampler, error) {
	if mu <= 0 {
		return nil, errors.Errorf("service rate must be > 0, got %v", mu)
	}
	switch model {
	case "", ServiceExponential:
		return &ExponentialService{dist: distuv.Exponential{Rate: mu, Src: rng}}, nil
	case ServiceFixed:
		return &FixedService{duration: 1 / mu}, nil
	default:
		panic(fmt.Sprintf("unknown service model %q", model))
	}
}
