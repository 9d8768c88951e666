package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedArrivals emits count arrivals spaced iat apart.
type fixedArrivals struct {
	iat   float64
	count int
}

func (f *fixedArrivals) Next() (float64, bool) {
	if f.count == 0 {
		return 0, false
	}
	f.count--
	return f.iat, true
}

// testConfig returns the default configuration with a short horizon and
// windowed MOS disabled.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Horizon = 5
	cfg.MOSWindow = 0
	return cfg
}

// newTestSimulation builds a simulation from testConfig after applying mutate.
func newTestSimulation(t *testing.T, mutate func(*Config)) *Simulation {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSimulation(cfg)
	require.NoError(t, err)
	return s
}

// mustRun runs s and fails the test on an invariant violation.
func mustRun(t *testing.T, s *Simulation) *Metrics {
	t.Helper()
	m, err := s.Run()
	require.NoError(t, err)
	return m
}
