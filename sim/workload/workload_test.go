package workload

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 1))
}

func TestPoissonArrivals_MeanMatchesRate(t *testing.T) {
	// GIVEN a Poisson stream with rate 60
	a, err := NewArrivalSampler(60, newRNG(42))
	require.NoError(t, err)

	// WHEN 20000 inter-arrival times are drawn
	iats := make([]float64, 20000)
	for i := range iats {
		iat, ok := a.Next()
		require.True(t, ok)
		require.Greater(t, iat, 0.0)
		iats[i] = iat
	}

	// THEN the sample mean is within 5% of 1/60
	assert.InEpsilon(t, 1.0/60, stat.Mean(iats, nil), 0.05)
}

func TestPoissonArrivals_SameSeedSameSequence(t *testing.T) {
	a, _ := NewArrivalSampler(2, newRNG(7))
	b, _ := NewArrivalSampler(2, newRNG(7))
	for i := 0; i < 100; i++ {
		x, _ := a.Next()
		y, _ := b.Next()
		if x != y {
			t.Fatalf("draw %d: %v != %v", i, x, y)
		}
	}
}

func TestNewArrivalSampler_ZeroRateIsEmptyStream(t *testing.T) {
	a, err := NewArrivalSampler(0, newRNG(1))
	require.NoError(t, err)
	_, ok := a.Next()
	assert.False(t, ok)
}

func TestNewArrivalSampler_NegativeRateFails(t *testing.T) {
	_, err := NewArrivalSampler(-1, newRNG(1))
	assert.Error(t, err)
}

func TestServiceSampler_Models(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		mu       float64
		wantMean float64
		tol      float64
	}{
		{"default is exponential", "", 2, 0.5, 0.05},
		{"exponential", ServiceExponential, 1, 1, 0.05},
		{"fixed", ServiceFixed, 4, 0.25, 1e-12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewServiceSampler(tt.model, tt.mu, newRNG(3))
			require.NoError(t, err)
			xs := make([]float64, 20000)
			for i := range xs {
				xs[i] = s.Next()
				require.Greater(t, xs[i], 0.0)
			}
			assert.InEpsilon(t, tt.wantMean, stat.Mean(xs, nil), tt.tol)
		})
	}
}

func TestFixedService_IsConstant(t *testing.T) {
	s, err := NewServiceSampler(ServiceFixed, 3, nil)
	require.NoError(t, err)
	first := s.Next()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Next())
	}
	assert.False(t, math.IsNaN(first))
}

func TestNewServiceSampler_InvalidInputs(t *testing.T) {
	_, err := NewServiceSampler(ServiceExponential, 0, newRNG(1))
	assert.Error(t, err)
	assert.Panics(t, func() { NewServiceSampler("lognormal", 1, newRNG(1)) })
}

func TestServiceModelNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{ServiceExponential, ServiceFixed}, ServiceModelNames())
	assert.True(t, IsValidServiceModel(""))
	assert.False(t, IsValidServiceModel("gamma"))
}
