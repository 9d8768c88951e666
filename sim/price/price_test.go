package price

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/elastic-sim/sim"
)

type fixedLoad int

func (l fixedLoad) ActiveUsers() int { return int(l) }

type costSink struct{ total float64 }

func (c *costSink) AccrueCost(amount float64) { c.total += amount }

type change struct {
	At    float64
	Tier  Tier
	Price float64
}

func newRNG() *rand.Rand { return rand.New(rand.NewPCG(42, 0)) }

func TestParseTier(t *testing.T) {
	for _, name := range []string{"low", "medium", "high"} {
		tier, err := ParseTier(name)
		require.NoError(t, err)
		assert.Equal(t, name, string(tier))
	}
	_, err := ParseTier("peak")
	assert.Error(t, err)
	assert.Equal(t, 2, High.Level())
	assert.True(t, Medium.Cheap())
	assert.False(t, High.Cheap())
}

func TestCyclicPolicy_WrapsAndRepeatsTiers(t *testing.T) {
	p := NewCyclicPolicy([]Tier{Low, Medium, High, Medium})
	got := []Tier{p.Initial()}
	for i := 0; i < 6; i++ {
		got = append(got, p.Next(got[len(got)-1]))
	}
	assert.Equal(t, []Tier{Low, Medium, High, Medium, Low, Medium, High}, got)
}

func TestMarkovPolicy_Transitions(t *testing.T) {
	alwaysHigh := NewMarkovPolicy(1, newRNG())
	neverHigh := NewMarkovPolicy(0, newRNG())

	assert.Equal(t, Low, alwaysHigh.Initial())
	assert.Equal(t, Medium, alwaysHigh.Next(Low))
	assert.Equal(t, Medium, alwaysHigh.Next(High))
	for i := 0; i < 20; i++ {
		assert.Equal(t, High, alwaysHigh.Next(Medium))
		assert.Equal(t, Low, neverHigh.Next(Medium))
	}
}

func TestMarkovPolicy_MediumSplitFollowsProbability(t *testing.T) {
	p := NewMarkovPolicy(0.3, newRNG())
	high := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if p.Next(Medium) == High {
			high++
		}
	}
	assert.InDelta(t, 0.3, float64(high)/n, 0.02)
}

func TestNewTransitionPolicy_UnknownPanics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = "random-walk"
	assert.Panics(t, func() { NewTransitionPolicy(cfg, newRNG()) })
}

func TestConfig_Validate(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"default is valid", func(*Config) {}, ""},
		{"ranged is valid", func(c *Config) { c.Tiers = RangedTiers() }, ""},
		{"negative price", func(c *Config) {
			s := c.Tiers[High]
			s.Price = &neg
			c.Tiers[High] = s
		}, "negative price"},
		{"missing tier", func(c *Config) { delete(c.Tiers, Medium) }, `"medium" is not configured`},
		{"bad range", func(c *Config) {
			lo, hi := 5.0, 1.0
			c.Tiers[Low] = TierSpec{Duration: 1, Min: &lo, Max: &hi}
		}, "invalid price range"},
		{"zero duration", func(c *Config) {
			s := c.Tiers[Low]
			s.Duration = 0
			c.Tiers[Low] = s
		}, "duration must be > 0"},
		{"unknown policy", func(c *Config) { c.Policy = "spot" }, "unknown price policy"},
		{"probability out of range", func(c *Config) { c.PMediumToHigh = 1.5 }, "p_medium_to_high"},
		{"bad sequence", func(c *Config) { c.Sequence = []Tier{Low, "peak"} }, "price sequence"},
		{"zero accrual step", func(c *Config) { c.AccrualStep = 0 }, "accrual_step"},
		{"NaN accrual step", func(c *Config) { c.AccrualStep = math.NaN() }, "accrual_step must be finite"},
		{"NaN probability", func(c *Config) { c.PMediumToHigh = math.NaN() }, "p_medium_to_high must be finite"},
		{"infinite range bound", func(c *Config) {
			lo, hi := 1.0, math.Inf(1)
			c.Tiers[Medium] = TierSpec{Duration: 1, Min: &lo, Max: &hi}
		}, `tier "medium": values must be finite`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AccrualStep = -1
	cfg.PMediumToHigh = 2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accrual_step")
	assert.Contains(t, err.Error(), "p_medium_to_high")
}

func TestProcess_CyclicScheduleAndContinuousBilling(t *testing.T) {
	// GIVEN the default schedule and a constant population of 2 users at 200 energy each
	s := sim.NewScheduler()
	sink := &costSink{}
	pp := NewProcess(s, DefaultConfig(), 200, newRNG(), fixedLoad(2), sink)
	var changes []change
	pp.OnChange(func(now float64, tier Tier, price float64) {
		changes = append(changes, change{now, tier, price})
	})
	pp.Start()

	// WHEN it runs for 5 time units
	require.NoError(t, s.Run(5))

	// THEN tiers change at 0, 1, 2, 4 and every unit is billed at its tier's rate
	assert.Equal(t, []change{
		{0, Low, 0.1},
		{1, Medium, 1},
		{2, High, 5},
		{4, Medium, 1},
	}, changes)
	// low 0.1*2*200 + medium 1*2*200 + high 2 * 5*2*200/2 + medium 1*2*200
	assert.InDelta(t, 40+400+2000+400, sink.total, 1e-9)
	assert.Equal(t, Medium, pp.Tier())
	assert.Equal(t, 3, pp.Changes())
}

func TestProcess_NoUsersNoCost(t *testing.T) {
	s := sim.NewScheduler()
	sink := &costSink{}
	NewProcess(s, DefaultConfig(), 200, newRNG(), fixedLoad(0), sink).Start()
	require.NoError(t, s.Run(10))
	assert.Equal(t, 0.0, sink.total)
}

func TestProcess_FractionalAccrualStepBillsSameTotal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AccrualStep = 0.25
	s := sim.NewScheduler()
	sink := &costSink{}
	NewProcess(s, cfg, 200, newRNG(), fixedLoad(2), sink).Start()
	require.NoError(t, s.Run(4))
	assert.InDelta(t, 40+400+2000, sink.total, 1e-6)
}

func TestProcess_RangedPricesStayInRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tiers = RangedTiers()
	s := sim.NewScheduler()
	pp := NewProcess(s, cfg, 200, newRNG(), fixedLoad(1), &costSink{})
	pp.OnChange(func(_ float64, tier Tier, price float64) {
		spec := cfg.Tiers[tier]
		assert.GreaterOrEqual(t, price, *spec.Min)
		assert.LessOrEqual(t, price, *spec.Max)
	})
	pp.Start()
	require.NoError(t, s.Run(40))
	assert.Greater(t, pp.Changes(), 10)
}

func TestProcess_StochasticDwellIsReproducible(t *testing.T) {
	run := func() []change {
		cfg := DefaultConfig()
		cfg.Policy = PolicyMarkov
		cfg.StochasticDwell = true
		s := sim.NewScheduler()
		pp := NewProcess(s, cfg, 200, newRNG(), fixedLoad(3), &costSink{})
		var out []change
		pp.OnChange(func(now float64, tier Tier, price float64) {
			out = append(out, change{now, tier, price})
		})
		pp.Start()
		require.NoError(t, s.Run(20))
		return out
	}
	first, second := run(), run()
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}
