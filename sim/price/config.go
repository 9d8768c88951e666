package price

import (
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// TierSpec configures one tier: how long it is held and what it costs. Either
// Price is set (fixed) or both Min and Max are (the price is drawn uniformly
// from [Min, Max] once per dwell).
type TierSpec struct {
	Duration float64  `yaml:"duration"`
	Price    *float64 `yaml:"price,omitempty"`
	Min      *float64 `yaml:"min,omitempty"`
	Max      *float64 `yaml:"max,omitempty"`
}

// Ranged reports whether the tier samples its price from a range.
func (s TierSpec) Ranged() bool {
	return s.Price == nil && s.Min != nil && s.Max != nil
}

// Config holds the price process parameters.
type Config struct {
	Policy          string            `yaml:"policy"`
	Sequence        []Tier            `yaml:"sequence,omitempty"`
	PMediumToHigh   float64           `yaml:"p_medium_to_high"`
	StochasticDwell bool              `yaml:"stochastic_dwell"`
	AccrualStep     float64           `yaml:"accrual_step"`
	Tiers           map[Tier]TierSpec `yaml:"tiers"`
}

func fixed(v float64) *float64 { return &v }

// DefaultConfig returns the cyclic low/medium/high/medium schedule with
// fixed prices 0.1, 1 and 5 held for 1, 1 and 2 time units.
func DefaultConfig() Config {
	return Config{
		Policy:        PolicyCyclic,
		Sequence:      []Tier{Low, Medium, High, Medium},
		PMediumToHigh: 0.5,
		AccrualStep:   1,
		Tiers: map[Tier]TierSpec{
			Low:    {Duration: 1, Price: fixed(0.1)},
			Medium: {Duration: 1, Price: fixed(1)},
			High:   {Duration: 2, Price: fixed(5)},
		},
	}
}

// RangedTiers returns the tier table with the price ranges
// [0.1, 0.99], [1, 4.99] and [5, 6] instead of fixed prices.
func RangedTiers() map[Tier]TierSpec {
	return map[Tier]TierSpec{
		Low:    {Duration: 1, Min: fixed(0.1), Max: fixed(0.99)},
		Medium: {Duration: 1, Min: fixed(1), Max: fixed(4.99)},
		High:   {Duration: 2, Min: fixed(5), Max: fixed(6)},
	}
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs *multierror.Error
	if !IsValidPolicy(c.Policy) {
		errs = multierror.Append(errs, errors.Errorf("unknown price policy %q; valid: %v", c.Policy, PolicyNames()))
	}
	if !finite(c.AccrualStep) {
		errs = multierror.Append(errs, errors.Errorf("price accrual_step must be finite, got %v", c.AccrualStep))
	}
	if !finite(c.PMediumToHigh) {
		errs = multierror.Append(errs, errors.Errorf("p_medium_to_high must be finite, got %v", c.PMediumToHigh))
	}
	if c.AccrualStep <= 0 {
		errs = multierror.Append(errs, errors.Errorf("price accrual_step must be > 0, got %v", c.AccrualStep))
	}
	if c.PMediumToHigh < 0 || c.PMediumToHigh > 1 {
		errs = multierror.Append(errs, errors.Errorf("p_medium_to_high must be in [0, 1], got %v", c.PMediumToHigh))
	}
	for _, t := range c.Sequence {
		if _, err := ParseTier(string(t)); err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, "price sequence"))
		}
	}
	if (c.Policy == "" || c.Policy == PolicyCyclic) && len(c.Sequence) == 0 {
		errs = multierror.Append(errs, errors.New("cyclic price policy needs a non-empty sequence"))
	}
	for t := range c.Tiers {
		if _, err := ParseTier(string(t)); err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, "price tiers"))
		}
	}
	// iterate in a fixed order so the aggregated message is reproducible
	for _, t := range Tiers {
		spec, ok := c.Tiers[t]
		if !ok {
			errs = multierror.Append(errs, errors.Errorf("price tier %q is not configured", t))
			continue
		}
		for _, v := range []*float64{&spec.Duration, spec.Price, spec.Min, spec.Max} {
			if v != nil && !finite(*v) {
				errs = multierror.Append(errs, errors.Errorf("tier %q: values must be finite, got %v", t, *v))
			}
		}
		if spec.Duration <= 0 {
			errs = multierror.Append(errs, errors.Errorf("tier %q: duration must be > 0, got %v", t, spec.Duration))
		}
		switch {
		case spec.Price != nil:
			if spec.Min != nil || spec.Max != nil {
				errs = multierror.Append(errs, errors.Errorf("tier %q: set either price or min/max, not both", t))
			}
			if *spec.Price < 0 {
				errs = multierror.Append(errs, errors.Errorf("tier %q: negative price %v", t, *spec.Price))
			}
		case spec.Ranged():
			if *spec.Min < 0 || *spec.Max < *spec.Min {
				errs = multierror.Append(errs, errors.Errorf("tier %q: invalid price range [%v, %v]", t, *spec.Min, *spec.Max))
			}
		default:
			errs = multierror.Append(errs, errors.Errorf("tier %q: needs a price or a min/max range", t))
		}
	}
	return errs.ErrorOrNil()
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
