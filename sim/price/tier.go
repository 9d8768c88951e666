// Package price models the electricity price as a state machine over three
// tiers and bills the cluster's energy use against it.
//
// The package depends only on the sim kernel. Cluster state is read through
// the Load interface and cost is written through CostRecorder, so the price
// process never mutates anything it does not own.
package price

import "github.com/pkg/errors"

// Tier is a discrete electricity price regime.
type Tier string

const (
	Low    Tier = "low"
	Medium Tier = "medium"
	High   Tier = "high"
)

// Tiers lists every tier in ascending price order.
var Tiers = []Tier{Low, Medium, High}

// ParseTier converts a tier name.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(s); t {
	case Low, Medium, High:
		return t, nil
	}
	return "", errors.Errorf("unknown price tier %q", s)
}

// Level returns 0, 1 or 2 for low, medium and high, -1 otherwise. Used by the
// series output where the tier is plotted as a number.
func (t Tier) Level() int {
	switch t {
	case Low:
		return 0
	case Medium:
		return 1
	case High:
		return 2
	}
	return -1
}

// Cheap reports whether scaling up is allowed in this tier.
func (t Tier) Cheap() bool {
	return t == Low || t == Medium
}
