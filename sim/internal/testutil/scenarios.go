// Package testutil provides shared test infrastructure for the elastic
// simulator. It loads the scenario dataset used by sim/cluster/ tests and
// holds small assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ScenarioDataset represents the structure of testdata/scenarios.json.
type ScenarioDataset struct {
	Scenarios []Scenario `json:"scenarios"`
}

// Scenario is a named configuration, given as a YAML overlay on the default
// configuration, and the properties its run must satisfy.
type Scenario struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Config      string       `json:"config"`
	Expect      Expectations `json:"expect"`
}

// Expectations lists the checked properties. Nil pointers are not checked.
type Expectations struct {
	MinRejected    *int     `json:"min_rejected,omitempty"`
	MaxRejected    *int     `json:"max_rejected,omitempty"`
	MinArrivals    *int     `json:"min_arrivals,omitempty"`
	MaxScaleEvents *int     `json:"max_scale_events,omitempty"`
	MinScaleUps    *int     `json:"min_scale_ups,omitempty"`
	TotalCost      *float64 `json:"total_cost,omitempty"`
	PositiveCost   bool     `json:"positive_cost,omitempty"`
	// IdleThroughout requires zero active users and an untouched pool at every series point.
	IdleThroughout bool `json:"idle_throughout,omitempty"`
}

// LoadScenarioDataset loads the scenario dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadScenarioDataset(t *testing.T) *ScenarioDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read scenario dataset: %v", err)
	}

	var dataset ScenarioDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse scenario dataset: %v", err)
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
