package cluster

import (
	"fmt"
	"sort"
)

// Admission policy names.
const (
	AdmissionFairShare   = "fair-share"
	AdmissionAlwaysAdmit = "always-admit"
)

// ValidAdmissionPolicies lists the accepted admission_policy names.
var ValidAdmissionPolicies = map[string]bool{
	AdmissionFairShare:   true,
	AdmissionAlwaysAdmit: true,
	"":                   true, // empty defaults to fair-share
}

// IsValidAdmissionPolicy returns true if name is a recognized admission policy.
func IsValidAdmissionPolicy(name string) bool {
	return ValidAdmissionPolicies[name]
}

// AdmissionPolicyNames returns the non-empty policy names, sorted.
func AdmissionPolicyNames() []string {
	names := make([]string, 0, len(ValidAdmissionPolicies))
	for n := range ValidAdmissionPolicies {
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Rejection reasons.
const (
	ReasonAdmitted    = "admitted"
	ReasonNoCapacity  = "no-capacity"
	ReasonLowQuality  = "quality-below-min"
	ReasonLoadCeiling = "load-ceiling"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Admit         bool
	Q             float64 // fair-share quality at arrival
	ProjectedLoad float64 // users per server if admitted
	Reason        string
}

// AdmissionPolicy decides whether an arriving session is admitted. Decide
// must be a pure function of the snapshot.
type AdmissionPolicy interface {
	Decide(s Snapshot) Decision
}

// FairShareQ returns 1 with no active users, else min(1, m/k).
func FairShareQ(s Snapshot) float64 {
	if s.ActiveUsers == 0 {
		return 1
	}
	return min(1, float64(s.AvailableResources)/float64(s.ActiveUsers))
}

// ProjectedLoad returns (k+1)/n.
func ProjectedLoad(s Snapshot) float64 {
	return float64(s.ActiveUsers+1) / float64(s.ServerCount)
}

// FairShareAdmission admits iff a unit is free, Q > QMin and the projected
// load stays within LoadCeiling.
type FairShareAdmission struct {
	QMin        float64
	LoadCeiling float64
}

func (f *FairShareAdmission) Decide(s Snapshot) Decision {
	d := Decision{Q: FairShareQ(s), ProjectedLoad: ProjectedLoad(s)}
	switch {
	case s.AvailableResources <= 0:
		d.Reason = ReasonNoCapacity
	case d.Q <= f.QMin:
		d.Reason = ReasonLowQuality
	case d.ProjectedLoad > f.LoadCeiling:
		d.Reason = ReasonLoadCeiling
	default:
		d.Admit = true
		d.Reason = ReasonAdmitted
	}
	return d
}

// AlwaysAdmit admits whenever a unit is free. It is the capacity-only
// baseline against which fair-share admission is compared.
type AlwaysAdmit struct{}

func (AlwaysAdmit) Decide(s Snapshot) Decision {
	d := Decision{Q: FairShareQ(s), ProjectedLoad: ProjectedLoad(s), Reason: ReasonNoCapacity}
	if s.AvailableResources > 0 {
		d.Admit = true
		d.Reason = ReasonAdmitted
	}
	return d
}

// NewAdmissionPolicy creates an admission policy by name.
// An empty string defaults to fair-share. Panics on unrecognized names.
func NewAdmissionPolicy(name string, qMin, loadCeiling float64) AdmissionPolicy {
	switch name {
	case "", AdmissionFairShare:
		return &FairShareAdmission{QMin: qMin, LoadCeiling: loadCeiling}
	case AdmissionAlwaysAdmit:
		return AlwaysAdmit{}
	default:
		panic(fmt.Sprintf("unknown admission policy %q", name))
	}
}
