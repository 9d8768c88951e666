// Package trace provides decision-trace recording for admission and scaling analysis.
// This package has no dependencies on sim/ or sim/cluster/; it stores pure data types.
package trace

// AdmissionRecord captures a single admission decision and the cluster
// state it was taken against.
type AdmissionRecord struct {
	SessionID          int
	Clock              float64
	Admitted           bool
	Reason             string
	Q                  float64 // fair-share quality at arrival
	ProjectedLoad      float64 // (activeUsers+1)/serverCount at arrival
	ActiveUsers        int
	AvailableResources int
	ServerCount        int
}

// Scale directions.
const (
	ScaleUp   = "up"
	ScaleDown = "down"
)

// ScaleRecord captures a single autoscaler action.
type ScaleRecord struct {
	Clock              float64
	Direction          string // ScaleUp or ScaleDown
	Trigger            string // signal that woke the autoscaler
	FromServers        int
	ToServers          int
	ActiveUsers        int
	AvailableResources int
	Tier               string
}

// PriceRecord captures entry into a price tier.
type PriceRecord struct {
	Clock float64
	Tier  string
	Price float64
}
