package cluster

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/elastic-sim/sim/price"
)

// SessionScore is the quality outcome of one completed session.
type SessionScore struct {
	Q           float64
	MOS         int
	CompletedAt float64
}

// SeriesPoint samples the cluster and the price at one instant.
type SeriesPoint struct {
	Time               float64
	ServerCount        int
	Tier               price.Tier
	Price              float64
	ActiveUsers        int
	AvailableResources int
}

// Metrics is the output of a run. It is written by the admission
// controller, the autoscaler and the price process, and read after Run.
type Metrics struct {
	Arrivals   int
	Admitted   int
	Rejected   int
	Completed  int
	ScaleUps   int
	ScaleDowns int
	TotalCost  float64

	Sessions  []SessionScore
	WindowMOS []float64 // MOS averaged over each MOS window; 0 for an empty window
	Series    []SeriesPoint

	PeakServers             int
	FinalServers            int
	FinalActiveUsers        int
	FinalAvailableResources int
	SimEndedTime            float64
	EventsFired             uint64

	windowStart int // index into Sessions where the current MOS window begins
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Sessions:  make([]SessionScore, 0),
		WindowMOS: make([]float64, 0),
		Series:    make([]SeriesPoint, 0),
	}
}

// AccrueCost adds energy cost billed by the price process.
func (m *Metrics) AccrueCost(amount float64) {
	m.TotalCost += amount
}

func (m *Metrics) recordSession(q float64, mos int, now float64) {
	m.Completed++
	m.Sessions = append(m.Sessions, SessionScore{Q: q, MOS: mos, CompletedAt: now})
}

// closeWindow averages the MOS of sessions completed since the previous
// window closed.
func (m *Metrics) closeWindow() float64 {
	window := m.Sessions[m.windowStart:]
	m.windowStart = len(m.Sessions)
	avg := 0.0
	if len(window) > 0 {
		scores := make([]float64, len(window))
		for i, s := range window {
			scores[i] = float64(s.MOS)
		}
		avg = stat.Mean(scores, nil)
	}
	m.WindowMOS = append(m.WindowMOS, avg)
	return avg
}

// AverageMOS returns the mean MOS over completed sessions, 0 if none.
func (m *Metrics) AverageMOS() float64 {
	if len(m.Sessions) == 0 {
		return 0
	}
	xs := make([]float64, len(m.Sessions))
	for i, s := range m.Sessions {
		xs[i] = float64(s.MOS)
	}
	return stat.Mean(xs, nil)
}

// AverageQ returns the mean admission-time Q over completed sessions, 0 if none.
func (m *Metrics) AverageQ() float64 {
	if len(m.Sessions) == 0 {
		return 0
	}
	xs := make([]float64, len(m.Sessions))
	for i, s := range m.Sessions {
		xs[i] = s.Q
	}
	return stat.Mean(xs, nil)
}

// MOSDistribution returns the number of sessions per score; index 0 is MOS 1.
func (m *Metrics) MOSDistribution() [5]int {
	var dist [5]int
	for _, s := range m.Sessions {
		dist[s.MOS-1]++
	}
	return dist
}

// RejectionRate returns rejected / arrivals, 0 with no arrivals.
func (m *Metrics) RejectionRate() float64 {
	if m.Arrivals == 0 {
		return 0
	}
	return float64(m.Rejected) / float64(m.Arrivals)
}

// AveragePriceByWindow returns the time-weighted mean price over consecutive
// windows of the given length, from 0 to SimEndedTime. The price is taken as
// a step function through the series points. A trailing partial window is
// averaged over its own length.
func (m *Metrics) AveragePriceByWindow(window float64) []float64 {
	if window <= 0 || m.SimEndedTime <= 0 || len(m.Series) == 0 {
		return nil
	}
	n := int(math.Ceil(m.SimEndedTime / window))
	out := make([]float64, n)
	for w := 0; w < n; w++ {
		lo := float64(w) * window
		hi := math.Min(lo+window, m.SimEndedTime)
		out[w] = m.integratePrice(lo, hi) / (hi - lo)
	}
	return out
}

// integratePrice integrates the stepwise price over [lo, hi).
func (m *Metrics) integratePrice(lo, hi float64) float64 {
	total := 0.0
	for i, p := range m.Series {
		start := p.Time
		end := m.SimEndedTime
		if i+1 < len(m.Series) {
			end = m.Series[i+1].Time
		}
		a, b := math.Max(start, lo), math.Min(end, hi)
		if b > a {
			total += p.Price * (b - a)
		}
	}
	return total
}

// Print writes a human-readable report.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Simulated Time       : %.4f\n", m.SimEndedTime)
	fmt.Fprintf(w, "Arrivals             : %d\n", m.Arrivals)
	fmt.Fprintf(w, "Admitted Sessions    : %d\n", m.Admitted)
	fmt.Fprintf(w, "Rejected Sessions    : %d (%.2f%%)\n", m.Rejected, 100*m.RejectionRate())
	fmt.Fprintf(w, "Completed Sessions   : %d\n", m.Completed)
	fmt.Fprintf(w, "Total Energy Cost    : %.4f\n", m.TotalCost)
	fmt.Fprintf(w, "Average MOS          : %.4f\n", m.AverageMOS())
	fmt.Fprintf(w, "Average Q            : %.4f\n", m.AverageQ())
	dist := m.MOSDistribution()
	fmt.Fprintf(w, "MOS Distribution     : 1=%d 2=%d 3=%d 4=%d 5=%d\n", dist[0], dist[1], dist[2], dist[3], dist[4])
	fmt.Fprintf(w, "Scale Ups / Downs    : %d / %d\n", m.ScaleUps, m.ScaleDowns)
	fmt.Fprintf(w, "Servers (final/peak) : %d / %d\n", m.FinalServers, m.PeakServers)
	fmt.Fprintf(w, "Active Users (final) : %d\n", m.FinalActiveUsers)
	if len(m.WindowMOS) > 0 {
		fmt.Fprintf(w, "Windowed MOS         : %v\n", m.WindowMOS)
	}
}
