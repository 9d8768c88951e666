package cluster

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Replication is the outcome of one independent run.
type Replication struct {
	Index   int
	Seed    int64
	Metrics *Metrics
}

// RunReplications runs n independent simulations of cfg with seeds
// cfg.Seed, cfg.Seed+1, ... on at most parallelism goroutines (all at once
// if parallelism < 1). Each run builds its own Simulation, so no state is
// shared between goroutines. The first failure cancels runs not yet started.
// Results are ordered by index.
func RunReplications(ctx context.Context, cfg Config, n, parallelism int) ([]Replication, error) {
	if n < 1 {
		return nil, errors.Errorf("replications must be >= 1, got %d", n)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]Replication, n)
	g, ctx := errgroup.WithContext(ctx)
	if parallelism >= 1 {
		g.SetLimit(parallelism)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			shard := cfg
			shard.Seed = cfg.Seed + int64(i)
			s, err := NewSimulation(shard)
			if err != nil {
				return errors.Wrapf(err, "replication %d", i)
			}
			m, err := s.Run()
			if err != nil {
				return errors.Wrapf(err, "replication %d (seed %d)", i, shard.Seed)
			}
			logrus.Debugf("replication %d (seed %d) done: rejected=%d cost=%.4f", i, shard.Seed, m.Rejected, m.TotalCost)
			results[i] = Replication{Index: i, Seed: shard.Seed, Metrics: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Estimate is a sample mean with its standard deviation.
type Estimate struct {
	Mean   float64
	StdDev float64
}

// ReplicationSummary aggregates replications.
type ReplicationSummary struct {
	Replications int
	Rejected     Estimate
	TotalCost    Estimate
	AverageMOS   Estimate
	AverageQ     Estimate
	FinalServers Estimate
}

// Summarize computes mean and standard deviation of the headline outputs.
// The standard deviation of a single replication is 0.
func Summarize(reps []Replication) ReplicationSummary {
	summary := ReplicationSummary{Replications: len(reps)}
	if len(reps) == 0 {
		return summary
	}
	collect := func(f func(*Metrics) float64) Estimate {
		xs := make([]float64, len(reps))
		for i, r := range reps {
			xs[i] = f(r.Metrics)
		}
		mean, std := stat.MeanStdDev(xs, nil)
		if len(xs) < 2 || math.IsNaN(std) {
			std = 0
		}
		return Estimate{Mean: mean, StdDev: std}
	}
	summary.Rejected = collect(func(m *Metrics) float64 { return float64(m.Rejected) })
	summary.TotalCost = collect(func(m *Metrics) float64 { return m.TotalCost })
	summary.AverageMOS = collect((*Metrics).AverageMOS)
	summary.AverageQ = collect((*Metrics).AverageQ)
	summary.FinalServers = collect(func(m *Metrics) float64 { return float64(m.FinalServers) })
	return summary
}
