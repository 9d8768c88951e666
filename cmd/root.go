package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/elastic-sim/sim/cluster"
	"github.com/inference-sim/elastic-sim/sim/trace"
)

var (
	// CLI flags for the run command
	configPath   string  // YAML file layered over the default configuration
	seed         int64   // Seed of the first replication
	horizon      float64 // Simulated time to run for
	lambda       float64 // Session arrival rate
	mu           float64 // Session service rate
	qMin         float64 // Minimum fair-share quality for admission
	logLevel     string  // Log verbosity level
	traceLevel   string  // Decision trace level
	replications int     // Number of independent runs
	parallelism  int     // Replications run at once; 0 runs them all at once
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "elastic-sim",
	Short: "Discrete-event simulator for an elastic streaming cluster under variable energy prices",
}

// runCmd executes the simulation using the configuration file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the elastic cluster simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		startTime := time.Now()
		if err := runSimulation(cmd.Context(), cmd.OutOrStdout(), cfg, replications, parallelism); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// buildConfig loads --config over the defaults, then applies the flags the
// user set explicitly. Flags left at their defaults never override the file.
func buildConfig(cmd *cobra.Command) (cluster.Config, error) {
	cfg := cluster.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = cluster.LoadConfig(configPath); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("lambda") {
		cfg.Lambda = lambda
	}
	if flags.Changed("mu") {
		cfg.Mu = mu
	}
	if flags.Changed("qmin") {
		cfg.QMin = qMin
	}
	if flags.Changed("trace") {
		cfg.TraceLevel = traceLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// runSimulation runs cfg once and prints its metrics, or runs n replications
// and prints their summary.
func runSimulation(ctx context.Context, out io.Writer, cfg cluster.Config, n, par int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if n <= 1 {
		s, err := cluster.NewSimulation(cfg)
		if err != nil {
			return err
		}
		m, err := s.Run()
		if err != nil {
			return errors.Wrap(err, "simulation aborted")
		}
		m.Print(out)
		if tr := s.Trace(); tr != nil {
			printTraceSummary(out, tr)
		}
		return nil
	}

	reps, err := cluster.RunReplications(ctx, cfg, n, par)
	if err != nil {
		return err
	}
	printReplicationSummary(out, cluster.Summarize(reps))
	return nil
}

func printReplicationSummary(w io.Writer, s cluster.ReplicationSummary) {
	fmt.Fprintln(w, "=== Replication Summary ===")
	fmt.Fprintf(w, "Replications         : %d\n", s.Replications)
	row := func(name string, e cluster.Estimate) {
		fmt.Fprintf(w, "%-21s: %.4f ± %.4f\n", name, e.Mean, e.StdDev)
	}
	row("Rejected Sessions", s.Rejected)
	row("Total Energy Cost", s.TotalCost)
	row("Average MOS", s.AverageMOS)
	row("Average Q", s.AverageQ)
	row("Final Servers", s.FinalServers)
}

func printTraceSummary(w io.Writer, tr *trace.SimulationTrace) {
	ts := trace.Summarize(tr)
	fmt.Fprintln(w, "=== Decision Trace ===")
	fmt.Fprintf(w, "Admission Decisions  : %d (%d admitted, %d rejected)\n", ts.TotalDecisions, ts.AdmittedCount, ts.RejectedCount)
	fmt.Fprintf(w, "Mean Admitted Q      : %.4f\n", ts.MeanAdmittedQ)
	for _, reason := range ts.SortedReasons() {
		fmt.Fprintf(w, "  %-19s: %d\n", reason, ts.RejectReasons[reason])
	}
	fmt.Fprintf(w, "Scale Ups / Downs    : %d / %d\n", ts.ScaleUps, ts.ScaleDowns)
	fmt.Fprintf(w, "Servers (min/max)    : %d / %d\n", ts.MinServers, ts.MaxServers)
	fmt.Fprintf(w, "Tier Changes         : %d\n", ts.TierChanges)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := cluster.DefaultConfig()

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file layered over the defaults")
	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for the random streams")
	runCmd.Flags().Float64Var(&horizon, "horizon", defaults.Horizon, "Total simulation horizon")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().Float64Var(&lambda, "lambda", defaults.Lambda, "Session arrivals per time unit; 0 disables arrivals")
	runCmd.Flags().Float64Var(&mu, "mu", defaults.Mu, "Session service rate")
	runCmd.Flags().Float64Var(&qMin, "qmin", defaults.QMin, "Minimum fair-share quality for admission")
	runCmd.Flags().StringVar(&traceLevel, "trace", defaults.TraceLevel, "Decision trace level (none, decisions)")

	runCmd.Flags().IntVar(&replications, "replications", 1, "Number of independent replications with consecutive seeds")
	runCmd.Flags().IntVar(&parallelism, "parallelism", 0, "Replications run concurrently; 0 runs all at once")

	// Attach `run` and `defaults` as subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(defaultsCmd)
}
