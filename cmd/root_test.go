package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/elastic-sim/sim/cluster"
)

// newRunFlags returns a command carrying the run flags, bound to the package
// flag variables, with every variable reset to its default.
func newRunFlags(t *testing.T) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "run"}
	c.Flags().AddFlagSet(runCmd.Flags())
	c.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})
	return c
}

func TestBuildConfig_DefaultsWithoutFlags(t *testing.T) {
	c := newRunFlags(t)
	configPath = ""
	cfg, err := buildConfig(c)
	require.NoError(t, err)
	assert.Equal(t, cluster.DefaultConfig(), cfg)
}

func TestBuildConfig_ChangedFlagsOverrideFile(t *testing.T) {
	// GIVEN a config file that sets lambda and the seed
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 5\nlambda: 30\nhorizon: 8\n"), 0o644))

	c := newRunFlags(t)
	configPath = path
	t.Cleanup(func() { configPath = "" })

	// WHEN only --lambda is given on the command line
	require.NoError(t, c.Flags().Set("lambda", "12"))
	cfg, err := buildConfig(c)
	require.NoError(t, err)

	// THEN the flag wins over the file, and unset flags keep the file's values
	assert.Equal(t, 12.0, cfg.Lambda)
	assert.Equal(t, int64(5), cfg.Seed)
	assert.Equal(t, 8.0, cfg.Horizon)
}

func TestBuildConfig_InvalidValueIsRejected(t *testing.T) {
	c := newRunFlags(t)
	configPath = ""
	require.NoError(t, c.Flags().Set("qmin", "1.5"))
	_, err := buildConfig(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qmin")
}

func TestRunSimulation_PrintsMetrics(t *testing.T) {
	cfg := cluster.DefaultConfig()
	cfg.Horizon = 3
	cfg.TraceLevel = "decisions"
	var buf bytes.Buffer
	require.NoError(t, runSimulation(context.Background(), &buf, cfg, 1, 0))
	out := buf.String()
	assert.Contains(t, out, "=== Simulation Metrics ===")
	assert.Contains(t, out, "=== Decision Trace ===")
}

func TestRunSimulation_PrintsReplicationSummary(t *testing.T) {
	cfg := cluster.DefaultConfig()
	cfg.Horizon = 3
	var buf bytes.Buffer
	require.NoError(t, runSimulation(context.Background(), &buf, cfg, 3, 2))
	out := buf.String()
	assert.Contains(t, out, "=== Replication Summary ===")
	assert.Contains(t, out, "Replications         : 3")
	assert.NotContains(t, out, "=== Simulation Metrics ===")
}

func TestDefaultsCommand_OutputLoadsBack(t *testing.T) {
	var buf bytes.Buffer
	defaultsCmd.SetOut(&buf)
	t.Cleanup(func() { defaultsCmd.SetOut(nil) })
	defaultsCmd.Run(defaultsCmd, nil)

	cfg := cluster.Config{}
	require.NoError(t, cluster.DecodeConfig(buf.Bytes(), &cfg))
	assert.Equal(t, cluster.DefaultConfig(), cfg)
}
