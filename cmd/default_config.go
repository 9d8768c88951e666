package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/elastic-sim/sim/cluster"
)

// defaultsCmd prints the default configuration as YAML. The output is a
// valid --config file and a starting point for custom runs.
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := cluster.DefaultConfig().YAML()
		if err != nil {
			logrus.Fatalf("Failed to render default config: %v", err)
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			logrus.Fatalf("Failed to write default config: %v", err)
		}
	},
}
