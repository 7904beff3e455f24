package main

import (
	"github.com/spf13/cobra"
)

var (
	jsonOutput     bool
	yamlOutput     bool
	telemetryFlag  bool
	configPathFlag string
	profileFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "janusdb",
	Short: "Drive the ASTDB storage and query engine from the command line",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "output in YAML format (diff command only)")
	rootCmd.PersistentFlags().BoolVar(&telemetryFlag, "telemetry", false, "emit OTel traces/metrics to stdout")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config-dir", ".", "directory to search for janus.yaml")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "named profile from profiles.toml to apply (profile_mask/effect_mask)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(diffCmd)
}
