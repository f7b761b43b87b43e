// Package cmd wires kodit's subcommands together with cobra.
package cmd

import (
	"github.com/spf13/cobra"

	"kodit/internal/runtimecfg"
)

var (
	rootCmd = &cobra.Command{
		Use:          "kodit",
		Short:        "kodit",
		Long:         "kodit runs, formats, lints, and debugs kodit scripts.",
		SilenceUsage: true,
	}

	verbose    bool
	lexSpec    string
	configPath string

	// Version, Commit and Date are copied in by main from its own
	// -ldflags-overridable variables before Execute runs.
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Execute runs the root command.
func Execute() error {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().StringVar(&lexSpec, "lexspec", "", "path to a YAML lexing specification (default: built-in canonical syntax)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML runtime config (default: platform config dir)")

	rootCmd.AddCommand(runCmd, fmtCmd, lintCmd, debugCmd, versionCmd)
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("kodit %s (commit %s, built %s)\n", Version, Commit, Date)
		return nil
	},
}

func loadConfig() (*runtimecfg.Config, error) {
	if configPath != "" {
		return runtimecfg.LoadFrom(configPath)
	}
	return runtimecfg.Load()
}
