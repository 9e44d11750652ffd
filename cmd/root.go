// Package cmd defines and implements the CLI commands for the harvester
// executable.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "Harvests Linked Data Event Streams into a local cache",
		Long: `harvester walks a Linked Data Event Stream: it follows the stream's
page relations, extracts every member exactly once, and caches each member
as an N-Triples file. Progress is checkpointed so an interrupted harvest
resumes where it left off.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newHarvestCmd())

	return cmd
}

// Execute is the main entry point. It exits non-zero on any fatal error or
// user interrupt.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
