// Package cli provides the command-line interface for logsync.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logsync/internal/cli/commands"
	"github.com/ccollicutt/logsync/internal/logging"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "logsync",
		Short: "Correlate summary log rows with lines of a raw log",
		Long: `logsync correlates the rows of a summary log with the matching lines of a
separate, larger target log using approximate timestamps.

Timestamps in the target may change format from line to line and may omit
the year or the whole date; missing parts are inferred from the previous
timestamp. Each lookup returns the target line closest in time.

It also searches logs incrementally (plain, whole-word or regex) and can
follow a growing file.

CONFIGURATION:
  Defaults can be set in a YAML file passed with --config. The target log
  and editor can also be set with LOGSYNC_TARGET_LOG and LOGSYNC_EDITOR.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", "", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", logging.DefaultLevel, "Diagnostic log level (debug|info|warn|error)")

	// Add subcommands
	rootCmd.AddCommand(commands.NewSummaryCommand(g))
	rootCmd.AddCommand(commands.NewJumpCommand(g))
	rootCmd.AddCommand(commands.NewSearchCommand(g))
	rootCmd.AddCommand(commands.NewDetectCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand(g))
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
