package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logsync/pkg/detector"
	"github.com/ccollicutt/logsync/pkg/output"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	OutputOptions
	SampleSize int
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(g *GlobalOptions) *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect the timestamp formats of a log file",
		Long: `Sample a log file and report which timestamp prefixes its lines use.

Each line is classified by the first matching format:
  - Date and time, slash or dash separated (2024/01/15 10:30:00)
  - Month/day and time, the year is inferred (12/31 23:59:59)
  - Time of day only, the date is inferred (23:59:59.250)

Any of these may be wrapped in square brackets. Lines without a recognized
prefix are skipped when the timeline is built.

Example:
  logsync detect /var/log/myapp.log
  logsync detect --sample 500 -v /var/log/large.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, g, opts)
		},
	}

	opts.OutputOptions.register(cmd)
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, g *GlobalOptions, opts *DetectOptions) error {
	ctx, _, logger, err := g.setup(cmd)
	if err != nil {
		return err
	}

	formatter, err := opts.formatter()
	if err != nil {
		return err
	}

	logFile := args[0]
	if _, err := os.Stat(logFile); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))
	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	logger.Debug().Int("sampled", result.SampledLines).Int("parsed", result.ParsedLines).Msg("detection done")

	report := output.NewDetectionReport(logFile, result)
	if err := formatter.FormatDetection(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if !result.HasMatch() {
		ExitCode = 1
	}
	return nil
}
