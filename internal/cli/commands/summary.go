package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logsync/pkg/output"
	"github.com/ccollicutt/logsync/pkg/summary"
)

// SummaryOptions holds command-line options for the summary command.
type SummaryOptions struct {
	OutputOptions
	Categories []string
	Columns    []string
	Sort       bool
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(g *GlobalOptions) *cobra.Command {
	opts := &SummaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary <summary-log>",
		Short: "Show the entries of a summary log",
		Long: `Parse a summary log into entries of time, category and detail.

Each non-blank line is one entry. The detail is split on commas into the
configured detail columns (summary.detail_columns).

Exit codes:
  0 - Entries shown
  1 - No entries after filtering
  2 - Configuration or runtime error

Example:
  logsync summary run.log
  logsync summary --category START --category STOP run.log
  logsync summary -o json run.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, args, g, opts)
		},
	}

	opts.OutputOptions.register(cmd)
	cmd.Flags().StringSliceVar(&opts.Categories, "category", nil, "Show only these categories (can be repeated)")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "Detail column names, in order")
	cmd.Flags().BoolVar(&opts.Sort, "sort", false, "Sort entries by time text")

	return cmd
}

func runSummary(cmd *cobra.Command, args []string, g *GlobalOptions, opts *SummaryOptions) error {
	ctx, cfg, logger, err := g.setup(cmd)
	if err != nil {
		return err
	}

	formatter, err := opts.formatter()
	if err != nil {
		return err
	}

	entries, err := summary.ParseFile(ctx, args[0])
	if err != nil {
		return err
	}

	categories := opts.Categories
	if len(categories) == 0 {
		categories = cfg.Summary.Categories
	}
	columns := opts.Columns
	if len(columns) == 0 {
		columns = cfg.Summary.DetailColumns
	}

	shown := summary.Filter(entries, categories)
	if opts.Sort {
		summary.SortByTime(shown)
	}
	logger.Debug().Int("entries", len(entries)).Int("shown", len(shown)).Msg("summary parsed")

	report := output.NewSummaryReport(args[0], shown, len(entries), categories, columns)
	if err := formatter.FormatSummary(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if len(shown) == 0 {
		ExitCode = 1
	}
	return nil
}
