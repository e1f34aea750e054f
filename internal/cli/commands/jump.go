package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logsync/pkg/editor"
	"github.com/ccollicutt/logsync/pkg/output"
	"github.com/ccollicutt/logsync/pkg/summary"
	"github.com/ccollicutt/logsync/pkg/timeline"
)

// JumpOptions holds command-line options for the jump command.
type JumpOptions struct {
	OutputOptions
	Target     string
	Summary    string
	Categories []string
	Context    int
	Open       bool
	Wait       bool
}

// NewJumpCommand creates the jump command.
func NewJumpCommand(g *GlobalOptions) *cobra.Command {
	opts := &JumpOptions{}

	cmd := &cobra.Command{
		Use:   "jump [timestamp...]",
		Short: "Find the target log line nearest to a timestamp",
		Long: `Resolve timestamps to the closest line of the target log.

Timestamps may carry a full date, a month and day, or only a time of day.
A missing year or date is inferred from the previous query, or from the
newest timestamp in the target for the first one. Quote timestamps that
contain spaces.

With --summary every entry of a summary log is resolved in order, and
each lookup prefers lines near the previous match.

Exit codes:
  0 - At least one timestamp resolved
  1 - Nothing resolved
  2 - Configuration or runtime error

Example:
  logsync jump -t app.log "2024/01/10 12:00:00"
  logsync jump -t app.log --context 3 "12/31 23:59:59" "00:00:05"
  logsync jump -t app.log --summary run.log --category START
  logsync jump -t app.log --open "10:30:00"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJump(cmd, args, g, opts)
		},
	}

	opts.OutputOptions.register(cmd)
	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "Target log (default: target_log from config)")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "Resolve every entry of this summary log")
	cmd.Flags().StringSliceVar(&opts.Categories, "category", nil, "With --summary, only these categories (can be repeated)")
	cmd.Flags().IntVarP(&opts.Context, "context", "C", 0, "Lines of context around each match")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the first match in the configured editor")
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "With --open, wait for the editor to exit")

	return cmd
}

type jumpQuery struct {
	text     string
	category string
}

func runJump(cmd *cobra.Command, args []string, g *GlobalOptions, opts *JumpOptions) error {
	ctx, cfg, logger, err := g.setup(cmd)
	if err != nil {
		return err
	}

	formatter, err := opts.formatter()
	if err != nil {
		return err
	}
	if opts.Context < 0 {
		return fmt.Errorf("invalid context %d (must be >= 0)", opts.Context)
	}

	target := opts.Target
	if target == "" {
		target = cfg.TargetLog
	}
	if target == "" {
		return errors.New("no target log (use --target or set target_log in the config)")
	}

	queries := make([]jumpQuery, 0, len(args))
	for _, a := range args {
		queries = append(queries, jumpQuery{text: a})
	}
	if opts.Summary != "" {
		entries, err := summary.ParseFile(ctx, opts.Summary)
		if err != nil {
			return err
		}
		categories := opts.Categories
		if len(categories) == 0 {
			categories = cfg.Summary.Categories
		}
		for _, e := range summary.Filter(entries, categories) {
			queries = append(queries, jumpQuery{text: e.RawTime, category: e.Category})
		}
	}
	if len(queries) == 0 {
		return errors.New("no timestamps given (pass them as arguments or use --summary)")
	}

	cache := timeline.NewCache(timeline.WithLogger(logger))
	ix, err := cache.Get(ctx, target)
	if err != nil {
		return err
	}
	logger.Info().Str("path", ix.Path()).Int("entries", ix.Len()).Int("skipped", ix.Skipped()).
		Int("bumped", ix.Bumped()).Msg("index built")

	resolver := timeline.NewResolver(timeline.WithLocalityWindow(cfg.Timeline.LocalityWindow))
	report := output.NewJumpReport(ix)
	var centers []int
	for _, q := range queries {
		res := output.JumpResult{Query: q.text, Category: q.category}
		m, ok, err := resolver.Resolve(ix, q.text)
		switch {
		case err != nil:
			res.Error = err.Error()
		case ok:
			res.Found = true
			res.Line = m.Line
			res.Time = m.Time
			res.Exact = m.Exact
			centers = append(centers, m.Line)
		default:
			logger.Debug().Str("query", q.text).Msg("no match")
		}
		report.Results = append(report.Results, res)
	}

	if len(centers) > 0 {
		text, err := timeline.ReadLines(ctx, ix.Path(), timeline.Around(centers, opts.Context))
		if err != nil {
			return err
		}
		for i := range report.Results {
			attachContext(&report.Results[i], text, opts.Context)
		}
	}

	if err := formatter.FormatJump(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if len(centers) == 0 {
		ExitCode = 1
		return nil
	}

	if opts.Open {
		if err := editor.Open(cfg.Editor.Path, cfg.Editor.Args, ix.Path(), centers[0], opts.Wait); err != nil {
			return fmt.Errorf("opening editor: %w", err)
		}
	}
	return nil
}

func attachContext(res *output.JumpResult, text map[int]string, radius int) {
	if !res.Found {
		return
	}
	for n := res.Line - radius; n <= res.Line+radius; n++ {
		line, ok := text[n]
		if !ok {
			continue
		}
		res.Context = append(res.Context, output.Line{Number: n, Text: line, Match: n == res.Line})
	}
}
