package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/logsync/pkg/config"
	"github.com/ccollicutt/logsync/pkg/output"
	"github.com/ccollicutt/logsync/pkg/search"
	"github.com/ccollicutt/logsync/pkg/tail"
)

// DefaultMaxLines is how many matching lines search prints by default.
const DefaultMaxLines = 50

// SearchOptions holds command-line options for the search command.
type SearchOptions struct {
	OutputOptions
	CaseSensitive bool
	WholeWord     bool
	Regex         bool
	Max           int
	Next          int
	Follow        bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand(g *GlobalOptions) *cobra.Command {
	opts := &SearchOptions{}

	cmd := &cobra.Command{
		Use:   "search <log-file> <query>",
		Short: "Search a log for matching lines",
		Long: `Search a log file for lines matching a query.

Matching is case-insensitive substring matching by default. --whole-word
requires the match to be bounded by non-word characters, --regex treats
the query as a regular expression (each line is matched with a timeout).

With --follow the file is watched and lines appended to it are searched
as they arrive, until interrupted.

Exit codes:
  0 - Matches found
  1 - No matches
  2 - Configuration or runtime error

Example:
  logsync search app.log timeout
  logsync search -w -s app.log ERROR
  logsync search -r app.log 'port \d+ (opened|closed)'
  logsync search --follow app.log probe`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, g, opts)
		},
	}

	opts.OutputOptions.register(cmd)
	cmd.Flags().BoolVarP(&opts.CaseSensitive, "case-sensitive", "s", false, "Match case exactly")
	cmd.Flags().BoolVarP(&opts.WholeWord, "whole-word", "w", false, "Match whole words only")
	cmd.Flags().BoolVarP(&opts.Regex, "regex", "r", false, "Treat the query as a regular expression")
	cmd.Flags().IntVarP(&opts.Max, "max", "m", DefaultMaxLines, "Maximum matching lines to print (0 = all)")
	cmd.Flags().IntVarP(&opts.Next, "next", "n", 0, "Advance the cursor this many matches")
	cmd.Flags().BoolVarP(&opts.Follow, "follow", "f", false, "Keep searching lines appended to the file")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string, g *GlobalOptions, opts *SearchOptions) error {
	ctx, cfg, logger, err := g.setup(cmd)
	if err != nil {
		return err
	}

	formatter, err := opts.formatter()
	if err != nil {
		return err
	}

	path, text := args[0], args[1]
	if text == "" {
		return errors.New("query must not be empty")
	}

	var (
		lines  []string
		offset int64
	)
	if opts.Follow {
		lines, offset, err = search.LoadComplete(ctx, path)
	} else {
		lines, err = search.LoadFile(ctx, path)
	}
	if err != nil {
		return err
	}

	query := search.Query{
		Text:          text,
		CaseSensitive: opts.CaseSensitive || cfg.Search.CaseSensitive,
		WholeWord:     opts.WholeWord || cfg.Search.WholeWord,
		UseRegex:      opts.Regex || cfg.Search.Regex,
	}

	updates := make(chan search.Update, 64)
	engine := newEngine(cfg, logger, updates)
	defer engine.Close()

	engine.SetLines(lines)
	engine.SetQuery(query)

	u, err := waitUpdate(ctx, updates)
	if err != nil {
		return err
	}
	if u.Err != nil {
		return fmt.Errorf("invalid query: %w", u.Err)
	}
	for i := 0; i < opts.Next; i++ {
		engine.Next()
	}

	report, printed := searchReport(engine, path, query, 0, opts.Max)
	if err := formatter.FormatSearch(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if !opts.Follow {
		if report.Count == 0 {
			ExitCode = 1
		}
		return nil
	}

	return followSearch(ctx, cmd, engine, updates, formatter, logger, path, query, offset, printed)
}

func newEngine(cfg *config.Config, logger zerolog.Logger, updates chan<- search.Update) *search.Engine {
	return search.New(
		search.WithDebounce(cfg.Search.Debounce),
		search.WithChunkSize(cfg.Search.ChunkSize),
		search.WithRegexTimeout(cfg.Search.RegexTimeout),
		search.WithLogger(logger),
		search.WithListener(func(u search.Update) {
			select {
			case updates <- u:
			default:
			}
		}),
	)
}

func waitUpdate(ctx context.Context, updates <-chan search.Update) (search.Update, error) {
	select {
	case u := <-updates:
		return u, nil
	case <-ctx.Done():
		return search.Update{}, ctx.Err()
	}
}

// searchReport builds a report from the engine's matches, skipping the
// first `from` of them and printing at most limit lines (0 = all). It also
// returns how many matches have now been reported.
func searchReport(engine *search.Engine, path string, q search.Query, from, limit int) (*output.SearchReport, int) {
	snap := engine.Snapshot()
	report := &output.SearchReport{
		Source:        path,
		Query:         q.Text,
		CaseSensitive: q.CaseSensitive,
		WholeWord:     q.WholeWord,
		Regex:         q.UseRegex,
		Count:         len(snap.Matches),
		Cursor:        snap.Cursor + 1,
		Matches:       []output.Line{},
	}

	from = min(from, len(snap.Matches))
	pending := snap.Matches[from:]
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
		report.Truncated = true
	}
	for _, pos := range pending {
		text, _ := engine.Line(pos)
		report.Matches = append(report.Matches, output.Line{Number: pos + 1, Text: text})
	}
	return report, len(snap.Matches)
}

func followSearch(ctx context.Context, cmd *cobra.Command, engine *search.Engine, updates <-chan search.Update,
	formatter output.Formatter, logger zerolog.Logger, path string, q search.Query, offset int64, printed int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	follower, err := tail.New(path, offset, func(lines []string) {
		engine.Append(lines...)
	}, tail.WithLogger(logger))
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- follower.Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return <-errc
		case err := <-errc:
			return err
		case u := <-updates:
			if u.Count <= printed {
				continue
			}
			report, total := searchReport(engine, path, q, printed, 0)
			printed = total
			if err := formatter.FormatSearch(ctx, report, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("formatting output: %w", err)
			}
		}
	}
}
