package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TextFormatter formats results as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// FormatSummary renders the summary entries as an aligned table.
func (f *TextFormatter) FormatSummary(_ context.Context, report *SummaryReport, w io.Writer) error {
	if f.opts.Quiet {
		fmt.Fprintf(w, "%s: %d of %d entries\n", report.Source, len(report.Entries), report.Total)
		return nil
	}

	header := report.Header
	if f.opts.Verbose {
		header = append(header[:len(header):len(header)], "detail")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
	for i, row := range report.Rows {
		if f.opts.Verbose {
			row = append(row[:len(row):len(row)], report.Entries[i].Detail)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "---")
	if len(report.Categories) > 0 {
		fmt.Fprintf(w, "%d of %d entries (categories: %s)\n",
			len(report.Entries), report.Total, strings.Join(report.Categories, ", "))
	} else {
		fmt.Fprintf(w, "%d entries\n", len(report.Entries))
	}
	return nil
}

// FormatJump renders each resolved line with its surrounding context.
func (f *TextFormatter) FormatJump(_ context.Context, report *JumpReport, w io.Writer) error {
	for _, res := range report.Results {
		if f.opts.Quiet {
			if res.Found {
				fmt.Fprintf(w, "%s\t%d\n", res.Query, res.Line)
			} else {
				fmt.Fprintf(w, "%s\t-\n", res.Query)
			}
			continue
		}

		label := res.Query
		if res.Category != "" {
			label = fmt.Sprintf("%s %s", res.Query, res.Category)
		}

		switch {
		case res.Error != "":
			fmt.Fprintf(w, "[%s] error: %s\n", label, res.Error)
		case !res.Found:
			fmt.Fprintf(w, "[%s] no match\n", label)
		default:
			kind := "nearest"
			if res.Exact {
				kind = "exact"
			}
			fmt.Fprintf(w, "[%s] %s:%d (%s, %s)\n",
				label, report.Target, res.Line, kind, res.Time.Format("2006-01-02 15:04:05.000"))
		}

		for _, l := range res.Context {
			marker := " "
			if l.Match {
				marker = ">"
			}
			fmt.Fprintf(w, "%s %6d  %s\n", marker, l.Number, l.Text)
		}
		if len(res.Context) > 0 {
			fmt.Fprintln(w)
		}
	}

	if f.opts.Quiet {
		return nil
	}
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "%d of %d resolved against %s\n", report.Found(), len(report.Results), report.Target)
	if f.opts.Verbose {
		fmt.Fprintf(w, "Indexed lines: %d\n", report.Indexed)
		fmt.Fprintf(w, "Lines without timestamp: %d\n", report.Skipped)
		fmt.Fprintf(w, "Out-of-order timestamps adjusted: %d\n", report.Bumped)
	}
	return nil
}

// FormatSearch renders matching lines followed by the match count.
func (f *TextFormatter) FormatSearch(_ context.Context, report *SearchReport, w io.Writer) error {
	if !f.opts.Quiet {
		for _, l := range report.Matches {
			fmt.Fprintf(w, "%6d  %s\n", l.Number, l.Text)
		}
		if report.Truncated {
			fmt.Fprintf(w, "... %d more\n", report.Count-len(report.Matches))
		}
		fmt.Fprintln(w, "---")
	}

	if report.Count == 0 {
		fmt.Fprintf(w, "%q: no matches in %s\n", report.Query, report.Source)
		return nil
	}
	fmt.Fprintf(w, "%q: %d/%d in %s\n", report.Query, report.Cursor, report.Count, report.Source)
	return nil
}

// FormatDetection renders the detected formats and inference notes.
func (f *TextFormatter) FormatDetection(_ context.Context, report *DetectionReport, w io.Writer) error {
	fmt.Fprintln(w, "=== Timestamp Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", report.File)
	fmt.Fprintf(w, "Lines sampled: %d\n", report.SampledLines)
	fmt.Fprintf(w, "Lines with timestamps: %d\n", report.ParsedLines)
	fmt.Fprintln(w)

	if len(report.Formats) == 0 {
		fmt.Fprintln(w, "No timestamp format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: Lines must start with a date and time, a month/day and time,")
		fmt.Fprintln(w, "or a time of day, optionally in square brackets.")
		return nil
	}

	for i, m := range report.Formats {
		fmt.Fprintf(w, "%d. %s [%s]: %.1f%% (%d/%d lines)\n",
			i+1, m.Name, m.Shape, m.Coverage*100, m.MatchCount, report.SampledLines)
		fmt.Fprintf(w, "   Sample: %s\n", m.SampleLine)
		fmt.Fprintf(w, "   Parsed as: %s\n", m.ParsedTime.Format("2006-01-02 15:04:05 MST"))
		if f.opts.Verbose {
			fmt.Fprintf(w, "   Pattern: '%s'\n", m.Pattern)
		}
	}

	if len(report.Notes) > 0 {
		fmt.Fprintln(w)
		for _, note := range report.Notes {
			fmt.Fprintf(w, "Note: %s\n", note)
		}
	}
	return nil
}
