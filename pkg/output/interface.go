package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders command results in a specific format.
type Formatter interface {
	// FormatSummary renders parsed summary entries.
	FormatSummary(ctx context.Context, report *SummaryReport, w io.Writer) error

	// FormatJump renders resolved summary timestamps.
	FormatJump(ctx context.Context, report *JumpReport, w io.Writer) error

	// FormatSearch renders search matches.
	FormatSearch(ctx context.Context, report *SearchReport, w io.Writer) error

	// FormatDetection renders a timestamp format detection.
	FormatDetection(ctx context.Context, report *DetectionReport, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables detailed output.
	Verbose bool

	// Quiet enables minimal counts-only output.
	Quiet bool
}

// New returns the formatter for name.
func New(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (must be text or json)", name)
	}
}
