package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// FormatSummary renders summary entries as JSON. Quiet mode omits the table.
func (f *JSONFormatter) FormatSummary(_ context.Context, report *SummaryReport, w io.Writer) error {
	if f.opts.Quiet {
		return encode(w, struct {
			Source string `json:"source"`
			Total  int    `json:"total"`
			Shown  int    `json:"shown"`
		}{report.Source, report.Total, len(report.Entries)})
	}
	return encode(w, report)
}

// FormatJump renders jump results as JSON.
func (f *JSONFormatter) FormatJump(_ context.Context, report *JumpReport, w io.Writer) error {
	return encode(w, report)
}

// FormatSearch renders search matches as JSON. Quiet mode omits the lines.
func (f *JSONFormatter) FormatSearch(_ context.Context, report *SearchReport, w io.Writer) error {
	if f.opts.Quiet {
		r := *report
		r.Matches = nil
		return encode(w, r)
	}
	return encode(w, report)
}

// FormatDetection renders a detection as JSON.
func (f *JSONFormatter) FormatDetection(_ context.Context, report *DetectionReport, w io.Writer) error {
	return encode(w, report)
}

func encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
