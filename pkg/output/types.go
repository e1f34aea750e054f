// Package output provides formatting for summary, jump, search and
// detection results.
package output

import (
	"time"

	"github.com/ccollicutt/logsync/pkg/detector"
	"github.com/ccollicutt/logsync/pkg/summary"
	"github.com/ccollicutt/logsync/pkg/timeline"
)

// SummaryReport is the parsed summary log.
type SummaryReport struct {
	Source     string             `json:"source"`
	Categories []string           `json:"categories,omitempty"`
	Total      int                `json:"total"`
	Entries    []summary.LogEntry `json:"entries"`

	// Header and Rows hold the detail columns laid out as a table.
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// NewSummaryReport lays out entries with the given detail column names.
// Total is the entry count before filtering.
func NewSummaryReport(source string, entries []summary.LogEntry, total int, categories, columns []string) *SummaryReport {
	header, rows := summary.Table(entries, columns)
	if entries == nil {
		entries = []summary.LogEntry{}
	}
	return &SummaryReport{
		Source:     source,
		Categories: categories,
		Total:      total,
		Entries:    entries,
		Header:     header,
		Rows:       rows,
	}
}

// Line is a numbered line of text. Number is 1-based.
type Line struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Match  bool   `json:"match,omitempty"`
}

// JumpResult is one query timestamp resolved against the target.
type JumpResult struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Found    bool   `json:"found"`
	Error    string `json:"error,omitempty"`

	Line  int       `json:"line,omitempty"`
	Time  time.Time `json:"time,omitzero"`
	Exact bool      `json:"exact,omitempty"`

	Context []Line `json:"context,omitempty"`
}

// JumpReport collects jump results against one target log.
type JumpReport struct {
	Target  string       `json:"target"`
	Indexed int          `json:"indexed"`
	Skipped int          `json:"skipped"`
	Bumped  int          `json:"bumped"`
	Results []JumpResult `json:"results"`
}

// NewJumpReport creates an empty report describing ix.
func NewJumpReport(ix *timeline.Index) *JumpReport {
	return &JumpReport{
		Target:  ix.Path(),
		Indexed: ix.Len(),
		Skipped: ix.Skipped(),
		Bumped:  ix.Bumped(),
		Results: []JumpResult{},
	}
}

// Found counts resolved results.
func (r *JumpReport) Found() int {
	n := 0
	for _, res := range r.Results {
		if res.Found {
			n++
		}
	}
	return n
}

// SearchReport is a completed search over one file.
type SearchReport struct {
	Source        string `json:"source"`
	Query         string `json:"query"`
	CaseSensitive bool   `json:"case_sensitive"`
	WholeWord     bool   `json:"whole_word"`
	Regex         bool   `json:"regex"`

	Count  int `json:"count"`
	Cursor int `json:"cursor"` // 1-based, 0 when there are no matches

	Matches   []Line `json:"matches"`
	Truncated bool   `json:"truncated,omitempty"`
}

// DetectedFormat is a detected timestamp format.
type DetectedFormat struct {
	Name       string    `json:"name"`
	Shape      string    `json:"shape"`
	Pattern    string    `json:"pattern"`
	Coverage   float64   `json:"coverage"`
	MatchCount int       `json:"match_count"`
	SampleLine string    `json:"sample_line"`
	ParsedTime time.Time `json:"parsed_time"`
}

// DetectionReport is a timestamp format detection for one file.
type DetectionReport struct {
	File         string           `json:"file"`
	SampledLines int              `json:"sampled_lines"`
	ParsedLines  int              `json:"parsed_lines"`
	Formats      []DetectedFormat `json:"formats"`
	Notes        []string         `json:"notes,omitempty"`
}

// NewDetectionReport converts a detector result.
func NewDetectionReport(file string, result *detector.DetectionResult) *DetectionReport {
	report := &DetectionReport{
		File:         file,
		SampledLines: result.SampledLines,
		ParsedLines:  result.ParsedLines,
		Formats:      make([]DetectedFormat, 0, len(result.Matches)),
		Notes:        result.Notes,
	}
	for _, m := range result.Matches {
		report.Formats = append(report.Formats, DetectedFormat{
			Name:       m.Format.Name,
			Shape:      m.Format.Shape.String(),
			Pattern:    m.Format.PatternStr,
			Coverage:   m.Coverage,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
			ParsedTime: m.ParsedTime,
		})
	}
	return report
}
