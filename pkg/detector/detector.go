// Package detector reports which timestamp prefixes a log file uses and how
// much of each timestamp has to be inferred.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/logsync/pkg/timestamp"
)

// DefaultSampleSize is the number of non-blank lines sampled from a file.
const DefaultSampleSize = 100

// DetectionResult holds the result of analyzing a log file.
type DetectionResult struct {
	Matches      []FormatMatch // Formats that matched, sorted by coverage descending
	SampledLines int           // Number of non-blank lines sampled
	ParsedLines  int           // Number of lines with a recognized prefix
	Notes        []string      // Inference warnings
}

// FormatMatch is one format that classified at least one sampled line.
type FormatMatch struct {
	Format     *timestamp.Format
	Coverage   float64   // 0.0 to 1.0 (share of sampled lines)
	MatchCount int       // Number of lines classified by the format
	SampleLine string    // First line classified by the format
	ParsedTime time.Time // Sample line resolved against the reference
}

// Detector samples log lines and classifies their timestamp prefixes.
type Detector struct {
	parser     *timestamp.Parser
	sampleSize int
	now        func() time.Time
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithParser replaces the default timestamp formats.
func WithParser(p *timestamp.Parser) Option {
	return func(d *Detector) {
		if p != nil {
			d.parser = p
		}
	}
}

// WithClock sets the reference used to resolve sample timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// New creates a new Detector with the default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		parser:     timestamp.NewParser(),
		sampleSize: DefaultSampleSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples the head of a log file and classifies it.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines classifies each non-blank line by the first format that
// matches it, the same way the timeline index does.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{}

	type formatStats struct {
		format     *timestamp.Format
		order      int
		matchCount int
		sampleLine string
		fields     timestamp.Fields
	}
	stats := make(map[*timestamp.Format]*formatStats)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		result.SampledLines++

		format, fields, ok := d.parser.Classify(line)
		if !ok {
			continue
		}
		result.ParsedLines++

		s := stats[format]
		if s == nil {
			s = &formatStats{format: format, order: len(stats), sampleLine: line, fields: fields}
			stats[format] = s
		}
		s.matchCount++
	}

	reference := d.now()
	shapes := make(map[timestamp.Shape]bool)
	for _, s := range stats {
		parsed, _ := timestamp.Resolve(s.fields, reference)
		result.Matches = append(result.Matches, FormatMatch{
			Format:     s.format,
			Coverage:   float64(s.matchCount) / float64(result.SampledLines),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
			ParsedTime: parsed,
		})
		shapes[s.format.Shape] = true
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.MatchCount != b.MatchCount {
			return a.MatchCount > b.MatchCount
		}
		return stats[a.Format].order < stats[b.Format].order
	})

	result.Notes = notes(result, shapes)
	return result
}

func notes(r *DetectionResult, shapes map[timestamp.Shape]bool) []string {
	var out []string
	if shapes[timestamp.ShapeMonthDay] {
		out = append(out, "Some lines carry no year. The year is inferred from the "+
			"previous timestamp, choosing the closest of that year and its neighbours.")
	}
	if shapes[timestamp.ShapeTimeOnly] {
		out = append(out, "Some lines carry only a time of day. The date is inferred "+
			"from the previous timestamp, choosing the closest of that day and its neighbours.")
	}
	if len(shapes) > 1 {
		out = append(out, fmt.Sprintf("Timestamp shape varies between lines (%d shapes).", len(shapes)))
	}
	if unparsed := r.SampledLines - r.ParsedLines; unparsed > 0 && r.ParsedLines > 0 {
		out = append(out, fmt.Sprintf("%d of %d sampled lines have no timestamp "+
			"and are skipped by the index.", unparsed, r.SampledLines))
	}
	return out
}

// sampleFile reads up to sampleSize non-blank lines from a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for len(lines) < d.sampleSize && scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			lines = append(lines, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// BestMatch returns the format covering the most lines, or nil if none.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
