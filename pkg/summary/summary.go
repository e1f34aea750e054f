// Package summary parses the summary log: one entry per line made of a
// timestamp, a category and a free-form detail.
package summary

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/ccollicutt/logsync/pkg/timestamp"
)

// LogEntry is one summary log row.
type LogEntry struct {
	RawTime  string `json:"time"`
	Category string `json:"category"`
	Detail   string `json:"detail"`
}

// ParseLine tokenizes one line. The timestamp is the recognized timestamp
// prefix when there is one, otherwise the first whitespace-separated token.
// Blank lines report false.
func ParseLine(line string) (LogEntry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LogEntry{}, false
	}

	var e LogEntry
	var rest string
	if f, ok := timestamp.Scan(trimmed); ok {
		i := strings.Index(trimmed, f.Text)
		e.RawTime = f.Text
		rest = strings.TrimPrefix(trimmed[i+len(f.Text):], "]")
	} else {
		e.RawTime, rest = cutField(trimmed)
	}

	e.Category, rest = cutField(strings.TrimSpace(rest))
	e.Detail = strings.TrimSpace(rest)
	return e, true
}

func cutField(s string) (field, rest string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// Parse reads entries from r, skipping blank lines.
func Parse(ctx context.Context, r io.Reader) ([]LogEntry, error) {
	var entries []LogEntry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if e, ok := ParseLine(scanner.Text()); ok {
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	return entries, nil
}

// ParseFile reads entries from the file at path.
func ParseFile(ctx context.Context, path string) ([]LogEntry, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening summary log %s: %w", path, err)
	}
	defer f.Close()

	return Parse(ctx, f)
}

// Filter keeps entries whose category is in categories. An empty set keeps
// everything.
func Filter(entries []LogEntry, categories []string) []LogEntry {
	if len(categories) == 0 {
		return append([]LogEntry(nil), entries...)
	}

	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}

	var out []LogEntry
	for _, e := range entries {
		if allowed[e.Category] {
			out = append(out, e)
		}
	}
	return out
}

// Categories returns the distinct categories in entries, sorted.
func Categories(entries []LogEntry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	sort.Strings(out)
	return out
}

// SortByTime orders entries by their raw time text, keeping the input order
// of equal times.
func SortByTime(entries []LogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RawTime < entries[j].RawTime
	})
}
