package timeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ReadLines returns the text of the requested 1-based line numbers from the
// file at path, in one streaming pass that stops after the last wanted line.
// Line numbers past the end of the file are absent from the result.
func ReadLines(ctx context.Context, path string, lines []int) (map[int]string, error) {
	out := make(map[int]string, len(lines))
	if len(lines) == 0 {
		return out, nil
	}

	wanted := make(map[int]bool, len(lines))
	maxLine := 0
	for _, n := range lines {
		if n > 0 {
			wanted[n] = true
			maxLine = max(maxLine, n)
		}
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for n < maxLine && scanner.Scan() {
		n++
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if wanted[n] {
			out[n] = scanner.Text()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return out, nil
}

// Around returns the line numbers within radius lines of each center,
// sorted and deduplicated. Numbers below 1 are dropped.
func Around(centers []int, radius int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, c := range centers {
		for n := c - radius; n <= c+radius; n++ {
			if n < 1 || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}
