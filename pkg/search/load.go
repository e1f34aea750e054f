package search

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// LoadFile reads every line of the file at path for use with SetLines.
// A missing file is reported with an error wrapping os.ErrNotExist.
func LoadFile(ctx context.Context, path string) ([]string, error) {
	lines, _, err := load(ctx, path, true)
	return lines, err
}

// LoadComplete reads the newline-terminated lines of the file at path and
// returns the byte offset just past the last newline. An unterminated
// trailing line is left for a follower started at that offset.
func LoadComplete(ctx context.Context, path string) ([]string, int64, error) {
	return load(ctx, path, false)
}

func load(ctx context.Context, path string, keepPartial bool) ([]string, int64, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, 0, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	var (
		lines   []string
		offset  int64
		partial bool
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		if advance > 0 {
			if data[advance-1] == '\n' {
				offset += int64(advance)
			} else {
				partial = true
			}
		}
		return advance, token, err
	})
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines)%DefaultChunkSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log: %w", err)
	}
	if partial && !keepPartial {
		lines = lines[:len(lines)-1]
	}
	return lines, offset, nil
}
