package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/logsync/pkg/tail"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.log")
	if err := os.WriteFile(path, []byte("one\ntwo\n\nfour"), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	want := []string{"one", "two", "", "four"}
	if len(lines) != len(want) {
		t.Fatalf("LoadFile() = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.log"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadComplete_HoldsTrailingLine(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantLines  []string
		wantOffset int64
	}{
		{"terminated", "one\ntwo\n", []string{"one", "two"}, 8},
		{"unterminated tail", "one\nabc", []string{"one"}, 4},
		{"crlf", "one\r\ntwo", []string{"one"}, 5},
		{"empty", "", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "view.log")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			lines, offset, err := LoadComplete(context.Background(), path)
			if err != nil {
				t.Fatalf("LoadComplete() error = %v", err)
			}
			if offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
			if strings.Join(lines, "|") != strings.Join(tt.wantLines, "|") || len(lines) != len(tt.wantLines) {
				t.Errorf("lines = %q, want %q", lines, tt.wantLines)
			}
		})
	}
}

func TestLoadComplete_FollowerContinuesNumbering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.log")
	if err := os.WriteFile(path, []byte("one\nabc"), 0644); err != nil {
		t.Fatal(err)
	}

	lines, offset, err := LoadComplete(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadComplete() error = %v", err)
	}
	follower, err := tail.New(path, offset, nil)
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("def\nthree\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	added, err := follower.ReadNew()
	if err != nil {
		t.Fatalf("ReadNew() error = %v", err)
	}
	lines = append(lines, added...)

	want := []string{"one", "abcdef", "three"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("buffer = %q, want %q", lines, want)
	}
}
