package commands

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func fastSearchConfig(t *testing.T) *GlobalOptions {
	t.Helper()
	return &GlobalOptions{ConfigPath: writeTemp(t, "logsync.yaml", "search:\n  debounce: 1ms\n")}
}

func TestRunSearch(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantCount string
		wantLines []string
		exitCode  int
	}{
		{
			name:      "substring",
			args:      []string{targetLog, "PROBE"},
			wantCount: `"PROBE": 1/4`,
			wantLines: []string{"     3  [00:00:03] port 8080 opened by probe", "     7  01/01 00:01:00 probe done"},
		},
		{
			name:      "case sensitive",
			args:      []string{"-s", targetLog, "PROBE"},
			wantCount: `"PROBE": no matches`,
			exitCode:  1,
		},
		{
			name:      "whole word",
			args:      []string{"-w", targetLog, "port"},
			wantCount: `"port": 1/2`,
			wantLines: []string{"     8  2024-01-01 00:02:00 port 8080 closed"},
		},
		{
			name:      "regex",
			args:      []string{"-r", targetLog, `port \d+ (opened|closed)`},
			wantCount: "1/2",
		},
		{
			name:      "next wraps cursor",
			args:      []string{"-n", "5", targetLog, "probe"},
			wantCount: `"probe": 2/4`,
		},
		{
			name:      "max lines",
			args:      []string{"-m", "1", targetLog, "probe"},
			wantCount: "1/4",
			wantLines: []string{"... 3 more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, NewSearchCommand(fastSearchConfig(t)), tt.args...)
			if err != nil {
				t.Fatalf("search error = %v", err)
			}
			if ExitCode != tt.exitCode {
				t.Errorf("ExitCode = %d, want %d", ExitCode, tt.exitCode)
			}
			if !strings.Contains(out, tt.wantCount) {
				t.Errorf("output missing %q:\n%s", tt.wantCount, out)
			}
			for _, want := range tt.wantLines {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestRunSearch_InvalidRegex(t *testing.T) {
	_, err := runCommand(t, NewSearchCommand(fastSearchConfig(t)), "-r", targetLog, "(unclosed")
	if err == nil || !strings.Contains(err.Error(), "invalid query") {
		t.Errorf("error = %v, want invalid query", err)
	}
}

func TestRunSearch_EmptyQuery(t *testing.T) {
	_, err := runCommand(t, NewSearchCommand(fastSearchConfig(t)), targetLog, "")
	if err == nil {
		t.Error("expected error for empty query")
	}
}

func TestRunSearch_MissingFile(t *testing.T) {
	_, err := runCommand(t, NewSearchCommand(fastSearchConfig(t)), "/nonexistent/app.log", "x")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunSearch_Follow(t *testing.T) {
	path := writeTemp(t, "app.log", "10:00:00 probe started\n10:00:01 idle\n")

	cmd := NewSearchCommand(fastSearchConfig(t))
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(&syncBuffer{})
	cmd.SetArgs([]string{"--follow", path, "probe"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for !strings.Contains(out.String(), want) {
			if time.Now().After(deadline) {
				t.Fatalf("timed out waiting for %q:\n%s", want, out.String())
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	waitFor(`"probe": 1/1`)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("10:00:02 idle\n10:00:03 probe finished\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	waitFor("     4  10:00:03 probe finished")
	waitFor(`"probe": 1/2`)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("search --follow error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search --follow did not stop after cancel")
	}
}

func TestRunSearch_FollowCompletesTrailingLine(t *testing.T) {
	path := writeTemp(t, "app.log", "10:00:00 probe started\n10:00:01 pro")

	cmd := NewSearchCommand(fastSearchConfig(t))
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(&syncBuffer{})
	cmd.SetArgs([]string{"--follow", path, "probe"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for !strings.Contains(out.String(), want) {
			if time.Now().After(deadline) {
				t.Fatalf("timed out waiting for %q:\n%s", want, out.String())
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	waitFor(`"probe": 1/1`)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("be late\n10:00:02 probe again\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	waitFor("     3  10:00:02 probe again")
	if !strings.Contains(out.String(), "     2  10:00:01 probe late") {
		t.Errorf("completed line not numbered as line 2:\n%s", out.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("search --follow error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search --follow did not stop after cancel")
	}
}
