package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
)

var (
	targetLog  = filepath.Join("..", "..", "..", "testdata", "logs", "target.log")
	summaryLog = filepath.Join("..", "..", "..", "testdata", "logs", "summary.log")
)

// syncBuffer is a bytes.Buffer safe for a command writing on another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestCommandFlags(t *testing.T) {
	g := &GlobalOptions{}
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewSummaryCommand(g), "summary <summary-log>", []string{"output", "verbose", "quiet", "category", "columns", "sort"}},
		{NewJumpCommand(g), "jump [timestamp...]", []string{"output", "target", "summary", "category", "context", "open", "wait"}},
		{NewSearchCommand(g), "search <log-file> <query>", []string{"output", "case-sensitive", "whole-word", "regex", "max", "next", "follow"}},
		{NewDetectCommand(g), "detect <log-file>", []string{"output", "sample"}},
		{NewValidateCommand(g), "validate [config-file]", nil},
		{NewVersionCommand(), "version", nil},
	}

	for _, tt := range tests {
		if tt.cmd.Use != tt.use {
			t.Errorf("Use = %q, want %q", tt.cmd.Use, tt.use)
		}
		for _, flag := range tt.flags {
			if tt.cmd.Flags().Lookup(flag) == nil {
				t.Errorf("%s: missing flag %s", tt.cmd.Name(), flag)
			}
		}
	}
}

func TestSetup_ConfigError(t *testing.T) {
	g := &GlobalOptions{ConfigPath: "/nonexistent/logsync.yaml"}
	_, err := runCommand(t, NewSummaryCommand(g), summaryLog)
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want config load failure", err)
	}
}

func TestSetup_UnknownOutput(t *testing.T) {
	_, err := runCommand(t, NewDetectCommand(&GlobalOptions{}), "-o", "xml", targetLog)
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("error = %v, want unknown output format", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCommand(t, NewVersionCommand())
	if err != nil {
		t.Fatal(err)
	}
	if out != "logsync dev\n" {
		t.Errorf("output = %q", out)
	}
}
