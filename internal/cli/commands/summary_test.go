package commands

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRunSummary(t *testing.T) {
	out, err := runCommand(t, NewSummaryCommand(&GlobalOptions{}), summaryLog)
	if err != nil {
		t.Fatalf("summary error = %v", err)
	}
	if ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", ExitCode)
	}
	for _, want := range []string{"DATA_NO", "PORT", "START", "MEASURE", "STOP", "lab-a", "3 entries"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunSummary_CategoryFilter(t *testing.T) {
	out, err := runCommand(t, NewSummaryCommand(&GlobalOptions{}), "-o", "json", "--category", "STOP", summaryLog)
	if err != nil {
		t.Fatalf("summary error = %v", err)
	}

	var parsed struct {
		Total   int `json:"total"`
		Entries []struct {
			Category string `json:"category"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if parsed.Total != 3 || len(parsed.Entries) != 1 {
		t.Fatalf("total/entries = %d/%d, want 3/1", parsed.Total, len(parsed.Entries))
	}
	if parsed.Entries[0].Category != "STOP" {
		t.Errorf("category = %q, want STOP", parsed.Entries[0].Category)
	}
}

func TestRunSummary_CategoryFilterText(t *testing.T) {
	out, err := runCommand(t, NewSummaryCommand(&GlobalOptions{}), "--category", "STOP", summaryLog)
	if err != nil {
		t.Fatalf("summary error = %v", err)
	}
	if !strings.Contains(out, "1 of 3 entries") {
		t.Errorf("output missing entry count:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 2 && fields[2] == "START" {
			t.Errorf("filtered row still shown: %q", line)
		}
	}
}

func TestRunSummary_NoEntries(t *testing.T) {
	_, err := runCommand(t, NewSummaryCommand(&GlobalOptions{}), "--category", "NOPE", summaryLog)
	if err != nil {
		t.Fatalf("summary error = %v", err)
	}
	if ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", ExitCode)
	}
}

func TestRunSummary_ConfigCategories(t *testing.T) {
	cfg := writeTemp(t, "logsync.yaml", "summary:\n  categories: [START]\n  detail_columns: [id, port]\n")
	out, err := runCommand(t, NewSummaryCommand(&GlobalOptions{ConfigPath: cfg}), "-o", "json", summaryLog)
	if err != nil {
		t.Fatalf("summary error = %v", err)
	}

	var parsed struct {
		Total   int        `json:"total"`
		Header  []string   `json:"header"`
		Entries []struct{} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if parsed.Total != 3 || len(parsed.Entries) != 1 {
		t.Errorf("total/entries = %d/%d, want 3/1", parsed.Total, len(parsed.Entries))
	}
	if strings.Join(parsed.Header, ",") != "time,category,id,port" {
		t.Errorf("header = %v", parsed.Header)
	}
}

func TestRunSummary_MissingFile(t *testing.T) {
	_, err := runCommand(t, NewSummaryCommand(&GlobalOptions{}), "/nonexistent/summary.log")
	if err == nil {
		t.Error("expected error for missing file")
	}
}
