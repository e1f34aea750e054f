// Package config provides configuration loading and validation for logsync.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// TargetLog is the default log that summary rows are resolved against.
	TargetLog string         `yaml:"target_log,omitempty"`
	Timeline  TimelineConfig `yaml:"timeline"`
	Search    SearchConfig   `yaml:"search"`
	Summary   SummaryConfig  `yaml:"summary"`
	Editor    EditorConfig   `yaml:"editor"`
}

// TimelineConfig tunes nearest-match resolution.
type TimelineConfig struct {
	// LocalityWindow is how many index positions on each side of the
	// previous match are considered before the global answer is kept.
	LocalityWindow int `yaml:"locality_window"`
}

// SearchConfig holds incremental search defaults.
type SearchConfig struct {
	Debounce      time.Duration `yaml:"debounce"`
	ChunkSize     int           `yaml:"chunk_size"`
	RegexTimeout  time.Duration `yaml:"regex_timeout"`
	CaseSensitive bool          `yaml:"case_sensitive"`
	WholeWord     bool          `yaml:"whole_word"`
	Regex         bool          `yaml:"regex"`
}

// SummaryConfig controls how the summary log is presented.
type SummaryConfig struct {
	// Categories limits displayed entries. Empty shows everything.
	Categories []string `yaml:"categories,omitempty"`

	// DetailColumns names the comma-separated detail fields in order.
	DetailColumns []string `yaml:"detail_columns,omitempty"`
}

// EditorConfig describes the external editor used by jump --open.
type EditorConfig struct {
	// Path is the editor executable.
	Path string `yaml:"path,omitempty"`

	// Args is the argument template. {file} and {line} are substituted.
	Args string `yaml:"args,omitempty"`
}
