package config

import (
	"os"

	"github.com/ccollicutt/logsync/pkg/matcher"
	"github.com/ccollicutt/logsync/pkg/search"
	"github.com/ccollicutt/logsync/pkg/summary"
	"github.com/ccollicutt/logsync/pkg/timeline"
)

// Default values for configuration.
const (
	DefaultLocalityWindow = timeline.DefaultLocalityWindow
	DefaultDebounce       = search.DefaultDebounce
	DefaultChunkSize      = search.DefaultChunkSize
	DefaultRegexTimeout   = matcher.DefaultRegexTimeout
	DefaultEditorArgs     = "+{line} {file}"
)

// Environment variable names.
const (
	EnvTargetLog = "LOGSYNC_TARGET_LOG"
	EnvEditor    = "LOGSYNC_EDITOR"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeline: TimelineConfig{
			LocalityWindow: DefaultLocalityWindow,
		},
		Search: SearchConfig{
			Debounce:     DefaultDebounce,
			ChunkSize:    DefaultChunkSize,
			RegexTimeout: DefaultRegexTimeout,
		},
		Summary: SummaryConfig{
			DetailColumns: append([]string(nil), summary.DefaultColumns...),
		},
		Editor: EditorConfig{
			Args: DefaultEditorArgs,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if target := os.Getenv(EnvTargetLog); target != "" {
		c.TargetLog = target
	}
	if editor := os.Getenv(EnvEditor); editor != "" {
		c.Editor.Path = editor
	}
}
