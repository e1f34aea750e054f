package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it is set and otherwise returns the
// defaults with environment overrides applied.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}
	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	return cfg, nil
}

// Validate checks a configuration for errors and fills zero values with
// defaults.
func Validate(cfg *Config) error {
	if cfg.Timeline.LocalityWindow < 0 {
		return errors.New("timeline.locality_window: must be >= 0")
	}

	if err := validateSearch(&cfg.Search); err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if err := validateSummary(&cfg.Summary); err != nil {
		return fmt.Errorf("summary: %w", err)
	}

	if err := validateEditor(&cfg.Editor); err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	return nil
}

func validateSearch(s *SearchConfig) error {
	if s.Debounce < 0 {
		return errors.New("debounce must not be negative")
	}
	if s.ChunkSize < 0 {
		return errors.New("chunk_size must not be negative")
	}
	if s.ChunkSize == 0 {
		s.ChunkSize = DefaultChunkSize
	}
	if s.RegexTimeout < 0 {
		return errors.New("regex_timeout must not be negative")
	}
	if s.RegexTimeout == 0 {
		s.RegexTimeout = DefaultRegexTimeout
	}
	return nil
}

func validateSummary(s *SummaryConfig) error {
	seen := make(map[string]bool, len(s.DetailColumns))
	for i, name := range s.DetailColumns {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("detail_columns[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("detail_columns[%d]: duplicate column %q", i, name)
		}
		seen[name] = true
		s.DetailColumns[i] = name
	}
	return nil
}

func validateEditor(e *EditorConfig) error {
	if e.Args == "" {
		e.Args = DefaultEditorArgs
	}
	if e.Path != "" && !strings.Contains(e.Args, "{file}") {
		return errors.New("args must contain a {file} placeholder")
	}
	return nil
}
