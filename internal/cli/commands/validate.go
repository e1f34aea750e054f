package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logsync/pkg/config"
	"github.com/ccollicutt/logsync/pkg/editor"
	"github.com/ccollicutt/logsync/pkg/timeline"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Long: `Validate a logsync configuration file.

The file is taken from the argument or from --config.

Checks:
  - YAML syntax
  - Value ranges and detail column names
  - Editor argument template
  - Target log readability and timestamp coverage (warning only)
  - Editor executable (warning only)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, g)
		},
	}
}

func runValidate(cmd *cobra.Command, args []string, g *GlobalOptions) error {
	configPath := g.ConfigPath
	if len(args) == 1 {
		configPath = args[0]
	}
	if configPath == "" {
		return errors.New("no config file (pass it as an argument or use --config)")
	}

	opts := *g
	opts.ConfigPath = ""
	ctx, _, logger, err := opts.setup(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Locality window: %d\n", cfg.Timeline.LocalityWindow)
	fmt.Fprintf(out, "  Search:          debounce %s, chunk %d, regex timeout %s\n",
		cfg.Search.Debounce, cfg.Search.ChunkSize, cfg.Search.RegexTimeout)
	fmt.Fprintf(out, "  Detail columns:  %s\n", strings.Join(cfg.Summary.DetailColumns, ", "))
	if len(cfg.Summary.Categories) > 0 {
		fmt.Fprintf(out, "  Categories:      %s\n", strings.Join(cfg.Summary.Categories, ", "))
	}

	if cfg.TargetLog != "" {
		ix, err := timeline.Build(ctx, cfg.TargetLog, timeline.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(out, "\nWarning: target log: %v\n", err)
		} else {
			fmt.Fprintf(out, "\nTarget log: %s\n", cfg.TargetLog)
			fmt.Fprintf(out, "  Lines: %d, with timestamps: %d\n", ix.Lines(), ix.Len())
			if ix.Len() == 0 {
				fmt.Fprintf(out, "Warning: no timestamps recognized in target log\n")
			}
		}
	}

	if cfg.Editor.Path != "" {
		if path, err := editor.Find(cfg.Editor.Path); err != nil {
			fmt.Fprintf(out, "\nWarning: editor %q not found\n", cfg.Editor.Path)
		} else {
			fmt.Fprintf(out, "\nEditor: %s %s\n", path, cfg.Editor.Args)
		}
	}

	return nil
}
