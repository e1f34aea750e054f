package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/logsync/internal/logging"
	"github.com/ccollicutt/logsync/pkg/config"
	"github.com/ccollicutt/logsync/pkg/output"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// GlobalOptions holds the root command's persistent flags.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
}

// OutputOptions holds the output flags shared by result commands.
type OutputOptions struct {
	Output  string
	Verbose bool
	Quiet   bool
}

func (o *OutputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&o.Verbose, "verbose", "v", false, "Show additional detail")
	cmd.Flags().BoolVarP(&o.Quiet, "quiet", "q", false, "Counts only, no lines")
}

func (o *OutputOptions) formatter() (output.Formatter, error) {
	return output.New(o.Output, output.FormatOptions{Verbose: o.Verbose, Quiet: o.Quiet})
}

// setup resets the exit code and returns the command context, the loaded
// configuration and a logger writing to the command's stderr.
func (g *GlobalOptions) setup(cmd *cobra.Command) (context.Context, *config.Config, zerolog.Logger, error) {
	ExitCode = 0

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logging.New(cmd.ErrOrStderr(), g.LogLevel)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	cfg, err := config.LoadOrDefault(ctx, g.ConfigPath)
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("loading config: %w", err)
	}
	if g.ConfigPath != "" {
		logger.Debug().Str("path", g.ConfigPath).Msg("config loaded")
	}

	return ctx, cfg, logger, nil
}
