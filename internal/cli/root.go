package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded before any subcommand runs. Commands built without
	// the root command see nil and fall back to an empty config.
	Config *Config
}

// config returns the loaded config, or an empty one.
func (o *RootOptions) config() *Config {
	if o.Config == nil {
		return &Config{}
	}
	return o.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cohortcheck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cohortcheck",
		Short: "Check cohort definitions and render their SQL",
		Long: `cohortcheck validates OHDSI cohort expressions against a catalog of
design rules, and renders, splits and translates the parameterized SQL
templates used to run them on different databases.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if !isValidFormat(opts.Format) {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			configureLogging(opts.Verbose, cmd.ErrOrStderr())

			path, required := opts.ConfigPath, true
			if path == "" {
				path, required = DefaultConfigFile, false
			}
			cfg, err := LoadConfig(path, required)
			if err != nil {
				return loadFailure(formatter, err)
			}
			opts.Config = cfg
			slog.Debug("config loaded", "path", path, "dialect", cfg.Dialect, "disabled_rules", len(cfg.DisabledRules))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+DefaultConfigFile+" if present)")

	// Add subcommands
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewSplitCommand(opts))
	cmd.AddCommand(NewCodesetCommand(opts))

	return cmd
}

// configureLogging installs the default slog handler. Debug level when
// verbose.
func configureLogging(verbose bool, w io.Writer) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
