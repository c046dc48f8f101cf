package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/config"
	"github.com/roach88/sift/internal/output"
	"github.com/roach88/sift/internal/profile"
	"github.com/roach88/sift/internal/summary"
)

// RootOptions holds global flags and the settings resolved from them.
type RootOptions struct {
	Verbose     bool
	Format      string // text | json | jsonl | csv
	ProfilePath string
	EnvFile     string

	// Populated by the root command before any subcommand runs.
	Config  config.Config
	Profile profile.Profile
	Logger  *slog.Logger

	loaded bool
}

// NewRootCommand creates the root command for the sift CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sift",
		Short: "sift - resolve filter specifications against tabular data",
		Long: "Applies a JSON filter specification, usually produced by a language model, " +
			"to a CSV, Parquet or SQLite dataset and reports what could not be applied.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|jsonl|csv)")
	cmd.PersistentFlags().StringVar(&opts.ProfilePath, "profile", "", "CUE tuning profile (overrides SIFT_PROFILE)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", config.DefaultEnvFile, "dotenv file read before the environment")

	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewAskCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewLintCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup validates the format and loads configuration, the profile and
// the logger. Calling it again is a no-op.
func (o *RootOptions) setup(stderr io.Writer) error {
	if o.loaded {
		return nil
	}
	if _, err := output.ParseFormat(o.Format); err != nil {
		return err
	}

	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return err
	}
	o.Config = cfg

	path := o.ProfilePath
	if path == "" {
		path = cfg.Profile
	}
	o.Profile = profile.Default()
	if path != "" {
		p, err := profile.Load(path)
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		o.Profile = p
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	o.loaded = true
	return nil
}

// logger returns the configured logger, or one that discards output when
// the root command did not run.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// format returns the parsed output format, text when unset.
func (o *RootOptions) format() output.Format {
	f, err := output.ParseFormat(o.Format)
	if err != nil {
		return output.FormatText
	}
	return f
}

// sampleRows prefers the profile, then the environment, then the default.
func (o *RootOptions) sampleRows() int {
	switch {
	case o.Profile.SampleRows > 0:
		return o.Profile.SampleRows
	case o.Config.SampleRows > 0:
		return o.Config.SampleRows
	default:
		return summary.DefaultSampleRows
	}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// Execute runs the root command with os.Args.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitCommandError
	}
	return ExitSuccess
}
