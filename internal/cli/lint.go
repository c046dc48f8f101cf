package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/filterspec"
	"github.com/roach88/sift/internal/table"
)

// LintOptions holds flags for the lint command.
type LintOptions struct {
	*RootOptions
	Spec         string
	SpecFile     string
	ResponseFile string
	Dataset      string
	Table        string
}

// LintResult is the JSON payload of the lint command.
type LintResult struct {
	Valid      bool                  `json:"valid"`
	Advisories []filterspec.Advisory `json:"advisories"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check a filter specification before resolving it",
		Long: `Check a specification against the expected shape and report entries
the resolver would skip. With --dataset, column names are checked too.

Exits with status 1 when any advisory is reported.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Spec, "spec", "", "specification as a JSON string")
	cmd.Flags().StringVar(&opts.SpecFile, "spec-file", "", "file holding the specification")
	cmd.Flags().StringVar(&opts.ResponseFile, "response-file", "", "model reply holding a QUERY: block")
	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "check column references against this dataset")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table to read from a SQLite dataset")

	return cmd
}

func runLint(opts *LintOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	src := specSource{inline: opts.Spec, file: opts.SpecFile, response: opts.ResponseFile}
	raw, err := src.raw(cmd.InOrStdin())
	if err != nil {
		return specError(f, err)
	}

	var t *table.Table
	if opts.Dataset != "" {
		ds, err := loadDataset(cmd.Context(), opts.RootOptions, f, opts.Dataset, opts.Table)
		if err != nil {
			return err
		}
		t = ds.Table
	}

	advisories, err := filterspec.Lint(raw, t)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSpecParse, "invalid specification", err)
	}
	if advisories == nil {
		advisories = []filterspec.Advisory{}
	}

	if len(advisories) == 0 {
		if f.JSON() {
			return f.Success(LintResult{Valid: true, Advisories: advisories})
		}
		fmt.Fprintln(f.Writer, "✓ Specification is clean")
		return nil
	}

	msg := fmt.Sprintf("%d advisories", len(advisories))
	if f.JSON() {
		if err := f.Error(ErrCodeLint, msg, advisories); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	for _, a := range advisories {
		fmt.Fprintf(f.Writer, "✗ %s: %s (%s)\n", a.Field, a.Message, a.Source)
	}
	fmt.Fprintf(f.Writer, "\n%s\n", msg)
	return NewExitError(ExitFailure, msg)
}
