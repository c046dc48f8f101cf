package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/filterspec"
	"github.com/roach88/sift/internal/history"
	"github.com/roach88/sift/internal/output"
	"github.com/roach88/sift/internal/resolver"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Spec         string
	SpecFile     string
	ResponseFile string
	Table        string
	Limit        int
	HistoryDB    string
}

// ResolveResult is the JSON payload of the resolve command.
type ResolveResult struct {
	Dataset  string       `json:"dataset"`
	SpecHash string       `json:"spec_hash"`
	RowsIn   int          `json:"rows_in"`
	RowsOut  int          `json:"rows_out"`
	Rows     []output.Row `json:"rows"`
	Warnings []string     `json:"warnings"`
	RecordID string       `json:"record_id,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <dataset>",
		Short: "Apply a filter specification to a dataset",
		Long: `Apply a filter specification to a CSV, Parquet or SQLite dataset.

The specification is a JSON object mapping column names to conditions:
  {"Department": "sales", "Salary": {"$gt": "mean"}}

Entries that cannot be applied are skipped with a warning; resolution
itself never fails. Pass --response-file to extract the specification
from the QUERY: block of a model reply. Use "-" to read from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Spec, "spec", "", "specification as a JSON string")
	cmd.Flags().StringVar(&opts.SpecFile, "spec-file", "", "file holding the specification")
	cmd.Flags().StringVar(&opts.ResponseFile, "response-file", "", "model reply holding a QUERY: block")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table to read from a SQLite dataset")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show at most this many rows (0 shows all)")
	cmd.Flags().StringVar(&opts.HistoryDB, "history-db", "", "record the resolution in this database (overrides SIFT_HISTORY_DB)")

	return cmd
}

func runResolve(opts *ResolveOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	src := specSource{inline: opts.Spec, file: opts.SpecFile, response: opts.ResponseFile}
	raw, err := src.raw(cmd.InOrStdin())
	if err != nil {
		return specError(f, err)
	}
	spec, err := filterspec.Parse(raw)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSpecParse, "invalid specification", err)
	}
	f.VerboseLog("Specification: %d entries on columns [%s]", len(spec.Entries), strings.Join(spec.Columns(), ", "))

	ds, err := loadDataset(ctx, opts.RootOptions, f, path, opts.Table)
	if err != nil {
		return err
	}

	r := resolver.New(resolver.Options{
		Identifier: opts.Profile.Identifier,
		Logger:     opts.logger(),
	})
	res := r.Resolve(ds.Table, spec)

	result := ResolveResult{
		Dataset:  ds.Name,
		SpecHash: spec.Hash(),
		RowsIn:   ds.Table.NumRows(),
		RowsOut:  res.Table.NumRows(),
		Warnings: res.Warnings,
	}

	if db := historyPath(opts.RootOptions, opts.HistoryDB); db != "" {
		rec, err := record(ctx, db, history.NewRecord(ds.Name, spec, result.RowsIn, result.RowsOut, res.Warnings))
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeHistory, "failed to record resolution", err)
		}
		result.RecordID = rec.ID
		f.VerboseLog("Recorded %s (seq %d)", rec.ID, rec.Seq)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	shown := res.Table.Head(limit)

	switch opts.format() {
	case output.FormatJSON:
		result.Rows = output.Rows(shown)
		return f.Success(result)

	case output.FormatText:
		if err := output.Write(f.Writer, output.FormatText, shown); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write output", err)
		}
		hash := result.SpecHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(f.Writer, "%d of %d rows matched (spec %s)\n", result.RowsOut, result.RowsIn, hash)
		if shown.NumRows() < res.Table.NumRows() {
			fmt.Fprintf(f.Writer, "showing first %d\n", shown.NumRows())
		}

	default:
		if err := output.Write(f.Writer, opts.format(), shown); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write output", err)
		}
	}

	for _, w := range res.Warnings {
		f.Warn(w)
	}
	return nil
}
