package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/history"
	"github.com/roach88/sift/internal/output"
	"github.com/roach88/sift/internal/table"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB       string
	Limit    int
	SpecHash string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded resolutions",
		Long: `List resolutions recorded by "sift resolve --history-db", newest first.

With --spec-hash, list every resolution of one specification in the
order they were recorded.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database (overrides SIFT_HISTORY_DB)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum records to list (0 lists all)")
	cmd.Flags().StringVar(&opts.SpecHash, "spec-hash", "", "only list resolutions of this specification")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	path := historyPath(opts.RootOptions, opts.DB)
	if path == "" {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "no history database: pass --db or set SIFT_HISTORY_DB", nil)
	}

	store, err := history.Open(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeHistory, "failed to open history", err)
	}
	defer store.Close()

	var records []history.Record
	if opts.SpecHash != "" {
		records, err = store.BySpecHash(ctx, opts.SpecHash)
	} else {
		records, err = store.List(ctx, opts.Limit)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeHistory, "failed to read history", err)
	}

	if f.JSON() {
		return f.Success(records)
	}
	if len(records) == 0 && opts.format() == output.FormatText {
		fmt.Fprintln(f.Writer, "No resolutions recorded.")
		return nil
	}
	if err := output.Write(f.Writer, opts.format(), recordsTable(records)); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write output", err)
	}
	return nil
}

func recordsTable(records []history.Record) *table.Table {
	n := len(records)
	col := func() []any { return make([]any, n) }
	seq, id, dataset, hash := col(), col(), col(), col()
	in, out, warnings := col(), col(), col()
	for i, r := range records {
		seq[i] = r.Seq
		id[i] = r.ID
		dataset[i] = r.Dataset
		hash[i] = r.SpecHash
		in[i] = r.RowsIn
		out[i] = r.RowsOut
		warnings[i] = len(r.Warnings)
	}
	return table.MustNew(
		table.NewColumn("seq", seq...),
		table.NewColumn("id", id...),
		table.NewColumn("dataset", dataset...),
		table.NewColumn("spec_hash", hash...),
		table.NewColumn("rows_in", in...),
		table.NewColumn("rows_out", out...),
		table.NewColumn("warnings", warnings...),
	)
}
