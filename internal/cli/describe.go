package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/loader"
	"github.com/roach88/sift/internal/output"
	"github.com/roach88/sift/internal/summary"
	"github.com/roach88/sift/internal/table"
)

// DescribeOptions holds flags for the describe command.
type DescribeOptions struct {
	*RootOptions
	Table  string
	Sample int
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DescribeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "describe <dataset>",
		Short: "Summarise the columns of a dataset",
		Long: `Print an overview, per-column statistics and a few sample rows.

With --format json the full brief is printed; csv and jsonl print the
statistics table only. A SQLite file given without --table lists its
tables instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "table to read from a SQLite dataset")
	cmd.Flags().IntVar(&opts.Sample, "sample", 0, "sample rows to show (default from profile or SIFT_SAMPLE_ROWS)")

	return cmd
}

// TablesResult is the JSON payload of describe on a SQLite file without
// --table.
type TablesResult struct {
	Dataset string   `json:"dataset"`
	Tables  []string `json:"tables"`
}

func runDescribe(opts *DescribeOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if format, err := loader.DetectFormat(path); err == nil && format == loader.FormatSQLite && opts.Table == "" {
		return describeTables(opts, path, cmd, f)
	}

	ds, err := loadDataset(cmd.Context(), opts.RootOptions, f, path, opts.Table)
	if err != nil {
		return err
	}

	sample := opts.Sample
	if sample <= 0 {
		sample = opts.sampleRows()
	}
	brief := summary.Describe(ds.Table, sample)

	switch opts.format() {
	case output.FormatJSON:
		return f.Success(brief)

	case output.FormatText:
		fmt.Fprintf(f.Writer, "%s\n\n", summary.Overview(ds.Table))
		if err := output.Write(f.Writer, output.FormatText, statsTable(brief)); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write output", err)
		}
		if len(brief.SampleRows) > 0 {
			fmt.Fprintln(f.Writer)
			if err := output.Write(f.Writer, output.FormatText, ds.Table.Head(sample)); err != nil {
				return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write output", err)
			}
		}
		return nil

	default:
		if err := output.Write(f.Writer, opts.format(), statsTable(brief)); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write output", err)
		}
		return nil
	}
}

// describeTables lists the tables of a SQLite dataset.
func describeTables(opts *DescribeOptions, path string, cmd *cobra.Command, f *OutputFormatter) error {
	names, err := loader.Tables(cmd.Context(), path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatasetLoad, "failed to list tables", err)
	}
	if names == nil {
		names = []string{}
	}

	switch opts.format() {
	case output.FormatJSON:
		return f.Success(TablesResult{Dataset: path, Tables: names})

	case output.FormatText:
		if len(names) == 0 {
			fmt.Fprintf(f.Writer, "%s has no tables.\n", path)
			return nil
		}
		fmt.Fprintf(f.Writer, "Tables in %s (pick one with --table):\n", path)
		for _, name := range names {
			fmt.Fprintf(f.Writer, "  %s\n", name)
		}
		return nil

	default:
		values := make([]any, len(names))
		for i, name := range names {
			values[i] = name
		}
		if err := output.Write(f.Writer, opts.format(), table.MustNew(table.NewColumn("table", values...))); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write output", err)
		}
		return nil
	}
}

// statsTable lays a brief out with one row per column.
func statsTable(b summary.Brief) *table.Table {
	n := len(b.Columns)
	col := func() []any { return make([]any, n) }
	names, dtypes, missing := col(), col(), col()
	mean, median, std, lo, hi := col(), col(), col(), col(), col()
	unique, top := col(), col()
	for i, c := range b.Columns {
		names[i] = c.Name
		dtypes[i] = c.Dtype
		missing[i] = c.Missing
		mean[i] = rounded(c.Mean)
		median[i] = rounded(c.Median)
		std[i] = rounded(c.Std)
		lo[i] = rounded(c.Min)
		hi[i] = rounded(c.Max)
		if c.Unique != nil {
			unique[i] = *c.Unique
		}
		if len(c.TopValues) > 0 {
			top[i] = strings.Join(c.TopValues, ", ")
		}
	}

	return table.MustNew(
		table.NewColumn("column", names...),
		table.NewColumn("dtype", dtypes...),
		table.NewColumn("missing", missing...),
		table.NewColumn("mean", mean...),
		table.NewColumn("median", median...),
		table.NewColumn("std", std...),
		table.NewColumn("min", lo...),
		table.NewColumn("max", hi...),
		table.NewColumn("unique", unique...),
		table.NewColumn("top", top...),
	)
}

func rounded(v *float64) any {
	if v == nil {
		return nil
	}
	return math.Round(*v*100) / 100
}
