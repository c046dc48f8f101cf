package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/resolver"
)

// AskOptions holds flags for the ask command.
type AskOptions struct {
	*RootOptions
	Table string
}

// AskResult is the JSON payload of the ask command.
type AskResult struct {
	Operation string  `json:"operation"`
	Column    string  `json:"column"`
	Value     float64 `json:"value"`
	Answer    string  `json:"answer"`
}

// NewAskCommand creates the ask command.
func NewAskCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AskOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ask <dataset> <question...>",
		Short: "Answer a direct aggregate question",
		Long: `Answer questions like "what is the average age?" directly from the data.

Exits with status 1 when the question does not name an aggregate and a
numeric column.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(opts, args[0], strings.Join(args[1:], " "), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "table to read from a SQLite dataset")

	return cmd
}

func runAsk(opts *AskOptions, path, question string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	ds, err := loadDataset(cmd.Context(), opts.RootOptions, f, path, opts.Table)
	if err != nil {
		return err
	}

	ans, ok := resolver.ComputeMathQuery(ds.Table, question)
	if !ok {
		msg := fmt.Sprintf("cannot answer %q directly from %s", question, ds.Name)
		if err := f.Error(ErrCodeNotMath, msg, nil); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	if f.JSON() {
		return f.Success(AskResult{
			Operation: ans.Op.String(),
			Column:    ans.Column,
			Value:     ans.Value,
			Answer:    ans.String(),
		})
	}
	return f.Success(ans.String())
}
