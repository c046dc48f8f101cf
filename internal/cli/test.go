package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool
	Filter string
}

// TestResult is the JSON payload of the test command.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run resolution scenarios",
		Long: `Run every YAML scenario in a directory and check its expectations.

When <scenarios-dir>/golden/<name>.golden exists, the run's snapshot
must match it. Use --update to write snapshots instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "write golden snapshots")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name contains this text")

	return cmd
}

func runTest(opts *TestOptions, dir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	scenarios, err := harness.LoadScenarios(dir)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "failed to load scenarios", err)
	}

	runOpts := harness.Options{Identifier: opts.Profile.Identifier, Logger: opts.logger()}
	goldenDir := filepath.Join(dir, "golden")

	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, s := range scenarios {
		if opts.Filter != "" && !strings.Contains(s.Name, opts.Filter) {
			continue
		}

		sr := ScenarioResult{Name: s.Name}
		res, err := harness.RunWithOptions(cmd.Context(), s, runOpts)
		if err != nil {
			sr.Errors = []string{err.Error()}
		} else {
			sr.Errors = res.Errors
			if err := checkGolden(goldenDir, s.Name, res, opts.Update); err != nil {
				sr.Errors = append(sr.Errors, err.Error())
			}
		}
		sr.Pass = len(sr.Errors) == 0

		result.Scenarios = append(result.Scenarios, sr)
		result.Total++
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		printTestResult(f, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

// checkGolden compares a run against its snapshot, or writes the snapshot
// when update is set. A missing snapshot is not an error.
func checkGolden(dir, name string, res *harness.Result, update bool) error {
	got, err := harness.NewSnapshot(name, res).Marshal()
	if err != nil {
		return fmt.Errorf("golden: %w", err)
	}
	path := filepath.Join(dir, name+".golden")

	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("golden: %w", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			return fmt.Errorf("golden: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("golden: %w", err)
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("golden: snapshot differs from %s (rerun with --update to accept)", path)
	}
	return nil
}

func printTestResult(f *OutputFormatter, result TestResult) {
	if result.Total == 0 {
		fmt.Fprintln(f.Writer, "No scenarios found.")
		return
	}
	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(f.Writer, "✓ %s\n", s.Name)
			continue
		}
		fmt.Fprintf(f.Writer, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(f.Writer, "    %s\n", e)
		}
	}
	fmt.Fprintf(f.Writer, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
