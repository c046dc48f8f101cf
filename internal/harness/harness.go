package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sift/internal/filterspec"
	"github.com/roach88/sift/internal/loader"
	"github.com/roach88/sift/internal/resolver"
	"github.com/roach88/sift/internal/table"
)

// Options configures Run.
type Options struct {
	// Identifier is the heuristic used unless the scenario overrides it.
	// The zero value means the resolver default.
	Identifier resolver.IdentifierHeuristic

	// Logger receives resolver traces. Nil discards them.
	Logger *slog.Logger
}

// Run executes a scenario with default options.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(context.Background(), scenario, Options{})
}

// RunWithOptions executes a scenario. The returned error reports a
// scenario that could not run (unreadable dataset, malformed spec); failed
// expectations are reported in the Result.
func RunWithOptions(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	t, err := buildDataset(ctx, scenario.Dataset, logger)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: dataset: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Input = t
	result.Output = t

	if scenario.hasSpec() {
		spec, err := scenarioSpec(scenario)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		heuristic := opts.Identifier
		if o := scenario.Identifier; o != nil {
			heuristic = resolver.IdentifierHeuristic{NameMarkers: o.Markers, MinUniqueFraction: o.MinUniqueFraction}
			if heuristic.NameMarkers == nil {
				heuristic.NameMarkers = []string{}
			}
		}

		res := resolver.New(resolver.Options{Identifier: heuristic, Logger: logger}).Resolve(t, spec)
		result.Spec = spec
		result.Output = res.Table
		result.Warnings = res.Warnings
	}

	if scenario.Question != "" {
		if ans, ok := resolver.ComputeMathQuery(t, scenario.Question); ok {
			result.Answer = ans.String()
		}
	}

	checkExpectations(scenario.Expect, result)

	logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"errors", len(result.Errors),
	)
	return result, nil
}

func buildDataset(ctx context.Context, d Dataset, logger *slog.Logger) (*table.Table, error) {
	if d.File != "" {
		ds, err := loader.Load(ctx, d.File, loader.Options{Table: d.Table, Logger: logger})
		if err != nil {
			return nil, err
		}
		return ds.Table, nil
	}

	rows := make([]map[string]any, len(d.Rows))
	for i, row := range d.Rows {
		rows[i] = make(map[string]any, len(d.Columns))
		for j, col := range d.Columns {
			rows[i][col] = row[j]
		}
	}
	return table.FromMaps(d.Columns, rows)
}

func scenarioSpec(s *Scenario) (*filterspec.Spec, error) {
	if s.Response != "" {
		spec, ok := filterspec.Extract(s.Response)
		if !ok {
			return nil, errors.New("response contains no filter specification")
		}
		return spec, nil
	}

	if s.Spec.Kind == yaml.ScalarNode {
		return filterspec.ParseString(s.Spec.Value)
	}
	data, err := nodeJSON(&s.Spec)
	if err != nil {
		return nil, fmt.Errorf("spec: %w", err)
	}
	return filterspec.Parse(data)
}

func checkExpectations(e Expect, r *Result) {
	if e.Rows != nil && r.Output.NumRows() != *e.Rows {
		r.AddError("rows: got %d, want %d", r.Output.NumRows(), *e.Rows)
	}

	cols := make([]string, 0, len(e.Values))
	for col := range e.Values {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	for _, col := range cols {
		want := e.Values[col]
		if !r.Output.HasColumn(col) {
			r.AddError("values: column %q not in dataset", col)
			continue
		}
		got := r.Output.Values(col)
		if !sameDisplay(got, want) {
			r.AddError("values[%s]: got %v, want %v", col, displayAll(got), displayAll(want))
		}
	}

	if e.Warnings != nil {
		if len(r.Warnings) != len(e.Warnings) {
			r.AddError("warnings: got %d %q, want %d", len(r.Warnings), r.Warnings, len(e.Warnings))
		} else {
			for i, sub := range e.Warnings {
				if !strings.Contains(r.Warnings[i], sub) {
					r.AddError("warnings[%d]: %q does not contain %q", i, r.Warnings[i], sub)
				}
			}
		}
	}

	if e.Answer != nil && r.Answer != *e.Answer {
		r.AddError("answer: got %q, want %q", r.Answer, *e.Answer)
	}
}

func sameDisplay(got, want []any) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if table.FormatValue(table.Normalize(got[i])) != table.FormatValue(table.Normalize(want[i])) {
			return false
		}
	}
	return true
}

func displayAll(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = table.FormatValue(table.Normalize(v))
	}
	return out
}
