package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sift/internal/output"
)

// Snapshot is the golden-file form of a scenario run.
type Snapshot struct {
	ScenarioName string          `json:"scenario_name"`
	Spec         json.RawMessage `json:"spec,omitempty"`
	SpecHash     string          `json:"spec_hash,omitempty"`
	RowsIn       int             `json:"rows_in"`
	RowsOut      int             `json:"rows_out"`
	Rows         []output.Row    `json:"rows"`
	Warnings     []string        `json:"warnings"`
	Answer       string          `json:"answer,omitempty"`
}

// NewSnapshot captures a result.
func NewSnapshot(name string, r *Result) Snapshot {
	s := Snapshot{
		ScenarioName: name,
		RowsIn:       r.Input.NumRows(),
		RowsOut:      r.Output.NumRows(),
		Rows:         output.Rows(r.Output),
		Warnings:     r.Warnings,
		Answer:       r.Answer,
	}
	if r.Spec != nil {
		s.Spec = r.Spec.JSON()
		s.SpecHash = r.Spec.Hash()
	}
	return s
}

// Marshal renders the snapshot as indented JSON with a trailing newline.
func (s Snapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden runs a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(name, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
