package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/01_sales_above_average.yaml")
	require.NoError(t, err)

	assert.Equal(t, "sales_above_average", scenario.Name)
	assert.Equal(t, []string{"EmployeeID", "Name", "Department", "Age", "Salary"}, scenario.Dataset.Columns)
	assert.Len(t, scenario.Dataset.Rows, 4)
	assert.Equal(t, yaml.MappingNode, scenario.Spec.Kind)
	require.NotNil(t, scenario.Expect.Rows)
	assert.Equal(t, 1, *scenario.Expect.Rows)
	assert.Equal(t, []any{"Cid"}, scenario.Expect.Values["Name"])
	assert.NotNil(t, scenario.Expect.Warnings)
	assert.Empty(t, scenario.Expect.Warnings)
}

func TestLoadScenario_ResolvesDatasetFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/05_csv_dataset.yaml")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "scenarios", "staff.csv"), scenario.Dataset.File)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "typo.yaml", `
name: typo
description: "misspelled expect"
dataset:
  columns: [A]
  rows: [[1]]
spec: {A: 1}
expects:
  rows: 1
`)
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\ndataset: {columns: [A]}\nspec: {A: 1}\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\ndataset: {columns: [A]}\nspec: {A: 1}\n",
			wantErr: "description is required",
		},
		{
			name:    "no dataset",
			content: "name: n\ndescription: d\nspec: {A: 1}\n",
			wantErr: "dataset needs either file or columns",
		},
		{
			name:    "file and columns",
			content: "name: n\ndescription: d\ndataset: {file: x.csv, columns: [A]}\nspec: {A: 1}\n",
			wantErr: "cannot have both",
		},
		{
			name:    "missing dataset file",
			content: "name: n\ndescription: d\ndataset: {file: nope.csv}\nspec: {A: 1}\n",
			wantErr: "dataset file not found",
		},
		{
			name:    "ragged row",
			content: "name: n\ndescription: d\ndataset: {columns: [A, B], rows: [[1]]}\nspec: {A: 1}\n",
			wantErr: "dataset.rows[0]",
		},
		{
			name:    "nothing to do",
			content: "name: n\ndescription: d\ndataset: {columns: [A]}\n",
			wantErr: "one of spec, response or question is required",
		},
		{
			name:    "spec and response",
			content: "name: n\ndescription: d\ndataset: {columns: [A]}\nspec: {A: 1}\nresponse: 'QUERY: {}'\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "sequence spec",
			content: "name: n\ndescription: d\ndataset: {columns: [A]}\nspec: [1, 2]\n",
			wantErr: "spec must be a mapping",
		},
		{
			name:    "answer without question",
			content: "name: n\ndescription: d\ndataset: {columns: [A]}\nspec: {A: 1}\nexpect: {answer: x}\n",
			wantErr: "expect.answer requires question",
		},
		{
			name:    "rows without spec",
			content: "name: n\ndescription: d\ndataset: {columns: [A]}\nquestion: sum of a\nexpect: {rows: 1}\n",
			wantErr: "require spec or response",
		},
		{
			name:    "fraction out of range",
			content: "name: n\ndescription: d\ndataset: {columns: [A]}\nspec: {A: 1}\nidentifier: {min_unique_fraction: 2}\n",
			wantErr: "min_unique_fraction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "s.yaml", tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarios_SortedByFileName(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{
		"sales_above_average",
		"identifier_fallback",
		"response_extraction",
		"math_question",
		"csv_dataset",
		"tuned_identifier",
	}, names)
}

func TestLoadScenarios_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.yml", "name: only\n")
	writeScenario(t, dir, "notes.txt", "ignored")

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yml")
}
