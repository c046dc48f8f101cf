package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is one resolution test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dataset is the table the specification runs against.
	Dataset Dataset `yaml:"dataset"`

	// Spec is the filter specification: a YAML mapping or a JSON string.
	Spec yaml.Node `yaml:"spec,omitempty"`

	// Response is model output containing a QUERY: block. Used instead
	// of Spec.
	Response string `yaml:"response,omitempty"`

	// Question is a direct math question answered without a spec.
	Question string `yaml:"question,omitempty"`

	// Identifier overrides the identifier heuristic.
	Identifier *IdentifierOverride `yaml:"identifier,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Dataset is an inline table or a dataset file.
type Dataset struct {
	// File is a dataset path, relative to the scenario file.
	File string `yaml:"file,omitempty"`

	// Table names the table of a SQLite file.
	Table string `yaml:"table,omitempty"`

	Columns []string `yaml:"columns,omitempty"`
	Rows    [][]any  `yaml:"rows,omitempty"`
}

// IdentifierOverride tunes the identifier heuristic for one scenario.
type IdentifierOverride struct {
	Markers           []string `yaml:"markers"`
	MinUniqueFraction float64  `yaml:"min_unique_fraction"`
}

// Expect lists the checks of a scenario. Nil fields are not checked.
type Expect struct {
	Rows     *int             `yaml:"rows,omitempty"`
	Values   map[string][]any `yaml:"values,omitempty"`
	Warnings []string         `yaml:"warnings,omitempty"`
	Answer   *string          `yaml:"answer,omitempty"`
}

// hasSpec reports whether the scenario resolves a specification.
func (s *Scenario) hasSpec() bool {
	return s.Spec.Kind != 0 || s.Response != ""
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly. A relative dataset file is resolved
// against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if f := scenario.Dataset.File; f != "" && !filepath.IsAbs(f) {
		scenario.Dataset.File = filepath.Join(filepath.Dir(path), f)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file directly in dir, sorted by
// file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenarios directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}

	d := s.Dataset
	inline := len(d.Columns) > 0
	switch {
	case d.File == "" && !inline:
		return errors.New("dataset needs either file or columns")
	case d.File != "" && inline:
		return errors.New("dataset cannot have both file and columns")
	case d.File != "":
		if _, err := os.Stat(d.File); err != nil {
			return fmt.Errorf("dataset file not found: %s", d.File)
		}
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("dataset.rows[%d]: has %d values, expected %d", i, len(row), len(d.Columns))
		}
	}

	if s.Spec.Kind != 0 && s.Response != "" {
		return errors.New("spec and response are mutually exclusive")
	}
	if s.Spec.Kind != 0 && s.Spec.Kind != yaml.MappingNode && s.Spec.Kind != yaml.ScalarNode {
		return errors.New("spec must be a mapping or a JSON string")
	}
	if !s.hasSpec() && s.Question == "" {
		return errors.New("one of spec, response or question is required")
	}

	if s.Expect.Answer != nil && s.Question == "" {
		return errors.New("expect.answer requires question")
	}
	if s.Expect.Rows != nil && *s.Expect.Rows < 0 {
		return errors.New("expect.rows must be non-negative")
	}
	if (s.Expect.Rows != nil || s.Expect.Values != nil || s.Expect.Warnings != nil) && !s.hasSpec() {
		return errors.New("row and warning expectations require spec or response")
	}

	if o := s.Identifier; o != nil && (o.MinUniqueFraction < 0 || o.MinUniqueFraction > 1) {
		return errors.New("identifier.min_unique_fraction must be within [0, 1]")
	}
	return nil
}
