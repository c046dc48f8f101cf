package harness

import (
	"fmt"

	"github.com/roach88/sift/internal/filterspec"
	"github.com/roach88/sift/internal/table"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation holds.
	Pass bool `json:"pass"`

	// Errors lists failed expectations. Empty when Pass is true.
	Errors []string `json:"errors"`

	// Spec is the resolved specification; nil for question-only scenarios.
	Spec *filterspec.Spec `json:"-"`

	// Input and Output are the tables before and after resolution.
	Input  *table.Table `json:"-"`
	Output *table.Table `json:"-"`

	Warnings []string `json:"warnings"`

	// Answer is the rendered math answer, "" when the question was not one.
	Answer string `json:"answer,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Errors:   []string{},
		Warnings: []string{},
	}
}

// AddError records a failed expectation.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
