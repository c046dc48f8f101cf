package resolver

import (
	"fmt"
	"strings"

	"github.com/roach88/sift/internal/table"
)

// mathKeywords are checked in order; the first keyword found in the
// question decides the aggregate.
var mathKeywords = []struct {
	word string
	agg  table.Agg
}{
	{"average", table.AggMean},
	{"avg", table.AggMean},
	{"mean", table.AggMean},
	{"sum", table.AggSum},
	{"total", table.AggSum},
	{"maximum", table.AggMax},
	{"max", table.AggMax},
	{"minimum", table.AggMin},
	{"min", table.AggMin},
	{"largest", table.AggMax},
	{"smallest", table.AggMin},
	{"count", table.AggCount},
	{"how many", table.AggCount},
	{"number of", table.AggCount},
}

// MathAnswer is the result of a direct aggregate question.
type MathAnswer struct {
	Op     table.Agg `json:"-"`
	Column string    `json:"column"`
	Value  float64   `json:"value"`
}

// String renders the answer as a markdown sentence.
func (a MathAnswer) String() string {
	return fmt.Sprintf("The **%s** of `%s` is **%.2f**.", a.Op, a.Column, a.Value)
}

// ComputeMathQuery answers questions like "average age" or "how many
// Total_Bill" directly. ok is false when the question names no aggregate,
// mentions no column, or the aggregate is undefined for that column.
//
// Columns are matched by removing spaces and underscores from both the
// column name and the question; the first column in table order whose
// normalised name occurs in the question wins.
func ComputeMathQuery(t *table.Table, question string) (*MathAnswer, bool) {
	q := strings.ToLower(question)

	agg := table.AggUnknown
	for _, kw := range mathKeywords {
		if strings.Contains(q, kw.word) {
			agg = kw.agg
			break
		}
	}
	if agg == table.AggUnknown {
		return nil, false
	}

	compact := squash(q)
	column := ""
	for _, name := range t.Columns() {
		n := squash(strings.ToLower(name))
		if n != "" && strings.Contains(compact, n) {
			column = name
			break
		}
	}
	if column == "" {
		return nil, false
	}

	value, ok := t.Aggregate(column, agg)
	if !ok {
		return nil, false
	}
	return &MathAnswer{Op: agg, Column: column, Value: value}, true
}

func squash(s string) string {
	return strings.NewReplacer("_", "", " ", "").Replace(s)
}
