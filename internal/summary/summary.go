// Package summary describes a table: per-column statistics, a row sample
// and a short overview.
package summary

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/sift/internal/table"
)

// DefaultSampleRows is the sample size used when none is configured.
const DefaultSampleRows = 5

// TopValueCount bounds ColumnBrief.TopValues.
const TopValueCount = 5

// Brief is a compact description of a table.
type Brief struct {
	Rows       int           `json:"n_rows"`
	NumColumns int           `json:"n_cols"`
	Columns    []ColumnBrief `json:"columns"`

	// SampleColumns names the entries of each SampleRows row.
	SampleColumns []string `json:"sample_columns"`
	SampleRows    [][]any  `json:"sample_rows"`
}

// ColumnBrief describes one column. Numeric columns carry the moments,
// categorical columns the distinct count and most frequent values.
// Undefined statistics are nil.
type ColumnBrief struct {
	Name    string `json:"name"`
	Dtype   string `json:"dtype"`
	Missing int    `json:"n_missing"`

	Mean   *float64 `json:"mean,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Std    *float64 `json:"std,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`

	Unique    *int     `json:"n_unique,omitempty"`
	TopValues []string `json:"top_values,omitempty"`
}

// Dtype names the storage type of a column.
func Dtype(info table.ColumnInfo) string {
	switch {
	case info.Kind == table.KindCategorical:
		return "object"
	case info.Integer:
		return "int64"
	default:
		return "float64"
	}
}

// Describe builds the brief of t with up to sample rows.
func Describe(t *table.Table, sample int) Brief {
	b := Brief{
		Rows:       t.NumRows(),
		NumColumns: t.NumColumns(),
		Columns:    make([]ColumnBrief, 0, t.NumColumns()),
	}

	for _, name := range t.Columns() {
		info, _ := t.Info(name)
		cb := ColumnBrief{
			Name:    name,
			Dtype:   Dtype(info),
			Missing: t.Missing(name),
		}
		if info.Kind == table.KindNumeric {
			describeNumeric(&cb, t.Numeric(name))
		} else {
			describeCategorical(&cb, t.Values(name))
		}
		b.Columns = append(b.Columns, cb)
	}

	head := t.Head(max(sample, 0))
	b.SampleColumns = t.Columns()
	b.SampleRows = make([][]any, head.NumRows())
	for i := range b.SampleRows {
		b.SampleRows[i] = head.Row(i)
	}
	return b
}

func describeNumeric(cb *ColumnBrief, series []float64) {
	cb.Mean = defined(table.Aggregate(table.AggMean, series))
	cb.Median = defined(table.Median(series))
	cb.Std = defined(table.StdDev(series))
	cb.Min = defined(table.Aggregate(table.AggMin, series))
	cb.Max = defined(table.Aggregate(table.AggMax, series))
}

func describeCategorical(cb *ColumnBrief, values []any) {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if v == nil {
			continue
		}
		s := table.FormatValue(v)
		if _, ok := counts[s]; !ok {
			order = append(order, s)
		}
		counts[s]++
	}

	unique := len(order)
	cb.Unique = &unique

	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})
	cb.TopValues = order[:min(len(order), TopValueCount)]
}

func defined(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

// Overview renders short markdown lines about t, separated by blank lines.
func Overview(t *table.Table) string {
	p := message.NewPrinter(language.English)

	lines := []string{p.Sprintf("**Dataset Overview**: %d rows, %d columns", t.NumRows(), t.NumColumns())}

	var numeric, categorical, missing int
	for _, name := range t.Columns() {
		info, _ := t.Info(name)
		if info.Kind == table.KindNumeric {
			numeric++
		} else {
			categorical++
		}
		missing += t.Missing(name)
	}
	if numeric > 0 {
		lines = append(lines, fmt.Sprintf("**Numeric Columns**: %d", numeric))
	}
	if categorical > 0 {
		lines = append(lines, fmt.Sprintf("**Categorical Columns**: %d", categorical))
	}

	if cells := t.NumRows() * t.NumColumns(); cells > 0 && missing > 0 {
		pct := float64(missing) / float64(cells) * 100
		lines = append(lines, fmt.Sprintf("**Missing Data**: %.1f%%", pct))
	}

	if cols := t.Columns(); len(cols) > 0 {
		first := cols[0]
		if info, _ := t.Info(first); info.Kind == table.KindCategorical {
			lines = append(lines, fmt.Sprintf("**'%s' has %d unique values**", first, t.NUnique(first)))
		}
	}

	return strings.Join(lines, "\n\n")
}
