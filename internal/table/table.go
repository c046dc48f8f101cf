package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
)

// String returns the dtype-style name of the kind.
func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "categorical"
}

// Column is the storage of one named column.
type Column struct {
	Name    string
	Kind    Kind
	Integer bool
	Values  []any
}

// ColumnInfo describes a column without exposing its storage.
type ColumnInfo struct {
	Name    string
	Kind    Kind
	Integer bool
}

// Table is an immutable view over a set of columns.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  []int // positions into column storage, in view order
}

// NewColumn builds a column from raw values, normalising them and
// inferring the column kind.
//
// Example:
//
//	table.NewColumn("Age", 25, 35, 45)
func NewColumn(name string, values ...any) Column {
	normalized := make([]any, len(values))
	for i, v := range values {
		normalized[i] = Normalize(v)
	}
	kind, integer := inferKind(normalized)
	return Column{Name: name, Kind: kind, Integer: integer, Values: normalized}
}

// New assembles a table from columns. All columns must have the same
// length and distinct names.
func New(cols ...Column) (*Table, error) {
	t := &Table{
		cols:  make([]*Column, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}

	n := -1
	for i := range cols {
		c := cols[i]
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if n >= 0 && len(c.Values) != n {
			return nil, fmt.Errorf("column %q has %d values, expected %d", c.Name, len(c.Values), n)
		}
		n = len(c.Values)
		t.index[c.Name] = len(t.cols)
		t.cols = append(t.cols, &c)
	}
	if n < 0 {
		n = 0
	}

	t.rows = make([]int, n)
	for i := range t.rows {
		t.rows[i] = i
	}
	return t, nil
}

// MustNew is New that panics on error, for columns known to line up.
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the number of rows in the view.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.cols)
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the table has a column with the exact name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Info returns the description of a column.
func (t *Table) Info(name string) (ColumnInfo, bool) {
	i, ok := t.index[name]
	if !ok {
		return ColumnInfo{}, false
	}
	c := t.cols[i]
	return ColumnInfo{Name: c.Name, Kind: c.Kind, Integer: c.Integer}, true
}

// Values returns the column's values in view order.
func (t *Table) Values(name string) []any {
	c := t.mustColumn(name)
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = c.Values[r]
	}
	return out
}

// Row returns the values of view row i in column order.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.Values[t.rows[i]]
	}
	return out
}

// RowID returns the original position of view row i in the source data.
func (t *Table) RowID(i int) int {
	return t.rows[i]
}

// Numeric returns the column coerced to float64, NaN where a value is
// missing or not a number.
func (t *Table) Numeric(name string) []float64 {
	c := t.mustColumn(name)
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = ToFloat(c.Values[r])
	}
	return out
}

// NUnique counts distinct present values of a column in the view.
func (t *Table) NUnique(name string) int {
	c := t.mustColumn(name)
	seen := make(map[any]struct{})
	for _, r := range t.rows {
		v := c.Values[r]
		if v == nil {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Missing counts nil values of a column in the view.
func (t *Table) Missing(name string) int {
	c := t.mustColumn(name)
	n := 0
	for _, r := range t.rows {
		if c.Values[r] == nil {
			n++
		}
	}
	return n
}

// Where returns the view of rows whose mask entry is true.
// The mask must have one entry per view row.
func (t *Table) Where(mask []bool) *Table {
	if len(mask) != len(t.rows) {
		panic(fmt.Sprintf("table: mask has %d entries for %d rows", len(mask), len(t.rows)))
	}
	rows := make([]int, 0, len(t.rows))
	for i, keep := range mask {
		if keep {
			rows = append(rows, t.rows[i])
		}
	}
	return t.withRows(rows)
}

// Head returns the view of the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= len(t.rows) {
		return t
	}
	rows := make([]int, n)
	copy(rows, t.rows[:n])
	return t.withRows(rows)
}

func (t *Table) withRows(rows []int) *Table {
	return &Table{cols: t.cols, index: t.index, rows: rows}
}

func (t *Table) mustColumn(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		panic(fmt.Sprintf("table: unknown column %q", name))
	}
	return t.cols[i]
}

// Normalize converts a Go value into the restricted value set:
// nil, string, int64, float64 or bool. NaN and infinite floats become nil.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return val
	case bool:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return Normalize(float64(val))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// ToFloat coerces a normalised value to float64, NaN when it is not a number.
func ToFloat(v any) float64 {
	switch val := v.(type) {
	case int64:
		return float64(val)
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// FormatValue renders a value as its display string. nil renders empty.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// FloatText renders v the way a floating-point column displays it: whole
// numbers keep a ".0" suffix, and magnitudes below 1e-4 or from 1e16 on
// use exponent notation, as in 35.0, 12.5, 1e+16 or 1.5e-05.
func FloatText(v float64) string {
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func inferKind(values []any) (Kind, bool) {
	integer := true
	for _, v := range values {
		switch v.(type) {
		case int64:
		case float64:
			integer = false
		case nil:
			integer = false
		default:
			return KindCategorical, false
		}
	}
	if len(values) == 0 {
		integer = false
	}
	return KindNumeric, integer
}
