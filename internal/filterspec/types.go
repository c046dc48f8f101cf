package filterspec

import (
	"strings"

	"github.com/roach88/sift/internal/table"
)

// Condition is the right-hand side of one specification entry.
//
// This is a sealed interface - only Match, Compare and Invalid implement it.
type Condition interface {
	condition()
}

// Match keeps rows whose string form contains Text, case-insensitively.
type Match struct {
	Text string
}

func (Match) condition() {}

// Compare keeps rows whose numeric value satisfies Op against Value.
type Compare struct {
	Op    Op
	RawOp string       // operator as written, for diagnostics
	Value DynamicValue // right-hand side, resolved at filter time
	Raw   string       // right-hand side as written, for diagnostics
}

func (Compare) condition() {}

// Invalid is a condition whose JSON shape cannot filter anything
// (null, arrays, empty operator objects).
type Invalid struct {
	Reason string
}

func (Invalid) condition() {}

// DynamicValue is the right-hand side of a comparison.
//
// This is a sealed interface - only Number, SelfAggregate, ColumnAggregate
// and Unresolved implement it.
type DynamicValue interface {
	dynamicValue()
}

// Number is a literal comparison value.
type Number struct {
	V float64
}

func (Number) dynamicValue() {}

// SelfAggregate is an aggregate of the condition's own column.
type SelfAggregate struct {
	Agg table.Agg
}

func (SelfAggregate) dynamicValue() {}

// ColumnAggregate is an aggregate of another column, written {"avg": "$Column"}.
type ColumnAggregate struct {
	Agg    table.Agg // AggUnknown when RawAgg is not a known keyword
	RawAgg string
	Column string

	// Else is the value of the members after the reference, used when
	// Column is not in the table. Nil when none is usable.
	Else DynamicValue
}

func (ColumnAggregate) dynamicValue() {}

// Unresolved is a value that cannot become a number.
type Unresolved struct{}

func (Unresolved) dynamicValue() {}

// Op is a comparison operator.
type Op int

const (
	OpUnknown Op = iota
	OpGT
	OpLT
	OpGTE
	OpLTE
	OpEQ
)

// String returns the normalised operator keyword.
func (o Op) String() string {
	switch o {
	case OpGT:
		return "gt"
	case OpLT:
		return "lt"
	case OpGTE:
		return "gte"
	case OpLTE:
		return "lte"
	case OpEQ:
		return "eq"
	default:
		return "unknown"
	}
}

// Holds reports whether left Op right is true. NaN on either side is false.
func (o Op) Holds(left, right float64) bool {
	switch o {
	case OpGT:
		return left > right
	case OpLT:
		return left < right
	case OpGTE:
		return left >= right
	case OpLTE:
		return left <= right
	case OpEQ:
		return left == right
	default:
		return false
	}
}

// ParseOp normalises an operator key: lower-cased, one leading "$" removed.
// Both "gt" and "$gt" spellings are accepted.
func ParseOp(raw string) Op {
	op := strings.ToLower(strings.TrimSpace(raw))
	op = strings.TrimPrefix(op, "$")
	switch op {
	case "gt":
		return OpGT
	case "lt":
		return OpLT
	case "gte":
		return OpGTE
	case "lte":
		return OpLTE
	case "eq":
		return OpEQ
	default:
		return OpUnknown
	}
}

// ParseAgg maps an aggregate keyword of a column reference to an Agg.
func ParseAgg(raw string) table.Agg {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mean", "avg", "average":
		return table.AggMean
	case "max", "maximum":
		return table.AggMax
	case "min", "minimum":
		return table.AggMin
	case "sum", "total":
		return table.AggSum
	default:
		return table.AggUnknown
	}
}

// selfAggregate maps a bare keyword value to an aggregate of the own column.
func selfAggregate(raw string) (table.Agg, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "average", "mean":
		return table.AggMean, true
	case "max", "maximum":
		return table.AggMax, true
	case "min", "minimum":
		return table.AggMin, true
	default:
		return table.AggUnknown, false
	}
}

// Entry is one column condition of a specification.
type Entry struct {
	Column    string
	Condition Condition
}

// Spec is a parsed filter specification.
type Spec struct {
	Entries   []Entry
	canonical []byte
}

// Empty reports whether the specification has no entries.
func (s *Spec) Empty() bool {
	return s == nil || len(s.Entries) == 0
}

// Columns returns the distinct column names in entry order.
func (s *Spec) Columns() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]bool, len(s.Entries))
	var cols []string
	for _, e := range s.Entries {
		if !seen[e.Column] {
			seen[e.Column] = true
			cols = append(cols, e.Column)
		}
	}
	return cols
}
