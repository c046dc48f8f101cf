package resolver

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/sift/internal/filterspec"
	"github.com/roach88/sift/internal/table"
)

// Options configures a Resolver.
type Options struct {
	// Identifier decides which referenced columns are unsuitable for
	// aggregation. The zero value means DefaultIdentifierHeuristic.
	Identifier IdentifierHeuristic

	// Logger receives debug traces of each applied entry. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Result is the outcome of one resolution.
type Result struct {
	// Table is the filtered view; same columns as the input, subset of its rows.
	Table *table.Table

	// Warnings explain skipped or degraded entries, in entry order.
	Warnings []string
}

// Resolver resolves filter specifications against tables.
// A Resolver holds no per-call state and is safe for concurrent use.
type Resolver struct {
	identifier IdentifierHeuristic
	logger     *slog.Logger
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	r := &Resolver{
		identifier: opts.Identifier,
		logger:     opts.Logger,
	}
	if r.identifier.NameMarkers == nil && r.identifier.MinUniqueFraction == 0 {
		r.identifier = DefaultIdentifierHeuristic()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve filters t by spec with default options.
func Resolve(t *table.Table, spec *filterspec.Spec) Result {
	return New(Options{}).Resolve(t, spec)
}

// Resolve filters t by spec. The returned table is t itself when the
// specification is empty or no entry applied.
func (r *Resolver) Resolve(t *table.Table, spec *filterspec.Spec) (res Result) {
	res = Result{Table: t, Warnings: []string{}}
	if spec.Empty() {
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Error during filtering: %v", p))
		}
	}()

	p := &pass{
		resolver: r,
		fold:     cases.Fold(),
	}
	for _, entry := range spec.Entries {
		next, warnings := p.apply(res.Table, entry)
		res.Table = next
		res.Warnings = append(res.Warnings, warnings...)
	}

	r.logger.Debug("filter spec resolved",
		"entries", len(spec.Entries),
		"rows_in", t.NumRows(),
		"rows_out", res.Table.NumRows(),
		"warnings", len(res.Warnings),
	)
	return res
}

// pass holds the per-call state of one resolution.
type pass struct {
	resolver *Resolver
	fold     cases.Caser
}

// apply narrows t by one entry. On any failure it returns t unchanged.
func (p *pass) apply(t *table.Table, entry filterspec.Entry) (out *table.Table, warnings []string) {
	out = t
	defer func() {
		if rec := recover(); rec != nil {
			out = t
			warnings = append(warnings, fmt.Sprintf("Error during filtering: %v", rec))
		}
	}()

	col := entry.Column
	if !t.HasColumn(col) {
		return t, []string{fmt.Sprintf("Column '%s' not found in dataset.", col)}
	}

	switch c := entry.Condition.(type) {
	case filterspec.Match:
		out = t.Where(p.matchMask(t, col, c.Text))

	case filterspec.Compare:
		if c.Op == filterspec.OpUnknown {
			return t, []string{fmt.Sprintf("Unsupported operator '%s' for column '%s'.", c.RawOp, col)}
		}
		value, ok, notes := p.resolver.dynamicValue(t, col, c.Value)
		warnings = append(warnings, notes...)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Could not resolve comparison value for '%s' with raw '%s'.", col, c.Raw))
			return t, warnings
		}
		left := t.Numeric(col)
		mask := make([]bool, len(left))
		for i, v := range left {
			mask[i] = c.Op.Holds(v, value)
		}
		out = t.Where(mask)

	case filterspec.Invalid:
		return t, []string{fmt.Sprintf("Unsupported condition for column '%s': %s.", col, c.Reason)}

	default:
		return t, []string{fmt.Sprintf("Unsupported condition for column '%s'.", col)}
	}

	p.resolver.logger.Debug("filter entry applied",
		"column", col,
		"condition", fmt.Sprintf("%T", entry.Condition),
		"rows_before", t.NumRows(),
		"rows_after", out.NumRows(),
	)
	return out, warnings
}

// matchMask marks rows whose display string contains text, case-folded.
// Cells of floating-point columns display as floats (35.0, not 35).
// Missing values never match.
func (p *pass) matchMask(t *table.Table, col, text string) []bool {
	info, _ := t.Info(col)
	floating := info.Kind == table.KindNumeric && !info.Integer

	needle := p.fold.String(text)
	values := t.Values(col)
	mask := make([]bool, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		s := table.FormatValue(v)
		if floating {
			s = table.FloatText(table.ToFloat(v))
		}
		mask[i] = strings.Contains(p.fold.String(s), needle)
	}
	return mask
}
