package resolver

import (
	"fmt"

	"github.com/roach88/sift/internal/filterspec"
	"github.com/roach88/sift/internal/table"
)

// dynamicValue resolves the right-hand side of a comparison on column col
// of the working table t. notes carries warnings raised while resolving
// (the identifier fallback); ok is false when no number could be produced.
func (r *Resolver) dynamicValue(t *table.Table, col string, v filterspec.DynamicValue) (value float64, ok bool, notes []string) {
	switch dv := v.(type) {
	case filterspec.Number:
		return dv.V, true, nil

	case filterspec.SelfAggregate:
		value, ok = t.Aggregate(col, dv.Agg)
		return value, ok, nil

	case filterspec.ColumnAggregate:
		if !t.HasColumn(dv.Column) {
			if dv.Else != nil {
				return r.dynamicValue(t, col, dv.Else)
			}
			return 0, false, nil
		}
		if r.identifier.LooksLikeIdentifier(t, dv.Column) {
			mean, ok := t.Aggregate(col, table.AggMean)
			if !ok {
				return 0, false, nil
			}
			r.logger.Debug("identifier reference replaced by own mean",
				"column", col,
				"reference", dv.Column,
				"mean", mean,
			)
			return mean, true, []string{fmt.Sprintf(
				"Ref column '%s' looks like an identifier; comparing to its aggregate is likely meaningless. Falling back to mean of '%s' (%.2f).",
				dv.Column, col, mean,
			)}
		}
		if dv.Agg == table.AggUnknown {
			return 0, false, nil
		}
		value, ok = t.Aggregate(dv.Column, dv.Agg)
		return value, ok, nil

	default:
		return 0, false, nil
	}
}
