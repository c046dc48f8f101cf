package resolver

import (
	"strings"

	"github.com/roach88/sift/internal/table"
)

// Defaults of the identifier heuristic.
var (
	DefaultNameMarkers       = []string{"id", "code"}
	DefaultMinUniqueFraction = 0.05
)

// IdentifierHeuristic decides whether a column holds record identifiers
// rather than a measurable quantity. It is tuned to over-report: declining
// an aggregate is cheaper than returning a misleading one.
type IdentifierHeuristic struct {
	// NameMarkers are case-insensitive substrings that mark a column name
	// as an identifier (e.g. "EmployeeID", "zip_code").
	NameMarkers []string

	// MinUniqueFraction is the distinct-value fraction below which an
	// integer column is treated as a code rather than a quantity.
	MinUniqueFraction float64
}

// DefaultIdentifierHeuristic returns the heuristic with default markers
// and threshold.
func DefaultIdentifierHeuristic() IdentifierHeuristic {
	markers := make([]string, len(DefaultNameMarkers))
	copy(markers, DefaultNameMarkers)
	return IdentifierHeuristic{
		NameMarkers:       markers,
		MinUniqueFraction: DefaultMinUniqueFraction,
	}
}

// LooksLikeIdentifier reports whether column name of t looks like an
// identifier: its name contains a marker, its values are not numeric, or
// it is integer-typed with few distinct values relative to its rows.
func (h IdentifierHeuristic) LooksLikeIdentifier(t *table.Table, name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range h.NameMarkers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}

	info, ok := t.Info(name)
	if !ok || info.Kind != table.KindNumeric {
		return true
	}

	if info.Integer {
		fraction := float64(t.NUnique(name)) / float64(max(1, t.NumRows()))
		if fraction < h.MinUniqueFraction {
			return true
		}
	}
	return false
}
