// Package table provides the in-memory dataset that filter specifications
// are resolved against.
//
// A Table is a set of named columns sharing a row-index view. Columns are
// stored once; filtering derives a new view (Where, Head) that references
// the same storage with a narrower index, so a Table is never mutated after
// construction and may be shared between goroutines.
//
// Each column carries an inferred Kind:
//   - KindNumeric: every present value is an int64 or float64
//   - KindCategorical: anything else (strings, booleans, mixed)
//
// Integer is set when a numeric column has every value present and every
// value stored as int64. A single missing value demotes the column to a
// plain numeric one, the same way a dataframe promotes an integer column
// holding NaN to floating point.
//
// Values are restricted to nil, string, int64, float64 and bool. Loaders
// normalise driver and file values into this set (see NewColumn and
// FromMaps).
//
// Numeric coercion (Numeric) never fails: values that are not numbers and
// strings that do not parse become NaN, and NaN never satisfies a
// comparison.
package table
