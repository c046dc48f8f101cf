package table

import (
	"fmt"
	"strconv"
	"strings"
)

// naTokens are cell texts read as missing values.
var naTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

// FromRecords builds a table from a header row and text records, the way a
// CSV reader infers dtypes: a column is numeric when every non-missing cell
// parses as a number, otherwise every cell keeps its text.
//
// Duplicate header names are disambiguated with a ".N" suffix.
func FromRecords(header []string, records [][]string) (*Table, error) {
	names := dedupeNames(header)
	cols := make([]Column, len(names))

	for j, name := range names {
		cells := make([]string, len(records))
		for i, rec := range records {
			if len(rec) != len(header) {
				return nil, fmt.Errorf("record %d has %d fields, expected %d", i+1, len(rec), len(header))
			}
			cells[i] = rec[j]
		}
		cols[j] = columnFromText(name, cells)
	}

	return New(cols...)
}

// FromMaps builds a table from row maps in the given column order.
// Keys missing from a row read as nil.
func FromMaps(columns []string, rows []map[string]any) (*Table, error) {
	cols := make([]Column, len(columns))
	for j, name := range columns {
		values := make([]any, len(rows))
		for i, row := range rows {
			values[i] = row[name]
		}
		cols[j] = NewColumn(name, values...)
	}
	return New(cols...)
}

func columnFromText(name string, cells []string) Column {
	values := make([]any, len(cells))
	numeric := true

	for i, cell := range cells {
		trimmed := strings.TrimSpace(cell)
		if _, na := naTokens[trimmed]; na {
			values[i] = nil
			continue
		}
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			values[i] = n
			continue
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			values[i] = Normalize(f)
			continue
		}
		numeric = false
		break
	}

	if !numeric {
		for i, cell := range cells {
			if _, na := naTokens[strings.TrimSpace(cell)]; na {
				values[i] = nil
			} else {
				values[i] = cell
			}
		}
		return Column{Name: name, Kind: KindCategorical, Values: values}
	}

	// An all-missing column reads as floating point, never integer.
	_, integer := inferKind(values)
	return Column{Name: name, Kind: KindNumeric, Integer: integer, Values: values}
}

func dedupeNames(header []string) []string {
	seen := make(map[string]bool, len(header))
	suffix := make(map[string]int)
	names := make([]string, len(header))
	for i, h := range header {
		name := h
		if seen[name] {
			k := suffix[h]
			for seen[name] {
				k++
				name = fmt.Sprintf("%s.%d", h, k)
			}
			suffix[h] = k
		}
		seen[name] = true
		names[i] = name
	}
	return names
}
