// Package output renders tables as text, JSON, JSON lines or CSV.
// Every format keeps the table's column order.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/roach88/sift/internal/table"
)

// Format names an output format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatCSV, FormatJSONL}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q: must be one of %v", s, Formats)
}

// Formatter writes a table.
type Formatter interface {
	Format(t *table.Table) error
}

// New returns the formatter for f writing to w.
func New(f Format, w io.Writer) (Formatter, error) {
	switch f {
	case FormatText:
		return NewTextFormatter(w), nil
	case FormatJSON:
		return &JSONFormatter{writer: w}, nil
	case FormatJSONL:
		return &JSONFormatter{writer: w, lines: true}, nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format %q", f)
	}
}

// Write renders t to w in format f.
func Write(w io.Writer, f Format, t *table.Table) error {
	formatter, err := New(f, w)
	if err != nil {
		return err
	}
	return formatter.Format(t)
}

// TextFormatter draws an ASCII table.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format draws t. Missing values render as empty cells.
func (f *TextFormatter) Format(t *table.Table) error {
	tw := tablewriter.NewWriter(f.writer)
	tw.SetHeader(t.Columns())
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	for i := 0; i < t.NumRows(); i++ {
		tw.Append(Strings(t.Row(i)))
	}
	tw.Render()
	return nil
}

// CSVFormatter writes a header row then one record per row.
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a CSV formatter.
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// Format writes t as CSV.
func (f *CSVFormatter) Format(t *table.Table) error {
	w := csv.NewWriter(f.writer)
	if err := w.Write(t.Columns()); err != nil {
		return err
	}
	for i := 0; i < t.NumRows(); i++ {
		if err := w.Write(Strings(t.Row(i))); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// JSONFormatter writes rows as JSON objects, either one array or one
// object per line.
type JSONFormatter struct {
	writer io.Writer
	lines  bool
}

// Format writes t as JSON.
func (f *JSONFormatter) Format(t *table.Table) error {
	rows := Rows(t)
	if !f.lines {
		enc := json.NewEncoder(f.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	enc := json.NewEncoder(f.writer)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

// Row is one table row that marshals as a JSON object with keys in
// column order.
type Row struct {
	Columns []string
	Values  []any
}

// Rows returns the rows of t in view order.
func Rows(t *table.Table) []Row {
	cols := t.Columns()
	rows := make([]Row, t.NumRows())
	for i := range rows {
		rows[i] = Row{Columns: cols, Values: t.Row(i)}
	}
	return rows
}

// MarshalJSON implements json.Marshaler.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Strings renders values as display strings.
func Strings(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = table.FormatValue(v)
	}
	return out
}
