// Package loader reads datasets from disk into tables.
//
// The format is chosen by file extension:
//
//	.csv                      header row, UTF-8 or ISO-8859-1
//	.parquet                  Apache Parquet, top-level fields as columns
//	.db, .sqlite, .sqlite3    one table of a SQLite database
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roach88/sift/internal/table"
)

// Format identifies a dataset file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatSQLite  Format = "sqlite"
)

// Options configures Load.
type Options struct {
	// Table names the table to read from a SQLite database.
	Table string

	// Logger receives load diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Dataset is a loaded table and the name it is reported under.
type Dataset struct {
	Name   string
	Format Format
	Table  *table.Table
}

// DetectFormat maps a path's extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("unsupported dataset format %q (want .csv, .parquet, .db, .sqlite or .sqlite3)", filepath.Ext(path))
	}
}

// Load reads the dataset at path.
func Load(ctx context.Context, path string, opts Options) (*Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var t *table.Table
	switch format {
	case FormatCSV:
		t, err = readCSV(path, logger)
	case FormatParquet:
		t, err = readParquet(path)
	case FormatSQLite:
		t, err = readSQLite(ctx, path, opts.Table)
		name += "." + opts.Table
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger.Debug("dataset loaded",
		"path", path,
		"format", string(format),
		"rows", t.NumRows(),
		"columns", t.NumColumns(),
	)
	return &Dataset{Name: name, Format: format, Table: t}, nil
}
