package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/roach88/sift/internal/filterspec"
	"github.com/roach88/sift/internal/history"
	"github.com/roach88/sift/internal/loader"
)

// specSource holds the mutually exclusive ways of passing a specification.
type specSource struct {
	inline   string
	file     string
	response string
}

var (
	errNoSpec       = errors.New("one of --spec, --spec-file or --response-file is required")
	errManySpecs    = errors.New("--spec, --spec-file and --response-file are mutually exclusive")
	errNoQueryBlock = errors.New("response contains no QUERY block with a JSON object")
)

func (s specSource) count() int {
	n := 0
	for _, v := range []string{s.inline, s.file, s.response} {
		if v != "" {
			n++
		}
	}
	return n
}

// raw returns the specification bytes. A response file is run through
// filterspec.Extract first.
func (s specSource) raw(stdin io.Reader) ([]byte, error) {
	switch s.count() {
	case 0:
		return nil, errNoSpec
	case 1:
	default:
		return nil, errManySpecs
	}

	switch {
	case s.inline != "":
		return []byte(s.inline), nil
	case s.file != "":
		return readInput(s.file, stdin)
	default:
		data, err := readInput(s.response, stdin)
		if err != nil {
			return nil, err
		}
		spec, ok := filterspec.Extract(string(data))
		if !ok {
			return nil, errNoQueryBlock
		}
		return spec.JSON(), nil
	}
}

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// specError maps a spec-reading error to its error code.
func specError(f *OutputFormatter, err error) error {
	switch {
	case errors.Is(err, errNoSpec), errors.Is(err, errManySpecs):
		return f.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid arguments", err)
	case errors.Is(err, errNoQueryBlock):
		return f.Fail(ExitCommandError, ErrCodeNoSpec, "no specification found", err)
	default:
		return f.Fail(ExitCommandError, ErrCodeSpecParse, "failed to read specification", err)
	}
}

func loadDataset(ctx context.Context, opts *RootOptions, f *OutputFormatter, path, table string) (*loader.Dataset, error) {
	ds, err := loader.Load(ctx, path, loader.Options{Table: table, Logger: opts.logger()})
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeDatasetLoad, "failed to load dataset", err)
	}
	f.VerboseLog("Loaded %s: %d rows, %d columns", ds.Name, ds.Table.NumRows(), ds.Table.NumColumns())
	return ds, nil
}

// historyPath prefers the flag over SIFT_HISTORY_DB.
func historyPath(opts *RootOptions, flag string) string {
	if flag != "" {
		return flag
	}
	return opts.Config.HistoryDB
}

// record appends one resolution to the history database at path.
func record(ctx context.Context, path string, rec history.Record) (history.Record, error) {
	store, err := history.Open(path)
	if err != nil {
		return history.Record{}, err
	}
	defer store.Close()

	return store.Append(ctx, rec)
}
