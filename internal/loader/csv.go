package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/roach88/sift/internal/table"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(path string, logger *slog.Logger) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err = decodeText(data, logger)
	if err != nil {
		return nil, err
	}
	return parseCSV(data)
}

// decodeText returns data as UTF-8. Input that is not valid UTF-8 is read
// as ISO-8859-1, which maps every byte to a code point.
func decodeText(data []byte, logger *slog.Logger) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	logger.Debug("input is not UTF-8, decoding as ISO-8859-1")
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode ISO-8859-1: %w", err)
	}
	return decoded, nil
}

func parseCSV(data []byte) (*table.Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("parse csv: no header row")
	}
	return table.FromRecords(records[0], records[1:])
}
