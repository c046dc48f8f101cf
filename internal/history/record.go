package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/sift/internal/filterspec"
)

// Record is one logged resolution.
type Record struct {
	ID       string   `json:"id"`
	Seq      int64    `json:"seq"`
	Dataset  string   `json:"dataset"`
	SpecHash string   `json:"spec_hash"`
	Spec     string   `json:"spec"`
	RowsIn   int      `json:"rows_in"`
	RowsOut  int      `json:"rows_out"`
	Warnings []string `json:"warnings"`
}

// NewRecord stamps a record for a resolution of spec against dataset.
// The ID is a random UUID. Seq is left zero for Append to assign.
func NewRecord(dataset string, spec *filterspec.Spec, rowsIn, rowsOut int, warnings []string) Record {
	if warnings == nil {
		warnings = []string{}
	}
	return Record{
		ID:       uuid.NewString(),
		Dataset:  dataset,
		SpecHash: spec.Hash(),
		Spec:     string(spec.JSON()),
		RowsIn:   rowsIn,
		RowsOut:  rowsOut,
		Warnings: warnings,
	}
}

// Write inserts rec with the seq it carries. Writing an ID that already
// exists is a no-op.
func (s *Store) Write(ctx context.Context, rec Record) error {
	warningsJSON, err := marshalWarnings(rec.Warnings)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resolutions
		(id, seq, dataset, spec_hash, spec, rows_in, rows_out, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Seq,
		rec.Dataset,
		rec.SpecHash,
		rec.Spec,
		rec.RowsIn,
		rec.RowsOut,
		string(warningsJSON),
	)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Append inserts rec with the next seq and returns it as stored. The seq
// is computed inside the INSERT statement, so concurrent writers, in this
// process or another, never share a seq. Appending an ID that already
// exists is a no-op that returns the stored seq.
func (s *Store) Append(ctx context.Context, rec Record) (Record, error) {
	warningsJSON, err := marshalWarnings(rec.Warnings)
	if err != nil {
		return Record{}, fmt.Errorf("append record: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO resolutions
		(id, seq, dataset, spec_hash, spec, rows_in, rows_out, warnings)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?, ?
		FROM resolutions WHERE true
		ON CONFLICT(id) DO NOTHING
		RETURNING seq
	`,
		rec.ID,
		rec.Dataset,
		rec.SpecHash,
		rec.Spec,
		rec.RowsIn,
		rec.RowsOut,
		string(warningsJSON),
	).Scan(&rec.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.QueryRowContext(ctx, "SELECT seq FROM resolutions WHERE id = ?", rec.ID).Scan(&rec.Seq)
	}
	if err != nil {
		return Record{}, fmt.Errorf("append record: %w", err)
	}
	return rec, nil
}

func marshalWarnings(warnings []string) ([]byte, error) {
	if warnings == nil {
		warnings = []string{}
	}
	data, err := json.Marshal(warnings)
	if err != nil {
		return nil, fmt.Errorf("marshal warnings: %w", err)
	}
	return data, nil
}

// List returns up to limit records, newest first. A limit of zero or less
// returns every record.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, dataset, spec_hash, spec, rows_in, rows_out, warnings
		FROM resolutions
		ORDER BY seq DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return collect(rows)
}

// BySpecHash returns every record of a specification, oldest first.
func (s *Store) BySpecHash(ctx context.Context, hash string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, dataset, spec_hash, spec, rows_in, rows_out, warnings
		FROM resolutions
		WHERE spec_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return collect(rows)
}

// LastSeq returns the highest recorded seq, or 0 for an empty log.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM resolutions").Scan(&seq); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}

func collect(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec      Record
			warnings string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Seq,
			&rec.Dataset,
			&rec.SpecHash,
			&rec.Spec,
			&rec.RowsIn,
			&rec.RowsOut,
			&warnings,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(warnings), &rec.Warnings); err != nil {
			return nil, fmt.Errorf("record %s: unmarshal warnings: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
