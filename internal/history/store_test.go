package history

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/filterspec"
	"github.com/roach88/sift/internal/testutil"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string, seq int64, hash string) Record {
	return Record{
		ID:       id,
		Seq:      seq,
		Dataset:  "staff",
		SpecHash: hash,
		Spec:     `{"Age":{"gt":30}}`,
		RowsIn:   10,
		RowsOut:  4,
		Warnings: []string{},
	}
}

func TestOpen_AppliesPragmasAndSchema(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_resolutions_spec_hash'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, testRecord("a", 1, "h1")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	records, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "history.db"))
	assert.Error(t, err)
}

func TestWrite_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := testRecord("r1", 1, "h1")
	rec.Warnings = []string{"Column 'Agee' not found in dataset."}
	require.NoError(t, s.Write(ctx, rec))

	records, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}

func TestWrite_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := testRecord("r1", 1, "h1")
	require.NoError(t, s.Write(ctx, rec))

	dup := rec
	dup.RowsOut = 99
	require.NoError(t, s.Write(ctx, dup))

	records, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].RowsOut)
}

func TestWrite_NilWarningsStoredEmpty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := testRecord("r1", 1, "h1")
	rec.Warnings = nil
	require.NoError(t, s.Write(ctx, rec))

	records, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{}, records[0].Warnings)
}

func TestList_NewestFirstWithLimit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, testRecord("b", 2, "h")))
	require.NoError(t, s.Write(ctx, testRecord("c", 3, "h")))
	require.NoError(t, s.Write(ctx, testRecord("a", 1, "h")))
	require.NoError(t, s.Write(ctx, testRecord("z", 3, "h")))

	records, err := s.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"c", "z", "b"}, ids(records))

	all, err := s.List(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestList_Empty(t *testing.T) {
	s := createTestStore(t)

	records, err := s.List(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestBySpecHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, testRecord("x2", 4, "h1")))
	require.NoError(t, s.Write(ctx, testRecord("y", 2, "h2")))
	require.NoError(t, s.Write(ctx, testRecord("x1", 1, "h1")))

	records, err := s.BySpecHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "x2"}, ids(records))

	records, err = s.BySpecHash(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.Write(ctx, testRecord("a", 7, "h")))
	require.NoError(t, s.Write(ctx, testRecord("b", 3, "h")))

	seq, err = s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}

func TestNewRecord(t *testing.T) {
	spec, err := filterspec.ParseString(`{"Age": {"gt": 30}}`)
	require.NoError(t, err)

	first := NewRecord("staff", spec, 10, 4, nil)
	second := NewRecord("staff", spec, 10, 4, []string{"w"})

	_, err = uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(0), first.Seq)
	assert.Equal(t, spec.Hash(), first.SpecHash)
	assert.Equal(t, string(spec.JSON()), first.Spec)
	assert.Equal(t, []string{}, first.Warnings)
	assert.Equal(t, []string{"w"}, second.Warnings)
}

func TestWrite_DeterministicSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	clock := testutil.NewDeterministicClock()
	spec, err := filterspec.ParseString(`{}`)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		rec := NewRecord("d", spec, 1, 1, nil)
		rec.Seq = clock.Next()
		require.NoError(t, s.Write(ctx, rec))
	}

	records, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{records[0].Seq, records[1].Seq, records[2].Seq})
}

func TestAppend_AssignsNextSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	spec, err := filterspec.ParseString(`{"Age": {"gt": 30}}`)
	require.NoError(t, err)

	first, err := s.Append(ctx, NewRecord("staff", spec, 10, 4, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Seq)

	require.NoError(t, s.Write(ctx, testRecord("imported", 7, "h")))

	second, err := s.Append(ctx, NewRecord("staff", spec, 10, 2, []string{"w"}))
	require.NoError(t, err)
	assert.Equal(t, int64(8), second.Seq)

	records, err := s.BySpecHash(ctx, spec.Hash())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first, records[0])
	assert.Equal(t, second, records[1])
}

func TestAppend_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	spec, err := filterspec.ParseString(`{}`)
	require.NoError(t, err)

	rec := NewRecord("d", spec, 1, 1, nil)
	stored, err := s.Append(ctx, rec)
	require.NoError(t, err)

	_, err = s.Append(ctx, NewRecord("d", spec, 1, 1, nil))
	require.NoError(t, err)

	again, err := s.Append(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, stored.Seq, again.Seq)

	records, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAppend_ConcurrentStoresGetDistinctSeqs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	spec, err := filterspec.ParseString(`{}`)
	require.NoError(t, err)

	// Two stores on one file stand in for two sift processes.
	stores := make([]*Store, 2)
	for i := range stores {
		i := i
		stores[i], err = Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { stores[i].Close() })
	}

	const perStore = 25
	var wg sync.WaitGroup
	for _, s := range stores {
		s := s
		for i := 0; i < perStore; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Append(ctx, NewRecord("d", spec, 1, 1, nil))
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()

	records, err := stores[0].List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2*perStore)

	seen := make(map[int64]bool, len(records))
	for _, r := range records {
		assert.False(t, seen[r.Seq], "seq %d stored twice", r.Seq)
		seen[r.Seq] = true
	}

	last, err := stores[0].LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2*perStore), last)
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
