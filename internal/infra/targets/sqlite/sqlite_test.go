package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTarget(t *testing.T) *SQLiteTarget {
	t.Helper()
	tgt := NewSQLiteTarget(filepath.Join(t.TempDir(), "fixtures.db"))
	require.NoError(t, tgt.Connect(context.Background()))
	t.Cleanup(func() { _ = tgt.Close() })
	return tgt
}

func TestSQLiteTarget_InsertFetchRemove(t *testing.T) {
	ctx := context.Background()
	tgt := openTarget(t)

	res, err := tgt.Insert(ctx, "users", []domain.Record{
		{"name": "Ada", "age": 36},
		{"name": "Linus", "tags": []interface{}{"a", "b"}},
	})
	require.NoError(t, err)
	require.Len(t, res.IDs, 2)

	got, err := tgt.Fetch(ctx, "users", res.IDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Ada", got["name"])
	assert.Equal(t, float64(36), got["age"])
	assert.Equal(t, res.IDs[0], got[domain.IDField])

	n, err := tgt.Remove(ctx, "users", append(res.IDs, "missing"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = tgt.Fetch(ctx, "users", res.IDs[0])
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSQLiteTarget_LargeBatchSpansStatements(t *testing.T) {
	ctx := context.Background()
	tgt := openTarget(t)

	records := make([]domain.Record, rowsPerStatement*2+7)
	for i := range records {
		records[i] = domain.Record{"i": i}
	}
	res, err := tgt.Insert(ctx, "events", records)
	require.NoError(t, err)
	require.Len(t, res.IDs, len(records))

	n, err := tgt.Remove(ctx, "events", res.IDs)
	require.NoError(t, err)
	assert.Equal(t, int64(len(records)), n)
}

func TestSQLiteTarget_RemoveFromUnknownCollection(t *testing.T) {
	n, err := openTarget(t).Remove(context.Background(), "never_written", []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLiteTarget_RejectsUnsafeCollection(t *testing.T) {
	_, err := openTarget(t).Insert(context.Background(), "users; DROP TABLE x", []domain.Record{{}})
	assert.Error(t, err)
}
