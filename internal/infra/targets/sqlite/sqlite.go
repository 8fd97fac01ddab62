package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/infra/targets"
	"github.com/mmrzaf/fixturegen/internal/validation"
)

// SQLite caps bound parameters per statement; two per row keeps batches
// well below the lowest default.
const rowsPerStatement = 400

// SQLiteTarget stores each collection as a table of (id, document) rows,
// the document being the JSON encoded record.
type SQLiteTarget struct {
	path    string
	db      *sql.DB
	qb      squirrel.StatementBuilderType
	ensured sync.Map
}

func NewSQLiteTarget(path string) *SQLiteTarget {
	return &SQLiteTarget{
		path: path,
		qb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (t *SQLiteTarget) Connect(ctx context.Context) error {
	db, err := sql.Open("sqlite3", t.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	t.db = db
	return nil
}

func (t *SQLiteTarget) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

func (t *SQLiteTarget) ensureTable(ctx context.Context, table string) error {
	if err := validation.ValidateCollection(table); err != nil {
		return err
	}
	if _, ok := t.ensured.Load(table); ok {
		return nil
	}
	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL
	)`, table)
	if _, err := t.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	t.ensured.Store(table, struct{}{})
	return nil
}

func (t *SQLiteTarget) Insert(ctx context.Context, collection string, records []domain.Record) (*domain.InsertResult, error) {
	if err := t.ensureTable(ctx, collection); err != nil {
		return nil, err
	}
	docs := targets.Assign(records)

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	for _, batch := range targets.Batches(docs, rowsPerStatement) {
		q := t.qb.Insert(collection).Columns("id", "document")
		for _, d := range batch {
			payload, err := json.Marshal(d.Body())
			if err != nil {
				return nil, fmt.Errorf("encode record: %w", err)
			}
			q = q.Values(d.ID, string(payload))
		}
		query, args, err := q.ToSql()
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("insert into %s: %w", collection, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return targets.Result(docs), nil
}

func (t *SQLiteTarget) Remove(ctx context.Context, collection string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := t.ensureTable(ctx, collection); err != nil {
		return 0, err
	}

	var removed int64
	for _, batch := range targets.Batches(ids, rowsPerStatement) {
		query, args, err := t.qb.Delete(collection).Where(squirrel.Eq{"id": batch}).ToSql()
		if err != nil {
			return removed, err
		}
		res, err := t.db.ExecContext(ctx, query, args...)
		if err != nil {
			return removed, fmt.Errorf("delete from %s: %w", collection, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}

// Fetch loads a stored record, mainly for checks and tests.
func (t *SQLiteTarget) Fetch(ctx context.Context, collection, id string) (domain.Record, error) {
	if err := validation.ValidateCollection(collection); err != nil {
		return nil, err
	}
	query, args, err := t.qb.Select("document").From(collection).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var payload string
	if err := t.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		return nil, err
	}
	rec := domain.Record{}
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, err
	}
	rec[domain.IDField] = id
	return rec, nil
}

func (t *SQLiteTarget) ServerVersion(ctx context.Context) (string, error) {
	var v string
	err := t.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&v)
	return v, err
}
