// Package ledger persists created-record identifiers between CLI runs so a
// later "fixturegen clear" can remove what an earlier "create" stored.
package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	Load(ctx context.Context, target string) (map[string][]string, error)
	Save(ctx context.Context, target string, snapshot map[string][]string) error
	Close() error
}

type SQLiteRepository struct {
	dbPath string
	db     *sql.DB
	qb     squirrel.StatementBuilderType
}

func NewSQLiteRepository(dbPath string) *SQLiteRepository {
	return &SQLiteRepository{
		dbPath: dbPath,
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (r *SQLiteRepository) Init(ctx context.Context) error {
	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return err
	}
	r.db = db

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS created_records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		fixture TEXT NOT NULL,
		record_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS created_records_target ON created_records (target)`)
	return err
}

// Load returns the identifiers recorded for target, per fixture, in the
// order they were saved.
func (r *SQLiteRepository) Load(ctx context.Context, target string) (map[string][]string, error) {
	query, args, err := r.qb.Select("fixture", "record_id").
		From("created_records").
		Where(squirrel.Eq{"target": target}).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var fixture, id string
		if err := rows.Scan(&fixture, &id); err != nil {
			return nil, err
		}
		out[fixture] = append(out[fixture], id)
	}
	return out, rows.Err()
}

// Save replaces everything recorded for target with snapshot.
func (r *SQLiteRepository) Save(ctx context.Context, target string, snapshot map[string][]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query, args, err := r.qb.Delete("created_records").Where(squirrel.Eq{"target": target}).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO created_records (target, fixture, record_id, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, fixture := range sortedKeys(snapshot) {
		for _, id := range snapshot[fixture] {
			if _, err := stmt.ExecContext(ctx, target, fixture, id, now); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
