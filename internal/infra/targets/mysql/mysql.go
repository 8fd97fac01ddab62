package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Masterminds/squirrel"
	driver "github.com/go-sql-driver/mysql"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/infra/targets"
	"github.com/mmrzaf/fixturegen/internal/validation"
)

const rowsPerStatement = 2000

// MySQLTarget stores each collection as a table of (id, document JSON) rows.
type MySQLTarget struct {
	dsn      string
	database string
	db       *sql.DB
	qb       squirrel.StatementBuilderType
	ensured  sync.Map
}

// NewMySQLTarget takes a go-sql-driver DSN ("user:pass@tcp(host:3306)/db").
// A non-empty database replaces the one named in the DSN.
func NewMySQLTarget(dsn, database string) *MySQLTarget {
	return &MySQLTarget{
		dsn:      dsn,
		database: database,
		qb:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (t *MySQLTarget) Connect(ctx context.Context) error {
	cfg, err := driver.ParseDSN(t.dsn)
	if err != nil {
		return fmt.Errorf("failed to parse mysql DSN: %w", err)
	}
	if t.database != "" {
		cfg.DBName = t.database
	}
	if cfg.DBName == "" {
		return fmt.Errorf("mysql DSN must name a database")
	}
	cfg.ParseTime = true

	connector, err := driver.NewConnector(cfg)
	if err != nil {
		return err
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	t.db = db
	return nil
}

func (t *MySQLTarget) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

func (t *MySQLTarget) ensureTable(ctx context.Context, table string) error {
	if err := validation.ValidateCollection(table); err != nil {
		return err
	}
	if _, ok := t.ensured.Load(table); ok {
		return nil
	}
	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (id VARCHAR(36) PRIMARY KEY, document JSON NOT NULL)", table)
	if _, err := t.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	t.ensured.Store(table, struct{}{})
	return nil
}

func (t *MySQLTarget) Insert(ctx context.Context, collection string, records []domain.Record) (*domain.InsertResult, error) {
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

func (t *MySQLTarget) Remove(ctx context.Context, collection string, ids []string) (int64, error) {
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

func (t *MySQLTarget) ServerVersion(ctx context.Context) (string, error) {
	var v string
	err := t.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&v)
	return v, err
}
