package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/infra/targets"
	"github.com/mmrzaf/fixturegen/internal/validation"
)

// PostgreSQL allows 65535 bind parameters per statement.
const rowsPerStatement = 5000

// PostgresTarget stores each collection as a table of (id, document JSONB)
// rows inside the configured schema.
type PostgresTarget struct {
	dsn     string
	schema  string
	pool    *pgxpool.Pool
	qb      squirrel.StatementBuilderType
	ensured sync.Map
}

func NewPostgresTarget(dsn, schema string) *PostgresTarget {
	if schema == "" {
		schema = "public"
	}
	return &PostgresTarget{
		dsn:    dsn,
		schema: schema,
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (t *PostgresTarget) Connect(ctx context.Context) error {
	if !validation.IsValidIdentifier(t.schema) {
		return fmt.Errorf("invalid schema identifier: %s", t.schema)
	}
	config, err := pgxpool.ParseConfig(t.dsn)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return err
	}
	t.pool = pool
	return nil
}

func (t *PostgresTarget) Close() error {
	if t.pool != nil {
		t.pool.Close()
	}
	return nil
}

func (t *PostgresTarget) qualified(table string) string {
	return t.schema + "." + table
}

func (t *PostgresTarget) ensureTable(ctx context.Context, table string) error {
	if err := validation.ValidateCollection(table); err != nil {
		return err
	}
	if _, ok := t.ensured.Load(table); ok {
		return nil
	}
	if t.schema != "public" {
		if _, err := t.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+t.schema); err != nil {
			return fmt.Errorf("create schema %s: %w", t.schema, err)
		}
	}
	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		document JSONB NOT NULL
	)`, t.qualified(table))
	if _, err := t.pool.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("create table %s: %w", t.qualified(table), err)
	}
	t.ensured.Store(table, struct{}{})
	return nil
}

func (t *PostgresTarget) Insert(ctx context.Context, collection string, records []domain.Record) (*domain.InsertResult, error) {
	if err := t.ensureTable(ctx, collection); err != nil {
		return nil, err
	}
	docs := targets.Assign(records)

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	for _, batch := range targets.Batches(docs, rowsPerStatement) {
		q := t.qb.Insert(t.qualified(collection)).Columns("id", "document")
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
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("insert into %s: %w", t.qualified(collection), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return targets.Result(docs), nil
}

func (t *PostgresTarget) Remove(ctx context.Context, collection string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := t.ensureTable(ctx, collection); err != nil {
		return 0, err
	}

	var removed int64
	for _, batch := range targets.Batches(ids, rowsPerStatement) {
		query, args, err := t.qb.Delete(t.qualified(collection)).Where(squirrel.Eq{"id": batch}).ToSql()
		if err != nil {
			return removed, err
		}
		tag, err := t.pool.Exec(ctx, query, args...)
		if err != nil {
			return removed, fmt.Errorf("delete from %s: %w", t.qualified(collection), err)
		}
		removed += tag.RowsAffected()
	}
	return removed, nil
}

func (t *PostgresTarget) ServerVersion(ctx context.Context) (string, error) {
	var v string
	err := t.pool.QueryRow(ctx, "SHOW server_version").Scan(&v)
	return v, err
}
