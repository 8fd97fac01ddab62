package surreal

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/infra/targets"
	"github.com/mmrzaf/fixturegen/internal/validation"
	"github.com/surrealdb/surrealdb.go"
)

const (
	defaultNamespace = "test"
	defaultDatabase  = "fixtures"
)

var ErrQuery = errors.New("surrealdb query failed")

// SurrealTarget writes each collection to a table of the same name. Record
// keys are the assigned identifiers, so a record lives at table:⟨id⟩.
type SurrealTarget struct {
	endpoint  string
	username  string
	password  string
	namespace string
	database  string
	db        *surrealdb.DB
}

// NewSurrealTarget takes an endpoint such as ws://root:root@localhost:8000.
// Credentials in the URL are used to sign in and stripped from the endpoint.
func NewSurrealTarget(dsn, namespace, database string) (*SurrealTarget, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid surrealdb endpoint: %w", err)
	}
	t := &SurrealTarget{namespace: namespace, database: database}
	if u.User != nil {
		t.username = u.User.Username()
		t.password, _ = u.User.Password()
		u.User = nil
	}
	t.endpoint = u.String()
	if t.namespace == "" {
		t.namespace = defaultNamespace
	}
	if t.database == "" {
		t.database = defaultDatabase
	}
	return t, nil
}

func (t *SurrealTarget) Connect(ctx context.Context) error {
	db, err := surrealdb.FromEndpointURLString(ctx, t.endpoint)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if t.username != "" {
		if _, err := db.SignIn(ctx, &surrealdb.Auth{Username: t.username, Password: t.password}); err != nil {
			_ = db.Close(ctx)
			return fmt.Errorf("signin failed: %w", err)
		}
	}
	if err := db.Use(ctx, t.namespace, t.database); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("use failed: %w", err)
	}
	t.db = db
	return nil
}

func (t *SurrealTarget) Close() error {
	if t.db != nil {
		return t.db.Close(context.Background())
	}
	return nil
}

func (t *SurrealTarget) Insert(ctx context.Context, collection string, records []domain.Record) (*domain.InsertResult, error) {
	if err := validation.ValidateCollection(collection); err != nil {
		return nil, err
	}
	docs := targets.Assign(records)
	if len(docs) == 0 {
		return targets.Result(docs), nil
	}

	rows := make([]map[string]interface{}, len(docs))
	for i, d := range docs {
		row := d.Body()
		row["id"] = d.ID
		rows[i] = row
	}
	if _, err := t.query(ctx, fmt.Sprintf("INSERT INTO %s $rows", collection), map[string]interface{}{"rows": rows}); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", collection, err)
	}
	return targets.Result(docs), nil
}

func (t *SurrealTarget) Remove(ctx context.Context, collection string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := validation.ValidateCollection(collection); err != nil {
		return 0, err
	}
	result, err := t.query(ctx,
		fmt.Sprintf("DELETE %s WHERE record::id(id) INSIDE $ids RETURN BEFORE", collection),
		map[string]interface{}{"ids": ids})
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", collection, err)
	}
	deleted, _ := result.([]interface{})
	return int64(len(deleted)), nil
}

func (t *SurrealTarget) ServerVersion(ctx context.Context) (string, error) {
	v, err := t.db.Version(ctx)
	if err != nil {
		return "", err
	}
	return v.Version, nil
}

// query runs a single statement and returns its result.
func (t *SurrealTarget) query(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	if t.db == nil {
		return nil, errors.New("surrealdb: not connected")
	}
	results, err := surrealdb.Query[interface{}](ctx, t.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	r := (*results)[0]
	if r.Status != "OK" {
		if r.Error != nil {
			return nil, fmt.Errorf("%w: %s", ErrQuery, r.Error.Message)
		}
		return nil, ErrQuery
	}
	return r.Result, nil
}
