// Package factory generates fixture records, persists them through a
// gateway, and removes everything it created on ClearAll.
package factory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/index"
	"github.com/mmrzaf/fixturegen/internal/logging"
	"github.com/mmrzaf/fixturegen/internal/model"
	"github.com/mmrzaf/fixturegen/internal/registry"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const defaultClearConcurrency = 4

type Factory struct {
	fixtures *registry.FixtureRegistry
	gen      *model.Generator
	created  *index.CreatedIndex
	sess     *session
	logger   *logging.Logger

	clearConcurrency int
}

type Option func(*Factory)

func WithLogger(l *logging.Logger) Option {
	return func(f *Factory) { f.logger = l }
}

// WithClearConcurrency bounds how many collections ClearAll removes from at
// once. n <= 0 means unbounded.
func WithClearConcurrency(n int) Option {
	return func(f *Factory) { f.clearConcurrency = n }
}

// WithIndex makes the factory record into idx instead of a fresh index.
func WithIndex(idx *index.CreatedIndex) Option {
	return func(f *Factory) { f.created = idx }
}

func New(fixtures *registry.FixtureRegistry, gen *model.Generator, connect Connector, opts ...Option) *Factory {
	f := &Factory{
		fixtures:         fixtures,
		gen:              gen,
		created:          index.New(),
		sess:             newSession(connect),
		logger:           logging.Nop(),
		clearConcurrency: defaultClearConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.WithComponent("factory")
	return f
}

// Fixtures returns a snapshot of the registered fixture schemas.
func (f *Factory) Fixtures() map[string]*domain.Schema {
	return f.fixtures.All()
}

func (f *Factory) Fixture(name string) (*domain.Schema, error) {
	schema, ok := f.fixtures.Get(name)
	if !ok {
		return nil, domain.NotFoundError("fixture", name)
	}
	return schema, nil
}

// Created returns a snapshot of every identifier recorded so far.
func (f *Factory) Created() map[string][]string {
	return f.created.All()
}

func (f *Factory) CreatedFor(name string) []string {
	return f.created.Get(name)
}

// Build generates records without persisting them.
func (f *Factory) Build(name string, quantity int, override model.Override, refs []*domain.Schema) ([]domain.Record, error) {
	schema, ok := f.fixtures.Get(name)
	if !ok {
		return nil, domain.NotFoundError("build", name)
	}
	seq, err := f.gen.Generate(name, schema, quantity, override, refs)
	if err != nil {
		return nil, err
	}
	return seq.Collect()
}

// Create generates a single record, persists it and returns its persisted
// representation. When the gateway reports no representation the result
// holds an empty record and no identifier.
func (f *Factory) Create(ctx context.Context, name string, override model.Override, refs []*domain.Schema) (domain.PersistedRecord, error) {
	schema, ok := f.fixtures.Get(name)
	if !ok {
		return domain.PersistedRecord{}, domain.NotFoundError("create", name)
	}
	seq, err := f.gen.Generate(name, schema, 1, override, refs)
	if err != nil {
		return domain.PersistedRecord{}, err
	}
	if !seq.Next() {
		if err := seq.Err(); err != nil {
			return domain.PersistedRecord{}, err
		}
		return domain.PersistedRecord{}, domain.GenerationError("create", name, errors.New("sequence produced no record"))
	}

	res, err := f.insert(ctx, "create", name, []domain.Record{seq.Record()})
	if err != nil {
		return domain.PersistedRecord{}, err
	}
	if len(res.Records) == 0 {
		return domain.PersistedRecord{Record: domain.Record{}}, nil
	}
	return res.Records[0], nil
}

// CreateMany generates quantity records and persists them in one batch.
// Either every record is persisted or an error is returned; quantity 0
// touches neither the gateway nor the index.
func (f *Factory) CreateMany(ctx context.Context, name string, quantity int, override model.Override, refs []*domain.Schema) ([]domain.PersistedRecord, error) {
	schema, ok := f.fixtures.Get(name)
	if !ok {
		return nil, domain.NotFoundError("create_many", name)
	}
	seq, err := f.gen.Generate(name, schema, quantity, override, refs)
	if err != nil {
		return nil, err
	}
	records, err := seq.Collect()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []domain.PersistedRecord{}, nil
	}

	res, err := f.insert(ctx, "create_many", name, records)
	if err != nil {
		return nil, err
	}
	if res.Records == nil {
		return []domain.PersistedRecord{}, nil
	}
	return res.Records, nil
}

func (f *Factory) insert(ctx context.Context, op, name string, records []domain.Record) (*domain.InsertResult, error) {
	gw, err := f.gateway(ctx)
	if err != nil {
		return nil, domain.PersistenceError(op, name, err)
	}

	start := time.Now()
	res, err := gw.Insert(ctx, name, records)
	if err != nil {
		return nil, domain.PersistenceError(op, name, err)
	}
	if res == nil {
		res = &domain.InsertResult{}
	}
	f.created.Record(name, res.IDs)

	f.logger.Debugw("records.inserted", map[string]any{
		"fixture":     name,
		"count":       len(res.IDs),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return res, nil
}

// ClearAll removes every recorded identifier, one remove request per fixture
// name. All removals are attempted even when some fail; failures are
// combined into a single persistence error. Names removed successfully are
// released from the index so a second ClearAll does not repeat them.
func (f *Factory) ClearAll(ctx context.Context) error {
	snapshot := f.created.All()
	if len(snapshot) == 0 {
		return nil
	}

	gw, err := f.gateway(ctx)
	if err != nil {
		return domain.PersistenceError("clear_all", "", err)
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		errs    error
		removed int64
	)
	if f.clearConcurrency > 0 {
		g.SetLimit(f.clearConcurrency)
	}
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ids := snapshot[name]
		g.Go(func() error {
			n, err := gw.Remove(ctx, name, ids)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
				return nil
			}
			removed += n
			f.created.Release(name, ids)
			return nil
		})
	}
	_ = g.Wait()

	f.logger.Debugw("records.cleared", map[string]any{
		"collections": len(snapshot),
		"removed":     removed,
		"failed":      len(multierr.Errors(errs)),
	})
	if errs != nil {
		return domain.PersistenceError("clear_all", "", errs)
	}
	return nil
}

// Close releases the gateway session. A connect still in flight is waited
// for and its gateway closed; after Close the factory no longer connects.
func (f *Factory) Close() error {
	return f.sess.close()
}

func (f *Factory) gateway(ctx context.Context) (Gateway, error) {
	if f.sess.connect == nil {
		return nil, errors.New("no gateway configured")
	}
	gw, err := f.sess.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return gw, nil
}
