package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mmrzaf/fixturegen/internal/config"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/factory"
	"github.com/mmrzaf/fixturegen/internal/generators"
	"github.com/mmrzaf/fixturegen/internal/hashing"
	"github.com/mmrzaf/fixturegen/internal/index"
	"github.com/mmrzaf/fixturegen/internal/infra/repos/fixtures"
	"github.com/mmrzaf/fixturegen/internal/infra/repos/ledger"
	"github.com/mmrzaf/fixturegen/internal/logging"
	"github.com/mmrzaf/fixturegen/internal/model"
	"github.com/mmrzaf/fixturegen/internal/registry"
	"github.com/mmrzaf/fixturegen/internal/validation"
	"go.uber.org/multierr"
)

// Service wires configuration, fixture files, the factory and the optional
// created-record ledger together for the CLI and the HTTP API.
type Service struct {
	cfg         *config.Config
	genRegistry *registry.GeneratorRegistry
	validator   *validation.Validator
	loaded      *fixtures.LoadResult
	factory     *factory.Factory
	ledger      ledger.Repository
	ledgerMu    sync.Mutex
	targetKey   string
	logger      *logging.Logger
}

type FixtureSummary struct {
	Name       string   `json:"name"`
	Source     string   `json:"source"`
	Hash       string   `json:"hash"`
	Properties []string `json:"properties"`
}

type FixtureDetail struct {
	FixtureSummary
	Schema *domain.Schema `json:"schema"`
}

func NewService(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Service, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	genRegistry := registry.DefaultGeneratorRegistry()
	val := validation.NewValidator(genRegistry)

	if err := val.ValidateTarget(&cfg.Target); err != nil {
		return nil, domain.ConfigurationError("validate_target", "", err)
	}

	loaded, err := LoadFixtures(cfg.FixturesDir, val, logger)
	if err != nil {
		return nil, err
	}

	fixtureRegistry := registry.NewFixtureRegistry()
	fixtureRegistry.Merge(loaded.Fixtures)

	genOpts := []model.Option{}
	if cfg.Seed != 0 {
		genOpts = append(genOpts, model.WithSeed(cfg.Seed))
	}
	gen := model.NewGenerator(generators.NewFaker(genRegistry), genOpts...)

	s := &Service{
		cfg:         cfg,
		genRegistry: genRegistry,
		validator:   val,
		loaded:      loaded,
		targetKey:   hashing.TargetKey(&cfg.Target),
		logger:      logger.WithComponent("service"),
	}

	idx := index.New()
	if cfg.LedgerPath != "" {
		repo := ledger.NewSQLiteRepository(cfg.LedgerPath)
		if err := repo.Init(ctx); err != nil {
			_ = repo.Close()
			return nil, domain.PersistenceError("open_ledger", "", err)
		}
		snapshot, err := repo.Load(ctx, s.targetKey)
		if err != nil {
			_ = repo.Close()
			return nil, domain.PersistenceError("load_ledger", "", err)
		}
		idx.Restore(snapshot)
		s.ledger = repo
	}

	s.factory = factory.New(fixtureRegistry, gen, NewConnector(&cfg.Target, logger.WithComponent("target")),
		factory.WithLogger(logger),
		factory.WithIndex(idx),
		factory.WithClearConcurrency(cfg.ClearConcurrency),
	)
	return s, nil
}

// LoadFixtures reads and validates every fixture file in dir. All invalid
// fixtures are reported together.
func LoadFixtures(dir string, val *validation.Validator, logger *logging.Logger) (*fixtures.LoadResult, error) {
	loaded, err := fixtures.NewFileLoader(dir, logger).Load()
	if err != nil {
		return nil, err
	}
	var errs error
	for _, name := range loaded.Names() {
		if err := val.ValidateFixture(name, loaded.Fixtures[name]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", loaded.Sources[name], err))
		}
	}
	if errs != nil {
		return nil, domain.ConfigurationError("load_fixtures", "", errs)
	}
	return loaded, nil
}

// SampleFixtures generates one record of every loaded fixture without
// persisting it, reporting failures that only show up during generation.
// Loaded fixtures that declare a $id are offered as external references.
func SampleFixtures(loaded *fixtures.LoadResult, genRegistry *registry.GeneratorRegistry) error {
	reg := registry.NewFixtureRegistry()
	reg.Merge(loaded.Fixtures)
	f := factory.New(reg, model.NewGenerator(generators.NewFaker(genRegistry)), nil)

	var refs []*domain.Schema
	for _, name := range loaded.Names() {
		if loaded.Fixtures[name].ID != "" {
			refs = append(refs, loaded.Fixtures[name])
		}
	}

	var errs error
	for _, name := range loaded.Names() {
		if _, err := f.Build(name, 1, model.Override{}, refs); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", loaded.Sources[name], err))
		}
	}
	if errs != nil {
		return domain.GenerationError("sample_fixtures", "", errs)
	}
	return nil
}

func (s *Service) Factory() *factory.Factory { return s.factory }

func (s *Service) Config() *config.Config { return s.cfg }

func (s *Service) Validator() *validation.Validator { return s.validator }

func (s *Service) Generators() []string { return s.genRegistry.List() }

func (s *Service) Collisions() []fixtures.Collision { return s.loaded.Collisions }

func (s *Service) ListFixtures() ([]FixtureSummary, error) {
	all := s.factory.Fixtures()
	out := make([]FixtureSummary, 0, len(all))
	for _, name := range s.loaded.Names() {
		schema, ok := all[name]
		if !ok {
			continue
		}
		summary, err := s.summarize(name, schema)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *Service) GetFixture(name string) (*FixtureDetail, error) {
	schema, err := s.factory.Fixture(name)
	if err != nil {
		return nil, err
	}
	summary, err := s.summarize(name, schema)
	if err != nil {
		return nil, err
	}
	return &FixtureDetail{FixtureSummary: summary, Schema: schema}, nil
}

func (s *Service) summarize(name string, schema *domain.Schema) (FixtureSummary, error) {
	hash, err := hashing.HashSchema(schema)
	if err != nil {
		return FixtureSummary{}, domain.ConfigurationError("hash_fixture", name, err)
	}
	props := make([]string, 0, len(schema.Properties))
	for p := range schema.Properties {
		props = append(props, p)
	}
	sort.Strings(props)
	return FixtureSummary{Name: name, Source: s.loaded.Sources[name], Hash: hash, Properties: props}, nil
}

// Create persists quantity records of the named fixture. A quantity of one
// goes through the single-record path.
func (s *Service) Create(ctx context.Context, name string, quantity int, override model.Override, refs []*domain.Schema) ([]domain.PersistedRecord, error) {
	var (
		out []domain.PersistedRecord
		err error
	)
	if quantity == 1 {
		var rec domain.PersistedRecord
		rec, err = s.factory.Create(ctx, name, override, refs)
		if err == nil {
			out = []domain.PersistedRecord{rec}
		}
	} else {
		out, err = s.factory.CreateMany(ctx, name, quantity, override, refs)
	}
	if err != nil {
		return nil, err
	}
	if err := s.saveLedger(ctx); err != nil {
		return out, err
	}
	return out, nil
}

// ClearAll removes every created record and writes what is left, if
// anything, back to the ledger.
func (s *Service) ClearAll(ctx context.Context) error {
	clearErr := s.factory.ClearAll(ctx)
	return multierr.Append(clearErr, s.saveLedger(ctx))
}

func (s *Service) saveLedger(ctx context.Context) error {
	if s.ledger == nil {
		return nil
	}
	// Snapshot and save together so an older snapshot never overwrites a newer one.
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()
	if err := s.ledger.Save(ctx, s.targetKey, s.factory.Created()); err != nil {
		s.logger.Errorw("ledger.save_failed", map[string]any{"error": err.Error()})
		return domain.PersistenceError("save_ledger", "", err)
	}
	return nil
}

func (s *Service) Close() error {
	err := s.factory.Close()
	if s.ledger != nil {
		err = multierr.Append(err, s.ledger.Close())
	}
	return err
}
