package model

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/generators"
)

// Faker produces one fake record for a schema. *generators.Faker satisfies it.
type Faker interface {
	Fake(rng *rand.Rand, schema *domain.Schema, refs []*domain.Schema, ctx generators.GeneratorContext) (domain.Record, error)
}

// Generator turns a fixture schema into sequences of records.
type Generator struct {
	faker Faker
	now   func() time.Time

	mu    sync.Mutex
	seeds *rand.Rand
}

type Option func(*Generator)

// WithSeed makes the per-sequence RNGs derive from seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.seeds = rand.New(rand.NewSource(seed)) }
}

func NewGenerator(faker Faker, opts ...Option) *Generator {
	g := &Generator{
		faker: faker,
		now:   time.Now,
		seeds: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate prepares a sequence of exactly quantity records for the named
// fixture. Nothing is faked until the sequence is pulled.
func (g *Generator) Generate(fixture string, schema *domain.Schema, quantity int, override Override, refs []*domain.Schema) (*Sequence, error) {
	if schema == nil {
		return nil, domain.ConfigurationError("generate", fixture, errors.New("nil schema"))
	}
	if quantity < 0 {
		return nil, domain.ConfigurationError("generate", fixture, fmt.Errorf("quantity must not be negative, got %d", quantity))
	}
	for i, r := range refs {
		if r == nil {
			return nil, domain.ConfigurationError("generate", fixture, fmt.Errorf("external reference %d is nil", i))
		}
	}
	if override.IsSequence() && override.Len() == 0 && quantity > 0 {
		return nil, domain.ConfigurationError("generate", fixture, errors.New("override sequence is empty"))
	}

	return &Sequence{
		fixture:  fixture,
		schema:   schema,
		refs:     refs,
		override: override,
		quantity: quantity,
		faker:    g.faker,
		rng:      rand.New(rand.NewSource(g.nextSeed())),
		now:      g.now(),
	}, nil
}

func (g *Generator) nextSeed() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seeds.Int63()
}
