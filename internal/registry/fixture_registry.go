package registry

import (
	"sort"
	"sync"

	"github.com/mmrzaf/fixturegen/internal/domain"
)

// FixtureRegistry holds the fixture schemas known to a factory, keyed by
// fixture name. Registering an existing name replaces its schema.
type FixtureRegistry struct {
	mu       sync.RWMutex
	fixtures map[string]*domain.Schema
}

func NewFixtureRegistry() *FixtureRegistry {
	return &FixtureRegistry{
		fixtures: make(map[string]*domain.Schema),
	}
}

// Register stores schema under name and reports whether it replaced one.
func (r *FixtureRegistry) Register(name string, schema *domain.Schema) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, existed := r.fixtures[name]
	r.fixtures[name] = schema
	return existed
}

// Merge registers every entry of fixtures and returns the names that
// replaced an existing entry, sorted.
func (r *FixtureRegistry) Merge(fixtures map[string]*domain.Schema) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var replaced []string
	for name, schema := range fixtures {
		if _, ok := r.fixtures[name]; ok {
			replaced = append(replaced, name)
		}
		r.fixtures[name] = schema
	}
	sort.Strings(replaced)
	return replaced
}

func (r *FixtureRegistry) Get(name string) (*domain.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.fixtures[name]
	return s, ok
}

// All returns a snapshot copy of the name to schema mapping.
func (r *FixtureRegistry) All() map[string]*domain.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*domain.Schema, len(r.fixtures))
	for k, v := range r.fixtures {
		out[k] = v
	}
	return out
}

func (r *FixtureRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fixtures))
	for name := range r.fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *FixtureRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fixtures)
}
