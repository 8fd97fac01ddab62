// Package memory is an in-process gateway. It is the default target for
// tests and dry runs.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/infra/targets"
)

var ErrClosed = errors.New("memory target closed")

type MemoryTarget struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.Record
	closed      bool
}

func NewMemoryTarget() *MemoryTarget {
	return &MemoryTarget{collections: make(map[string]map[string]domain.Record)}
}

func (t *MemoryTarget) Insert(ctx context.Context, collection string, records []domain.Record) (*domain.InsertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := targets.Assign(records)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrClosed
	}
	coll, ok := t.collections[collection]
	if !ok {
		coll = make(map[string]domain.Record)
		t.collections[collection] = coll
	}
	for _, d := range docs {
		coll[d.ID] = d.Record.Clone()
	}
	return targets.Result(docs), nil
}

func (t *MemoryTarget) Remove(ctx context.Context, collection string, ids []string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, ErrClosed
	}
	coll := t.collections[collection]
	var n int64
	for _, id := range ids {
		if _, ok := coll[id]; ok {
			delete(coll, id)
			n++
		}
	}
	return n, nil
}

// Get returns a copy of the stored record.
func (t *MemoryTarget) Get(collection, id string) (domain.Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.collections[collection][id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

func (t *MemoryTarget) Count(collection string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.collections[collection])
}

func (t *MemoryTarget) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *MemoryTarget) ServerVersion(ctx context.Context) (string, error) {
	return "memory", nil
}
