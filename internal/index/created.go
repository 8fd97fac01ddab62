// Package index tracks the identifiers a factory has persisted, per fixture
// name, so teardown removes exactly those records.
package index

import "sync"

// CreatedIndex maps fixture names to identifiers in the order the gateway
// returned them. Identifiers are never deduplicated or reordered.
type CreatedIndex struct {
	mu  sync.Mutex
	ids map[string][]string
}

func New() *CreatedIndex {
	return &CreatedIndex{ids: make(map[string][]string)}
}

// Record appends ids to name's list, creating it if absent.
func (c *CreatedIndex) Record(name string, ids []string) {
	if len(ids) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[name] = append(c.ids[name], ids...)
}

// Get returns a copy of the identifiers recorded for name.
func (c *CreatedIndex) Get(name string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.ids[name]...)
}

// All returns a deep copy of the index.
func (c *CreatedIndex) All() map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][]string, len(c.ids))
	for name, ids := range c.ids {
		out[name] = append([]string{}, ids...)
	}
	return out
}

// Release drops the given identifiers from name's list, one occurrence per
// entry in ids. Identifiers recorded after ids was read, and identifiers
// another caller already released, are left alone.
func (c *CreatedIndex) Release(name string, ids []string) {
	if len(ids) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := make(map[string]int, len(ids))
	for _, id := range ids {
		pending[id]++
	}
	current := c.ids[name]
	kept := make([]string, 0, len(current))
	for _, id := range current {
		if pending[id] > 0 {
			pending[id]--
			continue
		}
		kept = append(kept, id)
	}
	if len(kept) == 0 {
		delete(c.ids, name)
		return
	}
	c.ids[name] = kept
}

// Restore appends a previously saved snapshot.
func (c *CreatedIndex) Restore(snapshot map[string][]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, ids := range snapshot {
		if len(ids) == 0 {
			continue
		}
		c.ids[name] = append(c.ids[name], ids...)
	}
}
