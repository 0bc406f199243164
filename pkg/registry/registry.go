package registry

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the operators known to the host, one table per category.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[Category]map[string]Entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Category]map[string]Entry),
	}
}

// Register adds an operator to the registry.
// If the operator already exists in that category, it is overwritten.
func (r *Registry) Register(cat Category, operator string, entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.entries[cat]
	if !ok {
		table = make(map[string]Entry)
		r.entries[cat] = table
	}
	table[operator] = entry
}

// Lookup finds an operator in the given category.
func (r *Registry) Lookup(cat Category, operator string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[cat][operator]
	return e, ok
}

// MustLookup is like Lookup but returns an error naming the missing operator.
func (r *Registry) MustLookup(cat Category, operator string) (Entry, error) {
	e, ok := r.Lookup(cat, operator)
	if !ok {
		return Entry{}, fmt.Errorf("%s not found: %s", cat, operator)
	}
	return e, nil
}

// Operators lists the operator ids of a category in sorted order.
func (r *Registry) Operators(cat Category) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries[cat]))
	for id := range r.entries[cat] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered operators across all categories.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, table := range r.entries {
		n += len(table)
	}
	return n
}
