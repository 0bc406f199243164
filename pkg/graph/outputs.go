package graph

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/aretw0/stepflow/pkg/domain"
)

// OutputEntry is one symbol table entry.
type OutputEntry struct {
	Owner string `json:"owner"`
	domain.Output
}

// Outputs is the symbol table of every output declared in a tree, in
// insertion order. It satisfies ref.Table.
type Outputs struct {
	m *orderedmap.OrderedMap[string, OutputEntry]
}

func newOutputs() *Outputs {
	return &Outputs{m: orderedmap.New[string, OutputEntry]()}
}

// add registers out under "__"+owner+out.Key and returns the key.
// A later declaration of the same key replaces the earlier one in place.
func (o *Outputs) add(keyOwner, owner string, out domain.Output) string {
	key := domain.OutputKey(keyOwner, out.Key)
	o.m.Set(key, OutputEntry{Owner: owner, Output: out})
	return key
}

// Get returns the entry stored under key.
func (o *Outputs) Get(key string) (OutputEntry, bool) {
	return o.m.Get(key)
}

// Len returns the number of entries.
func (o *Outputs) Len() int { return o.m.Len() }

// EachKey calls fn for every key, oldest first, until fn returns false.
func (o *Outputs) EachKey(fn func(key string) bool) {
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key) {
			return
		}
	}
}

// Each calls fn for every entry, oldest first, until fn returns false.
func (o *Outputs) Each(fn func(key string, e OutputEntry) bool) {
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

// Keys returns every key in insertion order.
func (o *Outputs) Keys() []string {
	keys := make([]string, 0, o.m.Len())
	o.EachKey(func(k string) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// MarshalJSON encodes the table as an object whose key order is the
// insertion order.
func (o *Outputs) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.m)
}
