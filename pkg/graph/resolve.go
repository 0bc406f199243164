package graph

import (
	"errors"
	"fmt"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ref"
	"github.com/aretw0/stepflow/pkg/scope"
)

// ErrNotReference is returned by Resolve for strings that are not a
// well-formed {{__...}} reference.
var ErrNotReference = errors.New("not a reference")

// Resolution describes what a reference binds to and whether a given
// node may use it.
type Resolution struct {
	Ref      string `json:"ref"`
	Resolved bool   `json:"resolved"`
	// Key is the matched symbol table key.
	Key     string `json:"key,omitempty"`
	SubPath string `json:"subPath,omitempty"`
	// Owner is the node the reference is scoped to.
	Owner   string         `json:"owner,omitempty"`
	Output  *domain.Output `json:"output,omitempty"`
	Visible bool           `json:"visible"`
}

// Resolve parses raw and resolves it as if it were written in the
// parameters of node fromID.
func (ix *Index) Resolve(raw, fromID string) (Resolution, error) {
	r, ok := ref.Parse(raw)
	if !ok {
		return Resolution{Ref: raw}, fmt.Errorf("%w: %q", ErrNotReference, raw)
	}
	from, ok := ix.Lookup(fromID)
	if !ok {
		return Resolution{Ref: raw}, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, fromID)
	}
	return ix.ResolveFrom(r, from), nil
}

// ResolveFrom binds r in the symbol table and checks that from may see
// the node r is scoped to. A nil from sees nothing.
func (ix *Index) ResolveFrom(r ref.Ref, from *Node) Resolution {
	res := Resolution{Ref: r.Raw, Owner: r.ScopeID()}

	m, ok := ref.Resolve(r, ix.Outputs)
	if !ok {
		return res
	}
	res.Resolved = true
	res.Key = m.Key
	res.SubPath = m.SubPath
	if e, ok := ix.Outputs.Get(m.Key); ok {
		out := e.Output
		res.Output = &out
	}

	if from == nil {
		return res
	}
	target, ok := ix.Lookup(r.ScopeID())
	if !ok {
		return res
	}
	res.Visible = scope.Visible(from.Path, target.Path, target.IsLoop())
	return res
}
