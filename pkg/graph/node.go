package graph

import (
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/registry"
)

// Node is the indexed view of one step, branch or condition.
type Node struct {
	ID       string          `json:"id"`
	Kind     domain.NodeKind `json:"kind"`
	Operator string          `json:"operator,omitempty"`
	Path     domain.Path     `json:"path"`
	// Parent is the id of the enclosing trigger, branch or loop.
	Parent string `json:"parent,omitempty"`
	// Seq is the execution sequence number; -1 for nodes that never run
	// on their own (Branches containers, conditions, the global scope).
	Seq     int             `json:"seq"`
	Outputs []domain.Output `json:"outputs"`

	Step   *domain.Step   `json:"-"`
	Branch *domain.Branch `json:"-"`
	// Entry is nil when the operator is structural or unknown.
	Entry *registry.Entry `json:"-"`
}

// IsLoop reports whether the node's step is a loop.
func (n *Node) IsLoop() bool { return n.Kind == domain.KindLoop }

// Known reports whether the node's operator was found in the registry.
// Structural nodes are always known.
func (n *Node) Known() bool {
	switch n.Kind {
	case domain.KindBranches, domain.KindBranch, domain.KindLoop, domain.KindGlobalVariable:
		return true
	}
	return n.Entry != nil
}

// Validator returns the node's external parameter check, if any.
func (n *Node) Validator() registry.ValidateFunc {
	if n.Entry == nil {
		return nil
	}
	return n.Entry.Action.Validate
}
