package graph

import (
	"io"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/registry"
	"github.com/aretw0/stepflow/pkg/scope"
)

// Lookup finds operator entries; *registry.Registry satisfies it.
type Lookup interface {
	Lookup(cat registry.Category, operator string) (registry.Entry, bool)
}

// Option configures Build.
type Option func(*builder)

// WithTranslator sets the translator handed to dynamic output functions.
func WithTranslator(tr registry.Translator) Option {
	return func(b *builder) { b.translator = tr }
}

// WithGlobalOutputs replaces the process-wide variables exposed by the
// global scope node. Defaults to the Authorization token.
func WithGlobalOutputs(outputs ...domain.Output) Option {
	return func(b *builder) { b.globals = outputs }
}

// WithLogger sets the logger used for indexing diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) { b.logger = logger }
}

// Index is the result of Build.
type Index struct {
	Nodes map[string]*Node `json:"nodes"`
	// Order lists node ids in the order they were indexed.
	Order   []string `json:"order"`
	Outputs *Outputs `json:"outputs"`
}

// Lookup returns the node with the given id.
func (ix *Index) Lookup(id string) (*Node, bool) {
	n, ok := ix.Nodes[id]
	return n, ok
}

// Global returns the synthetic global scope node.
func (ix *Index) Global() *Node {
	return ix.Nodes[domain.GlobalScopeID]
}

// VisibleOutput is an output a node may reference.
type VisibleOutput struct {
	Key    string        `json:"key"`
	Owner  string        `json:"owner"`
	Ref    string        `json:"ref"`
	Output domain.Output `json:"output"`
}

// Visible lists the outputs a reference placed on node id may read, in
// symbol table order. It returns nil for unknown ids.
func (ix *Index) Visible(id string) []VisibleOutput {
	from, ok := ix.Nodes[id]
	if !ok {
		return nil
	}
	var out []VisibleOutput
	ix.Outputs.Each(func(key string, e OutputEntry) bool {
		owner, ok := ix.Nodes[e.Owner]
		if ok && scope.Visible(from.Path, owner.Path, owner.IsLoop()) {
			out = append(out, VisibleOutput{
				Key:    key,
				Owner:  e.Owner,
				Ref:    "{{" + key + "}}",
				Output: e.Output,
			})
		}
		return true
	})
	return out
}

type builder struct {
	reg        Lookup
	translator registry.Translator
	globals    []domain.Output
	logger     *slog.Logger

	ix  *Index
	seq int
}

// Build indexes steps. The first step is the trigger.
//
// Unknown operators are indexed with no outputs. Build fails only when the
// tree breaks an id invariant: an empty, duplicated or reserved id.
func Build(steps []domain.Step, reg Lookup, opts ...Option) (*Index, error) {
	b := &builder{
		reg:        reg,
		translator: registry.IdentityTranslator,
		globals:    []domain.Output{domain.AuthorizationOutput},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := checkIDs(steps); err != nil {
		return nil, err
	}

	b.ix = &Index{
		Nodes:   make(map[string]*Node),
		Outputs: newOutputs(),
	}

	// Global variables go first, keyed without an owner id.
	for _, out := range b.globals {
		b.ix.Outputs.add("", domain.GlobalScopeID, out)
	}

	if len(steps) > 0 {
		b.trigger(&steps[0])
		for i := 1; i < len(steps); i++ {
			b.step(&steps[i], domain.NewPath(i), "")
		}
	}

	b.put(&Node{
		ID:       domain.GlobalScopeID,
		Kind:     domain.KindGlobalVariable,
		Operator: domain.GlobalVariableOperator,
		Path:     domain.Path{},
		Seq:      -1,
		Outputs:  b.globals,
	})

	b.logger.Debug("step tree indexed",
		"nodes", len(b.ix.Nodes),
		"outputs", b.ix.Outputs.Len(),
	)
	return b.ix, nil
}

func (b *builder) lookup(cat registry.Category, operator string) *registry.Entry {
	if b.reg == nil || operator == "" {
		return nil
	}
	e, ok := b.reg.Lookup(cat, operator)
	if !ok {
		b.logger.Debug("operator not registered", "category", cat, "operator", operator)
		return nil
	}
	return &e
}

func (b *builder) put(n *Node) {
	b.ix.Nodes[n.ID] = n
	b.ix.Order = append(b.ix.Order, n.ID)
}

func (b *builder) register(n *Node) {
	for _, out := range n.Outputs {
		b.ix.Outputs.add(n.ID, n.ID, out)
	}
}

func (b *builder) outputs(entry *registry.Entry, step *domain.Step) []domain.Output {
	if entry == nil {
		return []domain.Output{}
	}
	outs := entry.ResolveOutputs(step, b.translator)
	if outs == nil {
		return []domain.Output{}
	}
	return outs
}

func (b *builder) next() int {
	n := b.seq
	b.seq++
	return n
}

func (b *builder) trigger(step *domain.Step) {
	entry := b.lookup(registry.Trigger, step.Operator)
	seq := b.next()
	node := &Node{
		ID:       step.ID,
		Kind:     domain.KindTrigger,
		Operator: step.Operator,
		Path:     domain.NewPath(0),
		Seq:      seq,
		Outputs:  b.outputs(entry, step),
		Step:     step,
		Entry:    entry,
	}
	b.put(node)
	b.register(node)

	ds := step.DataSource
	if entry == nil || !entry.Action.AllowDataSource || ds == nil || ds.ID == "" {
		return
	}
	dsEntry := b.lookup(registry.DataSource, ds.Operator)
	dsNode := &Node{
		ID:       ds.ID,
		Kind:     domain.KindDataSource,
		Operator: ds.Operator,
		Path:     domain.NewPath(0),
		Parent:   step.ID,
		Seq:      seq,
		Outputs:  b.outputs(dsEntry, ds),
		Step:     ds,
		Entry:    dsEntry,
	}
	b.put(dsNode)
	b.register(dsNode)
}

func (b *builder) step(step *domain.Step, path domain.Path, parent string) {
	switch {
	case step.IsBranches():
		b.branches(step, path, parent)
	case step.IsLoop():
		b.loop(step, path, parent)
	default:
		entry := b.lookup(registry.Executor, step.Operator)
		node := &Node{
			ID:       step.ID,
			Kind:     domain.KindExecutor,
			Operator: step.Operator,
			Path:     path,
			Parent:   parent,
			Seq:      b.next(),
			Outputs:  b.outputs(entry, step),
			Step:     step,
			Entry:    entry,
		}
		b.put(node)
		b.register(node)
	}
}

func (b *builder) branches(step *domain.Step, path domain.Path, parent string) {
	b.put(&Node{
		ID:       step.ID,
		Kind:     domain.KindBranches,
		Operator: step.Operator,
		Path:     path,
		Parent:   parent,
		Seq:      -1,
		Outputs:  []domain.Output{},
		Step:     step,
	})

	for bi := range step.Branches {
		branch := &step.Branches[bi]
		armPath := path.Append(domain.BranchArm(bi))
		b.put(&Node{
			ID:      branch.ID,
			Kind:    domain.KindBranch,
			Path:    armPath,
			Parent:  step.ID,
			Seq:     b.next(),
			Outputs: []domain.Output{},
			Branch:  branch,
		})

		for gi, group := range branch.Conditions {
			for ci := range group {
				cond := &branch.Conditions[gi][ci]
				b.put(&Node{
					ID:       cond.ID,
					Kind:     domain.KindComparator,
					Operator: cond.Operator,
					Path:     armPath.Append(domain.ConditionScope(), domain.Index(gi), domain.Index(ci)),
					Parent:   branch.ID,
					Seq:      -1,
					Outputs:  []domain.Output{},
					Step:     cond,
					Entry:    b.lookup(registry.Comparator, cond.Operator),
				})
			}
		}

		for i := range branch.Steps {
			b.step(&branch.Steps[i], armPath.Append(domain.Index(i)), branch.ID)
		}
	}
}

// loopField is one custom per-iteration field declared on a loop.
type loopField struct {
	Key  string `mapstructure:"key"`
	Name string `mapstructure:"name"`
}

func (b *builder) loop(step *domain.Step, path domain.Path, parent string) {
	outputs := []domain.Output{
		{Key: ".value", Name: "value", Type: "any", IsCustom: true},
		{Key: ".index", Name: "index", Type: "number", IsCustom: true},
	}
	if raw, ok := step.Parameters["outputs"].([]any); ok {
		for _, item := range raw {
			var f loopField
			if err := mapstructure.Decode(item, &f); err != nil || f.Key == "" {
				continue
			}
			name := f.Name
			if name == "" {
				name = f.Key
			}
			outputs = append(outputs, domain.Output{
				Key:      ".outputs." + f.Key,
				Name:     name,
				Type:     "array",
				IsCustom: true,
			})
		}
	}

	node := &Node{
		ID:       step.ID,
		Kind:     domain.KindLoop,
		Operator: step.Operator,
		Path:     path,
		Parent:   parent,
		Seq:      b.next(),
		Outputs:  outputs,
		Step:     step,
	}
	b.put(node)
	b.register(node)

	for i := range step.Steps {
		b.step(&step.Steps[i], path.Append(domain.Index(i)), step.ID)
	}
}
