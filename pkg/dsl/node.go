package dsl

import (
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ref"
)

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step domain.Step
	seq  *counter

	ds       *StepBuilder
	branches []*BranchBuilder
	children *container
}

func newStep(seq *counter, operator string) *StepBuilder {
	return &StepBuilder{
		step: domain.Step{ID: seq.next(), Operator: operator},
		seq:  seq,
	}
}

// ID overrides the generated id.
func (s *StepBuilder) ID(id string) *StepBuilder {
	s.step.ID = id
	return s
}

// Title sets the display title.
func (s *StepBuilder) Title(title string) *StepBuilder {
	s.step.Title = title
	return s
}

// Param sets one parameter value.
func (s *StepBuilder) Param(key string, value any) *StepBuilder {
	if s.step.Parameters == nil {
		s.step.Parameters = make(map[string]any)
	}
	s.step.Parameters[key] = value
	return s
}

// Params merges values into the parameters.
func (s *StepBuilder) Params(values map[string]any) *StepBuilder {
	for k, v := range values {
		s.Param(k, v)
	}
	return s
}

// DataSource attaches a data source step and returns its builder.
func (s *StepBuilder) DataSource(operator string) *StepBuilder {
	s.ds = newStep(s.seq, operator)
	return s.ds
}

// Out returns a reference to one of this step's outputs.
func (s *StepBuilder) Out(key string) string {
	return ref.Format(s.step.ID, key)
}

// Build returns the step and everything nested under it.
func (s *StepBuilder) Build() domain.Step {
	step := s.step
	if s.step.Parameters != nil {
		step.Parameters = make(map[string]any, len(s.step.Parameters))
		for k, v := range s.step.Parameters {
			step.Parameters[k] = v
		}
	}
	if s.ds != nil {
		ds := s.ds.Build()
		step.DataSource = &ds
	}
	if len(s.branches) > 0 {
		step.Branches = make([]domain.Branch, 0, len(s.branches))
		for _, br := range s.branches {
			step.Branches = append(step.Branches, br.build())
		}
	}
	if s.children != nil {
		step.Steps = s.children.build()
	}
	return step
}

// BranchesBuilder configures a branches step.
type BranchesBuilder struct {
	*StepBuilder
}

// Branch appends a new arm.
func (b *BranchesBuilder) Branch() *BranchBuilder {
	br := &BranchBuilder{
		id:        b.seq.next(),
		container: container{seq: b.seq},
	}
	b.branches = append(b.branches, br)
	return br
}

// LoopBuilder configures a loop step and its body.
type LoopBuilder struct {
	*StepBuilder
}

// Step appends a step to the loop body.
func (l *LoopBuilder) Step(operator string) *StepBuilder { return l.children.Step(operator) }

// Branches appends a branches step to the loop body.
func (l *LoopBuilder) Branches() *BranchesBuilder { return l.children.Branches() }

// Loop appends a nested loop to the loop body.
func (l *LoopBuilder) Loop() *LoopBuilder { return l.children.Loop() }

// BranchBuilder configures one arm of a branches step.
type BranchBuilder struct {
	container
	id     string
	groups []*GroupBuilder
}

// ID overrides the generated arm id.
func (b *BranchBuilder) ID(id string) *BranchBuilder {
	b.id = id
	return b
}

// Group opens a new condition group. Groups are alternatives; the
// conditions inside one group must all hold.
func (b *BranchBuilder) Group() *GroupBuilder {
	g := &GroupBuilder{seq: b.seq}
	b.groups = append(b.groups, g)
	return g
}

func (b *BranchBuilder) build() domain.Branch {
	br := domain.Branch{ID: b.id, Steps: b.container.build()}
	for _, g := range b.groups {
		group := make(domain.ConditionGroup, 0, len(g.conds))
		for _, c := range g.conds {
			group = append(group, c.Build())
		}
		br.Conditions = append(br.Conditions, group)
	}
	return br
}

// GroupBuilder collects the conditions of one group.
type GroupBuilder struct {
	seq   *counter
	conds []*StepBuilder
}

// Cond appends a comparator condition.
func (g *GroupBuilder) Cond(operator string) *StepBuilder {
	c := newStep(g.seq, operator)
	g.conds = append(g.conds, c)
	return c
}
