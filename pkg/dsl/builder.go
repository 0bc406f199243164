package dsl

import (
	"fmt"
	"strconv"

	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/domain"
)

type counter struct{ n int }

func (c *counter) next() string {
	id := strconv.Itoa(c.n)
	c.n++
	return id
}

// container is an ordered list of steps: the top level, a branch arm or
// a loop body.
type container struct {
	seq   *counter
	steps []*StepBuilder
}

// Step appends an executor step.
func (c *container) Step(operator string) *StepBuilder {
	s := newStep(c.seq, operator)
	c.steps = append(c.steps, s)
	return s
}

// Branches appends a branches step.
func (c *container) Branches() *BranchesBuilder {
	s := c.Step(domain.BranchesOperator)
	return &BranchesBuilder{StepBuilder: s}
}

// Loop appends a loop step.
func (c *container) Loop() *LoopBuilder {
	s := c.Step(domain.LoopOperator)
	s.children = &container{seq: c.seq}
	return &LoopBuilder{StepBuilder: s}
}

func (c *container) build() []domain.Step {
	steps := make([]domain.Step, 0, len(c.steps))
	for _, s := range c.steps {
		steps = append(steps, s.Build())
	}
	return steps
}

// Builder manages the step tree construction.
type Builder struct {
	container
	trigger *StepBuilder
}

// New creates a new step tree builder.
func New() *Builder {
	return &Builder{container: container{seq: &counter{}}}
}

// Trigger sets the trigger step. It is always placed first, whenever it
// is declared. Calling Trigger again returns the existing builder.
func (b *Builder) Trigger(operator string) *StepBuilder {
	if b.trigger != nil {
		return b.trigger
	}
	b.trigger = newStep(b.seq, operator)
	return b.trigger
}

// Steps compiles the tree.
func (b *Builder) Steps() []domain.Step {
	steps := b.container.build()
	if b.trigger != nil {
		steps = append([]domain.Step{b.trigger.Build()}, steps...)
	}
	return steps
}

// Flow compiles the tree into a named flow.
func (b *Builder) Flow(id, name string) *domain.Flow {
	return &domain.Flow{ID: id, Name: name, Steps: b.Steps()}
}

// Build compiles the tree into an in-memory flow source holding one flow.
func (b *Builder) Build(id string) (*memory.Source, error) {
	src, err := memory.NewFromFlows(*b.Flow(id, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to build memory source: %w", err)
	}
	return src, nil
}
