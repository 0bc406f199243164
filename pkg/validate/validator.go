package validate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/graph"
	"github.com/aretw0/stepflow/pkg/registry"
)

// Validator runs validation passes. It is safe for concurrent use; every
// call to Validate is an independent pass.
type Validator struct {
	logger         *slog.Logger
	hooks          Hooks
	maxConcurrency int
	minSteps       int
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// WithHooks registers observability callbacks.
func WithHooks(h Hooks) Option {
	return func(v *Validator) { v.hooks = h }
}

// WithMaxConcurrency caps how many siblings are checked at once within one
// sibling group. Zero or less means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(v *Validator) { v.maxConcurrency = n }
}

// WithMinSteps requires the top-level flow to have at least n steps,
// trigger included.
func WithMinSteps(n int) Option {
	return func(v *Validator) { v.minSteps = n }
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks steps against ix, which must have been built from the
// same tree. It always completes; failures are reported in the Result.
func (v *Validator) Validate(ctx context.Context, steps []domain.Step, ix *graph.Index) Result {
	p := &pass{
		v:      v,
		ctx:    ctx,
		ix:     ix,
		id:     uuid.NewString(),
		errors: make(map[ErrorKey]domain.ErrorKind),
	}
	start := time.Now()
	if v.hooks.OnPassStart != nil {
		v.hooks.OnPassStart(ctx, &PassEvent{EventBase: p.base(EventPassStart), Steps: len(steps)})
	}
	v.logger.Debug("validation started", "pass", p.id, "steps", len(steps))

	p.all(steps)

	res := Result{Errors: p.errors}
	if v.minSteps > 0 && len(steps) < v.minSteps {
		res.Err = fmt.Errorf("%w: got %d, need %d", domain.ErrTooFewSteps, len(steps), v.minSteps)
	}
	res.OK = len(res.Errors) == 0 && res.Err == nil

	elapsed := time.Since(start)
	if v.hooks.OnPassEnd != nil {
		v.hooks.OnPassEnd(ctx, &PassEvent{
			EventBase: p.base(EventPassEnd),
			Steps:     len(steps),
			OK:        res.OK,
			Errors:    len(res.Errors),
			Duration:  elapsed,
		})
	}
	v.logger.Debug("validation finished",
		"pass", p.id,
		"ok", res.OK,
		"errors", len(res.Errors),
		"duration", elapsed,
	)
	return res
}

// pass holds the state of one validation run.
type pass struct {
	v   *Validator
	ctx context.Context
	ix  *graph.Index
	id  string

	mu     sync.Mutex
	errors map[ErrorKey]domain.ErrorKind
}

func (p *pass) base(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t, PassID: p.id}
}

// mark records a failure. The first record for a key wins.
func (p *pass) mark(key ErrorKey, kind domain.ErrorKind) {
	p.mu.Lock()
	if _, exists := p.errors[key]; exists {
		p.mu.Unlock()
		return
	}
	p.errors[key] = kind
	p.mu.Unlock()

	p.v.logger.Debug("node invalid", "pass", p.id, "key", key, "kind", kind)
	if p.v.hooks.OnInvalid != nil {
		p.v.hooks.OnInvalid(p.ctx, &InvalidEvent{EventBase: p.base(EventInvalid), Key: key, Kind: kind})
	}
}

// fanOut runs fn for every index in [0, n) concurrently and waits for all.
func (p *pass) fanOut(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	var g errgroup.Group
	if p.v.maxConcurrency > 0 {
		g.SetLimit(p.v.maxConcurrency)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

func (p *pass) all(steps []domain.Step) {
	p.fanOut(len(steps), func(i int) { p.step(&steps[i]) })
}

func (p *pass) step(step *domain.Step) {
	switch {
	case step.IsBranches():
		p.branches(step)
	case step.IsLoop():
		p.loop(step)
	default:
		p.executable(step)
	}
}

func (p *pass) branches(step *domain.Step) {
	p.fanOut(len(step.Branches), func(i int) {
		branch := &step.Branches[i]
		if !p.conditions(branch) {
			p.mark(ConditionsKey(branch.ID), domain.ErrInvalidParameters)
		}
		p.all(branch.Steps)
	})
}

// conditions checks condition groups in order and stops at the first
// failing condition.
func (p *pass) conditions(branch *domain.Branch) bool {
	for _, group := range branch.Conditions {
		for i := range group {
			cond := &group[i]
			node := p.node(cond.ID)
			if cond.Operator == "" || !p.parameters(cond, node) || !p.hook(cond, node) {
				return false
			}
		}
	}
	return true
}

func (p *pass) loop(step *domain.Step) {
	if !p.parameters(step, p.node(step.ID)) {
		p.mark(StepKey(step.ID), domain.ErrInvalidParameters)
	}
	p.all(step.Steps)
}

func (p *pass) executable(step *domain.Step) {
	if step.Operator == "" {
		p.mark(StepKey(step.ID), domain.ErrInvalidOperator)
		return
	}
	node := p.node(step.ID)
	if !p.parameters(step, node) || !p.hook(step, node) {
		p.mark(StepKey(step.ID), domain.ErrInvalidParameters)
		return
	}

	ds := step.DataSource
	if ds == nil {
		return
	}
	// A data source that was not indexed is checked from its parent's position.
	dsNode, ok := p.ix.Lookup(ds.ID)
	if !ok {
		dsNode = &graph.Node{ID: ds.ID, Kind: domain.KindDataSource, Path: pathOf(node)}
	}
	if ds.Operator == "" || !p.parameters(ds, dsNode) || !p.hook(ds, dsNode) {
		p.mark(StepKey(step.ID), domain.ErrInvalidParameters)
	}
}

func (p *pass) node(id string) *graph.Node {
	n, ok := p.ix.Lookup(id)
	if !ok {
		return nil
	}
	return n
}

func pathOf(n *graph.Node) domain.Path {
	if n == nil {
		return nil
	}
	return n.Path
}

// hook runs the node's external validate function. Errors and panics
// count as a failed check.
func (p *pass) hook(step *domain.Step, node *graph.Node) bool {
	if node == nil {
		return true
	}
	fn := node.Validator()
	if fn == nil {
		return true
	}
	return p.call(fn, step)
}

func (p *pass) call(fn registry.ValidateFunc, step *domain.Step) (ok bool) {
	start := time.Now()
	ev := &HookEvent{StepID: step.ID, Operator: step.Operator}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			ev.Panicked = true
			ev.Error = fmt.Sprint(r)
			p.v.logger.Warn("validate hook panicked", "pass", p.id, "step", step.ID, "operator", step.Operator, "panic", r)
		}
		ev.OK = ok
		ev.Duration = time.Since(start)
		ev.EventBase = p.base(EventHookCall)
		if p.v.hooks.OnHookCall != nil {
			p.v.hooks.OnHookCall(p.ctx, ev)
		}
	}()

	valid, err := fn(p.ctx, step.Parameters)
	if err != nil {
		ev.Error = err.Error()
		p.v.logger.Debug("validate hook rejected parameters", "pass", p.id, "step", step.ID, "error", err)
		return false
	}
	return valid
}
