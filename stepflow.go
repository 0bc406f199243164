package stepflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/stepflow/internal/compiler"
	loamAdapter "github.com/aretw0/stepflow/pkg/adapters/loam"
	"github.com/aretw0/stepflow/pkg/adapters/process"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/graph"
	"github.com/aretw0/stepflow/pkg/ports"
	"github.com/aretw0/stepflow/pkg/registry"
	"github.com/aretw0/stepflow/pkg/validate"
)

// ErrNoSource is returned by flow lookups on an engine without a flow source.
var ErrNoSource = errors.New("no flow source configured")

// Engine is the high-level entry point for the stepflow library.
// It owns an operator registry and builds an index and a validation pass
// for each tree it is given.
type Engine struct {
	registry   *registry.Registry
	source     ports.FlowSource
	flowDir    string
	catalogs   []string
	validators string
	translator registry.Translator
	globals    []domain.Output
	hooks      []validate.Hooks
	valOpts    []validate.Option
	logger     *slog.Logger
	parser     *compiler.Parser
	validator  *validate.Validator
	Name       string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRegistry uses reg instead of an empty registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithCatalog installs the operator catalog at path into the registry.
// It may be given several times.
func WithCatalog(path string) Option {
	return func(e *Engine) {
		e.catalogs = append(e.catalogs, path)
	}
}

// WithProcessValidators attaches the external validate commands listed in
// the validators file at path. They run after catalogs are installed; an
// operator with a catalog parameter schema is checked against the schema
// before its command runs.
func WithProcessValidators(path string) Option {
	return func(e *Engine) {
		e.validators = path
	}
}

// WithFlowSource injects a custom FlowSource.
func WithFlowSource(src ports.FlowSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithFlowDir reads flows from a loam repository at dir.
// Ignored when WithFlowSource is also given.
func WithFlowDir(dir string) Option {
	return func(e *Engine) {
		e.flowDir = dir
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTranslator sets the translator used for output display names.
func WithTranslator(tr registry.Translator) Option {
	return func(e *Engine) {
		e.translator = tr
	}
}

// WithGlobalOutputs adds host-provided outputs to the global scope.
func WithGlobalOutputs(outputs ...domain.Output) Option {
	return func(e *Engine) {
		e.globals = append(e.globals, outputs...)
	}
}

// WithHooks registers validator observability hooks. Hooks given in
// several calls are all invoked.
func WithHooks(h validate.Hooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, h)
	}
}

// WithValidatorOptions passes options through to the validator.
func WithValidatorOptions(opts ...validate.Option) Option {
	return func(e *Engine) {
		e.valOpts = append(e.valOpts, opts...)
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{parser: compiler.NewParser()}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.registry == nil {
		eng.registry = registry.NewRegistry()
	}

	for _, path := range eng.catalogs {
		cat, err := registry.LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		if err := cat.Install(eng.registry); err != nil {
			return nil, fmt.Errorf("failed to install catalog %s: %w", path, err)
		}
		eng.logger.Debug("catalog installed", "path", path, "operators", eng.registry.Len())
	}

	if eng.validators != "" {
		cfg, err := process.LoadValidators(eng.validators)
		if err != nil {
			return nil, err
		}
		runner := process.NewRunner(process.WithValidators(cfg), process.WithBaseDir(filepath.Dir(eng.validators)))
		runner.Install(eng.registry)
		eng.logger.Debug("process validators installed", "path", eng.validators, "operators", runner.Operators())
	}

	if eng.source == nil && eng.flowDir != "" {
		absPath, err := filepath.Abs(eng.flowDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		src, err := loamAdapter.Open(absPath)
		if err != nil {
			return nil, err
		}
		eng.source = src
		eng.Name = filepath.Base(absPath)
	}

	if eng.Name != "" {
		eng.logger = eng.logger.With("flows", eng.Name)
	}

	valOpts := []validate.Option{validate.WithLogger(eng.logger)}
	if len(eng.hooks) > 0 {
		valOpts = append(valOpts, validate.WithHooks(validate.ComposeHooks(eng.hooks...)))
	}
	eng.validator = validate.New(append(valOpts, eng.valOpts...)...)

	return eng, nil
}

// Report is the outcome of validating one tree.
type Report struct {
	Flow   *domain.Flow    `json:"flow,omitempty"`
	Index  *graph.Index    `json:"index"`
	Result validate.Result `json:"result"`
}

// OK reports whether the tree passed validation.
func (r *Report) OK() bool { return r.Result.OK }

// Registry returns the operator registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Source returns the configured flow source, or nil.
func (e *Engine) Source() ports.FlowSource { return e.source }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Index builds the node index and symbol table for steps.
func (e *Engine) Index(steps []domain.Step) (*graph.Index, error) {
	opts := []graph.Option{graph.WithLogger(e.logger)}
	if e.translator != nil {
		opts = append(opts, graph.WithTranslator(e.translator))
	}
	if len(e.globals) > 0 {
		opts = append(opts, graph.WithGlobalOutputs(e.globals...))
	}
	return graph.Build(steps, e.registry, opts...)
}

// Validate indexes steps and runs one validation pass. The error is
// non-nil only when the tree cannot be indexed (a *graph.IndexError for
// duplicate, empty or reserved ids); node failures and too few steps are
// reported in the Report.
func (e *Engine) Validate(ctx context.Context, steps []domain.Step) (*Report, error) {
	ix, err := e.Index(steps)
	if err != nil {
		return nil, err
	}
	return &Report{
		Index:  ix,
		Result: e.validator.Validate(ctx, steps, ix),
	}, nil
}

// ParseSteps decodes a JSON or YAML flow document.
func (e *Engine) ParseSteps(data []byte) (*domain.Flow, error) {
	return e.parser.Parse(data)
}

// Check parses a flow document and validates it.
func (e *Engine) Check(ctx context.Context, data []byte) (*Report, error) {
	flow, err := e.ParseSteps(data)
	if err != nil {
		return nil, err
	}
	rep, err := e.Validate(ctx, flow.Steps)
	if err != nil {
		return nil, err
	}
	rep.Flow = flow
	return rep, nil
}

// LoadFlow fetches a flow from the configured source.
func (e *Engine) LoadFlow(ctx context.Context, id string) (*domain.Flow, error) {
	if e.source == nil {
		return nil, ErrNoSource
	}
	return e.source.GetFlow(ctx, id)
}

// ListFlows lists the flows of the configured source.
func (e *Engine) ListFlows(ctx context.Context) ([]string, error) {
	if e.source == nil {
		return nil, ErrNoSource
	}
	return e.source.ListFlows(ctx)
}

// ValidateFlow loads a flow from the configured source and validates it.
func (e *Engine) ValidateFlow(ctx context.Context, id string) (*Report, error) {
	flow, err := e.LoadFlow(ctx, id)
	if err != nil {
		return nil, err
	}
	rep, err := e.Validate(ctx, flow.Steps)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", id, err)
	}
	rep.Flow = flow
	return rep, nil
}

// Resolve binds a reference as if it were written on step fromID.
func (e *Engine) Resolve(steps []domain.Step, reference, fromID string) (graph.Resolution, error) {
	ix, err := e.Index(steps)
	if err != nil {
		return graph.Resolution{}, err
	}
	return ix.Resolve(reference, fromID)
}

// Watch reports changed flow ids when the source supports it.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if e.source == nil {
		return nil, ErrNoSource
	}
	w, ok := e.source.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("flow source does not support watching")
	}
	return w.Watch(ctx)
}
