package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/stepflow/pkg/registry"
)

// DefaultTimeout bounds one external validation call.
const DefaultTimeout = 10 * time.Second

// EnvPrefix prefixes the environment variables carrying parameters.
const EnvPrefix = "STEPFLOW_PARAM_"

// Runner runs external commands as operator validate hooks.
// Only registered commands run (allow-listing).
type Runner struct {
	registry map[string]RegisteredProcess
	baseDir  string
	timeout  time.Duration
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Category registry.Category
	Command  string
	Args     []string
	Env      map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithValidators populates the allow-list from a loaded config.
// Entries without a category default to executors.
func WithValidators(validators map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for op, v := range validators {
			cat := registry.Executor
			if v.Category != "" {
				if parsed, err := registry.ParseCategory(v.Category); err == nil {
					cat = parsed
				}
			}
			r.registry[op] = RegisteredProcess{Category: cat, Command: v.Command, Args: v.Args, Env: v.Environment}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout bounds each call. Zero disables the bound.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list for operator.
func (r *Runner) Register(cat registry.Category, operator string, command string, args ...string) {
	r.registry[operator] = RegisteredProcess{
		Category: cat,
		Command:  command,
		Args:     args,
	}
}

// Operators lists the registered operators in sorted order.
func (r *Runner) Operators() []string {
	ops := make([]string, 0, len(r.registry))
	for op := range r.registry {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// verdict is the optional JSON a validator prints on stdout.
type verdict struct {
	Valid  *bool  `json:"valid"`
	Reason string `json:"reason"`
}

// Validate runs the command registered for operator.
//
// The parameters are written to stdin as JSON and exported one per
// variable as STEPFLOW_PARAM_<KEY>. Exit status 0 means valid and 1 means
// invalid; a JSON object {"valid": bool, "reason": "..."} on stdout
// overrides a zero exit. Any other failure is returned as an error.
func (r *Runner) Validate(ctx context.Context, operator string, parameters map[string]any) (bool, error) {
	proc, ok := r.registry[operator]
	if !ok {
		return false, fmt.Errorf("process validator not registered: %s", operator)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	input, err := json.Marshal(parameters)
	if err != nil {
		return false, fmt.Errorf("failed to encode parameters: %w", err)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.WaitDelay = time.Second
	cmd.Stdin = bytes.NewReader(input)
	cmd.Env = append(cmd.Environ(), environment(proc.Env, parameters)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return false, nil
		}
		return false, fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	trimmed := strings.TrimSpace(stdout.String())
	if strings.HasPrefix(trimmed, "{") {
		var v verdict
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil && v.Valid != nil {
			if !*v.Valid && v.Reason != "" {
				return false, errors.New(v.Reason)
			}
			return *v.Valid, nil
		}
	}
	return true, nil
}

// Hook returns a registry.ValidateFunc bound to operator.
func (r *Runner) Hook(operator string) registry.ValidateFunc {
	return func(ctx context.Context, parameters map[string]any) (bool, error) {
		return r.Validate(ctx, operator, parameters)
	}
}

// Install sets the validate hook of every registered operator, adding
// operators the registry does not know yet. An existing hook, such as a
// catalog schema check, runs first and the command only runs once it
// accepts.
func (r *Runner) Install(reg *registry.Registry) {
	for _, op := range r.Operators() {
		proc := r.registry[op]
		entry, _ := reg.Lookup(proc.Category, op)
		entry.Action.Validate = chain(entry.Action.Validate, r.Hook(op))
		reg.Register(proc.Category, op, entry)
	}
}

func chain(first, then registry.ValidateFunc) registry.ValidateFunc {
	if first == nil {
		return then
	}
	return func(ctx context.Context, parameters map[string]any) (bool, error) {
		ok, err := first(ctx, parameters)
		if err != nil || !ok {
			return false, err
		}
		return then(ctx, parameters)
	}
}

func environment(static map[string]string, parameters map[string]any) []string {
	env := make([]string, 0, len(static)+len(parameters))
	for k, v := range static {
		env = append(env, k+"="+v)
	}
	for k, v := range parameters {
		var val string
		switch v.(type) {
		case string, int, int64, float64, bool:
			val = fmt.Sprintf("%v", v)
		case nil:
			val = ""
		default:
			if data, err := json.Marshal(v); err == nil {
				val = string(data)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, fmt.Sprintf("%s%s=%s", EnvPrefix, strings.ToUpper(k), val))
	}
	return env
}
