package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ports"
	"github.com/aretw0/stepflow/pkg/ref"
)

// Mask replaces redacted parameter values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.FlowStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks, before saving, the
// parameter values whose key matches one of the patterns. Nested maps are
// masked too. References are kept so the stored flow still indexes.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.FlowStore) ports.FlowStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, id string, flow *domain.Flow) error {
	// Work on a copy: the caller keeps validating the original.
	cloned := *flow
	cloned.Steps = cloneSteps(flow.Steps)

	domain.Walk(cloned.Steps, func(step, _ *domain.Step) bool {
		m.mask(step.Parameters)
		return true
	})

	return m.next.Save(ctx, id, &cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, id string) (*domain.Flow, error) {
	return m.next.Load(ctx, id)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactMiddleware) mask(params map[string]any) {
	for k, v := range params {
		if s, ok := v.(string); ok {
			if _, isRef := ref.Parse(s); isRef {
				continue
			}
		}
		if m.matches(k) {
			params[k] = Mask
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			m.mask(sub)
		}
	}
}

func (m *redactMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// cloneSteps deep copies the tree, parameter maps included.
func cloneSteps(steps []domain.Step) []domain.Step {
	if steps == nil {
		return nil
	}
	out := make([]domain.Step, len(steps))
	for i, s := range steps {
		out[i] = cloneStep(s)
	}
	return out
}

func cloneStep(s domain.Step) domain.Step {
	s.Parameters = deepCopyMap(s.Parameters)
	if s.DataSource != nil {
		ds := cloneStep(*s.DataSource)
		s.DataSource = &ds
	}
	if s.Branches != nil {
		branches := make([]domain.Branch, len(s.Branches))
		for i, b := range s.Branches {
			if b.Conditions != nil {
				groups := make([]domain.ConditionGroup, len(b.Conditions))
				for j, g := range b.Conditions {
					groups[j] = cloneSteps(g)
				}
				b.Conditions = groups
			}
			b.Steps = cloneSteps(b.Steps)
			branches[i] = b
		}
		s.Branches = branches
	}
	s.Steps = cloneSteps(s.Steps)
	return s
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}
