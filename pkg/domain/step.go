package domain

import "encoding/json"

// Step is one node of the workflow tree.
// Operator is either a reserved control-flow marker (BranchesOperator,
// LoopOperator) or an opaque capability id resolved through the registry.
type Step struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Operator string `json:"operator" yaml:"operator"`

	// Parameters holds the user-configured values. String leaves may embed
	// template references such as "{{__3.source.id}}".
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// Branches is only set on BranchesOperator steps.
	Branches []Branch `json:"branches,omitempty" yaml:"branches,omitempty"`

	// Steps is only set on LoopOperator steps.
	Steps []Step `json:"steps,omitempty" yaml:"steps,omitempty"`

	// DataSource is an optional sub-step feeding a trigger.
	DataSource *Step `json:"dataSource,omitempty" yaml:"dataSource,omitempty"`

	// nullParameters records an explicit "parameters": null, which differs
	// from parameters being absent.
	nullParameters bool
}

type stepFields Step

// UnmarshalJSON decodes a step, remembering whether parameters was null.
func (s *Step) UnmarshalJSON(data []byte) error {
	var fields stepFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*s = Step(fields)
	raw, ok := keys["parameters"]
	s.nullParameters = ok && string(raw) == "null"
	return nil
}

// MarshalJSON writes "parameters": null back for steps decoded with it.
func (s Step) MarshalJSON() ([]byte, error) {
	if !s.nullParameters || s.Parameters != nil {
		return json.Marshal(stepFields(s))
	}
	return json.Marshal(struct {
		stepFields
		Parameters map[string]any `json:"parameters"`
	}{stepFields: stepFields(s)})
}

// NullParameters reports whether the parameters object was explicitly null.
func (s *Step) NullParameters() bool { return s.nullParameters && s.Parameters == nil }

// Branch is one arm of a Branches step.
// Conditions is a disjunction (OR) of groups; each group is a conjunction (AND).
type Branch struct {
	ID         string           `json:"id" yaml:"id"`
	Conditions []ConditionGroup `json:"conditions" yaml:"conditions"`
	Steps      []Step           `json:"steps" yaml:"steps"`
}

// ConditionGroup is a list of comparator steps that must all hold.
type ConditionGroup []Step

// Output is a declared field a step exposes for downstream reference.
type Output struct {
	Key      string `json:"key" yaml:"key" mapstructure:"key"`
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	Type     string `json:"type" yaml:"type" mapstructure:"type"`
	IsCustom bool   `json:"isCustom,omitempty" yaml:"isCustom,omitempty" mapstructure:"isCustom"`
}

// IsBranches reports whether the step forks into branches.
func (s *Step) IsBranches() bool { return s.Operator == BranchesOperator }

// IsLoop reports whether the step repeats its nested steps.
func (s *Step) IsLoop() bool { return s.Operator == LoopOperator }

// NewCondition returns a condition step using the default comparator.
func NewCondition(id string) Step {
	return Step{
		ID:         id,
		Operator:   DefaultComparator,
		Parameters: map[string]any{},
	}
}
