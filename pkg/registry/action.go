package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/stepflow/pkg/domain"
)

// Category selects which lookup table an operator lives in.
type Category int

const (
	Trigger Category = iota
	Executor
	Comparator
	DataSource
)

var categoryNames = [...]string{
	Trigger:    "trigger",
	Executor:   "executor",
	Comparator: "comparator",
	DataSource: "dataSource",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory converts a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if strings.EqualFold(name, s) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// TranslateFunc renders a message key with optional arguments.
type TranslateFunc func(key string, args ...any) string

// TranslateContext is handed to dynamic output functions.
type TranslateContext struct {
	T TranslateFunc
}

// Translator renders message keys on behalf of an extension.
type Translator func(extension, key string, args ...any) string

// IdentityTranslator returns the key unchanged.
func IdentityTranslator(_ string, key string, _ ...any) string { return key }

// OutputsFunc computes outputs from the configured step, for operators
// whose outputs depend on their parameters (e.g. form fields).
type OutputsFunc func(step *domain.Step, tc TranslateContext) []domain.Output

// ValidateFunc checks an operator's parameters. It may block or perform
// I/O. A false result or an error marks the parameters invalid.
type ValidateFunc func(ctx context.Context, parameters map[string]any) (bool, error)

// ActionDescriptor describes what an operator exposes to the editor.
type ActionDescriptor struct {
	Name string

	// Outputs is used when OutputsFunc is nil.
	Outputs     []domain.Output
	OutputsFunc OutputsFunc

	Validate ValidateFunc

	// AllowDataSource is only meaningful for triggers.
	AllowDataSource bool
}

// Extension identifies the package that contributed an operator.
type Extension struct {
	Name    string `json:"name" yaml:"name" mapstructure:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
}

// Entry is one registered operator.
type Entry struct {
	Action ActionDescriptor
	// Definition is the raw, host-specific definition; never inspected here.
	Definition any
	Extension  Extension
}

// ResolveOutputs returns the outputs the operator exposes for step.
// Dynamic outputs get a translator scoped to the entry's extension.
func (e Entry) ResolveOutputs(step *domain.Step, tr Translator) []domain.Output {
	if e.Action.OutputsFunc != nil {
		if tr == nil {
			tr = IdentityTranslator
		}
		ext := e.Extension.Name
		tc := TranslateContext{T: func(key string, args ...any) string {
			return tr(ext, key, args...)
		}}
		return e.Action.OutputsFunc(step, tc)
	}
	return e.Action.Outputs
}
