package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ref"
	"github.com/aretw0/stepflow/pkg/schema"
)

// DefaultOutputsPrefix is prepended to the keys of parameter-driven outputs.
const DefaultOutputsPrefix = ".fields."

// Catalog is a declarative set of operator definitions, typically loaded
// from a catalog.yaml shipped alongside the host application.
type Catalog struct {
	Extensions []CatalogExtension `json:"extensions" mapstructure:"extensions"`
}

// CatalogExtension groups the operators contributed by one extension.
type CatalogExtension struct {
	Extension `mapstructure:",squash"`
	Operators []OperatorDef `json:"operators" mapstructure:"operators"`
}

// OperatorDef declares one operator.
type OperatorDef struct {
	ID              string          `json:"id" mapstructure:"id"`
	Category        string          `json:"category" mapstructure:"category"`
	Name            string          `json:"name,omitempty" mapstructure:"name"`
	AllowDataSource bool            `json:"allowDataSource,omitempty" mapstructure:"allowDataSource"`
	Outputs         []domain.Output `json:"outputs,omitempty" mapstructure:"outputs"`

	// OutputsFrom names a parameter holding a list of {key, name, type}
	// fields; each becomes an output under OutputsPrefix.
	OutputsFrom   string `json:"outputsFrom,omitempty" mapstructure:"outputsFrom"`
	OutputsPrefix string `json:"outputsPrefix,omitempty" mapstructure:"outputsPrefix"`

	// Parameters maps parameter names to schema type strings.
	Parameters map[string]string `json:"parameters,omitempty" mapstructure:"parameters"`
	// Strict rejects parameters not listed above.
	Strict bool `json:"strict,omitempty" mapstructure:"strict"`
}

// LoadCatalog reads a catalog file. Files ending in .json are decoded as
// JSON, everything else as YAML.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return decodeCatalog(raw)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML (or JSON) catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return decodeCatalog(raw)
}

func decodeCatalog(raw map[string]any) (*Catalog, error) {
	var cat Catalog
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cat,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &cat, nil
}

// Install validates every definition and registers it into reg.
// Nothing is registered when any definition is invalid.
func (c *Catalog) Install(reg *Registry) error {
	type pending struct {
		cat   Category
		id    string
		entry Entry
	}
	var all []pending
	for _, ext := range c.Extensions {
		for _, def := range ext.Operators {
			cat, entry, err := def.entry(ext.Extension)
			if err != nil {
				return fmt.Errorf("extension %s: operator %q: %w", ext.Name, def.ID, err)
			}
			all = append(all, pending{cat, def.ID, entry})
		}
	}
	for _, p := range all {
		reg.Register(p.cat, p.id, p.entry)
	}
	return nil
}

func (def OperatorDef) entry(ext Extension) (Category, Entry, error) {
	if def.ID == "" {
		return 0, Entry{}, fmt.Errorf("missing id")
	}
	cat, err := ParseCategory(def.Category)
	if err != nil {
		return 0, Entry{}, err
	}
	s, err := schema.ParseTypeMap(def.Parameters)
	if err != nil {
		return 0, Entry{}, err
	}

	action := ActionDescriptor{
		Name:            def.Name,
		Outputs:         def.Outputs,
		AllowDataSource: def.AllowDataSource,
	}
	if def.OutputsFrom != "" {
		action.OutputsFunc = def.dynamicOutputs()
	}
	if len(s) > 0 {
		opts := []schema.Option{schema.WithPlaceholder(isReference)}
		if def.Strict {
			opts = append(opts, schema.WithStrict())
		}
		action.Validate = func(_ context.Context, parameters map[string]any) (bool, error) {
			if err := schema.Validate(s, parameters, opts...); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return cat, Entry{Action: action, Definition: def, Extension: ext}, nil
}

func (def OperatorDef) dynamicOutputs() OutputsFunc {
	prefix := def.OutputsPrefix
	if prefix == "" {
		prefix = DefaultOutputsPrefix
	}
	static := def.Outputs
	return func(step *domain.Step, tc TranslateContext) []domain.Output {
		outputs := append([]domain.Output(nil), static...)
		fields, _ := step.Parameters[def.OutputsFrom].([]any)
		for _, raw := range fields {
			var field domain.Output
			if err := mapstructure.Decode(raw, &field); err != nil || field.Key == "" {
				continue
			}
			name := field.Name
			if name == "" {
				name = tc.T(field.Key)
			}
			typ := field.Type
			if typ == "" {
				typ = "string"
			}
			outputs = append(outputs, domain.Output{
				Key:  prefix + field.Key,
				Name: name,
				Type: typ,
			})
		}
		return outputs
	}
}

func isReference(v any) bool {
	s, ok := v.(string)
	return ok && ref.IsReference(s)
}
