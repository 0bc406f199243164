package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/stepflow/pkg/domain"
)

// Parser is responsible for converting raw bytes into a Flow.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a flow document. JSON and YAML are both accepted, either
// as a bare step array or as an object with a "steps" field.
func (p *Parser) Parse(data []byte) (*domain.Flow, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, domain.ErrEmptyTree
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse flow: %w", err)
	}

	var flow domain.Flow
	switch v := raw.(type) {
	case []any:
		if err := reencode(v, &flow.Steps); err != nil {
			return nil, err
		}
	case map[string]any:
		if err := reencode(v, &flow); err != nil {
			return nil, err
		}
	case nil:
		return nil, domain.ErrEmptyTree
	default:
		return nil, fmt.Errorf("failed to parse flow: expected a step list or an object, got %T", raw)
	}

	if len(flow.Steps) == 0 {
		return nil, domain.ErrEmptyTree
	}
	return &flow, nil
}

// ParseSteps is Parse for callers that only need the tree.
func (p *Parser) ParseSteps(data []byte) ([]domain.Step, error) {
	flow, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	return flow.Steps, nil
}

// reencode moves a generic YAML tree into json-tagged structs.
func reencode(src any, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to parse flow: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse flow: %w", err)
	}
	return nil
}
