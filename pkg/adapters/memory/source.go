package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/aretw0/stepflow/pkg/domain"
)

// Source implements ports.FlowSource over a fixed set of raw flow documents.
type Source struct {
	flows map[string][]byte
}

// NewSource creates a Source from raw JSON flow documents keyed by id.
func NewSource(data map[string]string) *Source {
	flows := make(map[string][]byte, len(data))
	for k, v := range data {
		flows[k] = []byte(v)
	}
	return &Source{flows: flows}
}

// NewFromFlows creates a Source from domain objects.
func NewFromFlows(flows ...domain.Flow) (*Source, error) {
	data := make(map[string][]byte, len(flows))
	for _, f := range flows {
		if f.ID == "" {
			return nil, fmt.Errorf("flow missing ID")
		}
		raw, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal flow %s: %w", f.ID, err)
		}
		data[f.ID] = raw
	}
	return &Source{flows: data}, nil
}

// GetFlow decodes the flow stored under id. A document that is a bare
// array is read as the flow's steps.
func (s *Source) GetFlow(_ context.Context, id string) (*domain.Flow, error) {
	raw, ok := s.flows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, id)
	}

	var flow domain.Flow
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &flow.Steps); err != nil {
			return nil, fmt.Errorf("failed to parse flow %s: %w", id, err)
		}
	} else if err := json.Unmarshal(raw, &flow); err != nil {
		return nil, fmt.Errorf("failed to parse flow %s: %w", id, err)
	}
	if flow.ID == "" {
		flow.ID = id
	}
	return &flow, nil
}

// ListFlows returns all flow ids in sorted order.
func (s *Source) ListFlows(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.flows))
	for id := range s.flows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
