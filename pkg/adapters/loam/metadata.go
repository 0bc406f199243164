package loam

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/stepflow/pkg/domain"
)

// FlowMetadata is the document shape of a flow stored in a loam repository.
// Markdown documents carry it as frontmatter; json and yaml documents are
// the metadata itself.
type FlowMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Name  string `json:"name" mapstructure:"name"`
	Steps []any  `json:"steps" mapstructure:"steps"`
}

// NewFlowMetadata converts flow into its document shape.
func NewFlowMetadata(flow *domain.Flow) (FlowMetadata, error) {
	meta := FlowMetadata{ID: flow.ID, Name: flow.Name}
	if len(flow.Steps) == 0 {
		return meta, nil
	}
	data, err := json.Marshal(flow.Steps)
	if err != nil {
		return FlowMetadata{}, fmt.Errorf("failed to encode steps: %w", err)
	}
	if err := json.Unmarshal(data, &meta.Steps); err != nil {
		return FlowMetadata{}, fmt.Errorf("failed to encode steps: %w", err)
	}
	return meta, nil
}
