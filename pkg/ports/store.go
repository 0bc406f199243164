package ports

import (
	"context"

	"github.com/aretw0/stepflow/pkg/domain"
)

// FlowStore persists step trees so that they can be validated again and
// served to editors.
type FlowStore interface {
	// Save persists the flow under id, replacing any previous version.
	Save(ctx context.Context, id string, flow *domain.Flow) error

	// Load retrieves the flow stored under id.
	// Returns domain.ErrFlowNotFound if the flow does not exist.
	Load(ctx context.Context, id string) (*domain.Flow, error)

	// Delete removes the flow. Deleting a missing flow is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all stored flows.
	List(ctx context.Context) ([]string, error)
}
