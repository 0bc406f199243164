package ports

import (
	"context"

	"github.com/aretw0/stepflow/pkg/domain"
)

// FlowSource is a read-only collection of flows, such as a directory of
// flow documents checked into a repository.
type FlowSource interface {
	// ListFlows returns the ids of every flow in the source.
	ListFlows(ctx context.Context) ([]string, error)

	// GetFlow retrieves one flow.
	// Returns domain.ErrFlowNotFound if the flow does not exist.
	GetFlow(ctx context.Context, id string) (*domain.Flow, error)
}

// StoreSource exposes a FlowStore as a FlowSource.
type StoreSource struct {
	Store FlowStore
}

// ListFlows implements FlowSource.
func (s StoreSource) ListFlows(ctx context.Context) ([]string, error) {
	return s.Store.List(ctx)
}

// GetFlow implements FlowSource.
func (s StoreSource) GetFlow(ctx context.Context, id string) (*domain.Flow, error) {
	return s.Store.Load(ctx, id)
}

// Watchable is implemented by sources that can report changes.
type Watchable interface {
	// Watch emits the id of each flow that changes until ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
