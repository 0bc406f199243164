package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepflow/pkg/domain"
)

// contractFlow builds a small but complete tree: trigger, branches with
// conditions, and a loop.
func contractFlow(id string) *domain.Flow {
	return &domain.Flow{
		ID:   id,
		Name: "contract " + id,
		Steps: []domain.Step{
			{ID: "0", Operator: "@trigger/manual", DataSource: &domain.Step{ID: "9", Operator: "@data/list"}},
			{ID: "1", Operator: domain.BranchesOperator, Branches: []domain.Branch{{
				ID:         "2",
				Conditions: []domain.ConditionGroup{{{ID: "3", Operator: domain.DefaultComparator, Parameters: map[string]any{"a": "{{__0.source.id}}"}}}},
				Steps:      []domain.Step{{ID: "4", Operator: "@file/copy"}},
			}}},
			{ID: "5", Operator: domain.LoopOperator, Steps: []domain.Step{{ID: "6", Operator: "@file/copy", Parameters: map[string]any{"v": "{{__5.value}}"}}}},
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// RunFlowStoreContract runs a suite of tests to verify that a FlowStore
// implementation adheres to the defined interface contract.
func RunFlowStoreContract(t *testing.T, store FlowStore) {
	ctx := context.Background()
	flowID := fmt.Sprintf("contract-flow-%d", time.Now().UnixNano())

	t.Run("Save and Load", func(t *testing.T) {
		flow := contractFlow(flowID)
		require.NoError(t, store.Save(ctx, flowID, flow), "Save should not return error")

		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, flow.Name, loaded.Name)
		assert.Equal(t, domain.IDs(flow.Steps), domain.IDs(loaded.Steps))
		assert.Equal(t, "{{__5.value}}", loaded.Steps[2].Steps[0].Parameters["v"])
		assert.Equal(t, "9", loaded.Steps[0].DataSource.ID)
		assert.True(t, flow.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err)
		loaded.Steps[1].Branches[0].Steps[0].Operator = "mutated"

		again, err := store.Load(ctx, flowID)
		require.NoError(t, err)
		assert.Equal(t, "@file/copy", again.Steps[1].Branches[0].Steps[0].Operator)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		flow := contractFlow(flowID)
		flow.Name = "renamed"
		require.NoError(t, store.Save(ctx, flowID, flow))
		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", loaded.Name)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, flowID), "Delete should not return error")
		_, err := store.Load(ctx, flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound, "Load after Delete should return ErrFlowNotFound")
		assert.NoError(t, store.Delete(ctx, flowID), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1 := flowID + "-1"
		id2 := flowID + "-2"
		require.NoError(t, store.Save(ctx, id1, contractFlow(id1)))
		require.NoError(t, store.Save(ctx, id2, contractFlow(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
		assert.NotContains(t, ids, flowID)
	})
}
