package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/stepflow/internal/presentation/graph"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/validate"
)

func TestGenerateMermaid(t *testing.T) {
	branches := []domain.Step{
		{ID: "0", Operator: "@trigger/manual"},
		{ID: "1", Operator: domain.BranchesOperator, Branches: []domain.Branch{
			{ID: "b1", Conditions: []domain.ConditionGroup{
				{domain.NewCondition("c1"), domain.NewCondition("c2")},
				{domain.NewCondition("c3")},
			}, Steps: []domain.Step{{ID: "2", Operator: "@http/get"}}},
			{ID: "fallback"},
		}},
		{ID: "3", Title: "Notify", Operator: "@mail/send"},
	}

	tests := []struct {
		name     string
		steps    []domain.Step
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name:     "Trigger Shape",
			steps:    []domain.Step{{ID: "0", Operator: "@trigger/manual"}},
			contains: []string{`n_0(("0: @trigger/manual"))`},
		},
		{
			name: "Sequence And Titles",
			steps: []domain.Step{
				{ID: "0", Operator: "@trigger/manual"},
				{ID: "1", Title: "Fetch", Operator: "@http/get"},
			},
			contains: []string{`n_1["1: Fetch"]`, "n_0 --> n_1"},
		},
		{
			name:  "Branches With Conditions",
			steps: branches,
			contains: []string{
				`n_1{"1: @control/flow/branches"}`,
				`n_1 -- "b1: c1 and c2 or c3" --> n_2`,
				`n_1 -- "fallback: otherwise" --> n_3`,
				"n_2 --> n_3",
			},
		},
		{
			name: "Loop Body Returns To Loop",
			steps: []domain.Step{
				{ID: "0", Operator: "@trigger/manual"},
				{ID: "1", Operator: domain.LoopOperator, Steps: []domain.Step{
					{ID: "2", Operator: "@http/get"},
				}},
				{ID: "3", Operator: "@mail/send"},
			},
			contains: []string{
				`n_1[["1: @control/flow/loop"]]`,
				`n_1 -- "each" --> n_2`,
				"n_2 --> n_1",
				`n_1 -- "done" --> n_3`,
			},
		},
		{
			name: "Data Source",
			steps: []domain.Step{{
				ID: "0", Operator: "@trigger/schedule",
				DataSource: &domain.Step{ID: "ds", Operator: "@sheets/rows"},
			}},
			contains: []string{`n_ds[("ds: @sheets/rows")]`, "n_ds -. data .-> n_0"},
		},
		{
			name:  "Invalid Overlay",
			steps: branches,
			overlay: &graph.GraphOverlay{Invalid: map[validate.ErrorKey]domain.ErrorKind{
				validate.StepKey("2"):        domain.ErrInvalidParameters,
				validate.StepKey("3"):        domain.ErrInvalidOperator,
				validate.ConditionsKey("b1"): domain.ErrInvalidParameters,
			}},
			contains: []string{
				"classDef invalid",
				"class n_2,n_3 invalid;",
				`n_1 -- "(!) b1: c1 and c2 or c3" --> n_2`,
			},
		},
		{
			name:     "Focus Overlay",
			steps:    branches,
			overlay:  &graph.GraphOverlay{Focus: "3"},
			contains: []string{"class n_3 focus;"},
			excludes: []string{"classDef invalid"},
		},
		{
			name:     "Sanitized Ids",
			steps:    []domain.Step{{ID: "a.b-c", Operator: "x"}},
			contains: []string{"n_a_b_c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.steps, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
		})
	}
}

func TestOverlayFromResult(t *testing.T) {
	res := validate.Result{Errors: map[validate.ErrorKey]domain.ErrorKind{"1": domain.ErrInvalidOperator}}
	got := graph.GenerateMermaid([]domain.Step{
		{ID: "0", Operator: "@trigger/manual"},
		{ID: "1"},
	}, graph.OverlayFromResult(res))

	if !strings.Contains(got, "class n_1 invalid;") {
		t.Errorf("expected step 1 to be marked invalid, got:\n%s", got)
	}
	if !strings.Contains(got, `n_1["1"]`) {
		t.Errorf("expected bare id label for a step without operator, got:\n%s", got)
	}
}
