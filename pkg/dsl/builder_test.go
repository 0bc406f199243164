package dsl

import (
	"context"
	"reflect"
	"testing"

	"github.com/aretw0/stepflow/pkg/domain"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New()

	trigger := b.Trigger("@trigger/manual")
	b.Step("@anyshare/file/copy").
		Title("Copy").
		Param("docid", trigger.Out(".source.id"))

	steps := b.Steps()
	if len(steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(steps))
	}
	if steps[0].ID != "0" || steps[0].Operator != "@trigger/manual" {
		t.Errorf("Expected trigger first with id 0, got %+v", steps[0])
	}
	if steps[1].Title != "Copy" {
		t.Errorf("Expected title 'Copy', got '%s'", steps[1].Title)
	}
	if got := steps[1].Parameters["docid"]; got != "{{__0.source.id}}" {
		t.Errorf("Expected reference to trigger output, got %v", got)
	}
}

func TestBuilder_TriggerAlwaysFirst(t *testing.T) {
	b := New()
	b.Step("@a")
	b.Trigger("@trigger/manual")
	if again := b.Trigger("@other"); again.step.Operator != "@trigger/manual" {
		t.Errorf("Expected second Trigger call to return the existing builder")
	}

	steps := b.Steps()
	if steps[0].Operator != "@trigger/manual" {
		t.Fatalf("Expected trigger first, got %s", steps[0].Operator)
	}
	// Ids follow creation order, not position.
	if steps[0].ID != "1" || steps[1].ID != "0" {
		t.Errorf("Unexpected ids: %s, %s", steps[0].ID, steps[1].ID)
	}
}

func TestBuilder_NestedTree(t *testing.T) {
	// Ids: trigger 0, data source 1, branches 2, arm 3, condition 4, step 5,
	// fallback arm 6 (renamed), step 7, loop 8, loop body 9.
	b := New()
	trigger := b.Trigger("@trigger/manual")
	trigger.DataSource("@anyshare/data/list-files").Param("docid", "gns://root")

	fork := b.Branches()
	arm := fork.Branch()
	arm.Group().Cond("@internal/cmp/string-eq").Param("a", trigger.Out(".source.id"))
	arm.Step("@anyshare/file/copy")
	fork.Branch().ID("fallback").Step("@anyshare/file/copy")

	loop := b.Loop()
	loop.Param("items", "{{__1.files}}")
	loop.Step("@anyshare/file/copy").Param("docid", loop.Out(".value"))

	steps := b.Steps()
	want := []string{"0", "1", "2", "3", "fallback", "4", "5", "7", "8", "9"}
	if got := domain.IDs(steps); !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs mismatch.\n got: %v\nwant: %v", got, want)
	}

	if steps[0].DataSource == nil || steps[0].DataSource.Parameters["docid"] != "gns://root" {
		t.Errorf("Expected data source on trigger, got %+v", steps[0].DataSource)
	}
	if !steps[1].IsBranches() || len(steps[1].Branches) != 2 {
		t.Fatalf("Expected branches step with 2 arms, got %+v", steps[1])
	}
	if len(steps[1].Branches[0].Conditions) != 1 || steps[1].Branches[0].Conditions[0][0].ID != "4" {
		t.Errorf("Unexpected conditions: %+v", steps[1].Branches[0].Conditions)
	}
	if len(steps[1].Branches[1].Conditions) != 0 {
		t.Errorf("Expected fallback arm without conditions")
	}
	if !steps[2].IsLoop() || steps[2].Steps[0].Parameters["docid"] != "{{__8.value}}" {
		t.Errorf("Unexpected loop: %+v", steps[2])
	}
}

func TestBuilder_NestedLoopAndBranches(t *testing.T) {
	b := New()
	b.Trigger("@trigger/manual")
	outer := b.Loop()
	inner := outer.Loop()
	inner.Step("@x")
	outer.Branches().Branch().Step("@y")

	steps := b.Steps()
	body := steps[1].Steps
	if len(body) != 2 || !body[0].IsLoop() || !body[1].IsBranches() {
		t.Fatalf("Unexpected loop body: %+v", body)
	}
	if body[0].Steps[0].Operator != "@x" || body[1].Branches[0].Steps[0].Operator != "@y" {
		t.Errorf("Unexpected nested operators")
	}
}

func TestBuilder_StepsAreIndependentCopies(t *testing.T) {
	b := New()
	s := b.Step("@x").Param("k", "v")

	first := b.Steps()
	first[0].Parameters["k"] = "mutated"
	s.Params(map[string]any{"other": 1})

	second := b.Steps()
	if second[0].Parameters["k"] != "v" {
		t.Errorf("Expected builder state to be unaffected by caller mutation")
	}
	if second[0].Parameters["other"] != 1 {
		t.Errorf("Expected Params to merge")
	}
}

func TestBuilder_Build(t *testing.T) {
	b := New()
	b.Trigger("@trigger/manual")
	b.Step("@x").ID("custom")

	src, err := b.Build("demo")
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	flow, err := src.GetFlow(context.Background(), "demo")
	if err != nil {
		t.Fatalf("GetFlow failed: %v", err)
	}
	if len(flow.Steps) != 2 || flow.Steps[1].ID != "custom" {
		t.Errorf("Unexpected flow: %+v", flow)
	}

	if _, err := b.Build(""); err == nil {
		t.Errorf("Expected error for empty flow id")
	}

	f := b.Flow("demo", "Demo")
	if f.Name != "Demo" || f.Trigger().Operator != "@trigger/manual" {
		t.Errorf("Unexpected flow: %+v", f)
	}
}
