package stepflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/registry"
)

func exampleRegistry() *registry.Registry {
	reg := registry.NewRegistry()
	reg.Register(registry.Trigger, "@trigger/manual", registry.Entry{Action: registry.ActionDescriptor{
		Outputs: []domain.Output{{Key: ".source.id", Name: "Source", Type: "string"}},
	}})
	reg.Register(registry.Executor, "@file/copy", registry.Entry{Action: registry.ActionDescriptor{
		Outputs: []domain.Output{{Key: ".docid", Name: "Copy", Type: "string"}},
	}})
	return reg
}

// ExampleEngine_Validate reports a forward reference and a missing operator.
func ExampleEngine_Validate() {
	eng, err := stepflow.New(stepflow.WithRegistry(exampleRegistry()))
	if err != nil {
		log.Fatal(err)
	}

	steps := []domain.Step{
		{ID: "0", Operator: "@trigger/manual"},
		{ID: "1", Operator: "@file/copy", Parameters: map[string]any{"docid": "{{__0.source.id}}"}},
		{ID: "2", Operator: "@file/copy", Parameters: map[string]any{"docid": "{{__3.docid}}"}},
		{ID: "3", Operator: "@file/copy"},
		{ID: "4", Operator: ""},
	}

	report, err := eng.Validate(context.Background(), steps)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("ok:", report.OK())
	for _, issue := range report.Result.Issues() {
		fmt.Println(issue)
	}
	// Output:
	// ok: false
	// step 2: INVALID_PARAMETERS
	// step 4: INVALID_OPERATOR
}

// ExampleEngine_Resolve shows how a reference binds to the longest output key.
func ExampleEngine_Resolve() {
	eng, err := stepflow.New(stepflow.WithRegistry(exampleRegistry()))
	if err != nil {
		log.Fatal(err)
	}

	steps := []domain.Step{
		{ID: "0", Operator: "@trigger/manual"},
		{ID: "1", Operator: "@file/copy"},
	}

	res, err := eng.Resolve(steps, "{{__0.source.id.name}}", "1")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Key, res.SubPath, res.Visible)
	// Output:
	// __0.source.id name true
}
