/*
Package dsl provides a fluent builder for step trees.

Ids are assigned from a shared counter in creation order, so the first step
created is "0". References to earlier outputs come from StepBuilder.Out,
which keeps them in sync with the generated ids.

Example usage:

	b := dsl.New()

	trigger := b.Trigger("@trigger/manual")

	b.Step("@anyshare/file/copy").
		Param("docid", trigger.Out(".source.id")).
		Param("destparent", "gns://target")

	fork := b.Branches()
	arm := fork.Branch()
	arm.Group().Cond("@internal/cmp/string-eq").Param("a", trigger.Out(".source.id"))
	arm.Step("@anyshare/file/copy")

	flow := b.Flow("copy-on-upload", "Copy on upload")
	// ... pass flow.Steps to stepflow.Engine.Validate
*/
package dsl
