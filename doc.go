/*
Package stepflow indexes and validates workflow step trees.

A step tree is an ordered list of steps: a trigger first, then executors,
branch forks with guarded arms, and loops. Steps publish outputs that later
steps read through references of the form {{__<stepId>.<outputKey>}}.

# Concept

The engine builds an index of every node in the tree: its position, its
kind and the outputs it publishes into an ordered symbol table. A
validation pass then walks the tree and records, per step or per branch
condition set, whether the operator is missing, whether a parameter
references an output the step cannot see, or whether the operator's own
validate hook rejects its parameters.

Visibility follows execution order. A step sees outputs of steps that run
before it: earlier siblings, ancestors, and anything nested inside them,
but never a sibling branch arm. A loop's own outputs are visible to the
steps in its body.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"
		"os"

		"github.com/aretw0/stepflow"
	)

	func main() {
		eng, err := stepflow.New(stepflow.WithCatalog("operators.yaml"))
		if err != nil {
			log.Fatal(err)
		}

		data, err := os.ReadFile("flow.json")
		if err != nil {
			log.Fatal(err)
		}

		report, err := eng.Check(context.Background(), data)
		if err != nil {
			log.Fatal(err)
		}
		for _, issue := range report.Result.Issues() {
			fmt.Println(issue)
		}
	}
*/
package stepflow
