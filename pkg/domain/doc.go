/*
Package domain contains the core data model of a stepflow workflow.

A workflow is an ordered tree of Steps edited through a visual canvas and
persisted as JSON. The first top-level Step is always the trigger; the rest
run in sequence. Control flow is expressed with two reserved operators:
Branches (an OR-of-AND condition set per arm) and Loop (nested steps with
per-iteration outputs). Every other operator is an opaque capability id
resolved through the registry.

This package is kept pure and free of I/O. Indexing, reference resolution
and validation live in the graph, ref, scope and validate packages.

# Key Entities

  - Step: one node of the tree (trigger, executor, data source, comparator or control flow).
  - Branch: one arm of a Branches step, gated by its ConditionGroups.
  - Output: a named, typed value a step promises to produce.
  - Path: the structural coordinate of a node, used for visibility ordering.
  - NodeKind: the role a step plays, decided once at indexing time.
*/
package domain
