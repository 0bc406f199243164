// Package graph indexes a step tree.
//
// Build walks the tree once, depth first, and produces an Index: every
// step, branch and condition as a Node carrying its kind, structural path
// and declared outputs, plus a flat symbol table of outputs keyed by
// "__"+owner+outputKey. The index is an immutable snapshot; rebuild it
// after every structural edit.
package graph
