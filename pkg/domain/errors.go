package domain

import "errors"

// ErrorKind classifies why a node failed validation.
type ErrorKind string

const (
	// ErrInvalidOperator marks an executable step with an empty operator.
	ErrInvalidOperator ErrorKind = "INVALID_OPERATOR"
	// ErrInvalidParameters marks an unresolved or inaccessible reference,
	// a disallowed null, or a failing external validator.
	ErrInvalidParameters ErrorKind = "INVALID_PARAMETERS"
)

// Structural errors reported while indexing or loading a step tree.
var (
	// ErrEmptyTree is returned when a tree has no trigger.
	ErrEmptyTree = errors.New("step tree is empty")

	// ErrEmptyID is returned when a step, branch or condition has no id.
	ErrEmptyID = errors.New("node has empty id")

	// ErrDuplicateID is returned when two nodes share an id.
	ErrDuplicateID = errors.New("duplicate node id")

	// ErrReservedID is returned when a node uses the global scope id or the
	// conditions key prefix.
	ErrReservedID = errors.New("node id is reserved")

	// ErrTooFewSteps is returned when a flow is shorter than the configured minimum.
	ErrTooFewSteps = errors.New("flow has too few steps")

	// ErrNodeNotFound is returned when a lookup names a node missing from the tree.
	ErrNodeNotFound = errors.New("node not found")

	// ErrFlowNotFound is returned when a flow cannot be found in a store.
	ErrFlowNotFound = errors.New("flow not found")
)
