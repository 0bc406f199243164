package domain

// Reserved operator ids.
const (
	// BranchesOperator marks a step that forks into mutually exclusive branches.
	BranchesOperator = "@control/flow/branches"
	// LoopOperator marks a step that repeats its nested steps.
	LoopOperator = "@control/flow/loop"
	// DefaultComparator is the comparator assigned to a freshly created condition.
	DefaultComparator = "@internal/cmp/string-eq"
	// GlobalVariableOperator is the operator of the synthetic process-wide scope node.
	GlobalVariableOperator = "@internal/global-variable"
)

// GlobalScopeID is the reserved id of the node holding process-wide variables.
// It is visible from every path.
const GlobalScopeID = "1000"

// ConditionsKeyPrefix marks a branch's condition set in validation error
// keys. Node ids may not start with it.
const ConditionsKeyPrefix = "conditions:"

// OutputKeyPrefix starts every symbol table key: "__" + owner id + output key.
const OutputKeyPrefix = "__"

// SetTemplateMarker appears in catalog/template operator ids whose nested
// fields may legitimately be null.
const SetTemplateMarker = "settemplate"

// AuthorizationOutput is the default process-wide variable injected by the host.
var AuthorizationOutput = Output{
	Key:  "g_authorization",
	Name: "Authorization",
	Type: "string",
}

// OutputKey builds the symbol table key for an output owned by ownerID.
func OutputKey(ownerID string, outputKey string) string {
	return OutputKeyPrefix + ownerID + outputKey
}
