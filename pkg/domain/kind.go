package domain

import "fmt"

// NodeKind is the role a node plays in the step graph.
type NodeKind int

const (
	KindTrigger NodeKind = iota
	KindExecutor
	KindDataSource
	KindBranches
	KindBranch
	KindComparator
	KindLoop
	KindGlobalVariable
)

var kindNames = [...]string{
	KindTrigger:        "trigger",
	KindExecutor:       "executor",
	KindDataSource:     "dataSource",
	KindBranches:       "branches",
	KindBranch:         "branch",
	KindComparator:     "comparator",
	KindLoop:           "loop",
	KindGlobalVariable: "globalVariable",
}

func (k NodeKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *NodeKind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = NodeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", text)
}

// Executable reports whether nodes of this kind run as a step at runtime
// (as opposed to structural containers and condition checks).
func (k NodeKind) Executable() bool {
	switch k {
	case KindTrigger, KindExecutor, KindDataSource, KindLoop:
		return true
	}
	return false
}
