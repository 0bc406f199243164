package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/stepflow/pkg/domain"
)

// ErrorKey identifies what failed: a step id, or a branch's condition set.
type ErrorKey string

// StepKey is the key of a failing step.
func StepKey(id string) ErrorKey { return ErrorKey(id) }

// ConditionsKey is the key of a branch's failing condition set.
func ConditionsKey(branchID string) ErrorKey { return ErrorKey(domain.ConditionsKeyPrefix + branchID) }

// BranchID returns the branch id of a conditions key.
func (k ErrorKey) BranchID() (string, bool) {
	return strings.CutPrefix(string(k), domain.ConditionsKeyPrefix)
}

// Result is the outcome of one validation pass.
type Result struct {
	OK     bool                          `json:"ok"`
	Errors map[ErrorKey]domain.ErrorKind `json:"errors"`
	// Err reports a whole-flow problem, such as too few steps.
	Err error `json:"-"`
}

// StepError returns the error recorded for a step, if any.
func (r Result) StepError(id string) (domain.ErrorKind, bool) {
	k, ok := r.Errors[StepKey(id)]
	return k, ok
}

// ConditionsError returns the error recorded for a branch's conditions.
func (r Result) ConditionsError(branchID string) (domain.ErrorKind, bool) {
	k, ok := r.Errors[ConditionsKey(branchID)]
	return k, ok
}

// Issue is one recorded failure, flattened for reporting.
type Issue struct {
	Key      ErrorKey         `json:"key"`
	Kind     domain.ErrorKind `json:"kind"`
	StepID   string           `json:"stepId,omitempty"`
	BranchID string           `json:"branchId,omitempty"`
}

func (i Issue) String() string {
	if i.BranchID != "" {
		return fmt.Sprintf("conditions of branch %s: %s", i.BranchID, i.Kind)
	}
	return fmt.Sprintf("step %s: %s", i.StepID, i.Kind)
}

// Issues lists every failure sorted by key.
func (r Result) Issues() []Issue {
	issues := make([]Issue, 0, len(r.Errors))
	for key, kind := range r.Errors {
		issue := Issue{Key: key, Kind: kind}
		if branch, ok := key.BranchID(); ok {
			issue.BranchID = branch
		} else {
			issue.StepID = string(key)
		}
		issues = append(issues, issue)
	}
	slices.SortFunc(issues, func(a, b Issue) int {
		return strings.Compare(string(a.Key), string(b.Key))
	})
	return issues
}
