// Package scope decides whether a reference located at one path of the step
// tree may read the outputs of the node at another path.
//
// Paths are compared segment by segment. At the first difference the target
// is visible when it runs earlier than the reference; arms of the same
// Branches step never see each other, and a branch's condition scope runs
// before the branch's own steps. A target that is a strict ancestor of the
// reference is visible; the reference's own node and its descendants are not.
//
// Loops relax the rule for their per-iteration outputs: anything at or below
// the loop's path may read them.
package scope

import "github.com/aretw0/stepflow/pkg/domain"

// IsAccessible reports whether a reference at ref may read outputs of the
// node at target under the ordering rule.
func IsAccessible(ref, target domain.Path) bool {
	n := min(len(ref), len(target))
	for i := 0; i < n; i++ {
		r, t := ref[i], target[i]
		if r == t {
			continue
		}
		if r.IsBranchArm() && t.IsBranchArm() {
			return false
		}
		return t.Compare(r) < 0
	}
	// Shared prefix: only a strict ancestor of ref is visible.
	return len(target) < len(ref)
}

// IsLoopAccessible reports whether a reference at ref may read the
// per-iteration outputs of the loop at target.
func IsLoopAccessible(ref, target domain.Path, targetIsLoop bool) bool {
	return targetIsLoop && ref.HasPrefix(target)
}

// Visible combines both rules; it is the check applied to every reference.
func Visible(ref, target domain.Path, targetIsLoop bool) bool {
	return IsAccessible(ref, target) || IsLoopAccessible(ref, target, targetIsLoop)
}
