package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/stepflow/pkg/domain"
)

var (
	idx  = domain.Index
	arm  = domain.BranchArm
	cond = domain.ConditionScope
)

func path(segs ...domain.Segment) domain.Path { return domain.Path(segs) }

func TestIsAccessible(t *testing.T) {
	tests := []struct {
		name   string
		ref    domain.Path
		target domain.Path
		want   bool
	}{
		{"earlier sibling", path(idx(2)), path(idx(1)), true},
		{"later sibling", path(idx(1)), path(idx(2)), false},
		{"self", path(idx(2)), path(idx(2)), false},
		{"trigger from step", path(idx(3)), path(idx(0)), true},
		{"global from anywhere", path(idx(3), arm(1), idx(0)), domain.Path{}, true},
		{"ancestor branch", path(idx(2), arm(0), idx(1)), path(idx(2), arm(0)), true},
		{"ancestor loop", path(idx(4), idx(0)), path(idx(4)), true},
		{"descendant", path(idx(4)), path(idx(4), idx(0)), false},
		{"earlier step in same arm", path(idx(2), arm(0), idx(1)), path(idx(2), arm(0), idx(0)), true},
		{"sibling arm earlier index", path(idx(2), arm(1), idx(0)), path(idx(2), arm(0), idx(0)), false},
		{"sibling arm later index", path(idx(2), arm(0), idx(0)), path(idx(2), arm(1), idx(0)), false},
		{"inside branch from outside before", path(idx(1)), path(idx(2), arm(0)), false},
		{"inside branch from outside after", path(idx(3)), path(idx(2), arm(0), idx(0)), true},
		{"outside step before branch seen from arm", path(idx(2), arm(0), idx(0)), path(idx(1)), true},
		{"condition sees earlier step", path(idx(2), arm(0), cond(), idx(0), idx(0)), path(idx(1)), true},
		{"condition cannot see arm steps", path(idx(2), arm(0), cond(), idx(0), idx(0)), path(idx(2), arm(0), idx(0)), false},
		{"arm step sees condition scope", path(idx(2), arm(0), idx(0)), path(idx(2), arm(0), cond(), idx(0), idx(0)), true},
		{"earlier condition in group", path(idx(2), arm(0), cond(), idx(0), idx(1)), path(idx(2), arm(0), cond(), idx(0), idx(0)), true},
		{"nested arms", path(idx(1), arm(0), idx(0), arm(1), idx(0)), path(idx(1), arm(0), idx(0), arm(0), idx(0)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAccessible(tt.ref, tt.target))
		})
	}
}

func TestIsLoopAccessible(t *testing.T) {
	loop := path(idx(3))
	assert.True(t, IsLoopAccessible(path(idx(3)), loop, true), "loop step itself")
	assert.True(t, IsLoopAccessible(path(idx(3), idx(0)), loop, true), "loop body")
	assert.True(t, IsLoopAccessible(path(idx(3), idx(1), arm(0), idx(0)), loop, true), "nested in body")
	assert.False(t, IsLoopAccessible(path(idx(4)), loop, true), "after the loop")
	assert.False(t, IsLoopAccessible(path(idx(3), idx(0)), loop, false), "not a loop")
}

func TestVisible(t *testing.T) {
	loop := path(idx(3))
	assert.True(t, Visible(path(idx(3)), loop, true))
	assert.False(t, Visible(path(idx(3)), loop, false))
	assert.True(t, Visible(path(idx(4)), loop, true))
	assert.False(t, Visible(path(idx(2)), loop, true))
}

// Sibling arms never see each other, whatever their depth.
func TestSiblingArmsAreMutuallyInaccessible(t *testing.T) {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if a == b {
				continue
			}
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					ref := path(idx(5), arm(a), idx(i))
					target := path(idx(5), arm(b), idx(j), idx(0))
					assert.False(t, IsAccessible(ref, target), "%v -> %v", ref, target)
				}
			}
		}
	}
}
