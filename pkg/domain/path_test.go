package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_Compare(t *testing.T) {
	assert.Equal(t, -1, ConditionScope().Compare(Index(0)))
	assert.Equal(t, 1, Index(0).Compare(ConditionScope()))
	assert.Equal(t, 0, ConditionScope().Compare(ConditionScope()))
	assert.Equal(t, -1, Index(1).Compare(Index(2)))
	assert.Equal(t, 1, BranchArm(3).Compare(BranchArm(2)))
	assert.NotEqual(t, Index(1), BranchArm(1))
}

func TestPath(t *testing.T) {
	p := NewPath(2)
	child := p.Append(BranchArm(1), Index(0))
	assert.Equal(t, "[2]", p.String(), "Append must not modify the receiver")
	assert.Equal(t, "[2,b1,0]", child.String())
	assert.Equal(t, "[2,b1,?,0,1]", p.Append(BranchArm(1), ConditionScope(), Index(0), Index(1)).String())

	assert.True(t, child.HasPrefix(p))
	assert.True(t, child.HasPrefix(child))
	assert.True(t, child.HasPrefix(Path{}))
	assert.False(t, p.HasPrefix(child))
	assert.False(t, child.HasPrefix(NewPath(2, 1)), "arm and index segments differ")

	assert.True(t, NewPath(1, 2).Equal(NewPath(1, 2)))
	assert.False(t, NewPath(1, 2).Equal(NewPath(1)))

	assert.Equal(t, -1, NewPath(1).Compare(NewPath(1, 0)))
	assert.Equal(t, 1, NewPath(2).Compare(NewPath(1, 5)))
	assert.Equal(t, 0, NewPath(3, 1).Compare(NewPath(3, 1)))
}

func TestPath_JSON(t *testing.T) {
	p := Path{Index(2), BranchArm(1), ConditionScope(), Index(0), Index(3)}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[2,1,-1,0,3]`, string(data))

	var back Path
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 5)
	assert.True(t, back[2].IsConditionScope())
	assert.False(t, back[1].IsBranchArm(), "arms decode as plain indices")
	assert.Equal(t, 1, back[1].Value())

	assert.Error(t, json.Unmarshal([]byte(`["x"]`), &back))
}

func TestNodeKind_Text(t *testing.T) {
	for k := KindTrigger; k <= KindGlobalVariable; k++ {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var back NodeKind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}
	assert.Equal(t, "NodeKind(42)", NodeKind(42).String())
	var k NodeKind
	assert.Error(t, k.UnmarshalText([]byte("bogus")))
	assert.True(t, KindLoop.Executable())
	assert.False(t, KindComparator.Executable())
}

func TestWalkAndIDs(t *testing.T) {
	steps := []Step{
		{ID: "0", DataSource: &Step{ID: "ds"}},
		{ID: "1", Operator: BranchesOperator, Branches: []Branch{
			{ID: "b1", Conditions: []ConditionGroup{{NewCondition("c1")}}, Steps: []Step{{ID: "2"}}},
			{ID: "b2", Steps: []Step{{ID: "3"}}},
		}},
		{ID: "4", Operator: LoopOperator, Steps: []Step{{ID: "5"}}},
	}
	assert.Equal(t, []string{"0", "ds", "1", "b1", "b2", "c1", "2", "3", "4", "5"}, IDs(steps))

	var visited []string
	Walk(steps, func(s *Step, parent *Step) bool {
		visited = append(visited, s.ID)
		return !s.IsLoop()
	})
	assert.Equal(t, []string{"0", "ds", "1", "c1", "2", "3", "4"}, visited)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "__g_authorization", OutputKey("", AuthorizationOutput.Key))
	assert.Equal(t, "__3.source.id", OutputKey("3", ".source.id"))
	c := NewCondition("c")
	assert.Equal(t, DefaultComparator, c.Operator)
	assert.NotNil(t, c.Parameters)
}
