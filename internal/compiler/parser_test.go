package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepflow/pkg/domain"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr error
	}{
		{
			name:    "json array",
			input:   `[{"id":"0","operator":"@trigger/manual"},{"id":"1","operator":"@x"}]`,
			wantIDs: []string{"0", "1"},
		},
		{
			name:    "json object",
			input:   `{"id":"f","steps":[{"id":"0","operator":"@trigger/manual"}]}`,
			wantIDs: []string{"0"},
		},
		{
			name: "yaml with branches",
			input: `
name: yaml flow
steps:
  - id: "0"
    operator: "@trigger/manual"
  - id: "1"
    operator: "@control/flow/branches"
    branches:
      - id: "2"
        conditions:
          - - id: "3"
              operator: "@internal/cmp/string-eq"
        steps:
          - id: "4"
            operator: "@x"
            parameters:
              n: 3
`,
			wantIDs: []string{"0", "1", "2", "3", "4"},
		},
		{name: "empty input", input: "  \n", wantErr: domain.ErrEmptyTree},
		{name: "empty array", input: "[]", wantErr: domain.ErrEmptyTree},
		{name: "object without steps", input: `{"name":"x"}`, wantErr: domain.ErrEmptyTree},
		{name: "null document", input: "null", wantErr: domain.ErrEmptyTree},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, err := p.Parse([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, domain.IDs(flow.Steps))
		})
	}
}

func TestParser_Errors(t *testing.T) {
	p := NewParser()

	_, err := p.Parse([]byte(`"just a string"`))
	assert.Error(t, err)

	_, err = p.Parse([]byte(`[{"id": 1`))
	assert.Error(t, err)

	_, err = p.Parse([]byte(`[{"id":"0","branches":"nope"}]`))
	assert.Error(t, err)
}

func TestParser_ParseSteps(t *testing.T) {
	steps, err := NewParser().ParseSteps([]byte(`{"name":"n","steps":[{"id":"0","parameters":{"a":null}}]}`))
	require.NoError(t, err)
	require.Len(t, steps, 1)
	v, ok := steps[0].Parameters["a"]
	assert.True(t, ok)
	assert.Nil(t, v)
}
