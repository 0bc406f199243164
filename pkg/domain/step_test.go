package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_NullParameters(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"null", `{"id":"1","operator":"@x/y","parameters":null}`, true},
		{"absent", `{"id":"1","operator":"@x/y"}`, false},
		{"empty", `{"id":"1","operator":"@x/y","parameters":{}}`, false},
		{"values", `{"id":"1","operator":"@x/y","parameters":{"a":null}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Step
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			assert.Equal(t, tt.want, s.NullParameters())
			assert.Equal(t, "1", s.ID)
		})
	}
}

func TestStep_NullParametersSurviveEncoding(t *testing.T) {
	var steps []Step
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"0","operator":"@trigger/manual"},
		{"id":"1","operator":"@x/y","parameters":null,
		 "dataSource":{"id":"2","operator":"@ds/z","parameters":null}}
	]`), &steps))

	data, err := json.Marshal(steps)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"parameters":null`)
	assert.NotContains(t, string(data[:len(`[{"id":"0","operator":"@trigger/manual"}`)]), "parameters")

	var back []Step
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back[0].NullParameters())
	assert.True(t, back[1].NullParameters())
	assert.True(t, back[1].DataSource.NullParameters())
}

func TestStep_ParametersSetAfterDecode(t *testing.T) {
	var s Step
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","operator":"@x/y","parameters":null}`), &s))
	s.Parameters = map[string]any{"a": "b"}
	assert.False(t, s.NullParameters())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","operator":"@x/y","parameters":{"a":"b"}}`, string(data))
}
