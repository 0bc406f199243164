package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/validate"
)

func failingReport() *stepflow.Report {
	return &stepflow.Report{
		Flow: &domain.Flow{ID: "f", Steps: []domain.Step{
			{ID: "0", Operator: "@trigger/manual"},
			{ID: "1", Operator: "@file/copy"},
		}},
		Result: validate.Result{Errors: map[validate.ErrorKey]domain.ErrorKind{
			validate.StepKey("1"):       domain.ErrInvalidParameters,
			validate.ConditionsKey("b"): domain.ErrInvalidParameters,
		}},
	}
}

func TestWriteReport(t *testing.T) {
	t.Run("text ok", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, FormatText, "f", &stepflow.Report{Result: validate.Result{OK: true}}))
		assert.Equal(t, "f: ok\n", buf.String())
	})

	t.Run("text issues", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, "", "f", failingReport()))
		assert.Equal(t, "f: 2 issue(s)\n  - step 1: INVALID_PARAMETERS\n  - conditions of branch b: INVALID_PARAMETERS\n", buf.String())
	})

	t.Run("text flow error", func(t *testing.T) {
		var buf bytes.Buffer
		rep := &stepflow.Report{Result: validate.Result{Err: errors.New("flow has too few steps")}}
		require.NoError(t, WriteReport(&buf, FormatText, "", rep))
		assert.Equal(t, "flow: invalid: flow has too few steps\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, FormatJSON, "f", failingReport()))

		var got JSONReport
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.False(t, got.OK)
		assert.Equal(t, "f", got.Flow)
		assert.Equal(t, domain.ErrInvalidParameters, got.Errors["conditions:b"])
		assert.Len(t, got.Issues, 2)
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, FormatMarkdown, "f", failingReport()))
		assert.Contains(t, buf.String(), "INVALID_PARAMETERS")
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, WriteReport(&bytes.Buffer{}, "xml", "f", failingReport()))
	})
}
