package tui_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/stepflow/internal/presentation/tui"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/validate"
)

func TestReportMarkdown(t *testing.T) {
	steps := []domain.Step{
		{ID: "0", Operator: "@trigger/manual"},
		{ID: "1", Title: "Fetch", Operator: "@http/get"},
	}

	t.Run("ok", func(t *testing.T) {
		md := tui.ReportMarkdown("orders", steps, validate.Result{OK: true})
		assert.Contains(t, md, "# orders")
		assert.Contains(t, md, "All steps are valid.")
	})

	t.Run("issues", func(t *testing.T) {
		md := tui.ReportMarkdown("", steps, validate.Result{Errors: map[validate.ErrorKey]domain.ErrorKind{
			validate.StepKey("1"):        domain.ErrInvalidParameters,
			validate.ConditionsKey("b2"): domain.ErrInvalidParameters,
		}})
		assert.Contains(t, md, "# flow")
		assert.Contains(t, md, "Found **2** issue(s).")
		assert.Contains(t, md, "| step `1` Fetch | `@http/get` | INVALID_PARAMETERS |")
		assert.Contains(t, md, "| conditions of `b2` |  | INVALID_PARAMETERS |")
	})

	t.Run("flow error", func(t *testing.T) {
		md := tui.ReportMarkdown("x", steps, validate.Result{Err: errors.New("flow has too few steps")})
		assert.Contains(t, md, "**Invalid:** flow has too few steps")
	})
}

func TestNewRenderer(t *testing.T) {
	render := tui.NewRenderer(60)
	out, err := render("# Title\n\nbody text")
	assert.NoError(t, err)
	assert.Contains(t, out, "body text")
}

func TestTerminalWidth(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	assert.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 80, tui.TerminalWidth(f))
	assert.Equal(t, 80, tui.TerminalWidth(nil))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Equal(t, 8, strings.Count(buf.String(), "\n"))
}

func TestStripControl(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tui.StripControl(tt.input))
		})
	}
}
