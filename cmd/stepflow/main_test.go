package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepflow/internal/cli"
)

const cmdCatalog = `
extensions:
  - name: core
    version: 1.0.0
    operators:
      - id: "@trigger/manual"
        category: trigger
        outputs:
          - key: .source.id
            name: Source
            type: string
      - id: "@file/copy"
        category: executor
`

const cmdFlow = `id: copy
steps:
  - id: "0"
    operator: "@trigger/manual"
  - id: "1"
    operator: "@file/copy"
    parameters:
      docid: "{{__0.source.id}}"
  - id: "2"
    operator: ""
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	opts = cli.Options{}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stepflow version")
}

func TestValidateCommand_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	catalog := writeFixture(t, "operators.yaml", cmdCatalog)
	flow := writeFixture(t, "copy.yaml", cmdFlow)

	out, err := execute(t, "validate", "--catalog", catalog, "--log-level", "error", flow)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "copy: 1 issue(s)")
	assert.Contains(t, out, "step 2: INVALID_OPERATOR")
}

func TestGraphCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	flow := writeFixture(t, "copy.yaml", cmdFlow)

	out, err := execute(t, "graph", "--focus", "1", flow)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "class n_1 focus;")
}
