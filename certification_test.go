package stepflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/validate"
)

// TestCertificationSuite runs the cases under testdata/certification. Each
// case holds an operators.yaml catalog, a flows/ directory and an
// expected.yaml that maps flow ids to their error keys.
func TestCertificationSuite(t *testing.T) {
	entries, err := filepath.Glob(filepath.Join("testdata", "certification", "*"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, casePath := range entries {
		t.Run(filepath.Base(casePath), func(t *testing.T) {
			runCertification(t, casePath)
		})
	}
}

func runCertification(t *testing.T, sourcePath string) {
	// Flows are read from an isolated copy.
	tempDir := t.TempDir()
	require.NoError(t, copyDir(sourcePath, tempDir))

	data, err := os.ReadFile(filepath.Join(tempDir, "expected.yaml"))
	require.NoError(t, err)
	var expected map[string]map[validate.ErrorKey]domain.ErrorKind
	require.NoError(t, yaml.Unmarshal(data, &expected))

	eng, err := stepflow.New(
		stepflow.WithCatalog(filepath.Join(tempDir, "operators.yaml")),
		stepflow.WithFlowDir(filepath.Join(tempDir, "flows")),
	)
	require.NoError(t, err)

	ids, err := eng.ListFlows(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, len(expected), "every flow needs an expectation")

	for id, want := range expected {
		rep, err := eng.ValidateFlow(context.Background(), id)
		require.NoError(t, err, id)
		require.NoError(t, rep.Result.Err, id)

		got := rep.Result.Errors
		if len(want) == 0 {
			assert.True(t, rep.OK(), "%s: unexpected errors %v", id, got)
			continue
		}
		assert.Equal(t, want, got, id)
	}
}

// copyDir recursively copies a directory tree, preserving permissions.
func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		targetPath := filepath.Join(dst, relPath)
		if info.IsDir() {
			return os.MkdirAll(targetPath, info.Mode())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(targetPath, data, info.Mode())
	})
}
