package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepflow/internal/config"
	"github.com/aretw0/stepflow/internal/logging"
)

const testCatalog = `
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
        strict: true
        parameters:
          docid: string
`

func TestDiscoverCatalog(t *testing.T) {
	// Helper to create a temp dir with specific files
	createDir := func(t *testing.T, files []string) string {
		dir := t.TempDir()
		for _, f := range files {
			err := os.WriteFile(filepath.Join(dir, f), []byte("extensions: []"), 0644)
			require.NoError(t, err)
		}
		return dir
	}

	t.Run("Prefer operators.yaml", func(t *testing.T) {
		dir := createDir(t, []string{"operators.yaml", "operators.json"})
		assert.Equal(t, filepath.Join(dir, "operators.yaml"), discoverCatalog(dir))
	})

	t.Run("Fallback to json", func(t *testing.T) {
		dir := createDir(t, []string{"operators.json", "other.yaml"})
		assert.Equal(t, filepath.Join(dir, "operators.json"), discoverCatalog(dir))
	})

	t.Run("Fallback to catalog.yaml", func(t *testing.T) {
		dir := createDir(t, []string{"catalog.yaml"})
		assert.Equal(t, filepath.Join(dir, "catalog.yaml"), discoverCatalog(dir))
	})

	t.Run("Ignore directories", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "operators.yaml"), 0755))
		assert.Equal(t, "", discoverCatalog(dir))
	})

	t.Run("Nothing matches", func(t *testing.T) {
		dir := createDir(t, []string{"other.md"})
		assert.Equal(t, "", discoverCatalog(dir))
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("flags override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stepflow.yaml")
		require.NoError(t, os.WriteFile(path, []byte("flowsDir: flows\nlog:\n  level: warn\n  format: json\nminSteps: 2\n"), 0644))

		cfg, err := LoadConfig(Options{ConfigPath: path, Dir: "other", LogLevel: "debug"})
		require.NoError(t, err)
		assert.Equal(t, "other", cfg.FlowsDir)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, 2, cfg.MinSteps)
	})

	t.Run("explicit config must exist", func(t *testing.T) {
		_, err := LoadConfig(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
		assert.Error(t, err)
	})

	t.Run("implicit config is optional", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg, err := LoadConfig(Options{})
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.Log.Format = "xml"
	_, err = NewLogger(cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Log.Level = "loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "operators.yaml"), []byte(testCatalog), 0644))

	cfg := config.Default()
	cfg.MinSteps = 3
	cfg.FlowsDir = dir

	eng, err := NewEngine(cfg, Options{}, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, eng.Registry().Len())

	rep, err := eng.Check(context.Background(), []byte(`[{"id":"0","operator":"@trigger/manual"},{"id":"1","operator":"@file/copy","parameters":{"docid":"x"}}]`))
	require.NoError(t, err)
	assert.False(t, rep.OK())
	assert.Error(t, rep.Result.Err)

	t.Run("explicit catalog wins", func(t *testing.T) {
		_, err := NewEngine(config.Default(), Options{Catalogs: []string{filepath.Join(dir, "missing.yaml")}}, logging.NewNop())
		assert.Error(t, err)
	})
}
