package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepflow/pkg/adapters/file"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunFlowStoreContract(t, file.NewStore(t.TempDir()))
}

func TestFileStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.NewStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", &domain.Flow{ID: "b"}))
	require.NoError(t, store.Save(ctx, "a", &domain.Flow{ID: "a"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".c.123.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "nope"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_InvalidIDs(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		assert.ErrorIs(t, store.Save(ctx, id, &domain.Flow{}), file.ErrInvalidID, id)
		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, file.ErrInvalidID, id)
		assert.ErrorIs(t, store.Delete(ctx, id), file.ErrInvalidID, id)
	}
}

func TestFileStore_DefaultDir(t *testing.T) {
	assert.Equal(t, file.DefaultDir, file.NewStore("").BasePath)
}
