package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

func TestFileStore_PutGet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	store := NewFileStore(path, nil)

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.Load())

	mapping := model.ColumnMapping{
		model.RoleChain:   "Row Labels",
		model.RoleUnits:   "Sum of Units",
		model.RoleDollars: "Sum of Dollars",
	}
	require.NoError(t, store.Put("k1", mapping))
	require.NoError(t, store.Put("k2", model.ColumnMapping{model.RoleChain: "Retailer"}))

	got, ok := store.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "Sum of Units", got[model.RoleUnits])
	assert.Equal(t, "", got[model.RoleStores])
	assert.Len(t, got, len(model.AllRoles))

	// 再次 Put 覆盖同一指纹
	require.NoError(t, store.Put("k1", model.ColumnMapping{model.RoleChain: "Banner"}))
	got, _ = store.Get("k1")
	assert.Equal(t, "Banner", got[model.RoleChain])
	assert.Len(t, store.Load(), 2)

	leftovers, err := filepath.Glob(path + ".*.tmp")
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStore_CorruptFileIsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store := NewFileStore(path, nil)
	assert.Empty(t, store.Load())

	require.NoError(t, store.Put("k", model.ColumnMapping{model.RoleUnits: "Units"}))
	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, "Units", got[model.RoleUnits])
}

func TestFileStore_ReadsNullEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFileName)
	doc := `{"abc": {"chain": "Row Labels", "units": "Sum of Units", "stores": null, "velocity": "x"}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	got, ok := NewFileStore(path, nil).Get("abc")
	require.True(t, ok)
	assert.Equal(t, "Row Labels", got[model.RoleChain])
	assert.Equal(t, "", got[model.RoleStores])
	assert.Len(t, got, len(model.AllRoles))
}

func TestFileStore_PutRequiresKey(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), DefaultFileName), nil)
	assert.Error(t, store.Put("", model.NewColumnMapping()))
}
