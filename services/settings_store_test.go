package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-settings-service/models"
)

func TestSettingsStore_SaveLoad(t *testing.T) {
	store, err := NewSettingsStore(filepath.Join(t.TempDir(), "nested", "settings"))
	require.NoError(t, err)

	settings := models.Settings{
		SearchableAttributes:    []string{"title", "id"},
		AttributesForFaceting:   []string{"category"},
		CustomRanking:           []string{"desc(id)"},
		UnretrievableAttributes: []string{},
	}
	require.NoError(t, store.Save("products", settings))

	loaded, err := store.Load("products")
	require.NoError(t, err)
	assert.True(t, settings.Equal(loaded))
	assert.Equal(t, []string{"title", "id"}, loaded.SearchableAttributes)
	assert.Nil(t, loaded.DisableTypoToleranceOnAttributes)

	data, err := os.ReadFile(filepath.Join(store.dir, "products.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "disableTypoToleranceOnAttributes")
	assert.Contains(t, string(data), "searchableAttributes")
}

func TestSettingsStore_LoadMissing(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nothing")
	assert.True(t, errors.Is(err, ErrSettingsNotFound))
}

func TestSettingsStore_BackupCorruptFile(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	filename := filepath.Join(store.dir, "products.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("searchableAttributes: {"), 0o644))

	_, err = store.Load("products")
	require.Error(t, err)

	require.NoError(t, store.Save("products", models.Settings{SearchableAttributes: []string{"title"}}))

	backup, err := os.ReadFile(filename + ".backup")
	require.NoError(t, err)
	assert.Equal(t, "searchableAttributes: {", string(backup))

	loaded, err := store.Load("products")
	require.NoError(t, err)
	assert.Equal(t, []string{"title"}, loaded.SearchableAttributes)
}

func TestSettingsStore_NoBackupForValidFile(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("products", models.Settings{SearchableAttributes: []string{"a"}}))
	require.NoError(t, store.Save("products", models.Settings{SearchableAttributes: []string{"b"}}))

	_, err = os.Stat(filepath.Join(store.dir, "products.yaml.backup"))
	assert.True(t, os.IsNotExist(err))
}

func TestSettingsStore_List(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	indices, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, indices)

	for _, index := range []string{"users", "products", "orders"} {
		require.NoError(t, store.Save(index, models.Settings{}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "users.yaml.backup"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(store.dir, "dir.yaml"), 0o755))

	indices, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "products", "users"}, indices)
}

func TestSettingsStore_InvalidIndexName(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	for _, index := range []string{"", ".", "..", "../escape", `a\b`} {
		assert.True(t, errors.Is(store.Save(index, models.Settings{}), ErrInvalidIndexName), index)
		_, err := store.Load(index)
		assert.True(t, errors.Is(err, ErrInvalidIndexName), index)
	}
}

func TestSettingsStore_LoadEmptyFile(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "products.yaml"), nil, 0o644))

	loaded, err := store.Load("products")
	require.NoError(t, err)
	assert.Equal(t, []string{}, loaded.SearchableAttributes)
	assert.Equal(t, []string{}, loaded.UnretrievableAttributes)
	assert.Nil(t, loaded.AttributesForFaceting)

	data, err := json.Marshal(loaded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"searchableAttributes":[],"unretrievableAttributes":[]}`, string(data))
}
