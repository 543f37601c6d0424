package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidconv/vidconv/pkg/models"
)

func TestFileStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, SetToken(store, "abc.def.ghi"))
	require.NoError(t, SetTheme(store, "dark"))

	// Reopen and verify everything survived
	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	assert.Equal(t, "abc.def.ghi", Token(reopened))
	assert.Equal(t, "dark", Theme(reopened))
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nope", "session.json"))
	require.NoError(t, err)

	assert.Empty(t, Token(store))
	assert.Nil(t, User(store))
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestUserSnapshotRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	u := &models.User{ID: 7, Username: "alice", Role: models.UserRoleAdmin, Active: true}
	require.NoError(t, SetUser(store, u))

	got := User(store)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, models.UserRoleAdmin, got.Role)
}

func TestClearKeepsTheme(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, SetToken(store, "tok"))
	require.NoError(t, SetTheme(store, "dark"))
	require.NoError(t, SetUser(store, &models.User{ID: 1}))

	require.NoError(t, Clear(store))

	assert.Empty(t, Token(store))
	assert.Nil(t, User(store))
	assert.Equal(t, "dark", Theme(store))
}

func TestThemeDefaultsToLight(t *testing.T) {
	store := NewMemoryStore()
	assert.Equal(t, "light", Theme(store))

	require.NoError(t, store.Set(KeyTheme, "neon"))
	assert.Equal(t, "light", Theme(store))
}

func TestDeleteAbsentKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	assert.NoError(t, store.Delete("missing"))
}
