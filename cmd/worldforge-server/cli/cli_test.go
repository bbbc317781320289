package cli

import (
	"context"
	"path/filepath"
	"testing"

	"worldforge/internal/server/storage"

	"github.com/lixenwraith/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")

	require.NoError(t, Run([]string{"init", "-path", path}))
	require.NoError(t, Run([]string{"user", "add", "-path", path, "-username", "Keeper", "-password", "secret123"}))

	err := Run([]string{"user", "add", "-path", path, "-username", "keeper", "-password", "secret123"})
	assert.Error(t, err, "usernames are unique regardless of case")

	err = Run([]string{"user", "add", "-path", path, "-username", "short", "-password", "abc"})
	assert.ErrorContains(t, err, "at least 8 characters")

	err = Run([]string{"user", "set-hash", "-path", path, "-username", "keeper", "-hash", "not-a-phc-hash"})
	assert.ErrorContains(t, err, "invalid hash format")

	hash, err := auth.HashPassword("another123")
	require.NoError(t, err)
	require.NoError(t, Run([]string{"user", "set-hash", "-path", path, "-username", "KEEPER", "-hash", hash}))

	store, err := storage.NewStore(path, storage.DefaultOptions())
	require.NoError(t, err)
	user, err := store.GetUserByUsername(context.Background(), "keeper")
	require.NoError(t, err)
	assert.Equal(t, hash, user.PasswordHash)
	require.NoError(t, store.Close())

	require.NoError(t, Run([]string{"user", "list", "-path", path}))
	require.NoError(t, Run([]string{"user", "delete", "-path", path, "-username", "keeper"}))
	assert.Error(t, Run([]string{"user", "delete", "-path", path, "-username", "keeper"}))
}

func TestDatabaseCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")

	require.NoError(t, Run([]string{"init", "-path", path}))
	require.NoError(t, Run([]string{"version", "-path", path}))
	require.NoError(t, Run([]string{"world", "list", "-path", path}))
	require.NoError(t, Run([]string{"delete", "-path", path}))

	assert.Error(t, Run(nil))
	assert.Error(t, Run([]string{"world"}))
	assert.Error(t, Run([]string{"user", "rename"}))
	assert.Error(t, Run([]string{"bogus"}))
}
