package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	registry, err := NewRegistry(filepath.Join(t.TempDir(), "apikeys.toml"))
	require.NoError(t, err)

	return registry
}

func TestRegistryResolveUnknownKey(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t)

	_, err := registry.ResolveAPIKey(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrUnknownAPIKey)

	_, err = registry.ResolveAPIKey(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrUnknownAPIKey)
}

func TestRegistryPutAndResolve(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Put(ctx, "user1", "key-one"))
	require.NoError(t, registry.Put(ctx, "user2", "key-two"))
	require.NoError(t, registry.Put(ctx, AdminAgentID, "key-admin"))

	agentID, err := registry.ResolveAPIKey(ctx, "key-two")
	require.NoError(t, err)
	assert.Equal(t, "user2", agentID)

	agentID, err = registry.ResolveAPIKey(ctx, "key-admin")
	require.NoError(t, err)
	assert.Equal(t, AdminAgentID, agentID)
}

func TestRegistryPutRotatesExistingKey(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Put(ctx, "user1", "old"))
	require.NoError(t, registry.Put(ctx, "user1", "new"))

	_, err := registry.ResolveAPIKey(ctx, "old")
	require.ErrorIs(t, err, domain.ErrUnknownAPIKey)

	agentID, err := registry.ResolveAPIKey(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "user1", agentID)
}

func TestRegistryRejectsUnsupportedSchemaVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "apikeys.toml")
	require.NoError(t, os.WriteFile(path, []byte("schema_version = 99\n"), 0o600))

	registry, err := NewRegistry(path)
	require.NoError(t, err)

	_, err = registry.ResolveAPIKey(context.Background(), "any")
	require.Error(t, err)
}
