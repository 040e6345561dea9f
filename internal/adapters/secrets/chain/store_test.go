package chain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainPrefersEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "telegram_bot_token"), []byte("from-file\n"), 0o600))
	t.Setenv("ISNAD_SECRET_TELEGRAM_BOT_TOKEN", "from-env")

	store, err := NewEnvFirstWithFileFallback(root)
	require.NoError(t, err)

	value, err := store.Get(context.Background(), "telegram_bot_token")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)
}

func TestChainFallsBackToFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "telegram_bot_token"), []byte("from-file\n"), 0o600))
	t.Setenv("ISNAD_SECRET_TELEGRAM_BOT_TOKEN", "")

	store, err := NewEnvFirstWithFileFallback(root)
	require.NoError(t, err)

	value, err := store.Get(context.Background(), "telegram_bot_token")
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestChainReportsBothFailures(t *testing.T) {
	t.Setenv("ISNAD_SECRET_MISSING", "")

	store, err := NewEnvFirstWithFileFallback(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing")
	require.Error(t, err)
}
