package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRowValidateRequiresURL(t *testing.T) {
	t.Parallel()

	require.Error(t, TaskRow{URL: "   "}.Validate())
	require.NoError(t, TaskRow{URL: "https://x.com/status/1"}.Validate())
}

func TestAccountRowValidateRequiresName(t *testing.T) {
	t.Parallel()

	require.Error(t, AccountRow{AccountID: "123"}.Validate())
	require.NoError(t, AccountRow{Name: "press_account"}.Validate())
}

func TestTargetAccountRenderable(t *testing.T) {
	t.Parallel()

	assert.False(t, TargetAccount{Name: "a"}.Renderable())
	assert.False(t, TargetAccount{AccountID: "  "}.Renderable())
	assert.True(t, TargetAccount{AccountID: "44871"}.Renderable())
}
