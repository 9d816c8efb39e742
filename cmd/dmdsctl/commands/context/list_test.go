package context

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittomds/internal/cli/credentials"
)

func TestListContexts(t *testing.T) {
	store, err := credentials.Open(filepath.Join(t.TempDir(), "contexts.json"))
	require.NoError(t, err)

	require.NoError(t, store.Login("old", &credentials.Context{
		ServerURL: "http://old:8080",
		Token:     "t",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, store.Login("lab", &credentials.Context{
		ServerURL: "http://lab:8080",
		Token:     "t",
		Role:      "admin",
	}))

	got := listContexts(store)
	require.Len(t, got, 2)

	assert.Equal(t, "lab", got[0].Name)
	assert.True(t, got[0].Current)
	assert.True(t, got[0].LoggedIn)

	assert.Equal(t, "old", got[1].Name)
	assert.False(t, got[1].Current)
	assert.False(t, got[1].LoggedIn)

	rows := got.Rows()
	assert.Equal(t, []string{"*", "lab", "http://lab:8080", "admin", "yes"}, rows[0])
	assert.Equal(t, []string{"", "old", "http://old:8080", "-", "no"}, rows[1])
}
