package cmdutil

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittomds/internal/cli/credentials"
	"github.com/marmos91/dittomds/internal/cli/output"
)

func withStore(t *testing.T) *credentials.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contexts.json")
	store, err := credentials.Open(path)
	require.NoError(t, err)

	orig := openStore
	openStore = func() (*credentials.Store, error) { return credentials.Open(path) }
	t.Cleanup(func() {
		openStore = orig
		*Flags = GlobalFlags{}
	})
	return store
}

func TestGetClient_FlagsOnly(t *testing.T) {
	withStore(t)
	Flags.ServerURL = "http://mds:8080"
	Flags.Token = "tok"

	client, err := GetClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestGetClient_NoServer(t *testing.T) {
	withStore(t)

	_, err := GetClient()
	assert.ErrorContains(t, err, "no server configured")
}

func TestGetClient_StoredContext(t *testing.T) {
	store := withStore(t)
	require.NoError(t, store.Login("lab", &credentials.Context{
		ServerURL: "http://lab:8080",
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	client, err := GetClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestGetClient_ExpiredToken(t *testing.T) {
	store := withStore(t)
	require.NoError(t, store.Login("lab", &credentials.Context{
		ServerURL: "http://lab:8080",
		Token:     "tok",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err := GetClient()
	assert.ErrorContains(t, err, "token expired")

	Flags.Token = "fresh"
	_, err = GetClient()
	assert.NoError(t, err)
}

func TestGetClient_ServerFlagWithoutToken(t *testing.T) {
	withStore(t)
	Flags.ServerURL = "http://open:8080"

	_, err := GetClient()
	assert.NoError(t, err)
}

type rows [][]string

func (r rows) Headers() []string { return []string{"NAME"} }
func (r rows) Rows() [][]string  { return r }

func TestPrintOutput(t *testing.T) {
	t.Cleanup(func() { *Flags = GlobalFlags{} })

	var buf bytes.Buffer
	Flags.Output = "table"
	require.NoError(t, PrintOutput(&buf, rows{}, true, "No entries.", rows{}))
	assert.Equal(t, "No entries.\n", buf.String())

	buf.Reset()
	Flags.Output = string(output.FormatJSON)
	require.NoError(t, PrintOutput(&buf, []string{"a"}, false, "", rows{{"a"}}))
	assert.JSONEq(t, `["a"]`, buf.String())

	Flags.Output = "xml"
	assert.Error(t, PrintOutput(&buf, nil, true, "", rows{}))
}

func TestEmptyOrAndBool(t *testing.T) {
	assert.Equal(t, "-", EmptyOr("", "-"))
	assert.Equal(t, "x", EmptyOr("x", "-"))
	assert.Equal(t, "yes", BoolToYesNo(true))
	assert.Equal(t, "no", BoolToYesNo(false))
}
