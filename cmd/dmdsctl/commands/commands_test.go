package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittomds/internal/controlplane/api/auth"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://mds1:8080", "http://mds1:8080"},
		{"https://mds1", "https://mds1"},
		{"mds1:8080", "http://mds1:8080"},
		{"127.0.0.1:8080", "http://127.0.0.1:8080"},
		{"localhost", "http://localhost"},
	}
	for _, tt := range tests {
		got, err := normalizeServerURL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestVerifyLogin(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
		case "/api/v1/info":
			_ = json.NewEncoder(w).Encode(apiclient.Info{Threads: 4})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL)
	require.NoError(t, verifyLogin(client, auth.RoleAdmin))
	require.NoError(t, verifyLogin(client, auth.RolePool))
	assert.Equal(t, []string{"/api/v1/info", "/health"}, paths)
}

func TestStatusRows(t *testing.T) {
	s := Status{Healthy: true, Uptime: "90s"}
	rows := s.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"yes", "no", "1m 30s", "-", "-"}, rows[0])
}
