package poolmanager

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectReadPool(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pools/read", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Ack{Pool: "poolA", MoverID: 12})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("secret"), WithDoor("mds-1"))
	ack, err := c.SelectReadPool(context.Background(), Request{
		FileID:    "0001",
		Challenge: []byte{1, 2, 3, 4},
	})
	require.NoError(t, err)
	assert.Equal(t, Ack{Pool: "poolA", MoverID: 12}, ack)

	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, "mds-1", got.Door)
	assert.Equal(t, "0001", got.FileID)
	assert.Equal(t, []byte{1, 2, 3, 4}, got.Challenge)
}

func TestSelectWritePoolPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pools/write", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Ack{Pool: "poolW", MoverID: 1})
	}))
	defer srv.Close()

	ack, err := New(srv.URL).SelectWritePool(context.Background(), Request{FileID: "f"})
	require.NoError(t, err)
	assert.Equal(t, "poolW", ack.Pool)
}

func TestSelectPool_ServiceUnavailableIsNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no pools online", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).SelectReadPool(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestSelectPool_ConnectionRefusedIsNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(addr).SelectReadPool(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestSelectPool_ServerErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"CACHE","message":"file not online"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SelectReadPool(context.Background(), Request{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoRoute))

	var pmErr *Error
	require.ErrorAs(t, err, &pmErr)
	assert.Equal(t, http.StatusInternalServerError, pmErr.StatusCode)
	assert.Equal(t, "CACHE", pmErr.Code)
	assert.Equal(t, "file not online", pmErr.Message)
}

func TestSelectPool_EmptyPoolRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SelectReadPool(context.Background(), Request{})
	var pmErr *Error
	assert.ErrorAs(t, err, &pmErr)
}

func TestSelectPool_MissingMoverID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pool":"pool-a"}`))
	}))
	defer srv.Close()

	ack, err := New(srv.URL).SelectWritePool(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "pool-a", ack.Pool)
	assert.Equal(t, NoMover, ack.MoverID)
}

func TestKillMover(t *testing.T) {
	called := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called <- r.URL.EscapedPath()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).KillMover(context.Background(), "pool a", 7))
	assert.Equal(t, "/pools/pool%20a/movers/7/kill", <-called)
}
