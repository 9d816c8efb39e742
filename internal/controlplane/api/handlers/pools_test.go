package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
	"github.com/marmos91/dittomds/pkg/pnfs/layout"
)

type readyCall struct {
	pool      string
	addr      netip.AddrPort
	challenge []byte
}

type fakeNotifier struct {
	ready    []readyCall
	readyErr error
	finished []types.Stateid4
	found    bool
	killed   []string
	killErr  error
}

func (f *fakeNotifier) OnPoolReady(_ context.Context, pool string, addr netip.AddrPort, challenge []byte) error {
	f.ready = append(f.ready, readyCall{pool, addr, challenge})
	return f.readyErr
}

func (f *fakeNotifier) OnMoverFinished(_ context.Context, sid types.Stateid4) bool {
	f.finished = append(f.finished, sid)
	return f.found
}

func (f *fakeNotifier) KillMover(_ context.Context, pool string, moverID int32) error {
	f.killed = append(f.killed, fmt.Sprintf("%s/%d", pool, moverID))
	return f.killErr
}

func poolRouter(n PoolNotifier) http.Handler {
	h := NewPoolHandler(n)
	r := chi.NewRouter()
	r.Post("/pools/{pool}/ready", h.Ready)
	r.Post("/pools/{pool}/movers/{id}/kill", h.KillMover)
	r.Post("/transfers/finished", h.TransferFinished)
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func testStateid() types.Stateid4 {
	return types.Stateid4{Seqid: 3, Other: [types.NFS4_OTHER_SIZE]byte{0xaa, 0xbb}}
}

func TestPoolReady(t *testing.T) {
	n := &fakeNotifier{}
	challenge := types.EncodeChallengeStateid(testStateid())
	body, _ := json.Marshal(PoolReadyRequest{Address: "10.0.0.7:2049", Challenge: challenge})

	w := serve(poolRouter(n), "POST", "/pools/pool-a/ready", string(body))

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, n.ready, 1)
	assert.Equal(t, "pool-a", n.ready[0].pool)
	assert.Equal(t, netip.MustParseAddrPort("10.0.0.7:2049"), n.ready[0].addr)
	assert.Equal(t, challenge, n.ready[0].challenge)
}

func TestPoolReady_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		readyErr   error
		wantStatus int
		wantCalled bool
	}{
		{"malformed json", `{`, nil, http.StatusBadRequest, false},
		{"unknown field", `{"address":"10.0.0.7:2049","port":1}`, nil, http.StatusBadRequest, false},
		{"bad address", `{"address":"nowhere"}`, nil, http.StatusBadRequest, false},
		{"invalid notification", `{"address":"10.0.0.7:2049","challenge":"AAE="}`,
			fmt.Errorf("%w: challenge too short", layout.ErrInvalidNotification), http.StatusUnprocessableEntity, true},
		{"unexpected failure", `{"address":"10.0.0.7:2049"}`, errors.New("boom"), http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNotifier{readyErr: tt.readyErr}
			w := serve(poolRouter(n), "POST", "/pools/pool-a/ready", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantCalled, len(n.ready) == 1)
		})
	}
}

func TestTransferFinished(t *testing.T) {
	n := &fakeNotifier{found: true}
	body, _ := json.Marshal(TransferFinishedRequest{Stateid: types.EncodeChallengeStateid(testStateid())})

	w := serve(poolRouter(n), "POST", "/transfers/finished", string(body))

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp TransferFinishedResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.SessionFound)
	assert.Equal(t, []types.Stateid4{testStateid()}, n.finished)

	w = serve(poolRouter(n), "POST", "/transfers/finished", `{"stateid":"AAE="}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, n.finished, 1)
}

func TestKillMover(t *testing.T) {
	n := &fakeNotifier{}
	w := serve(poolRouter(n), "POST", "/pools/pool-a/movers/42/kill", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"pool-a/42"}, n.killed)

	w = serve(poolRouter(n), "POST", "/pools/pool-a/movers/abc/kill", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(poolRouter(n), "POST", "/pools/pool-a/movers/-1/kill", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	n.killErr = errors.New("pool unreachable")
	w = serve(poolRouter(n), "POST", "/pools/pool-a/movers/7/kill", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
