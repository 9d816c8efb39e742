package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsHandler_Threads(t *testing.T) {
	workers := &fakeWorkers{limit: 32, inFlight: 1}
	h := NewSettingsHandler(workers)

	w := httptest.NewRecorder()
	h.GetThreads(w, httptest.NewRequest("GET", "/api/v1/settings/threads", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":32,"in_flight":1}`, w.Body.String())

	w = httptest.NewRecorder()
	h.PutThreads(w, httptest.NewRequest("PUT", "/api/v1/settings/threads", strings.NewReader(`{"count":8}`)))
	require.Equal(t, http.StatusOK, w.Code)
	var got ThreadsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, 8, got.Count)
	assert.Equal(t, 8, workers.limit)
}

func TestSettingsHandler_RejectsInvalidCount(t *testing.T) {
	workers := &fakeWorkers{limit: 32}
	h := NewSettingsHandler(workers)

	w := httptest.NewRecorder()
	h.PutThreads(w, httptest.NewRequest("PUT", "/api/v1/settings/threads", strings.NewReader(`{"count":0}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 32, workers.limit)

	w = httptest.NewRecorder()
	h.PutThreads(w, httptest.NewRequest("PUT", "/api/v1/settings/threads", strings.NewReader(`{"count":"many"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
