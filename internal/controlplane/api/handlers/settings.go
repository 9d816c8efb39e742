package handlers

import (
	"net/http"

	"github.com/marmos91/dittomds/internal/logger"
)

// WorkerPool is the pNFS operation worker limit. Implemented by
// *pnfs.Dispatcher.
type WorkerPool interface {
	ThreadCount() int
	InFlight() int
	SetThreadCount(n int) error
}

// ThreadsRequest sets the worker limit.
type ThreadsRequest struct {
	Count int `json:"count"`
}

// ThreadsResponse reports the worker limit and current use.
type ThreadsResponse struct {
	Count    int `json:"count"`
	InFlight int `json:"in_flight"`
}

// SettingsHandler handles runtime-tunable settings.
type SettingsHandler struct {
	workers WorkerPool
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(workers WorkerPool) *SettingsHandler {
	return &SettingsHandler{workers: workers}
}

// GetThreads handles GET /api/v1/settings/threads.
func (h *SettingsHandler) GetThreads(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, h.threads())
}

// PutThreads handles PUT /api/v1/settings/threads.
func (h *SettingsHandler) PutThreads(w http.ResponseWriter, r *http.Request) {
	var req ThreadsRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	old := h.workers.ThreadCount()
	if err := h.workers.SetThreadCount(req.Count); err != nil {
		UnprocessableEntity(w, err.Error())
		return
	}

	logger.InfoCtx(r.Context(), "Worker limit changed", "from", old, "to", req.Count)
	WriteJSONOK(w, h.threads())
}

func (h *SettingsHandler) threads() ThreadsResponse {
	return ThreadsResponse{
		Count:    h.workers.ThreadCount(),
		InFlight: h.workers.InFlight(),
	}
}
