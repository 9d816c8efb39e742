package handlers

import (
	"net/http"
	"time"

	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
	"github.com/marmos91/dittomds/pkg/pnfs/layout"
	"github.com/marmos91/dittomds/pkg/pnfs/session"
)

// StateSource exposes the coordinator's tables. Implemented by
// *layout.Coordinator.
type StateSource interface {
	Info() layout.Info
}

// DeviceResponse is one known pool device.
type DeviceResponse struct {
	DeviceID string `json:"device_id"`
	Pool     string `json:"pool"`
	Address  string `json:"address"`
}

// SessionResponse is one active layout session.
type SessionResponse struct {
	Stateid string    `json:"stateid"`
	Pool    string    `json:"pool"`
	MoverID int32     `json:"mover_id"`
	FileID  string    `json:"file_id"`
	IOMode  string    `json:"iomode"`
	Started time.Time `json:"started"`
}

// InfoResponse is the door summary.
type InfoResponse struct {
	Threads  int               `json:"threads"`
	InFlight int               `json:"in_flight"`
	Pending  int               `json:"pending"`
	Pools    []DeviceResponse  `json:"pools"`
	Movers   []SessionResponse `json:"movers"`
}

// StateHandler serves read-only views of devices and sessions.
type StateHandler struct {
	source  StateSource
	workers WorkerPool
}

// NewStateHandler creates a new state handler. workers may be nil.
func NewStateHandler(source StateSource, workers WorkerPool) *StateHandler {
	return &StateHandler{source: source, workers: workers}
}

// Devices handles GET /api/v1/devices.
func (h *StateHandler) Devices(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, deviceResponses(h.source.Info()))
}

// Sessions handles GET /api/v1/sessions.
func (h *StateHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, sessionResponses(h.source.Info().Sessions))
}

// Info handles GET /api/v1/info.
func (h *StateHandler) Info(w http.ResponseWriter, r *http.Request) {
	info := h.source.Info()
	resp := InfoResponse{
		Pending: info.Pending,
		Pools:   deviceResponses(info),
		Movers:  sessionResponses(info.Sessions),
	}
	if h.workers != nil {
		resp.Threads = h.workers.ThreadCount()
		resp.InFlight = h.workers.InFlight()
	}
	WriteJSONOK(w, resp)
}

func deviceResponses(info layout.Info) []DeviceResponse {
	out := make([]DeviceResponse, 0, len(info.Pools))
	for _, ep := range info.Pools {
		out = append(out, DeviceResponse{
			DeviceID: ep.ID.String(),
			Pool:     ep.Pool,
			Address:  ep.Addr.String(),
		})
	}
	return out
}

func sessionResponses(recs []session.Record) []SessionResponse {
	out := make([]SessionResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, SessionResponse{
			Stateid: rec.Stateid.String(),
			Pool:    rec.Pool,
			MoverID: rec.MoverID,
			FileID:  rec.FileID,
			IOMode:  types.IOModeName(rec.IOMode),
			Started: rec.Started.UTC(),
		})
	}
	return out
}
