package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
	"github.com/marmos91/dittomds/pkg/pnfs/layout"
)

// PoolNotifier receives data-server notifications and admin kill requests.
// Implemented by *layout.Coordinator.
type PoolNotifier interface {
	OnPoolReady(ctx context.Context, pool string, addr netip.AddrPort, challenge []byte) error
	OnMoverFinished(ctx context.Context, sid types.Stateid4) bool
	KillMover(ctx context.Context, pool string, moverID int32) error
}

// PoolReadyRequest is posted by a pool once its mover listens.
type PoolReadyRequest struct {
	// Address is the mover's "host:port".
	Address string `json:"address"`

	// Challenge is the opaque value handed to the pool manager with the
	// selection request, echoed back as base64.
	Challenge []byte `json:"challenge"`
}

// TransferFinishedRequest is posted by a pool when a mover exits on its own.
type TransferFinishedRequest struct {
	// Stateid is the challenge of the transfer, base64.
	Stateid []byte `json:"stateid"`
}

// TransferFinishedResponse reports whether a session was ended.
type TransferFinishedResponse struct {
	SessionFound bool `json:"session_found"`
}

// PoolHandler handles pool notifications and mover control.
type PoolHandler struct {
	notifier PoolNotifier
}

// NewPoolHandler creates a new pool handler.
func NewPoolHandler(notifier PoolNotifier) *PoolHandler {
	return &PoolHandler{notifier: notifier}
}

// Ready handles POST /api/v1/pools/{pool}/ready.
func (h *PoolHandler) Ready(w http.ResponseWriter, r *http.Request) {
	pool := chi.URLParam(r, "pool")

	var req PoolReadyRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	addr, err := netip.ParseAddrPort(req.Address)
	if err != nil {
		BadRequest(w, "Invalid address: "+err.Error())
		return
	}

	if err := h.notifier.OnPoolReady(r.Context(), pool, addr, req.Challenge); err != nil {
		if errors.Is(err, layout.ErrInvalidNotification) {
			UnprocessableEntity(w, err.Error())
			return
		}
		InternalServerError(w, err.Error())
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// TransferFinished handles POST /api/v1/transfers/finished.
func (h *PoolHandler) TransferFinished(w http.ResponseWriter, r *http.Request) {
	var req TransferFinishedRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	sid, err := types.DecodeChallengeStateid(req.Stateid)
	if err != nil {
		BadRequest(w, "Invalid stateid: "+err.Error())
		return
	}

	found := h.notifier.OnMoverFinished(r.Context(), sid)
	WriteJSONAccepted(w, TransferFinishedResponse{SessionFound: found})
}

// KillMover handles POST /api/v1/pools/{pool}/movers/{id}/kill.
func (h *PoolHandler) KillMover(w http.ResponseWriter, r *http.Request) {
	pool := chi.URLParam(r, "pool")
	moverID, ok := moverIDParam(w, r)
	if !ok {
		return
	}

	if err := h.notifier.KillMover(r.Context(), pool, moverID); err != nil {
		logger.WarnCtx(r.Context(), "Admin mover kill failed",
			logger.Pool(pool), logger.MoverID(moverID), logger.Err(err))
		BadGateway(w, err.Error())
		return
	}

	WriteNoContent(w)
}
