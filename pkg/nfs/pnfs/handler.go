// Package pnfs implements the metadata-server side of the NFSv4.1 parallel
// NFS operations (LAYOUTGET, LAYOUTRETURN, GETDEVICEINFO, GETDEVICELIST).
//
// Handlers decode XDR arguments, call the DeviceManager and encode results.
// COMPOUND framing, sessions and RPC transport belong to the surrounding
// protocol engine, which hands each operation to a Dispatcher.
package pnfs

import (
	"bytes"
	"context"
	"io"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
	"github.com/marmos91/dittomds/internal/protocol/xdr"
	"github.com/marmos91/dittomds/pkg/metrics"
	"github.com/marmos91/dittomds/pkg/pnfs/device"
	"github.com/marmos91/dittomds/pkg/pnfs/layout"
)

// DefaultStripeUnit is the stripe unit advertised in file layouts.
const DefaultStripeUnit = 1 << 20

// DeviceManager is the layout authority consulted by the handlers.
// *layout.Coordinator implements it.
type DeviceManager interface {
	LayoutGet(ctx context.Context, req layout.Request) (layout.Descriptor, error)
	LayoutReturn(ctx context.Context, sid types.Stateid4)
	GetDeviceInfo(id device.DeviceID, local netip.AddrPort) (device.Device, bool)
	GetDeviceList() []device.DeviceID
}

// Context carries the per-operation state supplied by the protocol engine.
type Context struct {
	// Context is the request context. Nil means context.Background().
	Context context.Context

	// CurrentFH is the current filehandle. Nil means no filehandle is set.
	CurrentFH []byte

	// ClientAddr is the remote address of the client connection.
	ClientAddr netip.AddrPort

	// LocalAddr is the server address the client connected to. It is the
	// address advertised for the metadata-server device.
	LocalAddr netip.AddrPort
}

func (c *Context) ctx() context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}

// Result is the outcome of one operation: its status and the XDR-encoded
// result body (status included).
type Result struct {
	Status uint32
	OpCode uint32
	Data   []byte
}

// OpHandler is the signature of an operation handler. The reader is
// positioned at the operation's arguments.
type OpHandler func(cc *Context, reader io.Reader) *Result

// Handler serves pNFS operations through its opDispatchTable.
type Handler struct {
	dm      DeviceManager
	metrics metrics.PNFSMetrics

	// stripeUnit is the nfl_util4 stripe unit of granted file layouts.
	stripeUnit uint32

	// verifier identifies this server instance in GETDEVICELIST cookies.
	verifier types.Verifier4

	opDispatchTable map[uint32]OpHandler
}

// NewHandler creates a handler backed by dm. m may be nil.
func NewHandler(dm DeviceManager, m metrics.PNFSMetrics) *Handler {
	h := &Handler{
		dm:              dm,
		metrics:         m,
		stripeUnit:      DefaultStripeUnit,
		opDispatchTable: make(map[uint32]OpHandler),
	}
	boot := uuid.New()
	copy(h.verifier[:], boot[:])

	h.opDispatchTable[types.OP_LAYOUTGET] = h.handleLayoutGet
	h.opDispatchTable[types.OP_LAYOUTRETURN] = h.handleLayoutReturn
	h.opDispatchTable[types.OP_GETDEVICEINFO] = h.handleGetDeviceInfo
	h.opDispatchTable[types.OP_GETDEVICELIST] = h.handleGetDeviceList

	return h
}

// Handle runs operation op. Operations without a handler return
// NFS4ERR_NOTSUPP.
func (h *Handler) Handle(cc *Context, op uint32, reader io.Reader) *Result {
	name := types.OpName(op)
	start := time.Now()
	if h.metrics != nil {
		h.metrics.RecordRequestStart(name)
		defer h.metrics.RecordRequestEnd(name)
	}

	handler, ok := h.opDispatchTable[op]
	if !ok {
		logger.Debug("pNFS operation not supported", "op", op, "client", cc.ClientAddr)
		return statusResult(op, types.NFS4ERR_NOTSUPP)
	}

	res := handler(cc, reader)
	if h.metrics != nil {
		h.metrics.RecordRequest(name, time.Since(start), types.StatusName(res.Status))
	}
	return res
}

// requireCurrentFH returns NFS4ERR_NOFILEHANDLE when no filehandle is set.
func requireCurrentFH(cc *Context) uint32 {
	if len(cc.CurrentFH) == 0 {
		return types.NFS4ERR_NOFILEHANDLE
	}
	return types.NFS4_OK
}

func statusResult(op, status uint32) *Result {
	return &Result{
		Status: status,
		OpCode: op,
		Data:   encodeStatusOnly(status),
	}
}

// encodeStatusOnly encodes just a status code as XDR.
func encodeStatusOnly(status uint32) []byte {
	var buf bytes.Buffer
	_ = xdr.WriteUint32(&buf, status)
	return buf.Bytes()
}
