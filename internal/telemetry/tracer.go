package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys.
const (
	AttrClientIP = "client.ip"

	AttrNFSOperation = "nfs.operation"
	AttrNFSStatus    = "nfs.status"

	AttrPNFSStateid  = "pnfs.stateid"
	AttrPNFSPool     = "pnfs.pool"
	AttrPNFSMoverID  = "pnfs.mover_id"
	AttrPNFSDevice   = "pnfs.device"
	AttrPNFSIOMode   = "pnfs.iomode"
	AttrPNFSFileID   = "pnfs.file_id"
	AttrPNFSLocal    = "pnfs.local"
	AttrPoolRequest  = "poolmanager.request_id"
	AttrPoolEndpoint = "poolmanager.endpoint"
)

// Span names.
const (
	SpanPNFSPrefix     = "pnfs."
	SpanPoolSelect     = "poolmanager.select"
	SpanPoolKill       = "poolmanager.kill_mover"
	SpanPoolReady      = "notify.pool_ready"
	SpanMoverFinished  = "notify.mover_finished"
	SpanCatalogLookup  = "catalog.lookup"
	SpanPendingAwait   = "pending.await"
	SpanDispatchQueued = "dispatch.queued"
)

// ClientIP returns the client address attribute.
func ClientIP(ip string) attribute.KeyValue { return attribute.String(AttrClientIP, ip) }

// NFSStatus returns the NFS status attribute.
func NFSStatus(status uint32) attribute.KeyValue {
	return attribute.Int64(AttrNFSStatus, int64(status))
}

// Stateid returns the session stateid attribute.
func Stateid(s string) attribute.KeyValue { return attribute.String(AttrPNFSStateid, s) }

// Pool returns the pool name attribute.
func Pool(name string) attribute.KeyValue { return attribute.String(AttrPNFSPool, name) }

// MoverID returns the mover attribute.
func MoverID(id int32) attribute.KeyValue { return attribute.Int(AttrPNFSMoverID, int(id)) }

// Device returns the device id attribute.
func Device(id string) attribute.KeyValue { return attribute.String(AttrPNFSDevice, id) }

// IOMode returns the layout I/O mode attribute.
func IOMode(mode string) attribute.KeyValue { return attribute.String(AttrPNFSIOMode, mode) }

// FileID returns the file id attribute.
func FileID(id string) attribute.KeyValue { return attribute.String(AttrPNFSFileID, id) }

// Local marks a layout served by the metadata server itself.
func Local(local bool) attribute.KeyValue { return attribute.Bool(AttrPNFSLocal, local) }

// PoolRequestID returns the pool-selection request id attribute.
func PoolRequestID(id string) attribute.KeyValue { return attribute.String(AttrPoolRequest, id) }

// PoolEndpoint returns the pool data-server address attribute.
func PoolEndpoint(addr string) attribute.KeyValue { return attribute.String(AttrPoolEndpoint, addr) }

// StartPNFSSpan starts a server span named "pnfs.<OPERATION>".
func StartPNFSSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String(AttrNFSOperation, operation))
	return StartSpan(ctx, SpanPNFSPrefix+operation,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...))
}

// StartClientSpan starts a client span for an outbound call.
func StartClientSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
}

// StartInternalSpan starts an internal span.
func StartInternalSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
}
