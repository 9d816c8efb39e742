package logger

import (
	"log/slog"
)

// Standard field keys. Use them consistently so logs can be queried by field.
const (
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	KeyProcedure = "procedure"
	KeyStatus    = "status"
	KeyClientIP  = "client_ip"
	KeyRequestID = "request_id"

	// pNFS
	KeyStateid = "stateid"
	KeyPool    = "pool"
	KeyMoverID = "mover_id"
	KeyDevice  = "device"
	KeyAddr    = "addr"
	KeyFileID  = "file_id"
	KeyIOMode  = "iomode"

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// Procedure returns the procedure attribute.
func Procedure(name string) slog.Attr { return slog.String(KeyProcedure, name) }

// Status returns the NFS status attribute.
func Status(code uint32) slog.Attr { return slog.Uint64(KeyStatus, uint64(code)) }

// ClientIP returns the client address attribute.
func ClientIP(addr string) slog.Attr { return slog.String(KeyClientIP, addr) }

// Stateid returns the session stateid attribute.
func Stateid(s string) slog.Attr { return slog.String(KeyStateid, s) }

// Pool returns the storage pool attribute.
func Pool(name string) slog.Attr { return slog.String(KeyPool, name) }

// MoverID returns the mover attribute.
func MoverID(id int32) slog.Attr { return slog.Int(KeyMoverID, int(id)) }

// Device returns the device id attribute.
func Device(id string) slog.Attr { return slog.String(KeyDevice, id) }

// FileID returns the file id attribute.
func FileID(id string) slog.Attr { return slog.String(KeyFileID, id) }

// DurationMs returns the duration attribute.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns the error attribute; nil errors yield an empty attribute.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
