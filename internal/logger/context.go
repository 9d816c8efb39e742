package logger

import (
	"context"
	"time"
)

type contextKey struct{}

// LogContext holds request-scoped fields injected by the *Ctx helpers.
type LogContext struct {
	TraceID   string
	SpanID    string
	Procedure string // LAYOUTGET, GETDEVICEINFO, pool-ready, ...
	ClientIP  string
	Stateid   string
	Pool      string
	StartTime time.Time
}

// WithContext returns a copy of ctx carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, contextKey{}, lc)
}

// FromContext returns the LogContext of ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(contextKey{}).(*LogContext)
	return lc
}

// NewLogContext starts a LogContext for a request from clientIP.
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{ClientIP: clientIP, StartTime: time.Now()}
}

// Clone returns a copy of lc. A nil receiver yields nil.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithProcedure returns a copy with the procedure set.
func (lc *LogContext) WithProcedure(procedure string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.Procedure = procedure
	}
	return c
}

// WithStateid returns a copy with the session stateid set.
func (lc *LogContext) WithStateid(stateid string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.Stateid = stateid
	}
	return c
}

// WithPool returns a copy with the pool name set.
func (lc *LogContext) WithPool(pool string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.Pool = pool
	}
	return c
}

// WithTrace returns a copy with trace ids set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.TraceID = traceID
		c.SpanID = spanID
	}
	return c
}

// DurationMs returns milliseconds since StartTime.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}
