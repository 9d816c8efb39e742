// Package layout turns pNFS LAYOUTGET requests into bound storage-pool
// assignments and tears them down again on LAYOUTRETURN or when the pool
// reports the transfer finished.
//
// A LAYOUTGET for a regular file submits a mover request to the pool
// manager, records the session, and then blocks until the selected pool
// announces readiness through OnPoolReady (or the wait timeout elapses).
// Everything else is served by the metadata server itself (device id 0).
package layout

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
	"github.com/marmos91/dittomds/internal/telemetry"
	"github.com/marmos91/dittomds/pkg/catalog"
	"github.com/marmos91/dittomds/pkg/pnfs/device"
	"github.com/marmos91/dittomds/pkg/pnfs/pending"
	"github.com/marmos91/dittomds/pkg/pnfs/session"
	"github.com/marmos91/dittomds/pkg/poolmanager"
)

const (
	// DefaultWaitTimeout stays below the 30s NFS RPC retransmit timeout so
	// the client sees LAYOUTTRYLATER rather than a dropped reply.
	DefaultWaitTimeout = 27 * time.Second

	DefaultKillTimeout = 5 * time.Second
)

// ErrInvalidNotification is returned by OnPoolReady for notifications that
// were dropped.
var ErrInvalidNotification = errors.New("invalid pool notification")

var errSessionGone = errors.New("session ended while waiting for pool")

// PoolSelector submits mover requests to the pool manager.
type PoolSelector interface {
	SelectReadPool(ctx context.Context, req poolmanager.Request) (poolmanager.Ack, error)
	SelectWritePool(ctx context.Context, req poolmanager.Request) (poolmanager.Ack, error)
}

// MoverKiller stops a mover on a pool.
type MoverKiller interface {
	KillMover(ctx context.Context, pool string, moverID int32) error
}

// Catalog classifies files.
type Catalog interface {
	FileType(ctx context.Context, fileID string) (catalog.FileType, error)
	StorageInfo(ctx context.Context, fileID string) (catalog.StorageInfo, error)
}

// PendingTable correlates pool-ready notifications with waiting LAYOUTGETs.
type PendingTable = pending.Table[types.Stateid4, device.PoolEndpoint]

// NewPendingTable creates a pending table with the given grace period.
func NewPendingTable(grace time.Duration, opts ...pending.Option) *PendingTable {
	return pending.New[types.Stateid4, device.PoolEndpoint](grace, opts...)
}

// Config holds coordinator timeouts. Zero values select the defaults.
type Config struct {
	WaitTimeout time.Duration

	// PendingGrace is how long an unconsumed readiness notification is
	// kept. Defaults to twice WaitTimeout.
	PendingGrace time.Duration

	KillTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	if c.PendingGrace <= 0 {
		c.PendingGrace = 2 * c.WaitTimeout
	}
	if c.KillTimeout <= 0 {
		c.KillTimeout = DefaultKillTimeout
	}
	return c
}

// Deps are the collaborators of a Coordinator. Devices, Selector, Killer
// and Catalog are required; missing tables are created.
type Deps struct {
	Devices  *device.Registry
	Pending  *PendingTable
	Sessions *session.Table
	Selector PoolSelector
	Killer   MoverKiller
	Catalog  Catalog
	Metrics  *Metrics
}

// Request is a LAYOUTGET as seen by the coordinator.
type Request struct {
	Stateid    types.Stateid4
	FileHandle []byte
	IOMode     uint32
	ClientAddr netip.AddrPort
}

// Descriptor is a granted layout segment.
type Descriptor struct {
	DeviceID   device.DeviceID
	Offset     uint64
	Length     uint64
	IOMode     uint32
	Stateid    types.Stateid4
	FileHandle []byte
}

// FileIDOf returns the catalog key for a file handle.
func FileIDOf(fh []byte) string { return hex.EncodeToString(fh) }

// Info is a diagnostic snapshot of the coordinator state.
type Info struct {
	Pools    []device.PoolEndpoint
	Sessions []session.Record
	Pending  int
}

// Coordinator implements the pNFS device manager. Safe for concurrent use.
type Coordinator struct {
	cfg      Config
	devices  *device.Registry
	pending  *PendingTable
	sessions *session.Table
	selector PoolSelector
	killer   MoverKiller
	catalog  Catalog
	metrics  *Metrics

	killMu sync.Mutex
	closed bool
	kills  sync.WaitGroup
}

// New creates a coordinator.
func New(cfg Config, deps Deps) (*Coordinator, error) {
	cfg = cfg.withDefaults()

	switch {
	case deps.Devices == nil:
		return nil, errors.New("layout: device registry is required")
	case deps.Selector == nil:
		return nil, errors.New("layout: pool selector is required")
	case deps.Killer == nil:
		return nil, errors.New("layout: mover killer is required")
	case deps.Catalog == nil:
		return nil, errors.New("layout: catalog is required")
	}
	if deps.Pending == nil {
		deps.Pending = NewPendingTable(cfg.PendingGrace)
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewTable()
	}

	return &Coordinator{
		cfg:      cfg,
		devices:  deps.Devices,
		pending:  deps.Pending,
		sessions: deps.Sessions,
		selector: deps.Selector,
		killer:   deps.Killer,
		catalog:  deps.Catalog,
		metrics:  deps.Metrics,
	}, nil
}

// Config returns the effective configuration.
func (c *Coordinator) Config() Config { return c.cfg }

// Run evicts late readiness notifications until ctx is done.
func (c *Coordinator) Run(ctx context.Context) {
	c.pending.Run(ctx, c.cfg.PendingGrace/2)
}

// Close waits for in-flight kill instructions. Sessions ended after Close
// are dropped without a kill.
func (c *Coordinator) Close() error {
	c.killMu.Lock()
	c.closed = true
	c.killMu.Unlock()

	c.kills.Wait()
	return nil
}

// LayoutGet grants a layout covering the whole file.
func (c *Coordinator) LayoutGet(ctx context.Context, req Request) (Descriptor, error) {
	fileID := FileIDOf(req.FileHandle)
	sid := req.Stateid.String()

	ctx, span := telemetry.StartPNFSSpan(ctx, "LAYOUTGET",
		telemetry.Stateid(sid),
		telemetry.FileID(fileID),
		telemetry.IOMode(types.IOModeName(req.IOMode)),
		telemetry.ClientIP(req.ClientAddr.Addr().String()))
	defer span.End()

	lc := logger.FromContext(ctx)
	if lc == nil {
		lc = logger.NewLogContext(req.ClientAddr.Addr().String())
	}
	ctx = logger.WithContext(ctx, lc.WithProcedure("LAYOUTGET").WithStateid(sid).
		WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx)))

	id, err := c.deviceFor(ctx, req, fileID)
	if err != nil {
		telemetry.RecordError(ctx, err)
		telemetry.SetAttributes(ctx, telemetry.NFSStatus(StatusOf(err)))
		return Descriptor{}, err
	}
	telemetry.SetAttributes(ctx, telemetry.Device(id.String()), telemetry.Local(id.IsMDS()))

	return Descriptor{
		DeviceID:   id,
		Offset:     0,
		Length:     types.NFS4_UINT64_MAX,
		IOMode:     req.IOMode,
		Stateid:    req.Stateid,
		FileHandle: req.FileHandle,
	}, nil
}

func (c *Coordinator) deviceFor(ctx context.Context, req Request, fileID string) (device.DeviceID, error) {
	ft, err := c.fileType(ctx, fileID)
	if err != nil {
		return device.DeviceID{}, err
	}
	if !ft.IsOrdinary() {
		c.metrics.recordLayoutGet(outcomeLocal)
		logger.DebugCtx(ctx, "Layout served by metadata server",
			logger.FileID(fileID), "type", ft.String())
		return device.MDS, nil
	}

	ep, err := c.assignPool(ctx, req, fileID)
	if err != nil {
		return device.DeviceID{}, err
	}
	return ep.ID, nil
}

func (c *Coordinator) fileType(ctx context.Context, fileID string) (catalog.FileType, error) {
	ctx, span := telemetry.StartInternalSpan(ctx, telemetry.SpanCatalogLookup, telemetry.FileID(fileID))
	defer span.End()

	ft, err := c.catalog.FileType(ctx, fileID)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return 0, c.catalogError(ctx, fileID, err)
	}
	return ft, nil
}

func (c *Coordinator) catalogError(ctx context.Context, fileID string, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		c.metrics.recordLayoutGet(outcomeStale)
		logger.DebugCtx(ctx, "LAYOUTGET for unknown file", logger.FileID(fileID))
		return wrap(ErrStale, err)
	}
	c.metrics.recordLayoutGet(outcomeFailed)
	logger.WarnCtx(ctx, "Catalog lookup failed", logger.FileID(fileID), logger.Err(err))
	return wrap(ErrTransient, fmt.Errorf("catalog lookup: %w", err))
}

func (c *Coordinator) assignPool(ctx context.Context, req Request, fileID string) (device.PoolEndpoint, error) {
	info, err := c.catalog.StorageInfo(ctx, fileID)
	if err != nil {
		return device.PoolEndpoint{}, c.catalogError(ctx, fileID, err)
	}

	// Nothing published for this stateid so far can answer the submission
	// below. A leftover is the late reply to an earlier, timed-out attempt.
	if c.pending.Discard(req.Stateid) {
		logger.DebugCtx(ctx, "Discarded stale readiness notification")
	}

	ack, err := c.submit(ctx, req, fileID, info)
	if err != nil {
		if errors.Is(err, poolmanager.ErrNoRoute) {
			c.metrics.recordLayoutGet(outcomeNoRoute)
			logger.WarnCtx(ctx, "Pool manager unreachable", logger.FileID(fileID), logger.Err(err))
			return device.PoolEndpoint{}, wrap(ErrResource, err)
		}
		c.metrics.recordLayoutGet(outcomeFailed)
		logger.WarnCtx(ctx, "Pool selection failed", logger.FileID(fileID), logger.Err(err))
		return device.PoolEndpoint{}, wrap(ErrTransient, err)
	}

	// The session must exist before we block: a LAYOUTRETURN or
	// transfer-finished notification may race with the wait.
	moverID := ack.MoverID
	if moverID == poolmanager.NoMover {
		moverID = session.NoMover
	}
	c.sessions.Put(session.Record{
		Stateid: req.Stateid,
		Pool:    ack.Pool,
		MoverID: moverID,
		FileID:  fileID,
		IOMode:  req.IOMode,
		Started: time.Now(),
	})
	c.metrics.setSessions(c.sessions.Len())
	logger.DebugCtx(ctx, "Mover requested, waiting for pool",
		logger.Pool(ack.Pool), logger.MoverID(ack.MoverID))

	ep, err := c.await(ctx, req.Stateid, ack.Pool)
	if err != nil {
		if rec, ok := c.sessions.Remove(req.Stateid); ok {
			c.killAsync(rec)
		}
		c.metrics.setSessions(c.sessions.Len())

		if errors.Is(err, pending.ErrTimedOut) {
			c.metrics.recordLayoutGet(outcomeTimeout)
			logger.WarnCtx(ctx, "Pool did not become ready in time",
				logger.Pool(ack.Pool), logger.MoverID(ack.MoverID),
				"timeout", c.cfg.WaitTimeout)
		} else {
			c.metrics.recordLayoutGet(outcomeCanceled)
			logger.DebugCtx(ctx, "LAYOUTGET abandoned while waiting for pool", logger.Err(err))
		}
		return device.PoolEndpoint{}, wrap(ErrLayoutTryLater, err)
	}

	if _, ok := c.sessions.Get(req.Stateid); !ok {
		c.metrics.recordLayoutGet(outcomeCanceled)
		logger.DebugCtx(ctx, "Session ended before pool became ready", logger.Pool(ep.Pool))
		return device.PoolEndpoint{}, wrap(ErrLayoutTryLater, errSessionGone)
	}

	// The pool may have re-registered at a new address since publishing.
	if cur, ok := c.devices.Resolve(ep.Pool); ok {
		ep = cur
	}

	c.metrics.recordLayoutGet(outcomeGranted)
	logger.DebugCtx(ctx, "Layout granted",
		logger.Pool(ep.Pool), logger.Device(ep.ID.String()), "addr", ep.Addr.String())
	return ep, nil
}

func (c *Coordinator) submit(ctx context.Context, req Request, fileID string, info catalog.StorageInfo) (poolmanager.Ack, error) {
	preq := poolmanager.Request{
		FileID:       fileID,
		StorageClass: info.StorageClass,
		ClientAddr:   req.ClientAddr.Addr().String(),
		Challenge:    types.EncodeChallengeStateid(req.Stateid),
		TimeoutMS:    c.cfg.WaitTimeout.Milliseconds(),
	}

	read := req.IOMode == types.LAYOUTIOMODE4_READ || !info.CreatedOnly
	ctx, span := telemetry.StartClientSpan(ctx, telemetry.SpanPoolSelect,
		telemetry.FileID(fileID), telemetry.IOMode(types.IOModeName(req.IOMode)))
	defer span.End()

	var (
		ack poolmanager.Ack
		err error
	)
	if read {
		logger.DebugCtx(ctx, "Looking for read pool", logger.FileID(fileID))
		ack, err = c.selector.SelectReadPool(ctx, preq)
	} else {
		logger.DebugCtx(ctx, "Looking for write pool", logger.FileID(fileID))
		ack, err = c.selector.SelectWritePool(ctx, preq)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		return poolmanager.Ack{}, err
	}
	telemetry.SetAttributes(ctx, telemetry.Pool(ack.Pool), telemetry.MoverID(ack.MoverID))
	return ack, nil
}

// await waits for pool to report ready for sid. Notifications from any other
// pool are stale and dropped; the wait continues until the original deadline.
func (c *Coordinator) await(ctx context.Context, sid types.Stateid4, pool string) (device.PoolEndpoint, error) {
	ctx, span := telemetry.StartInternalSpan(ctx, telemetry.SpanPendingAwait)
	defer span.End()

	start := time.Now()
	deadline := start.Add(c.cfg.WaitTimeout)
	for {
		ep, err := c.pending.AwaitAndTake(ctx, sid, time.Until(deadline))
		if err == nil && ep.Pool != pool {
			logger.WarnCtx(ctx, "Dropping readiness notification from unexpected pool",
				logger.Pool(ep.Pool), "expected", pool)
			continue
		}
		c.metrics.observeWait(time.Since(start))
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		return ep, err
	}
}

// OnPoolReady records that pool is serving at addr and hands the endpoint to
// the LAYOUTGET identified by challenge, an XDR stateid4. It never blocks.
// Invalid notifications are logged and dropped; the returned error wraps
// ErrInvalidNotification.
func (c *Coordinator) OnPoolReady(ctx context.Context, pool string, addr netip.AddrPort, challenge []byte) error {
	ctx, span := telemetry.StartInternalSpan(ctx, telemetry.SpanPoolReady,
		telemetry.Pool(pool), telemetry.PoolEndpoint(addr.String()))
	defer span.End()

	ep, isNew, err := c.devices.Upsert(pool, addr)
	if err != nil {
		logger.WarnCtx(ctx, "Dropping pool-ready notification with invalid address",
			logger.Pool(pool), "addr", addr.String(), logger.Err(err))
		return fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	if isNew {
		logger.InfoCtx(ctx, "New pool device", logger.Pool(pool),
			logger.Device(ep.ID.String()), "addr", addr.String())
	}

	sid, err := types.DecodeChallengeStateid(challenge)
	if err != nil {
		logger.WarnCtx(ctx, "Dropping pool-ready notification with malformed challenge",
			logger.Pool(pool), logger.Err(err))
		return fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}

	c.pending.Publish(sid, ep)
	telemetry.SetAttributes(ctx, telemetry.Stateid(sid.String()), telemetry.Device(ep.ID.String()))
	logger.DebugCtx(ctx, "Pool ready", logger.Pool(pool), logger.Stateid(sid.String()),
		logger.Device(ep.ID.String()))
	return nil
}

// LayoutReturn ends the session for sid and instructs its pool to kill the
// mover. Unknown stateids are ignored.
func (c *Coordinator) LayoutReturn(ctx context.Context, sid types.Stateid4) {
	rec, ok := c.sessions.Remove(sid)
	c.metrics.setSessions(c.sessions.Len())
	if !ok {
		logger.DebugCtx(ctx, "LAYOUTRETURN for unknown session", logger.Stateid(sid.String()))
		return
	}

	logger.DebugCtx(ctx, "Releasing device", logger.Stateid(sid.String()),
		logger.Pool(rec.Pool), logger.MoverID(rec.MoverID))
	c.killAsync(rec)
}

// OnMoverFinished forgets the session for sid without contacting the pool.
// It reports whether a session was removed.
func (c *Coordinator) OnMoverFinished(ctx context.Context, sid types.Stateid4) bool {
	ctx, span := telemetry.StartInternalSpan(ctx, telemetry.SpanMoverFinished,
		telemetry.Stateid(sid.String()))
	defer span.End()

	rec, ok := c.sessions.Remove(sid)
	c.metrics.setSessions(c.sessions.Len())
	if ok {
		logger.DebugCtx(ctx, "Mover done", logger.Stateid(sid.String()),
			logger.Pool(rec.Pool), logger.MoverID(rec.MoverID))
	}
	return ok
}

// KillMover synchronously instructs pool to kill mover. Used by the admin API.
func (c *Coordinator) KillMover(ctx context.Context, pool string, moverID int32) error {
	ctx, span := telemetry.StartClientSpan(ctx, telemetry.SpanPoolKill,
		telemetry.Pool(pool), telemetry.MoverID(moverID))
	defer span.End()

	err := c.killer.KillMover(ctx, pool, moverID)
	c.metrics.recordKill(err)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("kill mover %d on %s: %w", moverID, pool, err)
	}
	logger.InfoCtx(ctx, "Mover kill requested", logger.Pool(pool), logger.MoverID(moverID))
	return nil
}

func (c *Coordinator) killAsync(rec session.Record) {
	if rec.MoverID == session.NoMover {
		return
	}

	c.killMu.Lock()
	if c.closed {
		c.killMu.Unlock()
		logger.Warn("Coordinator closed, mover not killed",
			logger.Pool(rec.Pool), logger.MoverID(rec.MoverID),
			logger.Stateid(rec.Stateid.String()))
		return
	}
	c.kills.Add(1)
	c.killMu.Unlock()

	go func() {
		defer c.kills.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.KillTimeout)
		defer cancel()
		ctx, span := telemetry.StartClientSpan(ctx, telemetry.SpanPoolKill,
			telemetry.Pool(rec.Pool), telemetry.MoverID(rec.MoverID))
		defer span.End()

		err := c.killer.KillMover(ctx, rec.Pool, rec.MoverID)
		c.metrics.recordKill(err)
		if err != nil {
			telemetry.RecordError(ctx, err)
			logger.Warn("Failed to kill mover",
				logger.Pool(rec.Pool), logger.MoverID(rec.MoverID),
				logger.Stateid(rec.Stateid.String()), logger.Err(err))
		}
	}()
}

// GetDeviceInfo resolves id. The metadata server id resolves to local, the
// address the client connected to. Unknown ids return false.
func (c *Coordinator) GetDeviceInfo(id device.DeviceID, local netip.AddrPort) (device.Device, bool) {
	return c.devices.Device(id, local)
}

// GetDeviceList returns the ids of all live pool devices.
func (c *Coordinator) GetDeviceList() []device.DeviceID {
	return c.devices.List()
}

// Sessions returns a snapshot of active sessions.
func (c *Coordinator) Sessions() []session.Record {
	return c.sessions.Snapshot()
}

// Info returns a diagnostic snapshot.
func (c *Coordinator) Info() Info {
	return Info{
		Pools:    c.devices.Pools(),
		Sessions: c.sessions.Snapshot(),
		Pending:  c.pending.Len(),
	}
}
