package pnfs

import (
	"container/list"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
	"github.com/marmos91/dittomds/pkg/metrics"
)

// DefaultThreadCount is the initial worker limit.
const DefaultThreadCount = 32

// Dispatcher runs operations on a bounded number of workers. The limit can
// be changed while operations are running; waiters are admitted in arrival
// order.
type Dispatcher struct {
	handler *Handler
	metrics metrics.PNFSMetrics

	mu      sync.Mutex
	limit   int
	active  int
	waiters list.List // of chan struct{}
}

// NewDispatcher creates a dispatcher in front of h. threads < 1 selects
// DefaultThreadCount. m may be nil.
func NewDispatcher(h *Handler, threads int, m metrics.PNFSMetrics) *Dispatcher {
	if threads < 1 {
		threads = DefaultThreadCount
	}
	d := &Dispatcher{handler: h, metrics: m, limit: threads}
	if m != nil {
		m.SetThreadCount(threads)
	}
	return d
}

// Dispatch waits for a free worker and runs op. If the request context ends
// while waiting, NFS4ERR_DELAY is returned without running the operation.
func (d *Dispatcher) Dispatch(cc *Context, op uint32, reader io.Reader) *Result {
	start := time.Now()
	if err := d.acquire(cc.ctx()); err != nil {
		logger.Debug("pNFS operation dropped while queued", "op", types.OpName(op), "error", err)
		return statusResult(op, types.NFS4ERR_DELAY)
	}
	defer d.release()

	if d.metrics != nil {
		d.metrics.RecordQueueWait(time.Since(start))
	}
	return d.handler.Handle(cc, op, reader)
}

// SetThreadCount changes the worker limit. Shrinking does not interrupt
// running operations; new ones wait until the active count drops below n.
func (d *Dispatcher) SetThreadCount(n int) error {
	if n < 1 {
		return fmt.Errorf("thread count must be positive, got %d", n)
	}

	d.mu.Lock()
	old := d.limit
	d.limit = n
	d.grantLocked()
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.SetThreadCount(n)
	}
	logger.Info("pNFS worker limit changed", "from", old, "to", n)
	return nil
}

// ThreadCount returns the current worker limit.
func (d *Dispatcher) ThreadCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.limit
}

// InFlight returns the number of operations currently running.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

func (d *Dispatcher) acquire(ctx context.Context) error {
	d.mu.Lock()
	if d.active < d.limit && d.waiters.Len() == 0 {
		d.active++
		d.mu.Unlock()
		return nil
	}

	ready := make(chan struct{})
	elem := d.waiters.PushBack(ready)
	d.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		d.mu.Lock()
		select {
		case <-ready:
			// Granted concurrently with cancellation: hand the slot on.
			d.active--
			d.grantLocked()
		default:
			d.waiters.Remove(elem)
		}
		d.mu.Unlock()
		return ctx.Err()
	}
}

func (d *Dispatcher) release() {
	d.mu.Lock()
	d.active--
	d.grantLocked()
	d.mu.Unlock()
}

// grantLocked admits waiters while there is room. Callers hold mu.
func (d *Dispatcher) grantLocked() {
	for d.active < d.limit && d.waiters.Len() > 0 {
		front := d.waiters.Front()
		d.waiters.Remove(front)
		d.active++
		close(front.Value.(chan struct{}))
	}
}
