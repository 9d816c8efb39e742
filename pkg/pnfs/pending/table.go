// Package pending correlates asynchronous pool-ready notifications with the
// LAYOUTGET calls waiting for them.
//
// Each token owns a one-shot slot created by whichever side arrives first:
// the notification handler publishing a value, or the caller waiting for it.
// A publish that precedes the wait is therefore never lost. Values published
// after their waiter gave up are evicted once the grace period elapses, or
// earlier by Discard.
package pending

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marmos91/dittomds/internal/logger"
)

// ErrTimedOut is returned by AwaitAndTake when no value arrives in time.
var ErrTimedOut = errors.New("pending assignment timed out")

type slot[V any] struct {
	ch      chan V
	waiters int

	// expires is set while a value sits in ch with nobody waiting for it.
	expires time.Time
}

// Table is a blocking correlation table keyed by K. Safe for concurrent use.
type Table[K comparable, V any] struct {
	mu        sync.Mutex
	slots     map[K]*slot[V]
	grace     time.Duration
	lastSweep time.Time

	now     func() time.Time
	metrics *Metrics
}

// Option configures a Table.
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics *Metrics
}

// WithClock overrides the time source used for expiry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics attaches metrics to the table.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New creates a table that evicts unconsumed values after grace.
func New[K comparable, V any](grace time.Duration, opts ...Option) *Table[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Table[K, V]{
		slots:     make(map[K]*slot[V]),
		grace:     grace,
		lastSweep: o.now(),
		now:       o.now,
		metrics:   o.metrics,
	}
}

func (t *Table[K, V]) slotLocked(key K) *slot[V] {
	s, ok := t.slots[key]
	if !ok {
		s = &slot[V]{ch: make(chan V, 1)}
		t.slots[key] = s
	}
	return s
}

// Publish stores value under key, replacing any unconsumed value, and wakes
// the waiter for key if there is one. It never blocks.
func (t *Table[K, V]) Publish(key K, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s := t.slotLocked(key)
	select {
	case <-s.ch:
		logger.Debug("Pending assignment replaced before it was consumed")
	default:
	}
	s.ch <- value
	if s.waiters == 0 {
		s.expires = now.Add(t.grace)
	} else {
		s.expires = time.Time{}
	}
	t.metrics.recordPublished()

	if now.Sub(t.lastSweep) >= t.grace {
		t.sweepLocked(now)
	}
	t.metrics.setPending(len(t.slots))
}

// AwaitAndTake blocks until a value for key is available and removes it, or
// until timeout elapses (ErrTimedOut) or ctx is done (ctx.Err()). A value
// that is present when the deadline fires is still delivered.
func (t *Table[K, V]) AwaitAndTake(ctx context.Context, key K, timeout time.Duration) (V, error) {
	t.mu.Lock()
	s := t.slotLocked(key)
	s.waiters++
	t.metrics.setPending(len(t.slots))
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var cause error
	select {
	case v := <-s.ch:
		t.release(key, s)
		return v, nil
	case <-timer.C:
		cause = ErrTimedOut
	case <-ctx.Done():
		cause = ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case v := <-s.ch:
		t.releaseLocked(key, s)
		return v, nil
	default:
	}
	t.releaseLocked(key, s)
	var zero V
	return zero, cause
}

func (t *Table[K, V]) release(key K, s *slot[V]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.releaseLocked(key, s)
}

func (t *Table[K, V]) releaseLocked(key K, s *slot[V]) {
	s.waiters--
	if s.waiters == 0 {
		if len(s.ch) == 0 {
			if t.slots[key] == s {
				delete(t.slots, key)
			}
		} else if s.expires.IsZero() {
			s.expires = t.now().Add(t.grace)
		}
	}
	t.metrics.setPending(len(t.slots))
}

// Discard drops an unconsumed value for key. A slot with a waiter is left
// alone. It reports whether a value was dropped.
func (t *Table[K, V]) Discard(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[key]
	if !ok || s.waiters > 0 {
		return false
	}
	delete(t.slots, key)
	t.metrics.setPending(len(t.slots))
	return len(s.ch) > 0
}

// Len returns the number of tokens with a waiter or an unconsumed value.
func (t *Table[K, V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}

// Sweep evicts values that nobody consumed within the grace period and
// returns how many were dropped.
func (t *Table[K, V]) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.sweepLocked(t.now())
	t.metrics.setPending(len(t.slots))
	return n
}

func (t *Table[K, V]) sweepLocked(now time.Time) int {
	t.lastSweep = now
	evicted := 0
	for key, s := range t.slots {
		if s.waiters > 0 || s.expires.IsZero() || now.Before(s.expires) {
			continue
		}
		delete(t.slots, key)
		evicted++
	}
	if evicted > 0 {
		t.metrics.recordExpired(evicted)
		logger.Debug("Evicted late pending assignments", "count", evicted)
	}
	return evicted
}

// Run sweeps the table every interval until ctx is done.
func (t *Table[K, V]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep()
		}
	}
}
