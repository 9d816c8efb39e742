// Package session tracks which pool and mover serve each open pNFS I/O
// session, so the mover can be torn down when the layout is returned.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
)

// NoMover marks a record whose pool has not assigned a mover yet.
const NoMover int32 = -1

// Record describes one active layout session.
type Record struct {
	Stateid types.Stateid4
	Pool    string
	MoverID int32
	FileID  string
	IOMode  uint32
	Started time.Time
}

// Table is the set of active sessions keyed by stateid. Safe for concurrent
// use.
type Table struct {
	mu       sync.RWMutex
	sessions map[types.Stateid4]Record
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{sessions: make(map[types.Stateid4]Record)}
}

// Put records rec as active, replacing any record for the same stateid.
func (t *Table) Put(rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[rec.Stateid] = rec
}

// Remove deletes and returns the record for sid. Removing an absent stateid
// returns false and is otherwise a no-op.
func (t *Table) Remove(sid types.Stateid4) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.sessions[sid]
	if ok {
		delete(t.sessions, sid)
	}
	return rec, ok
}

// Get returns the record for sid without removing it.
func (t *Table) Get(sid types.Stateid4) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.sessions[sid]
	return rec, ok
}

// Len returns the number of active sessions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// Snapshot returns a copy of all records, oldest first.
func (t *Table) Snapshot() []Record {
	t.mu.RLock()
	out := make([]Record, 0, len(t.sessions))
	for _, rec := range t.sessions {
		out = append(out, rec)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Started.Equal(out[j].Started) {
			return out[i].Stateid.String() < out[j].Stateid.String()
		}
		return out[i].Started.Before(out[j].Started)
	})
	return out
}
