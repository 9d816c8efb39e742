package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
)

func sid(n byte) types.Stateid4 {
	return types.Stateid4{Seqid: 1, Other: [types.NFS4_OTHER_SIZE]byte{n}}
}

func TestTable_PutGetRemove(t *testing.T) {
	tbl := NewTable()
	rec := Record{Stateid: sid(1), Pool: "poolA", MoverID: 17, FileID: "f1", Started: time.Now()}
	tbl.Put(rec)

	got, ok := tbl.Get(sid(1))
	require.True(t, ok)
	assert.Equal(t, rec, got)
	assert.Equal(t, 1, tbl.Len())

	removed, ok := tbl.Remove(sid(1))
	require.True(t, ok)
	assert.Equal(t, "poolA", removed.Pool)
	assert.Equal(t, int32(17), removed.MoverID)

	_, ok = tbl.Remove(sid(1))
	assert.False(t, ok, "second removal must be a no-op")
	assert.Equal(t, 0, tbl.Len())
}

func TestTable_PutOverwrites(t *testing.T) {
	tbl := NewTable()
	tbl.Put(Record{Stateid: sid(1), Pool: "poolA", MoverID: NoMover})
	tbl.Put(Record{Stateid: sid(1), Pool: "poolB", MoverID: 3})

	assert.Equal(t, 1, tbl.Len())
	got, _ := tbl.Get(sid(1))
	assert.Equal(t, "poolB", got.Pool)
	assert.Equal(t, int32(3), got.MoverID)
}

func TestTable_SnapshotOrderedAndDetached(t *testing.T) {
	tbl := NewTable()
	base := time.Unix(1700000000, 0)
	tbl.Put(Record{Stateid: sid(2), Pool: "b", Started: base.Add(time.Second)})
	tbl.Put(Record{Stateid: sid(1), Pool: "a", Started: base})

	snap := tbl.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].Pool)
	assert.Equal(t, "b", snap[1].Pool)

	tbl.Remove(sid(1))
	assert.Len(t, snap, 2)
}

func TestTable_ConcurrentDoubleRemove(t *testing.T) {
	tbl := NewTable()
	const n = 100
	for i := 0; i < n; i++ {
		tbl.Put(Record{Stateid: sid(byte(i))})
	}

	var mu sync.Mutex
	removed := 0
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				if _, ok := tbl.Remove(sid(byte(i))); ok {
					mu.Lock()
					removed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, n, removed)
	assert.Equal(t, 0, tbl.Len())
}
