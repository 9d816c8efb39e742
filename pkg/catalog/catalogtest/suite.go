// Package catalogtest is a conformance suite run against every
// catalog.Store implementation.
package catalogtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittomds/pkg/catalog"
)

// StoreFactory returns a fresh, empty store. Cleanup is the factory's job.
type StoreFactory func(t *testing.T) catalog.Store

// RunConformanceSuite runs every conformance test against factory.
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Run("PutGet", func(t *testing.T) { testPutGet(t, factory) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory) })
	t.Run("ListOrdered", func(t *testing.T) { testListOrdered(t, factory) })
	t.Run("RejectsInvalid", func(t *testing.T) { testRejectsInvalid(t, factory) })
	t.Run("Accessors", func(t *testing.T) { testAccessors(t, factory) })
	t.Run("CancelledContext", func(t *testing.T) { testCancelledContext(t, factory) })
}

func regular(id, class string) catalog.Entry {
	return catalog.Entry{
		FileID:  id,
		Type:    catalog.FileTypeRegular,
		Storage: catalog.StorageInfo{StorageClass: class, Size: 4096},
	}
}

func testPutGet(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := context.Background()

	e := regular("0a0b", "disk:fast")
	require.NoError(t, s.Put(ctx, e))

	got, err := s.Get(ctx, "0a0b")
	require.NoError(t, err)
	assert.Equal(t, e, got)
	assert.NoError(t, s.Healthcheck(ctx))
}

func testGetMissing(t *testing.T, factory StoreFactory) {
	s := factory(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func testOverwrite(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, regular("f1", "a")))
	e := regular("f1", "b")
	e.Storage.CreatedOnly = true
	require.NoError(t, s.Put(ctx, e))

	got, err := s.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Storage.StorageClass)
	assert.True(t, got.Storage.CreatedOnly)
}

func testDelete(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, regular("f1", "a")))
	require.NoError(t, s.Delete(ctx, "f1"))

	_, err := s.Get(ctx, "f1")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "f1"), catalog.ErrNotFound)
}

func testListOrdered(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := context.Background()

	empty, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, id := range []string{"03", "01", "02"} {
		require.NoError(t, s.Put(ctx, regular(id, "c")))
	}
	require.NoError(t, s.Put(ctx, catalog.Entry{FileID: "00", Type: catalog.FileTypeDirectory}))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for i, id := range []string{"00", "01", "02", "03"} {
		assert.Equal(t, id, list[i].FileID)
	}
}

func testRejectsInvalid(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := context.Background()

	assert.Error(t, s.Put(ctx, catalog.Entry{Type: catalog.FileTypeRegular}), "missing id")
	assert.Error(t, s.Put(ctx, catalog.Entry{FileID: "x", Type: catalog.FileTypeRegular}), "missing class")
	assert.Error(t, s.Put(ctx, catalog.Entry{FileID: "x", Type: catalog.FileType(42)}), "bad type")
}

func testAccessors(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, regular("r", "disk")))
	require.NoError(t, s.Put(ctx, catalog.Entry{FileID: "d", Type: catalog.FileTypeDirectory}))

	ft, err := s.FileType(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, catalog.FileTypeDirectory, ft)

	info, err := s.StorageInfo(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "disk", info.StorageClass)

	_, err = s.FileType(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func testCancelledContext(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Put(ctx, regular("x", "c")), context.Canceled)
}
