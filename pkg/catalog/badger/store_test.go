package badger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittomds/pkg/catalog"
	"github.com/marmos91/dittomds/pkg/catalog/badger"
	"github.com/marmos91/dittomds/pkg/catalog/catalogtest"
)

func TestConformance(t *testing.T) {
	catalogtest.RunConformanceSuite(t, func(t *testing.T) catalog.Store {
		s, err := badger.New(badger.Config{Path: t.TempDir()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := badger.New(badger.Config{})
	assert.Error(t, err)
}

func TestEntriesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := badger.New(badger.Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, catalog.Entry{
		FileID:  "cafe",
		Type:    catalog.FileTypeRegular,
		Storage: catalog.StorageInfo{StorageClass: "tape:raw"},
	}))
	require.NoError(t, s.Close())

	s, err = badger.New(badger.Config{Path: dir})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	info, err := s.StorageInfo(ctx, "cafe")
	require.NoError(t, err)
	assert.Equal(t, "tape:raw", info.StorageClass)
}

func TestInMemory(t *testing.T) {
	s, err := badger.New(badger.Config{InMemory: true})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	assert.NoError(t, s.Healthcheck(context.Background()))
}
