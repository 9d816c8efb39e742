package apiclient

import (
	"context"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
	"github.com/marmos91/dittomds/pkg/catalog"
	"github.com/marmos91/dittomds/pkg/catalog/memory"
	"github.com/marmos91/dittomds/pkg/controlplane/api"
	"github.com/marmos91/dittomds/pkg/nfs/pnfs"
	"github.com/marmos91/dittomds/pkg/pnfs/device"
	"github.com/marmos91/dittomds/pkg/pnfs/layout"
	"github.com/marmos91/dittomds/pkg/poolmanager"
)

type stubPoolManager struct {
	killed chan int32
}

func (s *stubPoolManager) SelectReadPool(context.Context, poolmanager.Request) (poolmanager.Ack, error) {
	return poolmanager.Ack{Pool: "pool-a", MoverID: 5}, nil
}

func (s *stubPoolManager) SelectWritePool(context.Context, poolmanager.Request) (poolmanager.Ack, error) {
	return poolmanager.Ack{Pool: "pool-a", MoverID: 6}, nil
}

func (s *stubPoolManager) KillMover(_ context.Context, _ string, moverID int32) error {
	s.killed <- moverID
	return nil
}

type door struct {
	client      *Client
	coordinator *layout.Coordinator
	catalog     catalog.Store
	pm          *stubPoolManager
	dispatcher  *pnfs.Dispatcher
}

func newDoor(t *testing.T) *door {
	t.Helper()

	cat := memory.New()
	pm := &stubPoolManager{killed: make(chan int32, 4)}
	coord, err := layout.New(layout.Config{WaitTimeout: 5 * time.Second}, layout.Deps{
		Devices:  device.NewRegistry(nil),
		Selector: pm,
		Killer:   pm,
		Catalog:  cat,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = coord.Close() })

	dispatcher := pnfs.NewDispatcher(pnfs.NewHandler(coord, nil), 4, nil)

	srv := httptest.NewServer(api.NewRouter(api.Deps{
		Coordinator: coord,
		Workers:     dispatcher,
		Catalog:     cat,
	}, nil))
	t.Cleanup(srv.Close)

	return &door{client: New(srv.URL), coordinator: coord, catalog: cat, pm: pm, dispatcher: dispatcher}
}

func TestDoor_LayoutFlowThroughAPI(t *testing.T) {
	d := newDoor(t)

	fh := []byte{0x01, 0x02}
	_, err := d.client.PutCatalogEntry(layout.FileIDOf(fh), &PutCatalogEntryRequest{
		Type:         "regular",
		StorageClass: "disk:tape",
	})
	require.NoError(t, err)

	sid := types.Stateid4{Seqid: 1, Other: [types.NFS4_OTHER_SIZE]byte{9}}

	type grant struct {
		desc layout.Descriptor
		err  error
	}
	done := make(chan grant, 1)
	go func() {
		desc, err := d.coordinator.LayoutGet(context.Background(), layout.Request{
			Stateid:    sid,
			FileHandle: fh,
			IOMode:     types.LAYOUTIOMODE4_READ,
			ClientAddr: netip.MustParseAddrPort("192.0.2.10:900"),
		})
		done <- grant{desc, err}
	}()

	require.NoError(t, d.client.PoolReady(context.Background(), "pool-a", "10.0.0.7:2049", types.EncodeChallengeStateid(sid)))

	var g grant
	select {
	case g = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("LAYOUTGET did not complete after the pool reported ready")
	}
	require.NoError(t, g.err)
	assert.False(t, g.desc.DeviceID.IsMDS())

	devices, err := d.client.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "pool-a", devices[0].Pool)
	assert.Equal(t, g.desc.DeviceID.String(), devices[0].DeviceID)

	sessions, err := d.client.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int32(5), sessions[0].MoverID)
	assert.Equal(t, "READ", sessions[0].IOMode)

	info, err := d.client.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, 4, info.Threads)
	assert.Len(t, info.Movers, 1)

	found, err := d.client.TransferFinished(context.Background(), types.EncodeChallengeStateid(sid))
	require.NoError(t, err)
	assert.True(t, found)

	found, err = d.client.TransferFinished(context.Background(), types.EncodeChallengeStateid(sid))
	require.NoError(t, err)
	assert.False(t, found)

	sessions, err = d.client.ListSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDoor_KillMover(t *testing.T) {
	d := newDoor(t)

	require.NoError(t, d.client.KillMover("pool-a", 12))
	assert.Equal(t, int32(12), <-d.pm.killed)
}

func TestDoor_Threads(t *testing.T) {
	d := newDoor(t)

	th, err := d.client.GetThreads()
	require.NoError(t, err)
	assert.Equal(t, 4, th.Count)

	th, err = d.client.SetThreadCount(9)
	require.NoError(t, err)
	assert.Equal(t, 9, th.Count)
	assert.Equal(t, 9, d.dispatcher.ThreadCount())

	_, err = d.client.SetThreadCount(0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsValidationError())
}

func TestDoor_PoolReadyRejectsBadAddress(t *testing.T) {
	d := newDoor(t)

	err := d.client.PoolReady(context.Background(), "pool-a", "not-an-address", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsValidationError())
}

func TestCatalogClient(t *testing.T) {
	d := newDoor(t)

	entry, err := d.client.PutCatalogEntry("00aa", &PutCatalogEntryRequest{Type: "directory"})
	require.NoError(t, err)
	assert.Equal(t, "directory", entry.Type)

	got, err := d.client.GetCatalogEntry("00aa")
	require.NoError(t, err)
	assert.Equal(t, *entry, *got)

	list, err := d.client.ListCatalog()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, d.client.DeleteCatalogEntry("00aa"))

	_, err = d.client.GetCatalogEntry("00aa")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

func TestDoor_Health(t *testing.T) {
	d := newDoor(t)

	live, err := d.client.Health()
	require.NoError(t, err)
	assert.True(t, live.Healthy())
	assert.Equal(t, "dmds", live.Data.Service)
	assert.NotEmpty(t, live.Data.StartedAt)

	ready, err := d.client.Ready()
	require.NoError(t, err)
	assert.True(t, ready.Healthy())
	assert.NotEmpty(t, ready.Data.CatalogLatency)
}
