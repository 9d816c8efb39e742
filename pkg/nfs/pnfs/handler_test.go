package pnfs

import (
	"bytes"
	"context"
	"io"
	"net/netip"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
	"github.com/marmos91/dittomds/internal/protocol/xdr"
	"github.com/marmos91/dittomds/pkg/pnfs/device"
	"github.com/marmos91/dittomds/pkg/pnfs/layout"
)

var (
	testFH     = []byte{0xca, 0xfe, 0xba, 0xbe}
	localAddr  = netip.MustParseAddrPort("10.0.0.1:2049")
	clientAddr = netip.MustParseAddrPort("10.0.0.99:871")
	poolAddr   = netip.MustParseAddrPort("10.0.0.7:24000")
)

type fakeDM struct {
	mu       sync.Mutex
	deviceID device.DeviceID
	err      error
	entered  chan struct{}
	block    chan struct{}
	gets     []layout.Request
	returned []types.Stateid4
	devices  map[device.DeviceID]device.Device
	list     []device.DeviceID
}

func (f *fakeDM) LayoutGet(ctx context.Context, req layout.Request) (layout.Descriptor, error) {
	f.mu.Lock()
	f.gets = append(f.gets, req)
	entered, block := f.entered, f.block
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if f.err != nil {
		return layout.Descriptor{}, f.err
	}
	return layout.Descriptor{
		DeviceID:   f.deviceID,
		Offset:     0,
		Length:     types.NFS4_UINT64_MAX,
		IOMode:     req.IOMode,
		Stateid:    req.Stateid,
		FileHandle: req.FileHandle,
	}, nil
}

func (f *fakeDM) LayoutReturn(ctx context.Context, sid types.Stateid4) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.returned = append(f.returned, sid)
}

func (f *fakeDM) GetDeviceInfo(id device.DeviceID, local netip.AddrPort) (device.Device, bool) {
	if id.IsMDS() {
		return device.Local(local), true
	}
	d, ok := f.devices[id]
	return d, ok
}

func (f *fakeDM) GetDeviceList() []device.DeviceID { return f.list }

func (f *fakeDM) returns() []types.Stateid4 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Stateid4(nil), f.returned...)
}

func testStateid() types.Stateid4 {
	return types.Stateid4{Seqid: 1, Other: [types.NFS4_OTHER_SIZE]byte{9, 8, 7}}
}

func newContext(fh []byte) *Context {
	return &Context{CurrentFH: fh, ClientAddr: clientAddr, LocalAddr: localAddr}
}

func encodeArgs(t *testing.T, enc func(*bytes.Buffer) error) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, enc(&buf))
	return &buf
}

func layoutGetArgs(mode uint32, maxCount uint32) *types.LayoutGetArgs {
	return &types.LayoutGetArgs{
		LayoutType: types.LAYOUT4_NFSV4_1_FILES,
		IOMode:     mode,
		Offset:     0,
		Length:     types.NFS4_UINT64_MAX,
		MinLength:  0,
		Stateid:    testStateid(),
		MaxCount:   maxCount,
	}
}

// ============================================================================
// Dispatch
// ============================================================================

func TestHandle_UnsupportedOperation(t *testing.T) {
	h := NewHandler(&fakeDM{}, nil)
	res := h.Handle(newContext(testFH), types.OP_LAYOUTCOMMIT, bytes.NewReader(nil))
	assert.Equal(t, uint32(types.NFS4ERR_NOTSUPP), res.Status)
	assert.Equal(t, encodeStatusOnly(types.NFS4ERR_NOTSUPP), res.Data)
}

// ============================================================================
// LAYOUTGET
// ============================================================================

func TestLayoutGet_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name   string
		fh     []byte
		args   *types.LayoutGetArgs
		status uint32
	}{
		{"no filehandle", nil, layoutGetArgs(types.LAYOUTIOMODE4_READ, 0), types.NFS4ERR_NOFILEHANDLE},
		{"unknown layout type", testFH, func() *types.LayoutGetArgs {
			a := layoutGetArgs(types.LAYOUTIOMODE4_READ, 0)
			a.LayoutType = types.LAYOUT4_BLOCK_VOLUME
			return a
		}(), types.NFS4ERR_UNKNOWN_LAYOUTTYPE},
		{"iomode any", testFH, layoutGetArgs(types.LAYOUTIOMODE4_ANY, 0), types.NFS4ERR_BADIOMODE},
		{"length below minlength", testFH, func() *types.LayoutGetArgs {
			a := layoutGetArgs(types.LAYOUTIOMODE4_READ, 0)
			a.Length, a.MinLength = 10, 20
			return a
		}(), types.NFS4ERR_INVAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dm := &fakeDM{}
			h := NewHandler(dm, nil)
			res := h.Handle(newContext(tt.fh), types.OP_LAYOUTGET, encodeArgs(t, tt.args.Encode))
			assert.Equal(t, tt.status, res.Status)
			assert.Empty(t, dm.gets, "device manager must not be consulted")
		})
	}
}

func TestLayoutGet_BadXDR(t *testing.T) {
	h := NewHandler(&fakeDM{}, nil)
	res := h.Handle(newContext(testFH), types.OP_LAYOUTGET, bytes.NewReader([]byte{0, 0, 0}))
	assert.Equal(t, uint32(types.NFS4ERR_BADXDR), res.Status)
}

func TestLayoutGet_GrantsFileLayout(t *testing.T) {
	dm := &fakeDM{deviceID: device.NewDeviceID(4)}
	h := NewHandler(dm, nil)

	res := h.Handle(newContext(testFH), types.OP_LAYOUTGET,
		encodeArgs(t, layoutGetArgs(types.LAYOUTIOMODE4_RW, 0).Encode))
	require.Equal(t, uint32(types.NFS4_OK), res.Status)

	require.Len(t, dm.gets, 1)
	assert.Equal(t, testFH, dm.gets[0].FileHandle)
	assert.Equal(t, clientAddr, dm.gets[0].ClientAddr)
	assert.Equal(t, uint32(types.LAYOUTIOMODE4_RW), dm.gets[0].IOMode)

	r := bytes.NewReader(res.Data)
	status, _ := xdr.DecodeUint32(r)
	assert.Equal(t, uint32(types.NFS4_OK), status)
	roc, _ := xdr.DecodeBool(r)
	assert.True(t, roc, "return_on_close")
	sid, err := types.DecodeStateid4(r)
	require.NoError(t, err)
	assert.Equal(t, testStateid(), *sid)
	count, _ := xdr.DecodeUint32(r)
	require.Equal(t, uint32(1), count)

	offset, _ := xdr.DecodeUint64(r)
	length, _ := xdr.DecodeUint64(r)
	mode, _ := xdr.DecodeUint32(r)
	ltype, _ := xdr.DecodeUint32(r)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, types.NFS4_UINT64_MAX, length)
	assert.Equal(t, uint32(types.LAYOUTIOMODE4_RW), mode)
	assert.Equal(t, uint32(types.LAYOUT4_NFSV4_1_FILES), ltype)

	body, err := xdr.DecodeOpaque(r)
	require.NoError(t, err)
	assert.Zero(t, r.Len())

	br := bytes.NewReader(body)
	var devID types.DeviceId4
	require.NoError(t, xdr.DecodeFixedOpaque(br, devID[:]))
	assert.Equal(t, device.NewDeviceID(4), device.DeviceID(devID))
	util, _ := xdr.DecodeUint32(br)
	assert.Equal(t, uint32(DefaultStripeUnit), util)
	first, _ := xdr.DecodeUint32(br)
	assert.Zero(t, first)
	pattern, _ := xdr.DecodeUint64(br)
	assert.Zero(t, pattern)
	nfh, _ := xdr.DecodeUint32(br)
	require.Equal(t, uint32(1), nfh)
	fh, err := xdr.DecodeOpaque(br)
	require.NoError(t, err)
	assert.Equal(t, testFH, fh)
}

func TestLayoutGet_AssignmentErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status uint32
	}{
		{"try later", layout.ErrLayoutTryLater, types.NFS4ERR_LAYOUTTRYLATER},
		{"transient", layout.ErrTransient, types.NFS4ERR_LAYOUTTRYLATER},
		{"no route", layout.ErrResource, types.NFS4ERR_RESOURCE},
		{"stale", layout.ErrStale, types.NFS4ERR_STALE},
		{"unexpected", io.ErrUnexpectedEOF, types.NFS4ERR_SERVERFAULT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeDM{err: tt.err}, nil)
			res := h.Handle(newContext(testFH), types.OP_LAYOUTGET,
				encodeArgs(t, layoutGetArgs(types.LAYOUTIOMODE4_READ, 0).Encode))
			assert.Equal(t, tt.status, res.Status)

			r := bytes.NewReader(res.Data)
			status, _ := xdr.DecodeUint32(r)
			assert.Equal(t, tt.status, status)
			if tt.status == types.NFS4ERR_LAYOUTTRYLATER {
				signal, err := xdr.DecodeBool(r)
				require.NoError(t, err)
				assert.False(t, signal, "no recall signal is promised")
			}
			assert.Zero(t, r.Len())
		})
	}
}

func TestLayoutGet_TooSmallReturnsLayout(t *testing.T) {
	dm := &fakeDM{deviceID: device.NewDeviceID(1)}
	h := NewHandler(dm, nil)

	res := h.Handle(newContext(testFH), types.OP_LAYOUTGET,
		encodeArgs(t, layoutGetArgs(types.LAYOUTIOMODE4_READ, 16).Encode))
	assert.Equal(t, uint32(types.NFS4ERR_TOOSMALL), res.Status)
	assert.Equal(t, []types.Stateid4{testStateid()}, dm.returns())
}

// ============================================================================
// LAYOUTRETURN
// ============================================================================

func layoutReturnArgs(returnType uint32) *types.LayoutReturnArgs {
	return &types.LayoutReturnArgs{
		LayoutType: types.LAYOUT4_NFSV4_1_FILES,
		IOMode:     types.LAYOUTIOMODE4_ANY,
		ReturnType: returnType,
		Offset:     0,
		Length:     types.NFS4_UINT64_MAX,
		Stateid:    testStateid(),
	}
}

func TestLayoutReturn_File(t *testing.T) {
	dm := &fakeDM{}
	h := NewHandler(dm, nil)

	res := h.Handle(newContext(testFH), types.OP_LAYOUTRETURN,
		encodeArgs(t, layoutReturnArgs(types.LAYOUTRETURN4_FILE).Encode))
	require.Equal(t, uint32(types.NFS4_OK), res.Status)
	assert.Equal(t, []types.Stateid4{testStateid()}, dm.returns())

	r := bytes.NewReader(res.Data)
	status, _ := xdr.DecodeUint32(r)
	assert.Equal(t, uint32(types.NFS4_OK), status)
	present, _ := xdr.DecodeBool(r)
	assert.False(t, present)
}

func TestLayoutReturn_AllIsAcceptedWithoutAction(t *testing.T) {
	dm := &fakeDM{}
	h := NewHandler(dm, nil)

	res := h.Handle(newContext(nil), types.OP_LAYOUTRETURN,
		encodeArgs(t, layoutReturnArgs(types.LAYOUTRETURN4_ALL).Encode))
	assert.Equal(t, uint32(types.NFS4_OK), res.Status)
	assert.Empty(t, dm.returns())
}

func TestLayoutReturn_FileWithoutFilehandle(t *testing.T) {
	h := NewHandler(&fakeDM{}, nil)
	res := h.Handle(newContext(nil), types.OP_LAYOUTRETURN,
		encodeArgs(t, layoutReturnArgs(types.LAYOUTRETURN4_FILE).Encode))
	assert.Equal(t, uint32(types.NFS4ERR_NOFILEHANDLE), res.Status)
}

// ============================================================================
// GETDEVICEINFO / GETDEVICELIST
// ============================================================================

func deviceInfoArgs(id device.DeviceID, maxCount uint32) *types.GetDeviceInfoArgs {
	return &types.GetDeviceInfoArgs{
		DeviceID:   types.DeviceId4(id),
		LayoutType: types.LAYOUT4_NFSV4_1_FILES,
		MaxCount:   maxCount,
	}
}

func TestGetDeviceInfo_LocalDevice(t *testing.T) {
	h := NewHandler(&fakeDM{}, nil)

	res := h.Handle(newContext(nil), types.OP_GETDEVICEINFO,
		encodeArgs(t, deviceInfoArgs(device.MDS, 0).Encode))
	require.Equal(t, uint32(types.NFS4_OK), res.Status)

	want, err := device.Local(localAddr).AddrBody()
	require.NoError(t, err)

	r := bytes.NewReader(res.Data)
	status, _ := xdr.DecodeUint32(r)
	assert.Equal(t, uint32(types.NFS4_OK), status)
	ltype, _ := xdr.DecodeUint32(r)
	assert.Equal(t, uint32(types.LAYOUT4_NFSV4_1_FILES), ltype)
	body, err := xdr.DecodeOpaque(r)
	require.NoError(t, err)
	assert.Equal(t, want, body)
}

func TestGetDeviceInfo_PoolDevice(t *testing.T) {
	id := device.NewDeviceID(3)
	ep, err := device.NewPoolEndpoint("poolA", id, poolAddr)
	require.NoError(t, err)
	h := NewHandler(&fakeDM{devices: map[device.DeviceID]device.Device{id: device.Remote(ep)}}, nil)

	res := h.Handle(newContext(nil), types.OP_GETDEVICEINFO, encodeArgs(t, deviceInfoArgs(id, 0).Encode))
	require.Equal(t, uint32(types.NFS4_OK), res.Status)

	r := bytes.NewReader(res.Data)
	_, _ = xdr.DecodeUint32(r)
	_, _ = xdr.DecodeUint32(r)
	body, err := xdr.DecodeOpaque(r)
	require.NoError(t, err)
	assert.Equal(t, ep.DeviceAddr, body)
}

func TestGetDeviceInfo_UnknownDevice(t *testing.T) {
	h := NewHandler(&fakeDM{}, nil)
	res := h.Handle(newContext(nil), types.OP_GETDEVICEINFO,
		encodeArgs(t, deviceInfoArgs(device.NewDeviceID(42), 0).Encode))
	assert.Equal(t, uint32(types.NFS4ERR_NOENT), res.Status)
}

func TestGetDeviceInfo_TooSmall(t *testing.T) {
	h := NewHandler(&fakeDM{}, nil)
	res := h.Handle(newContext(nil), types.OP_GETDEVICEINFO,
		encodeArgs(t, deviceInfoArgs(device.MDS, 8).Encode))
	require.Equal(t, uint32(types.NFS4ERR_TOOSMALL), res.Status)

	r := bytes.NewReader(res.Data)
	_, _ = xdr.DecodeUint32(r)
	minCount, err := xdr.DecodeUint32(r)
	require.NoError(t, err)
	assert.Greater(t, minCount, uint32(8))
}

type deviceListPage struct {
	cookie uint64
	verf   types.Verifier4
	ids    []device.DeviceID
	eof    bool
}

func decodeDeviceList(t *testing.T, data []byte) deviceListPage {
	t.Helper()
	r := bytes.NewReader(data)
	status, _ := xdr.DecodeUint32(r)
	require.Equal(t, uint32(types.NFS4_OK), status)

	var page deviceListPage
	page.cookie, _ = xdr.DecodeUint64(r)
	require.NoError(t, xdr.DecodeFixedOpaque(r, page.verf[:]))
	n, _ := xdr.DecodeUint32(r)
	for i := uint32(0); i < n; i++ {
		var id types.DeviceId4
		require.NoError(t, xdr.DecodeFixedOpaque(r, id[:]))
		page.ids = append(page.ids, device.DeviceID(id))
	}
	page.eof, _ = xdr.DecodeBool(r)
	return page
}

func TestGetDeviceList_Pagination(t *testing.T) {
	ids := []device.DeviceID{device.NewDeviceID(1), device.NewDeviceID(2), device.NewDeviceID(3)}
	h := NewHandler(&fakeDM{list: ids}, nil)

	args := &types.GetDeviceListArgs{LayoutType: types.LAYOUT4_NFSV4_1_FILES, MaxDevices: 2}
	res := h.Handle(newContext(nil), types.OP_GETDEVICELIST, encodeArgs(t, args.Encode))
	first := decodeDeviceList(t, res.Data)
	assert.Equal(t, ids[:2], first.ids)
	assert.Equal(t, uint64(2), first.cookie)
	assert.False(t, first.eof)

	args.Cookie, args.CookieVerf = first.cookie, first.verf
	res = h.Handle(newContext(nil), types.OP_GETDEVICELIST, encodeArgs(t, args.Encode))
	second := decodeDeviceList(t, res.Data)
	assert.Equal(t, ids[2:], second.ids)
	assert.True(t, second.eof)

	args.CookieVerf = types.Verifier4{}
	res = h.Handle(newContext(nil), types.OP_GETDEVICELIST, encodeArgs(t, args.Encode))
	assert.Equal(t, uint32(types.NFS4ERR_BAD_COOKIE), res.Status)
}

func TestGetDeviceList_Empty(t *testing.T) {
	h := NewHandler(&fakeDM{}, nil)
	args := &types.GetDeviceListArgs{LayoutType: types.LAYOUT4_NFSV4_1_FILES, MaxDevices: 8}
	res := h.Handle(newContext(nil), types.OP_GETDEVICELIST, encodeArgs(t, args.Encode))
	page := decodeDeviceList(t, res.Data)
	assert.Empty(t, page.ids)
	assert.True(t, page.eof)
}

func TestGetDeviceList_ZeroMaxDevices(t *testing.T) {
	h := NewHandler(&fakeDM{}, nil)
	args := &types.GetDeviceListArgs{LayoutType: types.LAYOUT4_NFSV4_1_FILES}
	res := h.Handle(newContext(nil), types.OP_GETDEVICELIST, encodeArgs(t, args.Encode))
	assert.Equal(t, uint32(types.NFS4ERR_INVAL), res.Status)
}
