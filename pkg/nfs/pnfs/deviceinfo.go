package pnfs

import (
	"bytes"
	"io"

	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
	"github.com/marmos91/dittomds/pkg/pnfs/device"
)

// handleGetDeviceInfo implements GETDEVICEINFO (RFC 8881 Section 18.40).
//
// The metadata-server id resolves to the address the client connected to.
// Unknown ids (including ids of pools that have since restarted) return
// NFS4ERR_NOENT. Device change notifications are not offered.
func (h *Handler) handleGetDeviceInfo(cc *Context, reader io.Reader) *Result {
	var args types.GetDeviceInfoArgs
	if err := args.Decode(reader); err != nil {
		logger.Debug("GETDEVICEINFO: bad XDR", "error", err, "client", cc.ClientAddr)
		return statusResult(types.OP_GETDEVICEINFO, types.NFS4ERR_BADXDR)
	}

	if args.LayoutType != types.LAYOUT4_NFSV4_1_FILES {
		return statusResult(types.OP_GETDEVICEINFO, types.NFS4ERR_UNKNOWN_LAYOUTTYPE)
	}

	id := device.DeviceID(args.DeviceID)
	dev, ok := h.dm.GetDeviceInfo(id, cc.LocalAddr)
	if !ok {
		logger.Debug("GETDEVICEINFO: unknown device", "device_id", id.String(), "client", cc.ClientAddr)
		return statusResult(types.OP_GETDEVICEINFO, types.NFS4ERR_NOENT)
	}

	body, err := dev.AddrBody()
	if err != nil {
		logger.Error("GETDEVICEINFO: encode device address", "device_id", id.String(), "error", err)
		return statusResult(types.OP_GETDEVICEINFO, types.NFS4ERR_SERVERFAULT)
	}

	res := &types.GetDeviceInfoRes{
		Status:     types.NFS4_OK,
		LayoutType: types.LAYOUT4_NFSV4_1_FILES,
		DeviceAddr: body,
	}
	var buf bytes.Buffer
	if err := res.Encode(&buf); err != nil {
		logger.Error("GETDEVICEINFO: encode result", "error", err)
		return statusResult(types.OP_GETDEVICEINFO, types.NFS4ERR_SERVERFAULT)
	}

	if args.MaxCount > 0 && uint32(buf.Len()) > args.MaxCount {
		small := &types.GetDeviceInfoRes{Status: types.NFS4ERR_TOOSMALL, MinCount: uint32(buf.Len())}
		return encodeResult(types.OP_GETDEVICEINFO, types.NFS4ERR_TOOSMALL, small.Encode)
	}

	return &Result{Status: types.NFS4_OK, OpCode: types.OP_GETDEVICEINFO, Data: buf.Bytes()}
}

// handleGetDeviceList implements GETDEVICELIST (RFC 8881 Section 18.41).
//
// Cookies are offsets into the allocation-ordered device list, valid for
// the lifetime of the server instance that issued the verifier.
func (h *Handler) handleGetDeviceList(cc *Context, reader io.Reader) *Result {
	var args types.GetDeviceListArgs
	if err := args.Decode(reader); err != nil {
		logger.Debug("GETDEVICELIST: bad XDR", "error", err, "client", cc.ClientAddr)
		return statusResult(types.OP_GETDEVICELIST, types.NFS4ERR_BADXDR)
	}

	if args.LayoutType != types.LAYOUT4_NFSV4_1_FILES {
		return statusResult(types.OP_GETDEVICELIST, types.NFS4ERR_UNKNOWN_LAYOUTTYPE)
	}
	if args.MaxDevices == 0 {
		return statusResult(types.OP_GETDEVICELIST, types.NFS4ERR_INVAL)
	}

	ids := h.dm.GetDeviceList()
	if args.Cookie != 0 && (args.CookieVerf != h.verifier || args.Cookie > uint64(len(ids))) {
		return statusResult(types.OP_GETDEVICELIST, types.NFS4ERR_BAD_COOKIE)
	}

	start := args.Cookie
	end := start + uint64(args.MaxDevices)
	if end > uint64(len(ids)) {
		end = uint64(len(ids))
	}

	page := make([]types.DeviceId4, 0, end-start)
	for _, id := range ids[start:end] {
		page = append(page, types.DeviceId4(id))
	}

	res := &types.GetDeviceListRes{
		Status:     types.NFS4_OK,
		Cookie:     end,
		CookieVerf: h.verifier,
		DeviceIDs:  page,
		EOF:        end == uint64(len(ids)),
	}
	return encodeResult(types.OP_GETDEVICELIST, types.NFS4_OK, res.Encode)
}
