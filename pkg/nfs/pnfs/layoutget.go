package pnfs

import (
	"bytes"
	"io"

	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
	"github.com/marmos91/dittomds/pkg/pnfs/layout"
)

// handleLayoutGet implements LAYOUTGET (RFC 8881 Section 18.43).
//
// The whole file is granted as a single LAYOUT4_NFSV4_1_FILES segment whose
// body names the device chosen by the DeviceManager and carries the current
// filehandle. Assignment failures map to their NFS4 status; LAYOUTTRYLATER
// never promises a CB_LAYOUTRECALL signal.
//
// Wire format args: LAYOUTGET4args
// Wire format res:  LAYOUTGET4res
func (h *Handler) handleLayoutGet(cc *Context, reader io.Reader) *Result {
	if status := requireCurrentFH(cc); status != types.NFS4_OK {
		return statusResult(types.OP_LAYOUTGET, status)
	}

	var args types.LayoutGetArgs
	if err := args.Decode(reader); err != nil {
		logger.Debug("LAYOUTGET: bad XDR", "error", err, "client", cc.ClientAddr)
		return statusResult(types.OP_LAYOUTGET, types.NFS4ERR_BADXDR)
	}

	if args.LayoutType != types.LAYOUT4_NFSV4_1_FILES {
		return statusResult(types.OP_LAYOUTGET, types.NFS4ERR_UNKNOWN_LAYOUTTYPE)
	}
	if args.IOMode != types.LAYOUTIOMODE4_READ && args.IOMode != types.LAYOUTIOMODE4_RW {
		return statusResult(types.OP_LAYOUTGET, types.NFS4ERR_BADIOMODE)
	}
	if args.Length < args.MinLength {
		return statusResult(types.OP_LAYOUTGET, types.NFS4ERR_INVAL)
	}

	logger.Debug("LAYOUTGET", "args", args.String(), "stateid", args.Stateid.String(),
		"client", cc.ClientAddr)

	desc, err := h.dm.LayoutGet(cc.ctx(), layout.Request{
		Stateid:    args.Stateid,
		FileHandle: cc.CurrentFH,
		IOMode:     args.IOMode,
		ClientAddr: cc.ClientAddr,
	})
	if err != nil {
		status := layout.StatusOf(err)
		res := &types.LayoutGetRes{Status: status}
		return encodeResult(types.OP_LAYOUTGET, status, res.Encode)
	}

	var body bytes.Buffer
	fl := types.FileLayout4{
		DeviceID:      types.DeviceId4(desc.DeviceID),
		Util:          types.NflUtil(h.stripeUnit, 0),
		PatternOffset: 0,
		FhList:        [][]byte{desc.FileHandle},
	}
	if err := fl.Encode(&body); err != nil {
		logger.Error("LAYOUTGET: encode file layout", "error", err)
		h.dm.LayoutReturn(cc.ctx(), desc.Stateid)
		return statusResult(types.OP_LAYOUTGET, types.NFS4ERR_SERVERFAULT)
	}

	res := &types.LayoutGetRes{
		Status:        types.NFS4_OK,
		ReturnOnClose: true,
		Stateid:       desc.Stateid,
		Layouts: []types.Layout4{{
			Offset: desc.Offset,
			Length: desc.Length,
			IOMode: desc.IOMode,
			Type:   types.LAYOUT4_NFSV4_1_FILES,
			Body:   body.Bytes(),
		}},
	}

	var buf bytes.Buffer
	if err := res.Encode(&buf); err != nil {
		logger.Error("LAYOUTGET: encode result", "error", err)
		h.dm.LayoutReturn(cc.ctx(), desc.Stateid)
		return statusResult(types.OP_LAYOUTGET, types.NFS4ERR_SERVERFAULT)
	}

	// The layout was granted but the client cannot take it.
	if args.MaxCount > 0 && uint32(buf.Len()) > args.MaxCount {
		h.dm.LayoutReturn(cc.ctx(), desc.Stateid)
		return statusResult(types.OP_LAYOUTGET, types.NFS4ERR_TOOSMALL)
	}

	return &Result{Status: types.NFS4_OK, OpCode: types.OP_LAYOUTGET, Data: buf.Bytes()}
}

func encodeResult(op, status uint32, encode func(*bytes.Buffer) error) *Result {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		logger.Error("encode result", "op", types.OpName(op), "error", err)
		return statusResult(op, types.NFS4ERR_SERVERFAULT)
	}
	return &Result{Status: status, OpCode: op, Data: buf.Bytes()}
}
