package pnfs

import (
	"io"

	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/internal/protocol/nfs/v4/types"
)

// handleLayoutReturn implements LAYOUTRETURN (RFC 8881 Section 18.44).
//
// A file return ends the transfer session keyed by the layout stateid.
// FSID and ALL returns are accepted without action: sessions are tracked
// per stateid only and end through their own file returns or mover
// completion.
func (h *Handler) handleLayoutReturn(cc *Context, reader io.Reader) *Result {
	var args types.LayoutReturnArgs
	if err := args.Decode(reader); err != nil {
		logger.Debug("LAYOUTRETURN: bad XDR", "error", err, "client", cc.ClientAddr)
		return statusResult(types.OP_LAYOUTRETURN, types.NFS4ERR_BADXDR)
	}

	if args.LayoutType != types.LAYOUT4_NFSV4_1_FILES {
		return statusResult(types.OP_LAYOUTRETURN, types.NFS4ERR_UNKNOWN_LAYOUTTYPE)
	}

	switch args.ReturnType {
	case types.LAYOUTRETURN4_FILE:
		if status := requireCurrentFH(cc); status != types.NFS4_OK {
			return statusResult(types.OP_LAYOUTRETURN, status)
		}
		h.dm.LayoutReturn(cc.ctx(), args.Stateid)
	case types.LAYOUTRETURN4_FSID, types.LAYOUTRETURN4_ALL:
		logger.Debug("LAYOUTRETURN: bulk return", "type", args.ReturnType, "client", cc.ClientAddr)
	default:
		return statusResult(types.OP_LAYOUTRETURN, types.NFS4ERR_INVAL)
	}

	res := &types.LayoutReturnRes{Status: types.NFS4_OK}
	return encodeResult(types.OP_LAYOUTRETURN, types.NFS4_OK, res.Encode)
}
