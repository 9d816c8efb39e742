package types

import (
	"bytes"
	"fmt"
	"io"

	"github.com/marmos91/dittomds/internal/protocol/xdr"
)

// LayoutReturnArgs represents LAYOUTRETURN4args (RFC 8881 Section 18.44).
//
//	struct LAYOUTRETURN4args {
//	    bool          lora_reclaim;
//	    layouttype4   lora_layout_type;
//	    layoutiomode4 lora_iomode;
//	    layoutreturn4 lora_layoutreturn;
//	};
//
//	union layoutreturn4 switch (layoutreturn_type4 lr_returntype) {
//	    case LAYOUTRETURN4_FILE:
//	        layoutreturn_file4 lr_layout; // { offset4; length4; stateid4; opaque body<>; }
//	    default:
//	        void;
//	};
type LayoutReturnArgs struct {
	Reclaim    bool
	LayoutType uint32
	IOMode     uint32
	ReturnType uint32

	// Only meaningful when ReturnType == LAYOUTRETURN4_FILE.
	Offset  uint64
	Length  uint64
	Stateid Stateid4
	Body    []byte
}

// Decode reads the LAYOUTRETURN args.
func (a *LayoutReturnArgs) Decode(r io.Reader) error {
	var err error
	if a.Reclaim, err = xdr.DecodeBool(r); err != nil {
		return fmt.Errorf("decode layoutreturn reclaim: %w", err)
	}
	if a.LayoutType, err = xdr.DecodeUint32(r); err != nil {
		return fmt.Errorf("decode layoutreturn layout_type: %w", err)
	}
	if a.IOMode, err = xdr.DecodeUint32(r); err != nil {
		return fmt.Errorf("decode layoutreturn iomode: %w", err)
	}
	if a.ReturnType, err = xdr.DecodeUint32(r); err != nil {
		return fmt.Errorf("decode layoutreturn return_type: %w", err)
	}
	if a.ReturnType != LAYOUTRETURN4_FILE {
		return nil
	}
	if a.Offset, err = xdr.DecodeUint64(r); err != nil {
		return fmt.Errorf("decode layoutreturn offset: %w", err)
	}
	if a.Length, err = xdr.DecodeUint64(r); err != nil {
		return fmt.Errorf("decode layoutreturn length: %w", err)
	}
	sid, err := DecodeStateid4(r)
	if err != nil {
		return fmt.Errorf("decode layoutreturn stateid: %w", err)
	}
	a.Stateid = *sid
	if a.Body, err = xdr.DecodeOpaque(r); err != nil {
		return fmt.Errorf("decode layoutreturn body: %w", err)
	}
	return nil
}

// Encode writes the LAYOUTRETURN args. Used by tests and client tooling.
func (a *LayoutReturnArgs) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteBool(buf, a.Reclaim); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.LayoutType); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.IOMode); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.ReturnType); err != nil {
		return err
	}
	if a.ReturnType != LAYOUTRETURN4_FILE {
		return nil
	}
	if err := xdr.WriteUint64(buf, a.Offset); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Length); err != nil {
		return err
	}
	EncodeStateid4(buf, &a.Stateid)
	return xdr.WriteXDROpaque(buf, a.Body)
}

// LayoutReturnRes represents LAYOUTRETURN4res.
//
//	union layoutreturn_stateid switch (bool lrs_present) {
//	    case TRUE:  stateid4 lrs_stateid;
//	    case FALSE: void;
//	};
type LayoutReturnRes struct {
	Status         uint32
	StateidPresent bool
	Stateid        Stateid4
}

// Encode writes the LAYOUTRETURN result.
func (res *LayoutReturnRes) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, res.Status); err != nil {
		return fmt.Errorf("encode layoutreturn status: %w", err)
	}
	if res.Status != NFS4_OK {
		return nil
	}
	if err := xdr.WriteBool(buf, res.StateidPresent); err != nil {
		return fmt.Errorf("encode layoutreturn stateid present: %w", err)
	}
	if res.StateidPresent {
		EncodeStateid4(buf, &res.Stateid)
	}
	return nil
}
