package types

import (
	"bytes"
	"fmt"
	"io"

	"github.com/marmos91/dittomds/internal/protocol/xdr"
)

// Layout4 is a single layout segment returned by LAYOUTGET.
//
//	struct layout4 {
//	    offset4         lo_offset;
//	    length4         lo_length;
//	    layoutiomode4   lo_iomode;
//	    layout_content4 lo_content;   // { layouttype4 loc_type; opaque loc_body<>; }
//	};
type Layout4 struct {
	Offset uint64
	Length uint64
	IOMode uint32
	Type   uint32
	Body   []byte
}

// Encode writes a Layout4 in XDR format.
func (l *Layout4) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint64(buf, l.Offset); err != nil {
		return fmt.Errorf("encode layout offset: %w", err)
	}
	if err := xdr.WriteUint64(buf, l.Length); err != nil {
		return fmt.Errorf("encode layout length: %w", err)
	}
	if err := xdr.WriteUint32(buf, l.IOMode); err != nil {
		return fmt.Errorf("encode layout iomode: %w", err)
	}
	if err := xdr.WriteUint32(buf, l.Type); err != nil {
		return fmt.Errorf("encode layout type: %w", err)
	}
	if err := xdr.WriteXDROpaque(buf, l.Body); err != nil {
		return fmt.Errorf("encode layout body: %w", err)
	}
	return nil
}

// LayoutGetArgs represents LAYOUTGET4args (RFC 8881 Section 18.43).
//
//	struct LAYOUTGET4args {
//	    bool          loga_signal_layout_avail;
//	    layouttype4   loga_layout_type;
//	    layoutiomode4 loga_iomode;
//	    offset4       loga_offset;
//	    length4       loga_length;
//	    length4       loga_minlength;
//	    stateid4      loga_stateid;
//	    count4        loga_maxcount;
//	};
type LayoutGetArgs struct {
	Signal     bool
	LayoutType uint32
	IOMode     uint32
	Offset     uint64
	Length     uint64
	MinLength  uint64
	Stateid    Stateid4
	MaxCount   uint32
}

// Decode reads the LAYOUTGET args from XDR format.
func (a *LayoutGetArgs) Decode(r io.Reader) error {
	var err error
	if a.Signal, err = xdr.DecodeBool(r); err != nil {
		return fmt.Errorf("decode layoutget signal: %w", err)
	}
	if a.LayoutType, err = xdr.DecodeUint32(r); err != nil {
		return fmt.Errorf("decode layoutget layout_type: %w", err)
	}
	if a.IOMode, err = xdr.DecodeUint32(r); err != nil {
		return fmt.Errorf("decode layoutget iomode: %w", err)
	}
	if a.Offset, err = xdr.DecodeUint64(r); err != nil {
		return fmt.Errorf("decode layoutget offset: %w", err)
	}
	if a.Length, err = xdr.DecodeUint64(r); err != nil {
		return fmt.Errorf("decode layoutget length: %w", err)
	}
	if a.MinLength, err = xdr.DecodeUint64(r); err != nil {
		return fmt.Errorf("decode layoutget min_length: %w", err)
	}
	sid, err := DecodeStateid4(r)
	if err != nil {
		return fmt.Errorf("decode layoutget stateid: %w", err)
	}
	a.Stateid = *sid
	if a.MaxCount, err = xdr.DecodeUint32(r); err != nil {
		return fmt.Errorf("decode layoutget max_count: %w", err)
	}
	return nil
}

// Encode writes the LAYOUTGET args. Used by tests and client tooling.
func (a *LayoutGetArgs) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteBool(buf, a.Signal); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.LayoutType); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.IOMode); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Offset); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Length); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.MinLength); err != nil {
		return err
	}
	EncodeStateid4(buf, &a.Stateid)
	return xdr.WriteUint32(buf, a.MaxCount)
}

// String returns a human-readable representation.
func (a *LayoutGetArgs) String() string {
	return fmt.Sprintf("LayoutGetArgs{signal=%t, type=%d, iomode=%s, offset=%d, len=%d, min=%d, max=%d}",
		a.Signal, a.LayoutType, IOModeName(a.IOMode), a.Offset, a.Length, a.MinLength, a.MaxCount)
}

// LayoutGetRes represents LAYOUTGET4res.
//
//	union LAYOUTGET4res switch (nfsstat4 logr_status) {
//	    case NFS4_OK:
//	        LAYOUTGET4resok logr_resok4;  // { bool return_on_close; stateid4; layout4<>; }
//	    case NFS4ERR_LAYOUTTRYLATER:
//	        bool            logr_will_signal_layout_avail;
//	    default:
//	        void;
//	};
type LayoutGetRes struct {
	Status        uint32
	ReturnOnClose bool
	Stateid       Stateid4
	Layouts       []Layout4
	WillSignal    bool
}

// Encode writes the LAYOUTGET result in XDR format.
func (res *LayoutGetRes) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, res.Status); err != nil {
		return fmt.Errorf("encode layoutget status: %w", err)
	}
	switch res.Status {
	case NFS4_OK:
		if err := xdr.WriteBool(buf, res.ReturnOnClose); err != nil {
			return fmt.Errorf("encode layoutget return_on_close: %w", err)
		}
		EncodeStateid4(buf, &res.Stateid)
		if err := xdr.WriteUint32(buf, uint32(len(res.Layouts))); err != nil {
			return fmt.Errorf("encode layoutget layouts count: %w", err)
		}
		for i := range res.Layouts {
			if err := res.Layouts[i].Encode(buf); err != nil {
				return fmt.Errorf("encode layoutget layout[%d]: %w", i, err)
			}
		}
	case NFS4ERR_LAYOUTTRYLATER:
		if err := xdr.WriteBool(buf, res.WillSignal); err != nil {
			return fmt.Errorf("encode layoutget will_signal: %w", err)
		}
	}
	return nil
}
