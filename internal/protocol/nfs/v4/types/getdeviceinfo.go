package types

import (
	"bytes"
	"fmt"
	"io"

	"github.com/marmos91/dittomds/internal/protocol/xdr"
)

// GetDeviceInfoArgs represents GETDEVICEINFO4args (RFC 8881 Section 18.40).
//
//	struct GETDEVICEINFO4args {
//	    deviceid4   gdia_device_id;
//	    layouttype4 gdia_layout_type;
//	    count4      gdia_maxcount;
//	    bitmap4     gdia_notify_types;
//	};
type GetDeviceInfoArgs struct {
	DeviceID    DeviceId4
	LayoutType  uint32
	MaxCount    uint32
	NotifyTypes Bitmap4
}

// Decode reads the GETDEVICEINFO args.
func (a *GetDeviceInfoArgs) Decode(r io.Reader) error {
	if err := xdr.DecodeFixedOpaque(r, a.DeviceID[:]); err != nil {
		return fmt.Errorf("decode getdeviceinfo device_id: %w", err)
	}
	var err error
	if a.LayoutType, err = xdr.DecodeUint32(r); err != nil {
		return fmt.Errorf("decode getdeviceinfo layout_type: %w", err)
	}
	if a.MaxCount, err = xdr.DecodeUint32(r); err != nil {
		return fmt.Errorf("decode getdeviceinfo max_count: %w", err)
	}
	if err := a.NotifyTypes.Decode(r); err != nil {
		return fmt.Errorf("decode getdeviceinfo notify_types: %w", err)
	}
	return nil
}

// Encode writes the GETDEVICEINFO args. Used by tests and client tooling.
func (a *GetDeviceInfoArgs) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteFixedOpaque(buf, a.DeviceID[:]); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.LayoutType); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.MaxCount); err != nil {
		return err
	}
	return a.NotifyTypes.Encode(buf)
}

// GetDeviceInfoRes represents GETDEVICEINFO4res.
//
//	struct device_addr4 {
//	    layouttype4 da_layout_type;
//	    opaque      da_addr_body<>;
//	};
//	union GETDEVICEINFO4res switch (nfsstat4 gdir_status) {
//	    case NFS4_OK:          { device_addr4 gdir_device_addr; bitmap4 gdir_notification; }
//	    case NFS4ERR_TOOSMALL: count4 gdir_mincount;
//	    default:               void;
//	};
type GetDeviceInfoRes struct {
	Status       uint32
	LayoutType   uint32
	DeviceAddr   []byte
	Notification Bitmap4
	MinCount     uint32
}

// Encode writes the GETDEVICEINFO result.
func (res *GetDeviceInfoRes) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, res.Status); err != nil {
		return fmt.Errorf("encode getdeviceinfo status: %w", err)
	}
	switch res.Status {
	case NFS4_OK:
		if err := xdr.WriteUint32(buf, res.LayoutType); err != nil {
			return fmt.Errorf("encode getdeviceinfo layout_type: %w", err)
		}
		if err := xdr.WriteXDROpaque(buf, res.DeviceAddr); err != nil {
			return fmt.Errorf("encode getdeviceinfo addr body: %w", err)
		}
		if err := res.Notification.Encode(buf); err != nil {
			return fmt.Errorf("encode getdeviceinfo notification: %w", err)
		}
	case NFS4ERR_TOOSMALL:
		if err := xdr.WriteUint32(buf, res.MinCount); err != nil {
			return fmt.Errorf("encode getdeviceinfo min_count: %w", err)
		}
	}
	return nil
}

// GetDeviceListArgs represents GETDEVICELIST4args (RFC 8881 Section 18.41).
//
//	struct GETDEVICELIST4args {
//	    layouttype4 gdla_layout_type;
//	    count4      gdla_maxdevices;
//	    nfs_cookie4 gdla_cookie;
//	    verifier4   gdla_cookieverf;
//	};
type GetDeviceListArgs struct {
	LayoutType uint32
	MaxDevices uint32
	Cookie     uint64
	CookieVerf Verifier4
}

// Decode reads the GETDEVICELIST args.
func (a *GetDeviceListArgs) Decode(r io.Reader) error {
	var err error
	if a.LayoutType, err = xdr.DecodeUint32(r); err != nil {
		return fmt.Errorf("decode getdevicelist layout_type: %w", err)
	}
	if a.MaxDevices, err = xdr.DecodeUint32(r); err != nil {
		return fmt.Errorf("decode getdevicelist max_devices: %w", err)
	}
	if a.Cookie, err = xdr.DecodeUint64(r); err != nil {
		return fmt.Errorf("decode getdevicelist cookie: %w", err)
	}
	if err := xdr.DecodeFixedOpaque(r, a.CookieVerf[:]); err != nil {
		return fmt.Errorf("decode getdevicelist cookieverf: %w", err)
	}
	return nil
}

// Encode writes the GETDEVICELIST args. Used by tests and client tooling.
func (a *GetDeviceListArgs) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, a.LayoutType); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.MaxDevices); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Cookie); err != nil {
		return err
	}
	return xdr.WriteFixedOpaque(buf, a.CookieVerf[:])
}

// GetDeviceListRes represents GETDEVICELIST4res.
//
//	struct GETDEVICELIST4resok {
//	    nfs_cookie4 gdlr_cookie;
//	    verifier4   gdlr_cookieverf;
//	    deviceid4   gdlr_deviceid_list<>;
//	    bool        gdlr_eof;
//	};
type GetDeviceListRes struct {
	Status     uint32
	Cookie     uint64
	CookieVerf Verifier4
	DeviceIDs  []DeviceId4
	EOF        bool
}

// Encode writes the GETDEVICELIST result.
func (res *GetDeviceListRes) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, res.Status); err != nil {
		return fmt.Errorf("encode getdevicelist status: %w", err)
	}
	if res.Status != NFS4_OK {
		return nil
	}
	if err := xdr.WriteUint64(buf, res.Cookie); err != nil {
		return fmt.Errorf("encode getdevicelist cookie: %w", err)
	}
	if err := xdr.WriteFixedOpaque(buf, res.CookieVerf[:]); err != nil {
		return fmt.Errorf("encode getdevicelist cookieverf: %w", err)
	}
	if err := xdr.WriteUint32(buf, uint32(len(res.DeviceIDs))); err != nil {
		return fmt.Errorf("encode getdevicelist count: %w", err)
	}
	for i := range res.DeviceIDs {
		if err := xdr.WriteFixedOpaque(buf, res.DeviceIDs[i][:]); err != nil {
			return fmt.Errorf("encode getdevicelist device[%d]: %w", i, err)
		}
	}
	if err := xdr.WriteBool(buf, res.EOF); err != nil {
		return fmt.Errorf("encode getdevicelist eof: %w", err)
	}
	return nil
}
