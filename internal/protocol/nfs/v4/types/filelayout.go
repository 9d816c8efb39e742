package types

import (
	"bytes"
	"fmt"
	"net/netip"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// NetAddr4 is an RPC universal address (RFC 5665).
//
//	struct netaddr4 {
//	    string na_r_netid<>;
//	    string na_r_addr<>;
//	};
type NetAddr4 struct {
	Netid string
	Addr  string
}

// NewNetAddr4 builds the universal address for a TCP endpoint. IPv4 uses
// netid "tcp" and "h1.h2.h3.h4.p1.p2"; IPv6 uses "tcp6" and "x:..:x.p1.p2".
func NewNetAddr4(ap netip.AddrPort) NetAddr4 {
	addr := ap.Addr().Unmap()
	port := ap.Port()
	netid := "tcp"
	if addr.Is6() {
		netid = "tcp6"
	}
	return NetAddr4{
		Netid: netid,
		Addr:  fmt.Sprintf("%s.%d.%d", addr.String(), port>>8, port&0xff),
	}
}

// FileLayoutDSAddr4 is the file layout device address body returned by
// GETDEVICEINFO (RFC 8881 Section 13.5).
//
//	struct nfsv4_1_file_layout_ds_addr4 {
//	    uint32_t        nflda_stripe_indices<>;
//	    multipath_list4 nflda_multipath_ds_list<>;
//	};
type FileLayoutDSAddr4 struct {
	StripeIndices []uint32
	MultipathDS   [][]NetAddr4
}

// Encode writes the device address body.
func (d *FileLayoutDSAddr4) Encode(buf *bytes.Buffer) error {
	if _, err := xdr.Marshal(buf, d); err != nil {
		return fmt.Errorf("encode file layout ds_addr: %w", err)
	}
	return nil
}

// NewSingleDSAddr returns the device address of a one-stripe device served
// by a single data server at ap.
func NewSingleDSAddr(ap netip.AddrPort) *FileLayoutDSAddr4 {
	return &FileLayoutDSAddr4{
		StripeIndices: []uint32{0},
		MultipathDS:   [][]NetAddr4{{NewNetAddr4(ap)}},
	}
}

// FileLayout4 is the loc_body of an LAYOUT4_NFSV4_1_FILES layout
// (RFC 8881 Section 13.3).
//
//	struct nfsv4_1_file_layout4 {
//	    deviceid4 nfl_deviceid;
//	    nfl_util4 nfl_util;
//	    uint32_t  nfl_first_stripe_index;
//	    offset4   nfl_pattern_offset;
//	    nfs_fh4   nfl_fh_list<>;
//	};
type FileLayout4 struct {
	DeviceID         DeviceId4
	Util             uint32
	FirstStripeIndex uint32
	PatternOffset    uint64
	FhList           [][]byte
}

// Encode writes the file layout body.
func (l *FileLayout4) Encode(buf *bytes.Buffer) error {
	if _, err := xdr.Marshal(buf, l); err != nil {
		return fmt.Errorf("encode file layout: %w", err)
	}
	return nil
}

// NflUtil packs a stripe unit and flags into nfl_util4. The stripe unit must
// be a multiple of 64.
func NflUtil(stripeUnit uint32, flags uint32) uint32 {
	return (stripeUnit &^ NFL4_UFLG_MASK) | (flags & NFL4_UFLG_MASK)
}

// DecodeChallengeStateid decodes the stateid a data server echoes back in its
// readiness message. The challenge is the XDR encoding of a stateid4.
func DecodeChallengeStateid(challenge []byte) (Stateid4, error) {
	var sid Stateid4
	if len(challenge) < 4+NFS4_OTHER_SIZE {
		return sid, fmt.Errorf("challenge too short: %d bytes", len(challenge))
	}
	if _, err := xdr.Unmarshal(bytes.NewReader(challenge), &sid); err != nil {
		return sid, fmt.Errorf("decode challenge stateid: %w", err)
	}
	return sid, nil
}

// EncodeChallengeStateid is the inverse of DecodeChallengeStateid.
func EncodeChallengeStateid(sid Stateid4) []byte {
	var buf bytes.Buffer
	EncodeStateid4(&buf, &sid)
	return buf.Bytes()
}
