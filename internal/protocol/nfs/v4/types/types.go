package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/marmos91/dittomds/internal/protocol/xdr"
)

// ============================================================================
// Stateid4 (State Identifier)
// ============================================================================

// NFS4_OTHER_SIZE is the size of the "other" field in stateid4 (12 bytes).
const NFS4_OTHER_SIZE = 12

// Stateid4 represents an NFSv4 state identifier.
//
//	struct stateid4 {
//	    uint32_t seqid;
//	    opaque   other[NFS4_OTHER_SIZE];
//	};
//
// Stateid4 is comparable and is used directly as a map key for layout
// sessions.
type Stateid4 struct {
	Seqid uint32
	Other [NFS4_OTHER_SIZE]byte
}

// String renders the stateid as seqid:other-hex.
func (s Stateid4) String() string {
	return fmt.Sprintf("%d:%s", s.Seqid, hex.EncodeToString(s.Other[:]))
}

// ParseStateid4 parses the output of Stateid4.String.
func ParseStateid4(s string) (Stateid4, error) {
	var sid Stateid4
	seq, other, ok := strings.Cut(s, ":")
	if !ok {
		return sid, fmt.Errorf("stateid %q: want seqid:other", s)
	}
	n, err := strconv.ParseUint(seq, 10, 32)
	if err != nil {
		return sid, fmt.Errorf("stateid %q: bad seqid: %w", s, err)
	}
	raw, err := hex.DecodeString(other)
	if err != nil || len(raw) != NFS4_OTHER_SIZE {
		return sid, fmt.Errorf("stateid %q: other must be %d hex bytes", s, NFS4_OTHER_SIZE)
	}
	sid.Seqid = uint32(n)
	copy(sid.Other[:], raw)
	return sid, nil
}

// DecodeStateid4 reads a stateid4 from an io.Reader.
func DecodeStateid4(reader io.Reader) (*Stateid4, error) {
	seqid, err := xdr.DecodeUint32(reader)
	if err != nil {
		return nil, err
	}
	var other [NFS4_OTHER_SIZE]byte
	if _, err := io.ReadFull(reader, other[:]); err != nil {
		return nil, err
	}
	return &Stateid4{Seqid: seqid, Other: other}, nil
}

// EncodeStateid4 writes a stateid4 to a buffer.
func EncodeStateid4(buf *bytes.Buffer, sid *Stateid4) {
	_ = xdr.WriteUint32(buf, sid.Seqid)
	buf.Write(sid.Other[:])
}

// ============================================================================
// Bitmap4
// ============================================================================

// Bitmap4 is an XDR bitmap: a counted array of 32-bit words.
type Bitmap4 []uint32

// Encode writes the bitmap.
func (b Bitmap4) Encode(buf *bytes.Buffer) error {
	if err := xdr.WriteUint32(buf, uint32(len(b))); err != nil {
		return err
	}
	for _, w := range b {
		if err := xdr.WriteUint32(buf, w); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads the bitmap. More than 8 words is rejected as malformed.
func (b *Bitmap4) Decode(r io.Reader) error {
	n, err := xdr.DecodeUint32(r)
	if err != nil {
		return err
	}
	if n > 8 {
		return fmt.Errorf("bitmap4 length %d exceeds limit", n)
	}
	words := make(Bitmap4, n)
	for i := range words {
		if words[i], err = xdr.DecodeUint32(r); err != nil {
			return err
		}
	}
	*b = words
	return nil
}

// ============================================================================
// DeviceId4
// ============================================================================

// DeviceId4 is a fixed 16-byte device identifier. Encoded as fixed-size XDR
// opaque (no length prefix).
type DeviceId4 [NFS4_DEVICEID4_SIZE]byte

// Verifier4 is the opaque cookie verifier used by GETDEVICELIST.
type Verifier4 [NFS4_VERIFIER_SIZE]byte
