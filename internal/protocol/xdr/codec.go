// Package xdr provides XDR (External Data Representation, RFC 4506) helpers
// for the pNFS operations served by the metadata server.
//
// All integers are big-endian, every item is aligned to 4 bytes and
// variable-length data is preceded by a uint32 length.
package xdr

import (
	"bytes"
	"io"
)

// XdrEncoder is implemented by wire types that can encode themselves.
type XdrEncoder interface {
	Encode(buf *bytes.Buffer) error
}

// XdrDecoder is implemented by wire types that can decode themselves.
type XdrDecoder interface {
	Decode(r io.Reader) error
}

// Marshal encodes v into a fresh byte slice.
func Marshal(v XdrEncoder) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes v from data. Trailing bytes are ignored; COMPOUND
// arguments are decoded back to back from a single stream.
func Unmarshal(data []byte, v XdrDecoder) error {
	return v.Decode(bytes.NewReader(data))
}

// EncodeUnionDiscriminant writes the uint32 discriminant of an XDR union.
func EncodeUnionDiscriminant(buf *bytes.Buffer, disc uint32) error {
	return WriteUint32(buf, disc)
}

// DecodeUnionDiscriminant reads the uint32 discriminant of an XDR union.
func DecodeUnionDiscriminant(r io.Reader) (uint32, error) {
	return DecodeUint32(r)
}
