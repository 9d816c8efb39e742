package xdr

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxOpaqueLength bounds variable-length opaque fields read from the wire.
// Device ids, file handles and layout bodies are all far below this.
const maxOpaqueLength = 1024 * 1024

// DecodeOpaque decodes XDR variable-length opaque data (RFC 4506 Section 4.10):
// [length:uint32][data][padding to a 4-byte boundary].
func DecodeOpaque(reader io.Reader) ([]byte, error) {
	length, err := DecodeUint32(reader)
	if err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}
	if length > maxOpaqueLength {
		return nil, fmt.Errorf("opaque length %d exceeds maximum %d", length, maxOpaqueLength)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}

	if padding := Padding(length); padding > 0 {
		var padBuf [3]byte
		if _, err := io.ReadFull(reader, padBuf[:padding]); err != nil {
			return nil, fmt.Errorf("skip padding: %w", err)
		}
	}

	return data, nil
}

// DecodeFixedOpaque reads exactly len(dst) bytes of fixed-length opaque data
// plus its padding. Fixed opaques carry no length prefix on the wire.
func DecodeFixedOpaque(reader io.Reader, dst []byte) error {
	if _, err := io.ReadFull(reader, dst); err != nil {
		return fmt.Errorf("read fixed opaque: %w", err)
	}
	if padding := Padding(uint32(len(dst))); padding > 0 {
		var padBuf [3]byte
		if _, err := io.ReadFull(reader, padBuf[:padding]); err != nil {
			return fmt.Errorf("skip padding: %w", err)
		}
	}
	return nil
}

// DecodeString decodes an XDR string. Same wire form as opaque data.
func DecodeString(reader io.Reader) (string, error) {
	data, err := DecodeOpaque(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeUint32 decodes a big-endian unsigned 32-bit integer.
func DecodeUint32(reader io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(reader, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return v, nil
}

// DecodeUint64 decodes a big-endian unsigned hyper integer.
func DecodeUint64(reader io.Reader) (uint64, error) {
	var v uint64
	if err := binary.Read(reader, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint64: %w", err)
	}
	return v, nil
}

// DecodeBool decodes an XDR boolean (uint32, non-zero is true).
func DecodeBool(reader io.Reader) (bool, error) {
	v, err := DecodeUint32(reader)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
