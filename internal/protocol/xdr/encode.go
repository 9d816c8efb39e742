package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Padding returns the number of zero bytes needed after n bytes of data
// to reach the next 4-byte boundary.
func Padding(n uint32) uint32 {
	return (4 - (n % 4)) % 4
}

// WriteXDROpaque encodes variable-length opaque data: length, data, padding.
//
// Example:
//
//	[]byte{0x01, 0x02, 0x03} -> [00 00 00 03][01 02 03][00]
func WriteXDROpaque(buf *bytes.Buffer, data []byte) error {
	length := uint32(len(data))
	if err := binary.Write(buf, binary.BigEndian, length); err != nil {
		return fmt.Errorf("write opaque length: %w", err)
	}
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write opaque data: %w", err)
	}
	return WriteXDRPadding(buf, length)
}

// WriteFixedOpaque encodes fixed-length opaque data (no length prefix).
func WriteFixedOpaque(buf *bytes.Buffer, data []byte) error {
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write fixed opaque: %w", err)
	}
	return WriteXDRPadding(buf, uint32(len(data)))
}

// WriteXDRString encodes a string with the same wire form as opaque data.
func WriteXDRString(buf *bytes.Buffer, s string) error {
	length := uint32(len(s))
	if err := binary.Write(buf, binary.BigEndian, length); err != nil {
		return fmt.Errorf("write string length: %w", err)
	}
	if _, err := buf.WriteString(s); err != nil {
		return fmt.Errorf("write string data: %w", err)
	}
	return WriteXDRPadding(buf, length)
}

// WriteXDRPadding writes the zero padding that follows dataLen bytes.
func WriteXDRPadding(buf *bytes.Buffer, dataLen uint32) error {
	padding := Padding(dataLen)
	for i := uint32(0); i < padding; i++ {
		if err := buf.WriteByte(0); err != nil {
			return fmt.Errorf("write padding: %w", err)
		}
	}
	return nil
}

// WriteUint32 writes a big-endian unsigned 32-bit integer.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}
	return nil
}

// WriteUint64 writes a big-endian unsigned hyper integer.
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint64: %w", err)
	}
	return nil
}

// WriteBool writes an XDR boolean as 0 or 1.
func WriteBool(buf *bytes.Buffer, v bool) error {
	var val uint32
	if v {
		val = 1
	}
	return WriteUint32(buf, val)
}
