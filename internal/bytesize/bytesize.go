// Package bytesize parses and prints human-readable byte sizes in config
// files, e.g. "256Mi", "1GB" or a plain number of bytes.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ByteSize is a size in bytes.
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// exactUnits are tried largest first by MarshalText.
var exactUnits = []struct {
	size   ByteSize
	suffix string
}{
	{TiB, "Ti"},
	{GiB, "Gi"},
	{MiB, "Mi"},
	{KiB, "Ki"},
}

// ParseByteSize parses s. Binary suffixes (Ki, MiB, ...) multiply by 1024,
// decimal ones (K, MB, ...) by 1000; matching is case-insensitive.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}
	if s[0] < '0' || s[0] > '9' {
		return 0, fmt.Errorf("invalid byte size format: %q", s)
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	return ByteSize(n), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// MarshalText implements encoding.TextMarshaler. The output is exact and
// parses back to the same value: "256Mi" rather than "256.00MiB".
func (b ByteSize) MarshalText() ([]byte, error) {
	if b != 0 {
		for _, u := range exactUnits {
			if b%u.size == 0 {
				return []byte(strconv.FormatUint(uint64(b/u.size), 10) + u.suffix), nil
			}
		}
	}
	return []byte(strconv.FormatUint(uint64(b), 10)), nil
}

// String returns a rounded, human-readable size such as "1.5 MiB".
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

func (b ByteSize) Uint64() uint64 { return uint64(b) }

// Int64 returns b as an int64; values above math.MaxInt64 overflow.
func (b ByteSize) Int64() int64 { return int64(b) }
