// Package catalog is the file catalog consulted by the layout coordinator:
// for each file it records whether it is an ordinary data file and which
// storage class its data belongs to.
//
// Backends:
//   - memory: map-backed, lost on restart
//   - badger: persistent, BadgerDB-backed
//   - sqldb: SQLite or PostgreSQL through GORM
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a file id is not in the catalog.
var ErrNotFound = errors.New("file not found in catalog")

// FileType classifies catalog entries.
type FileType int

const (
	FileTypeRegular FileType = iota
	FileTypeDirectory
	FileTypeSymlink

	// FileTypeControl marks server-internal pseudo files served directly by
	// the metadata server.
	FileTypeControl
)

var fileTypeNames = map[FileType]string{
	FileTypeRegular:   "regular",
	FileTypeDirectory: "directory",
	FileTypeSymlink:   "symlink",
	FileTypeControl:   "control",
}

// String returns the lowercase name of t.
func (t FileType) String() string {
	if n, ok := fileTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// ParseFileType parses the output of FileType.String.
func ParseFileType(s string) (FileType, error) {
	for t, n := range fileTypeNames {
		if strings.EqualFold(n, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown file type %q", s)
}

// IsOrdinary reports whether data for the file lives on storage pools.
func (t FileType) IsOrdinary() bool { return t == FileTypeRegular }

// StorageInfo describes where a file's data belongs.
type StorageInfo struct {
	StorageClass string `json:"storage_class"`

	// CreatedOnly is true for a file that was created but never written.
	CreatedOnly bool `json:"created_only"`

	Size uint64 `json:"size"`
}

// Entry is one catalog record.
type Entry struct {
	FileID  string      `json:"file_id"`
	Type    FileType    `json:"type"`
	Storage StorageInfo `json:"storage"`
}

// Validate checks that e can be stored.
func (e Entry) Validate() error {
	if e.FileID == "" {
		return errors.New("file id is required")
	}
	if _, ok := fileTypeNames[e.Type]; !ok {
		return fmt.Errorf("invalid file type %d", int(e.Type))
	}
	if e.Type.IsOrdinary() && e.Storage.StorageClass == "" {
		return errors.New("storage class is required for regular files")
	}
	return nil
}

// Store persists catalog entries.
type Store interface {
	Get(ctx context.Context, fileID string) (Entry, error)
	Put(ctx context.Context, e Entry) error
	Delete(ctx context.Context, fileID string) error
	List(ctx context.Context) ([]Entry, error)

	// FileType and StorageInfo are the read paths used on LAYOUTGET.
	FileType(ctx context.Context, fileID string) (FileType, error)
	StorageInfo(ctx context.Context, fileID string) (StorageInfo, error)

	Healthcheck(ctx context.Context) error
	Close() error
}
