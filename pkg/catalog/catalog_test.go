package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTypeRoundTrip(t *testing.T) {
	for _, ft := range []FileType{FileTypeRegular, FileTypeDirectory, FileTypeSymlink, FileTypeControl} {
		got, err := ParseFileType(ft.String())
		require.NoError(t, err)
		assert.Equal(t, ft, got)
	}
	_, err := ParseFileType("fifo")
	assert.Error(t, err)
	assert.Equal(t, "unknown(9)", FileType(9).String())
}

func TestIsOrdinary(t *testing.T) {
	assert.True(t, FileTypeRegular.IsOrdinary())
	assert.False(t, FileTypeDirectory.IsOrdinary())
	assert.False(t, FileTypeControl.IsOrdinary())
}

func TestEntryValidate(t *testing.T) {
	assert.NoError(t, Entry{FileID: "d", Type: FileTypeDirectory}.Validate())
	assert.NoError(t, Entry{FileID: "r", Type: FileTypeRegular, Storage: StorageInfo{StorageClass: "c"}}.Validate())
	assert.Error(t, Entry{FileID: "r", Type: FileTypeRegular}.Validate())
}
