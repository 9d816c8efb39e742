package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryListRows(t *testing.T) {
	list := EntryList{
		{FileID: "0a1b", Type: "regular", StorageClass: "tape:raw", Size: 4 << 30},
		{FileID: "0a1c", Type: "regular", CreatedOnly: true},
	}

	rows := list.Rows()
	assert.Equal(t, []string{"0a1b", "regular", "tape:raw", "4.0 GiB", "no"}, rows[0])
	assert.Equal(t, []string{"0a1c", "regular", "-", "0 B", "yes"}, rows[1])
}
