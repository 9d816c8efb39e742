package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("Pool", "Address")
	assert.Equal(t, []string{"Pool", "Address"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("poolA", "10.0.0.1:2049")
	table.AddRow("poolB", "10.0.0.2:2049")

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"poolB", "10.0.0.2:2049"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Pool", "Mover")
	table.AddRow("poolA", "17")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))

	out := buf.String()
	assert.Contains(t, out, "POOL")
	assert.Contains(t, out, "MOVER")
	assert.Contains(t, out, "poolA")
	assert.Contains(t, out, "17")
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, KeyValueTable(&buf, [][2]string{
		{"Threads", "32"},
		{"Pending", "0"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Threads")
	assert.Contains(t, out, "32")
	assert.Contains(t, out, "Pending")
}
