package tabfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmptyTable(t *testing.T) {
	tab := New(filepath.Join(t.TempDir(), "nope.csv"))

	header, rows, err := tab.Load()
	require.NoError(t, err)
	assert.Nil(t, header)
	assert.Empty(t, rows)
	assert.False(t, tab.Exists())
}

func TestRewriteThenLoad(t *testing.T) {
	tab := New(filepath.Join(t.TempDir(), "table.csv"))

	header := []string{"Product Name", "Price Per Unit", "Quantity In Stock"}
	rows := [][]string{
		{"Widget", "2.50", "10"},
		{"Gizmo", "1.00", "0"},
	}
	require.NoError(t, tab.Rewrite(header, rows))
	assert.True(t, tab.Exists())

	gotHeader, gotRows, err := tab.Load()
	require.NoError(t, err)
	assert.Equal(t, header, gotHeader)
	assert.Equal(t, rows, gotRows)
}

func TestRewrite_ReplacesWholeFile(t *testing.T) {
	tab := New(filepath.Join(t.TempDir(), "table.csv"))

	require.NoError(t, tab.Rewrite([]string{"A", "B"}, [][]string{{"1", "2"}, {"3", "4"}}))
	require.NoError(t, tab.Rewrite([]string{"A", "B"}, [][]string{{"5", "6"}}))

	_, rows, err := tab.Load()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"5", "6"}}, rows)
}

func TestLoad_RaggedRowsPassThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte("A,B\n1,2,extra\n3\n"), 0o644))

	header, rows, err := New(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, header)
	assert.Equal(t, [][]string{{"1", "2", "extra"}, {"3"}}, rows)
}

func TestColumnIndex(t *testing.T) {
	idx := ColumnIndex([]string{"Date", "Product Name", "Quantity Sold"})
	assert.Equal(t, 1, idx["Product Name"])
	_, ok := idx["Unit Price"]
	assert.False(t, ok)
}
