package table

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRejectsWidthMismatch(t *testing.T) {
	t.Parallel()

	tbl := New("id", "raw_text")
	require.NoError(t, tbl.Append("1", "hello"))
	assert.Error(t, tbl.Append("2"))
	assert.Equal(t, 1, tbl.Len())
}

func TestNewDropsDuplicateColumns(t *testing.T) {
	t.Parallel()

	tbl := New("a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
}

func TestWithColumnsIsAdditive(t *testing.T) {
	t.Parallel()

	tbl := New("id", "raw_text")
	require.NoError(t, tbl.Append("1", "Hello"))
	require.NoError(t, tbl.Append("2", "World"))

	out, err := tbl.WithColumns([]string{"clean_text"}, [][]string{{"hello"}, {"world"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "raw_text", "clean_text"}, out.Columns())
	assert.Equal(t, []string{"2", "World", "world"}, out.Row(1))
	assert.False(t, tbl.Has("clean_text"), "source table must stay untouched")
}

func TestWithColumnsOverwritesExisting(t *testing.T) {
	t.Parallel()

	tbl := New("id", "clean_text")
	require.NoError(t, tbl.Append("1", "stale"))

	out, err := tbl.WithColumns([]string{"clean_text"}, [][]string{{"fresh"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "clean_text"}, out.Columns())
	v, _ := out.Value(0, "clean_text")
	assert.Equal(t, "fresh", v)
}

func TestWithColumnsRowCountMismatch(t *testing.T) {
	t.Parallel()

	tbl := New("id")
	require.NoError(t, tbl.Append("1"))
	_, err := tbl.WithColumns([]string{"x"}, nil)
	assert.Error(t, err)
}

func TestFloat(t *testing.T) {
	t.Parallel()

	tbl := New("compound")
	require.NoError(t, tbl.Append("0.25"))
	require.NoError(t, tbl.Append(""))
	require.NoError(t, tbl.Append("abc"))

	v, err := tbl.Float(0, "compound")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v, 1e-9)

	v, err = tbl.Float(1, "compound")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	_, err = tbl.Float(2, "compound")
	assert.Error(t, err)

	_, err = tbl.Float(0, "missing")
	assert.Error(t, err)
}

func TestCSVRoundTripPreservesOrder(t *testing.T) {
	t.Parallel()

	input := "id,raw_text\n3,\"third, with comma\"\n1,first\n2,\"multi\nline\"\n"
	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	ids, err := tbl.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2"}, ids)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))
	if diff := cmp.Diff(input, buf.String()); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVPadsShortRowsAndStripsBOM(t *testing.T) {
	t.Parallel()

	tbl, err := ReadCSV(strings.NewReader("\ufeffid,text\n1\n"))
	require.NoError(t, err)
	assert.True(t, tbl.Has("id"))
	assert.Equal(t, []string{"1", ""}, tbl.Row(0))
}

func TestReadCSVRejectsLongRows(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader("id\n1,2\n"))
	assert.Error(t, err)
}

func TestReadCSVEmpty(t *testing.T) {
	t.Parallel()

	tbl, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tbl.Columns())
	assert.Zero(t, tbl.Len())
}

func TestSaveFileReplacesAtomically(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "tweets.csv")

	first := New("id")
	require.NoError(t, first.Append("1"))
	require.NoError(t, SaveFile(path, first))

	second := New("id")
	require.NoError(t, second.Append("2"))
	require.NoError(t, SaveFile(path, second))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, loaded.Row(0))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestHead(t *testing.T) {
	t.Parallel()

	tbl := New("id")
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, tbl.Append(id))
	}
	assert.Equal(t, 2, tbl.Head(2).Len())
	assert.Equal(t, 3, tbl.Head(10).Len())
}
