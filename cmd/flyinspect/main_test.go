package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flystore"
	"github.com/hupe1980/flystore/flyweight"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("flyinspect"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = ctx.Run(&runContext{Globals: &cli.Globals, Out: &out})
	return out.String(), err
}

// writeRecords creates a dual-header file of 16-byte records whose int64
// key at offset 0 takes the given values.
func writeRecords(t *testing.T, values ...int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.fly")
	s := flystore.New()
	fw, err := s.OpenFlyWeight(path, 16, flyweight.WithHeader(flyweight.DualHeader))
	require.NoError(t, err)
	first, err := fw.AllocateNewRecords(int64(len(values)))
	require.NoError(t, err)
	for i, v := range values {
		fw.Select(first + int64(i))
		fw.WriteInt64(0, v)
		fw.WriteInt64(8, int64(i))
	}
	require.NoError(t, s.Close())
	return path
}

func TestInspect(t *testing.T) {
	path := writeRecords(t, 1, 2, 3)

	out, err := run(t, "inspect", path, "--width", "16", "--dual")
	require.NoError(t, err)
	assert.Contains(t, out, "header:   dual")
	assert.Contains(t, out, "records:  3 x 16 bytes")

	out, err = run(t, "inspect", path, "--width", "16", "--dual", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"record_count": 3`)
	assert.Contains(t, out, `"used_bytes": 64`)

	_, err = run(t, "inspect", path, "--width", "1000")
	assert.ErrorIs(t, err, flyweight.ErrCorruptHeader)
}

func TestVerifySorted(t *testing.T) {
	sorted := writeRecords(t, 1, 2, 2, 5, 9)
	out, err := run(t, "verify-sorted", sorted, "--width", "16", "--dual", "--field-offset", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "sorted: 5 records")

	_, err = run(t, "verify-sorted", sorted, "--width", "16", "--dual", "--field-offset", "0", "--descending")
	assert.ErrorIs(t, err, errUnsorted)

	unsorted := writeRecords(t, 1, 2, 7, 3, 9)
	_, err = run(t, "verify-sorted", unsorted, "--width", "16", "--dual", "--field-offset", "0")
	require.ErrorIs(t, err, errUnsorted)
	assert.Contains(t, err.Error(), "record 2 > record 3")
}

func TestExportImport(t *testing.T) {
	values := make([]int64, 500)
	for i := range values {
		values[i] = int64(i % 7)
	}
	path := writeRecords(t, values...)

	for _, c := range []string{"zstd", "lz4", "none"} {
		t.Run(c, func(t *testing.T) {
			dir := t.TempDir()
			snap := filepath.Join(dir, "records.snap")
			restored := filepath.Join(dir, "restored.fly")

			out, err := run(t, "export", path, snap, "--width", "16", "--dual", "--compression", c)
			require.NoError(t, err)
			assert.Contains(t, out, "exported 500 records")

			out, err = run(t, "import", snap, restored)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, "imported flyweight"))

			out, err = run(t, "inspect", restored, "--width", "16", "--dual", "--json")
			require.NoError(t, err)
			assert.Contains(t, out, `"record_count": 500`)

			_, err = run(t, "import", snap, restored)
			assert.ErrorContains(t, err, "--force")
			_, err = run(t, "import", snap, restored, "--force")
			require.NoError(t, err)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "flyinspect "+version+"\n", out)
}
