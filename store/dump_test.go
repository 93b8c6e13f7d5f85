package store_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	_ "gocloud.dev/blob/fileblob"

	"github.com/latticeio/corrframe"
	"github.com/latticeio/corrframe/store"
)

func writeRaw(t *testing.T, dir, name string, data any) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, data))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644))
}

func writeJSON(t *testing.T, dir, name string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0644))
}

func entry(dtype string, shape []int, file string) map[string]any {
	return map[string]any{"dtype": dtype, "shape": shape, "file": file}
}

func TestOpenDump(t *testing.T) {
	tmpDir := t.TempDir()
	groupDir := filepath.Join(tmpDir, "corr")
	require.NoError(t, os.Mkdir(groupDir, 0755))

	// 2 channels x (2 configurations x 3 time slices).
	rv := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	iv := []float64{-1, -2, -3, -4, -5, -6, -7, -8, -9, -10, -11, -12}

	writeRaw(t, groupDir, "block0_values.r.bin", rv)

	// Imaginary part goes through zstd to cover the decompression path.
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, iv))
	encoder, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := encoder.EncodeAll(buf.Bytes(), nil)
	require.NoError(t, encoder.Close())
	require.NoError(t, os.WriteFile(filepath.Join(groupDir, "block0_values.i.bin"), compressed, 0644))

	writeRaw(t, groupDir, "axis0_level1.bin", []int64{0, 1, 2})
	writeRaw(t, groupDir, "axis1_label0.bin", []int64{1, 0})
	writeJSON(t, groupDir, "axis1_level0.json", []string{"ll", "ss"})

	imagEntry := entry("<f8", []int{2, 6}, "block0_values.i.bin")
	imagEntry["compressor"] = "zstd"
	writeJSON(t, groupDir, "manifest.json", map[string]any{
		"format": 1,
		"datasets": map[string]any{
			"block0_values.r": entry("<f8", []int{2, 6}, "block0_values.r.bin"),
			"block0_values.i": imagEntry,
			"axis0_level1":    entry("<i8", []int{3}, "axis0_level1.bin"),
			"axis1_label0":    entry("<i8", []int{2}, "axis1_label0.bin"),
			"axis1_level0":    entry("|O", []int{2}, "axis1_level0.json"),
		},
	})

	ctx := context.Background()
	g, err := store.OpenDump(ctx, "file://"+tmpDir, "corr")
	require.NoError(t, err)

	require.Equal(t, []int{2, 6}, g["block0_values.r"].Shape)
	require.Equal(t, rv, g["block0_values.r"].Values)
	require.Equal(t, iv, g["block0_values.i"].Values)
	require.Equal(t, []string{"ll", "ss"}, g["axis1_level0"].Values)

	// The materialized group converts end to end.
	table, err := corrframe.Convert(g)
	require.NoError(t, err)
	require.Equal(t, 2, table.NumRows())
	require.Equal(t, []string{"C0", "payload"}, table.Columns())
	require.Equal(t, []string{"ss"}, table.Row(0).Values)
	require.Equal(t, []string{"ll"}, table.Row(1).Values)
	require.Equal(t, [][]complex128{
		{complex(1, -1), complex(2, -2), complex(3, -3)},
		{complex(4, -4), complex(5, -5), complex(6, -6)},
	}, table.Payloads[0].Value().([][]complex128))
}

func TestOpenDump_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing manifest", func(t *testing.T) {
		tmpDir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "corr"), 0755))
		_, err := store.OpenDump(ctx, "file://"+tmpDir, "corr")
		require.Error(t, err)
	})

	t.Run("unsupported format", func(t *testing.T) {
		tmpDir := t.TempDir()
		groupDir := filepath.Join(tmpDir, "corr")
		require.NoError(t, os.Mkdir(groupDir, 0755))
		writeJSON(t, groupDir, "manifest.json", map[string]any{"format": 2})
		_, err := store.OpenDump(ctx, "file://"+tmpDir, "corr")
		require.ErrorContains(t, err, "unsupported dump format")
	})

	t.Run("unknown compressor", func(t *testing.T) {
		tmpDir := t.TempDir()
		groupDir := filepath.Join(tmpDir, "corr")
		require.NoError(t, os.Mkdir(groupDir, 0755))
		writeRaw(t, groupDir, "x.bin", []int64{1})
		e := entry("<i8", []int{1}, "x.bin")
		e["compressor"] = "lz4"
		writeJSON(t, groupDir, "manifest.json", map[string]any{
			"format":   1,
			"datasets": map[string]any{"x": e},
		})
		_, err := store.OpenDump(ctx, "file://"+tmpDir, "corr")
		require.ErrorContains(t, err, "unsupported compressor")
	})

	t.Run("size mismatch", func(t *testing.T) {
		tmpDir := t.TempDir()
		groupDir := filepath.Join(tmpDir, "corr")
		require.NoError(t, os.Mkdir(groupDir, 0755))
		writeRaw(t, groupDir, "x.bin", []int64{1, 2})
		writeJSON(t, groupDir, "manifest.json", map[string]any{
			"format":   1,
			"datasets": map[string]any{"x": entry("<i8", []int{3}, "x.bin")},
		})
		_, err := store.OpenDump(ctx, "file://"+tmpDir, "corr")
		require.ErrorContains(t, err, "bytes for shape")
	})
}
