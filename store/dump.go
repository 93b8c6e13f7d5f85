package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path"

	"github.com/klauspost/compress/zstd"
	"gocloud.dev/blob"

	"github.com/latticeio/corrframe"
)

// manifestKey names the per-group index of a dump layout.
const manifestKey = "manifest.json"

// dumpEntry describes one dataset file in a dump manifest.
type dumpEntry struct {
	DType      string `json:"dtype"`
	Shape      []int  `json:"shape"`
	File       string `json:"file"`
	Compressor string `json:"compressor,omitempty"`
}

type manifest struct {
	Format   int                  `json:"format"`
	Datasets map[string]dumpEntry `json:"datasets"`
}

// OpenDump reads a dumped group from a bucket: <group>/manifest.json plus
// one file per dataset. Numeric datasets are raw little-endian in row-major
// order, optionally zstd-compressed; "|O" datasets hold a JSON array of
// strings.
func OpenDump(ctx context.Context, bucketURL, group string) (corrframe.Group, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	defer bucket.Close()

	raw, err := readObject(ctx, bucket, path.Join(group, manifestKey))
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if m.Format != 1 {
		return nil, fmt.Errorf("unsupported dump format: %d, expected 1", m.Format)
	}

	out := make(corrframe.Group, len(m.Datasets))
	for name, entry := range m.Datasets {
		ds, err := readDataset(ctx, bucket, group, entry)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", name, err)
		}
		out[name] = ds
	}
	return out, nil
}

func readObject(ctx context.Context, bucket *blob.Bucket, key string) ([]byte, error) {
	reader, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return raw, nil
}

func readDataset(ctx context.Context, bucket *blob.Bucket, group string, entry dumpEntry) (corrframe.Dataset, error) {
	kind, size, err := ParseDType(entry.DType)
	if err != nil {
		return corrframe.Dataset{}, err
	}

	raw, err := readObject(ctx, bucket, path.Join(group, entry.File))
	if err != nil {
		return corrframe.Dataset{}, err
	}

	switch entry.Compressor {
	case "":
	case "zstd":
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return corrframe.Dataset{}, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer decoder.Close()
		raw, err = decoder.DecodeAll(raw, nil)
		if err != nil {
			return corrframe.Dataset{}, fmt.Errorf("failed to decompress %s: %w", entry.File, err)
		}
	default:
		return corrframe.Dataset{}, fmt.Errorf("unsupported compressor: %s", entry.Compressor)
	}

	n := 1
	for _, dim := range entry.Shape {
		n *= dim
	}

	if kind == "object" {
		var vals []string
		if err := json.Unmarshal(raw, &vals); err != nil {
			return corrframe.Dataset{}, fmt.Errorf("failed to decode object dataset %s: %w", entry.File, err)
		}
		if len(vals) != n {
			return corrframe.Dataset{}, fmt.Errorf("%s has %d values for shape %v", entry.File, len(vals), entry.Shape)
		}
		return corrframe.Dataset{Shape: entry.Shape, Values: vals}, nil
	}

	if len(raw) != n*size {
		return corrframe.Dataset{}, fmt.Errorf("%s has %d bytes for shape %v of %s", entry.File, len(raw), entry.Shape, entry.DType)
	}

	switch kind {
	case "float64":
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return corrframe.Dataset{Shape: entry.Shape, Values: vals}, nil
	case "float32":
		vals := make([]float32, n)
		for i := range vals {
			vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return corrframe.Dataset{Shape: entry.Shape, Values: vals}, nil
	case "int64":
		vals := make([]int64, n)
		for i := range vals {
			vals[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return corrframe.Dataset{Shape: entry.Shape, Values: vals}, nil
	case "int32":
		vals := make([]int32, n)
		for i := range vals {
			vals[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return corrframe.Dataset{Shape: entry.Shape, Values: vals}, nil
	default:
		return corrframe.Dataset{}, fmt.Errorf("unsupported dtype: %s", entry.DType)
	}
}
