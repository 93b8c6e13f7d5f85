// Package store materializes raw dataset groups for conversion, either from
// a pandas fixed-format HDF5 file or from a flat dump of per-dataset binary
// files. Both layouts are read through gocloud blob buckets so the data can
// live on local disk or object storage.
package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"gocloud.dev/blob"

	"github.com/latticeio/corrframe"
)

// OpenHDF5 materializes one group of an HDF5 file stored under key in the
// bucket. The object is read fully into memory before parsing; files in
// scope are at most a few megabytes. Pass "" or "/" for the root group.
func OpenHDF5(ctx context.Context, bucketURL, key, group string) (corrframe.Group, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	defer bucket.Close()

	raw, err := readObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	root, err := netcdf.New(nopSeekCloser{bytes.NewReader(raw)})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	defer root.Close()

	g := root
	if group != "" && group != "/" {
		g, err = root.GetGroup(group)
		if err != nil {
			return nil, fmt.Errorf("failed to open group %s: %w", group, err)
		}
		defer g.Close()
	}
	return FromAPI(g)
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }

// FromAPI flattens every variable of an already-open group into a raw group
// mapping. Nested numeric slices become flat row-major data plus a shape.
// Complex-valued datasets split into the <name>.r / <name>.i pair the
// converter works on.
func FromAPI(g api.Group) (corrframe.Group, error) {
	out := corrframe.Group{}
	for _, name := range g.ListVariables() {
		v, err := g.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read variable %s: %w", name, err)
		}
		if err := addVariable(out, name, v.Values); err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
	}
	return out, nil
}

func addVariable(out corrframe.Group, name string, values any) error {
	shape, flat, err := flatten(values)
	if err != nil {
		return err
	}

	switch v := flat.(type) {
	case []complex128:
		re := make([]float64, len(v))
		im := make([]float64, len(v))
		for i, x := range v {
			re[i] = real(x)
			im[i] = imag(x)
		}
		out[name+".r"] = corrframe.Dataset{Shape: shape, Values: re}
		out[name+".i"] = corrframe.Dataset{Shape: shape, Values: im}
	case []complex64:
		re := make([]float32, len(v))
		im := make([]float32, len(v))
		for i, x := range v {
			re[i] = real(x)
			im[i] = imag(x)
		}
		out[name+".r"] = corrframe.Dataset{Shape: shape, Values: re}
		out[name+".i"] = corrframe.Dataset{Shape: shape, Values: im}
	default:
		out[name] = corrframe.Dataset{Shape: shape, Values: flat}
	}
	return nil
}

// flatten accepts the 1-D and 2-D slice shapes the netcdf reader produces
// and returns the shape plus flat row-major data.
func flatten(values any) ([]int, any, error) {
	switch v := values.(type) {
	case []float64:
		return []int{len(v)}, v, nil
	case []float32:
		return []int{len(v)}, v, nil
	case []int64:
		return []int{len(v)}, v, nil
	case []int32:
		return []int{len(v)}, v, nil
	case []string:
		return []int{len(v)}, v, nil
	case []complex128:
		return []int{len(v)}, v, nil
	case []complex64:
		return []int{len(v)}, v, nil
	case [][]float64:
		return flattenRows(v)
	case [][]float32:
		return flattenRows(v)
	case [][]int64:
		return flattenRows(v)
	case [][]int32:
		return flattenRows(v)
	case [][]string:
		return flattenRows(v)
	case [][]complex128:
		return flattenRows(v)
	case [][]complex64:
		return flattenRows(v)
	default:
		return nil, nil, fmt.Errorf("unsupported variable type %T", values)
	}
}

func flattenRows[T any](rows [][]T) ([]int, any, error) {
	if len(rows) == 0 {
		return []int{0, 0}, []T{}, nil
	}
	width := len(rows[0])
	flat := make([]T, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, nil, fmt.Errorf("ragged rows: row %d has %d entries, expected %d", i, len(row), width)
		}
		flat = append(flat, row...)
	}
	return []int{len(rows), width}, flat, nil
}
