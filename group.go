package corrframe

import (
	"fmt"
	"strconv"
)

// Dataset is one named array materialized from a source group. Values holds
// the flat row-major data: one of []float64, []float32, []int64, []int32 or
// []string.
type Dataset struct {
	Shape  []int
	Values any
}

// Len returns the number of elements implied by the shape.
func (d Dataset) Len() int {
	n := 1
	for _, dim := range d.Shape {
		n *= dim
	}
	return n
}

// floats widens the dataset to float64 values.
func (d Dataset) floats() ([]float64, error) {
	switch v := d.Values.(type) {
	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected float data, got %T", d.Values)
	}
}

// ints narrows the dataset to int values. Label arrays are stored as signed
// integers of either width.
func (d Dataset) ints() ([]int, error) {
	switch v := d.Values.(type) {
	case []int64:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	case []int32:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected integer data, got %T", d.Values)
	}
}

// strings renders the dataset as level strings. Numeric level arrays keep
// their shortest decimal representation.
func (d Dataset) strings() ([]string, error) {
	switch v := d.Values.(type) {
	case []string:
		return v, nil
	case []float64:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		return out, nil
	case []float32:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
		}
		return out, nil
	case []int64:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.FormatInt(x, 10)
		}
		return out, nil
	case []int32:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.FormatInt(int64(x), 10)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected level data, got %T", d.Values)
	}
}

// Group maps dataset names to their materialized arrays, as read from one
// source group by the store package. Convert treats it as an immutable
// snapshot.
type Group map[string]Dataset
