// Package corrframe flattens pandas fixed-format HDF5 frames into one row
// per channel: categorical metadata columns reconstructed from level/label
// pairs, plus a complex (configurations × time-slices) payload matrix
// recombined from separately stored real and imaginary parts.
package corrframe

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

const (
	blockRealKey = "block0_values.r"
	blockImagKey = "block0_values.i"
	labelPrefix  = "axis1_label"
	levelPrefix  = "axis1_level"

	// timeLevelKey is the axis-0 level array whose length gives the time
	// extent when none is supplied explicitly. The flat length alone is
	// ambiguous: configurations × time-slices factorizes in more than one
	// way.
	timeLevelKey = "axis0_level1"
)

// Option configures a conversion.
type Option func(*options)

type options struct {
	timeExtent  int
	timeMajor   bool
	factorNames []string
}

// WithTimeExtent sets the number of time slices per channel explicitly
// instead of inferring it from the axis0_level1 array.
func WithTimeExtent(n int) Option {
	return func(o *options) {
		o.timeExtent = n
	}
}

// TimeMajor makes payload rows time slices and columns configurations,
// the transpose of the default orientation.
func TimeMajor() Option {
	return func(o *options) {
		o.timeMajor = true
	}
}

// WithFactorNames names the metadata columns in ascending dimension order.
// The default names are C0..C{K-1}. The count must match the number of
// discovered dimensions.
func WithFactorNames(names ...string) Option {
	return func(o *options) {
		o.factorNames = names
	}
}

// Convert reconstructs the row-per-channel table from one raw group. It is a
// pure function of its inputs: no partial table is ever returned, and
// identical inputs always produce identical output.
//
// Payloads have shape (configurations, timeExtent). The source flat vector
// enumerates all time slices of configuration 0 first, then configuration 1,
// and so on, so payload[c][t] corresponds to flat[c*timeExtent+t].
func Convert(g Group, opts ...Option) (*Table, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	re, okR := g[blockRealKey]
	im, okI := g[blockImagKey]
	if !okR || !okI {
		return nil, fmt.Errorf("group lacks %s/%s: %w", blockRealKey, blockImagKey, ErrSchema)
	}
	if !slices.Equal(re.Shape, im.Shape) {
		return nil, fmt.Errorf("real part %v vs imaginary part %v: %w", re.Shape, im.Shape, ErrShapeMismatch)
	}
	if len(re.Shape) != 2 {
		return nil, fmt.Errorf("block values must be 2-D, got shape %v: %w", re.Shape, ErrShapeMismatch)
	}
	numChannels, flatLen := re.Shape[0], re.Shape[1]

	timeExtent := o.timeExtent
	if timeExtent == 0 {
		tl, ok := g[timeLevelKey]
		if !ok {
			return nil, fmt.Errorf("no explicit time extent and no %s to infer it from: %w", timeLevelKey, ErrSchema)
		}
		timeExtent = tl.Len()
	}
	if timeExtent <= 0 || flatLen%timeExtent != 0 {
		return nil, fmt.Errorf("flat length %d, time extent %d: %w", flatLen, timeExtent, ErrInvalidShape)
	}
	configs := flatLen / timeExtent

	factors, err := decodeFactors(g, numChannels, o.factorNames)
	if err != nil {
		return nil, err
	}

	rv, err := re.floats()
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", blockRealKey, err, ErrSchema)
	}
	iv, err := im.floats()
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", blockImagKey, err, ErrSchema)
	}
	if len(rv) != numChannels*flatLen || len(iv) != numChannels*flatLen {
		return nil, fmt.Errorf("block data length %d/%d does not match shape %v: %w",
			len(rv), len(iv), re.Shape, ErrShapeMismatch)
	}

	payloads := make([]*tensors.Tensor, numChannels)
	for c := 0; c < numChannels; c++ {
		base := c * flatLen
		flat := make([]complex128, flatLen)
		for f := 0; f < flatLen; f++ {
			flat[f] = complex(rv[base+f], iv[base+f])
		}
		if o.timeMajor {
			tm := make([]complex128, flatLen)
			for cfg := 0; cfg < configs; cfg++ {
				for t := 0; t < timeExtent; t++ {
					tm[t*configs+cfg] = flat[cfg*timeExtent+t]
				}
			}
			payloads[c] = tensors.FromFlatDataAndDimensions(tm, timeExtent, configs)
		} else {
			payloads[c] = tensors.FromFlatDataAndDimensions(flat, configs, timeExtent)
		}
	}

	return &Table{Factors: factors, Payloads: payloads}, nil
}

// decodeFactors reconstructs the categorical columns from the group's
// level/label pairs. Dimension indices come from the axis1_label{i} key
// names, sorted numerically and validated for contiguity from 0, so the
// result never depends on map iteration order.
func decodeFactors(g Group, numChannels int, names []string) ([]Factor, error) {
	var dims []int
	for key := range g {
		suffix, ok := strings.CutPrefix(key, labelPrefix)
		if !ok {
			continue
		}
		i, err := strconv.Atoi(suffix)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("bad label key %q: %w", key, ErrSchema)
		}
		dims = append(dims, i)
	}
	slices.Sort(dims)
	for i, dim := range dims {
		if dim != i {
			return nil, fmt.Errorf("label keys not contiguous from 0: %v: %w", dims, ErrSchema)
		}
	}
	if names != nil && len(names) != len(dims) {
		return nil, fmt.Errorf("%d factor names for %d dimensions: %w", len(names), len(dims), ErrSchema)
	}

	factors := make([]Factor, len(dims))
	for i := range dims {
		labelKey := labelPrefix + strconv.Itoa(i)
		levelKey := levelPrefix + strconv.Itoa(i)
		levelDS, ok := g[levelKey]
		if !ok {
			return nil, fmt.Errorf("%s present but %s missing: %w", labelKey, levelKey, ErrSchema)
		}
		labelDS := g[labelKey]
		if len(labelDS.Shape) != 1 || len(levelDS.Shape) != 1 {
			return nil, fmt.Errorf("dimension %d: label/level arrays must be 1-D: %w", i, ErrSchema)
		}
		if labelDS.Shape[0] != numChannels {
			return nil, fmt.Errorf("%s has %d entries for %d channels: %w", labelKey, labelDS.Shape[0], numChannels, ErrSchema)
		}

		labels, err := labelDS.ints()
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", labelKey, err, ErrSchema)
		}
		levels, err := levelDS.strings()
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", levelKey, err, ErrSchema)
		}
		for c, lb := range labels {
			if lb < 0 || lb >= len(levels) {
				return nil, fmt.Errorf("channel %d: label %d outside %d levels of %s: %w",
					c, lb, len(levels), levelKey, ErrLabelRange)
			}
		}

		name := "C" + strconv.Itoa(i)
		if names != nil {
			name = names[i]
		}
		factors[i] = Factor{Name: name, Levels: levels, Labels: labels}
	}
	return factors, nil
}
