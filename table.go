package corrframe

import "github.com/gomlx/gomlx/pkg/core/tensors"

// PayloadColumn is the name of the trailing payload column.
const PayloadColumn = "payload"

// Factor is one categorical column: a fixed ordered level set plus a
// zero-based label picking a level for each row.
type Factor struct {
	Name   string
	Levels []string
	Labels []int
}

// Value resolves the factor's level for one row.
func (f Factor) Value(row int) string {
	return f.Levels[f.Labels[row]]
}

// Channel is one row of the converted table: the resolved factor values in
// column order plus the payload matrix.
type Channel struct {
	Values  []string
	Payload *tensors.Tensor
}

// Table is the converted row-per-channel table. Factors hold the metadata
// columns in ascending dimension order; Payloads holds one complex matrix
// per row. Rows keep the source channel order.
type Table struct {
	Factors  []Factor
	Payloads []*tensors.Tensor
}

// NumRows returns the number of channels.
func (t *Table) NumRows() int {
	return len(t.Payloads)
}

// Columns returns the column names: the factor columns in order, then the
// payload column last.
func (t *Table) Columns() []string {
	cols := make([]string, 0, len(t.Factors)+1)
	for _, f := range t.Factors {
		cols = append(cols, f.Name)
	}
	return append(cols, PayloadColumn)
}

// Row materializes one channel.
func (t *Table) Row(i int) Channel {
	vals := make([]string, len(t.Factors))
	for j, f := range t.Factors {
		vals[j] = f.Value(i)
	}
	return Channel{Values: vals, Payload: t.Payloads[i]}
}
