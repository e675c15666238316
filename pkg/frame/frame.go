// Package frame provides the in-memory tabular dataset the cleaning and
// feature-engineering helpers operate on.
//
// A Frame is an ordered set of named columns. Every column is a slice of
// Value aligned by row position. nil is the missing value; a float NaN is
// treated as missing as well. Frames are mutated in place and shared by
// reference, so callers own their lifecycle.
package frame

import (
	"fmt"
	"math"
	"strings"
)

// Value is a single cell: a number, a string, a bool or nil (missing).
type Value = any

// Column is a named slice of values, used to build frames.
type Column struct {
	Name   string
	Values []Value
}

// Frame is an ordered collection of equally long named columns.
type Frame struct {
	names []string
	cols  map[string][]Value
}

// New builds a frame from columns. Names must be unique and non-empty and
// all columns must have the same length.
func New(cols ...Column) (*Frame, error) {
	f := &Frame{cols: make(map[string][]Value, len(cols))}
	for _, c := range cols {
		if c.Name == "" {
			return nil, ErrEmptyName
		}
		if f.Has(c.Name) {
			return nil, fmt.Errorf("frame: duplicate column %q", c.Name)
		}
		if err := f.Set(c.Name, c.Values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// MustNew is New for literals in tests and examples.
func MustNew(cols ...Column) *Frame {
	f, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// Col is shorthand for building a Column from literal values.
func Col(name string, values ...Value) Column {
	return Column{Name: name, Values: values}
}

func (f *Frame) Names() []string {
	return append([]string(nil), f.names...)
}

func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.names) == 0 {
		return 0
	}
	return len(f.cols[f.names[0]])
}

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.names) }

// Column returns the live values of a column. Mutating the returned slice
// mutates the frame; use Set to replace a column.
func (f *Frame) Column(name string) ([]Value, error) {
	vals, ok := f.cols[name]
	if !ok {
		return nil, &ColumnError{Name: name, Err: ErrColumnNotFound}
	}
	return vals, nil
}

// Set assigns values to a column in place. An existing column keeps its
// position; a new column is appended.
func (f *Frame) Set(name string, values []Value) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(f.names) > 0 && !(len(f.names) == 1 && f.Has(name)) && len(values) != f.Len() {
		return &ColumnError{Name: name, Err: fmt.Errorf("%w: got %d rows, frame has %d", ErrLengthMismatch, len(values), f.Len())}
	}
	if f.cols == nil {
		f.cols = make(map[string][]Value)
	}
	if !f.Has(name) {
		f.names = append(f.names, name)
	}
	f.cols[name] = values
	return nil
}

// Drop removes columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) {
	for _, name := range names {
		if !f.Has(name) {
			continue
		}
		delete(f.cols, name)
		for i, n := range f.names {
			if n == name {
				f.names = append(f.names[:i], f.names[i+1:]...)
				break
			}
		}
	}
}

// Clone returns a deep copy of the column slices.
func (f *Frame) Clone() *Frame {
	out := &Frame{names: f.Names(), cols: make(map[string][]Value, len(f.cols))}
	for name, vals := range f.cols {
		out.cols[name] = append([]Value(nil), vals...)
	}
	return out
}

// Take keeps only the rows at idx, in that order, in every column. An index
// outside [0, Len) is an error and leaves f unchanged.
func (f *Frame) Take(idx []int) error {
	n := f.Len()
	for _, i := range idx {
		if i < 0 || i >= n {
			return fmt.Errorf("%w: %d of %d", ErrRowIndex, i, n)
		}
	}
	for _, name := range f.names {
		vals := f.cols[name]
		out := make([]Value, len(idx))
		for j, i := range idx {
			out[j] = vals[i]
		}
		f.cols[name] = out
	}
	return nil
}

// Row returns the values of row i in column order. It panics unless
// 0 <= i < Len, like slice indexing.
func (f *Frame) Row(i int) []Value {
	row := make([]Value, len(f.names))
	for j, name := range f.names {
		row[j] = f.cols[name][i]
	}
	return row
}

// FindColumns returns the names of columns containing substr.
func (f *Frame) FindColumns(substr string) []string {
	var out []string
	for _, name := range f.names {
		if strings.Contains(name, substr) {
			out = append(out, name)
		}
	}
	return out
}

func (f *Frame) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(f.names, "\t"))
	for i := 0; i < f.Len(); i++ {
		b.WriteByte('\n')
		for j, v := range f.Row(i) {
			if j > 0 {
				b.WriteByte('\t')
			}
			if v == nil {
				b.WriteString("NaN")
			} else {
				fmt.Fprint(&b, v)
			}
		}
	}
	return b.String()
}

// IsMissing reports whether v is nil or a float NaN.
func IsMissing(v Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// AsFloat converts numeric values to float64.
func AsFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint8:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
