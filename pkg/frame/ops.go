package frame

import (
	"fmt"
	"reflect"
	"sort"
)

// Mapping substitutes old values with new ones. Keys are matched with Go
// equality, so an int key does not match a float64 cell of the same value.
type Mapping map[Value]Value

// Remap returns a copy of values with every value found in m replaced.
// Values absent from m pass through unchanged.
func Remap(values []Value, m Mapping) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = v
		if !hashable(v) {
			continue
		}
		if nv, ok := m[v]; ok {
			out[i] = nv
		}
	}
	return out
}

// Apply returns a copy of values with fn applied to each element.
func Apply(values []Value, fn func(Value) Value) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = fn(v)
	}
	return out
}

func hashable(v Value) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// Unique returns the distinct values of a column in first-seen order.
func (f *Frame) Unique(name string) ([]Value, error) {
	vals, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	counts := ValueCounts(vals)
	first := make(map[Value]int, len(counts))
	for i, v := range vals {
		k := countKey(v)
		if _, ok := first[k]; !ok {
			first[k] = i
		}
	}
	sort.SliceStable(counts, func(a, b int) bool { return first[counts[a].Value] < first[counts[b].Value] })
	out := make([]Value, len(counts))
	for i, c := range counts {
		out[i] = c.Value
	}
	return out, nil
}

// Count is the number of occurrences of one value.
type Count struct {
	Value Value
	N     int
}

// ValueCounts counts occurrences per distinct value, most frequent first;
// ties keep first-appearance order. NaN cells are counted under nil.
func ValueCounts(values []Value) []Count {
	idx := make(map[Value]int)
	var out []Count
	for _, v := range values {
		v = countKey(v)
		i, ok := idx[v]
		if !ok {
			i = len(out)
			idx[v] = i
			out = append(out, Count{Value: v})
		}
		out[i].N++
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].N > out[b].N })
	return out
}

func countKey(v Value) Value {
	if IsMissing(v) {
		return nil
	}
	if !hashable(v) {
		return fmt.Sprint(v)
	}
	return v
}

// MissingCount returns the number of missing cells in values.
func MissingCount(values []Value) int {
	n := 0
	for _, v := range values {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

// Floats returns the named columns (all columns when names is empty) as a
// row-major matrix. Missing or non-numeric cells are an error.
func (f *Frame) Floats(names ...string) ([][]float64, error) {
	if len(names) == 0 {
		names = f.names
	}
	cols := make([][]Value, len(names))
	for j, name := range names {
		vals, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols[j] = vals
	}
	X := make([][]float64, f.Len())
	for i := range X {
		row := make([]float64, len(names))
		for j, vals := range cols {
			x, ok := AsFloat(vals[i])
			if !ok {
				return nil, &ColumnError{Name: names[j], Err: fmt.Errorf("row %d: %w: %v", i, ErrNotNumeric, vals[i])}
			}
			row[j] = x
		}
		X[i] = row
	}
	return X, nil
}
