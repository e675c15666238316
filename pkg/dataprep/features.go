package dataprep

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"segkit/pkg/frame"
)

// ToFloat converts numbers and numeric strings to float64. Anything else,
// including codes such as "X" or "XX", becomes missing.
func ToFloat() Step {
	return Apply(func(v frame.Value) frame.Value {
		if x, ok := frame.AsFloat(v); ok {
			return x
		}
		if s, ok := v.(string); ok {
			if x, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(x) {
				return x
			}
		}
		return nil
	}).Named("to_float")
}

// ToString formats present values with fmt.Sprint; missing stays missing.
func ToString() Step {
	return Apply(func(v frame.Value) frame.Value {
		if frame.IsMissing(v) {
			return nil
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}).Named("to_string")
}

// Log1p applies log(x+1) to numeric cells; other cells pass through.
func Log1p() Step {
	return Apply(func(v frame.Value) frame.Value {
		if x, ok := frame.AsFloat(v); ok {
			return math.Log1p(x)
		}
		return v
	}).Named("log1p")
}

// Bin maps numeric cells to the index of the bin they fall in, given
// ascending inner edges: x < edges[0] is bin 0, edges[i-1] <= x < edges[i]
// is bin i, x >= last edge is bin len(edges). Non-numeric cells become
// missing.
func Bin(edges []float64) Step {
	e := append([]float64(nil), edges...)
	sort.Float64s(e)
	return Apply(func(v frame.Value) frame.Value {
		x, ok := frame.AsFloat(v)
		if !ok {
			return nil
		}
		return sort.Search(len(e), func(i int) bool { return e[i] > x })
	}).Named(fmt.Sprintf("bin(%d)", len(e)+1))
}

// EqualWidthEdges returns the nBins-1 inner edges splitting the numeric
// range of values into equal-width bins.
func EqualWidthEdges(values []frame.Value, nBins int) ([]float64, error) {
	if nBins < 1 {
		return nil, fmt.Errorf("dataprep: nBins must be positive, got %d", nBins)
	}
	nums, err := numeric(values)
	if err != nil {
		return nil, err
	}
	lo, hi := nums[0], nums[0]
	for _, x := range nums {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	width := (hi - lo) / float64(nBins)
	edges := make([]float64, nBins-1)
	for i := range edges {
		edges[i] = lo + width*float64(i+1)
	}
	return edges, nil
}
