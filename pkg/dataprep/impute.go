package dataprep

import (
	"fmt"

	"segkit/pkg/frame"
	"segkit/pkg/stats"
)

// ---------- Imputation steps ----------
//
// Each Impute* function fits a fill value on a column and returns it as an
// Apply step, so the fill fitted on one population replays unchanged on
// another.

// Fill returns a step that replaces missing cells (nil or NaN) with v.
func Fill(v frame.Value) Step {
	return Apply(func(x frame.Value) frame.Value {
		if frame.IsMissing(x) {
			return v
		}
		return x
	}).Named(fmt.Sprintf("fill(%v)", v))
}

// ImputeConstant fills missing cells with a fixed constant.
func ImputeConstant(v frame.Value) Step { return Fill(v) }

// ImputeMean fills missing cells with the mean of the numeric cells.
func ImputeMean(values []frame.Value) (Step, error) {
	nums, err := numeric(values)
	if err != nil {
		return Step{}, err
	}
	return Fill(stats.Mean(nums)).Named("impute_mean"), nil
}

// ImputeMedian fills missing cells with the median of the numeric cells.
func ImputeMedian(values []frame.Value) (Step, error) {
	nums, err := numeric(values)
	if err != nil {
		return Step{}, err
	}
	return Fill(stats.Median(nums)).Named("impute_median"), nil
}

// ImputeMode fills missing cells with the most frequent present value.
// It works for numeric and categorical columns alike.
func ImputeMode(values []frame.Value) (Step, error) {
	for _, c := range frame.ValueCounts(values) {
		if c.Value != nil {
			return Fill(c.Value).Named("impute_mode"), nil
		}
	}
	return Step{}, ErrNoObservations
}

// numeric collects the non-missing numeric cells. Any non-numeric,
// non-missing cell is an error.
func numeric(values []frame.Value) ([]float64, error) {
	nums := make([]float64, 0, len(values))
	for i, v := range values {
		if frame.IsMissing(v) {
			continue
		}
		x, ok := frame.AsFloat(v)
		if !ok {
			return nil, fmt.Errorf("row %d: %w: %v", i, frame.ErrNotNumeric, v)
		}
		nums = append(nums, x)
	}
	if len(nums) == 0 {
		return nil, ErrNoObservations
	}
	return nums, nil
}

// IsNumeric reports whether values has at least one present cell and
// every present cell is numeric.
func IsNumeric(values []frame.Value) bool {
	_, err := numeric(values)
	return err == nil
}
