package dataprep

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"segkit/pkg/frame"
	"segkit/pkg/stats"
)

var ErrNoObservations = errors.New("dataprep: column has no observed values")

// MissingColumns returns, in frame order, the columns whose fraction of
// missing cells is above threshold. Columns without missing cells are never
// returned.
func MissingColumns(f *frame.Frame, threshold float64) []string {
	n := f.Len()
	if n == 0 {
		return nil
	}
	var out []string
	for _, name := range f.Names() {
		vals, _ := f.Column(name)
		ratio := float64(frame.MissingCount(vals)) / float64(n)
		if ratio > 0 && ratio > threshold {
			out = append(out, name)
		}
	}
	return out
}

// MissingRowsPercent returns the percentage of rows having more than
// maxMissing missing cells.
func MissingRowsPercent(f *frame.Frame, maxMissing int) float64 {
	n := f.Len()
	if n == 0 {
		return 0
	}
	counts := rowMissingCounts(f)
	over := 0
	for _, c := range counts {
		if c > 0 && c > maxMissing {
			over++
		}
	}
	return float64(over) / float64(n) * 100
}

// DropSparseRows removes, in place, the rows having more than maxMissing
// missing cells and returns how many were dropped.
func DropSparseRows(f *frame.Frame, maxMissing int) int {
	counts := rowMissingCounts(f)
	return keepRows(f, func(i int) bool { return counts[i] <= maxMissing })
}

func rowMissingCounts(f *frame.Frame) []int {
	counts := make([]int, f.Len())
	for _, name := range f.Names() {
		vals, _ := f.Column(name)
		for i, v := range vals {
			if frame.IsMissing(v) {
				counts[i]++
			}
		}
	}
	return counts
}

// DropDuplicateRows removes, in place, rows identical to an earlier row and
// returns how many were dropped.
func DropDuplicateRows(f *frame.Frame) int {
	seen := make(map[string]struct{}, f.Len())
	return keepRows(f, func(i int) bool {
		key := rowKey(f.Row(i))
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// rowKey encodes a row so that two rows share a key only when every cell has
// the same type and value. Missing cells (nil or NaN) all encode alike.
func rowKey(row []frame.Value) string {
	var b strings.Builder
	for _, v := range row {
		if frame.IsMissing(v) {
			b.WriteString("-;")
			continue
		}
		fmt.Fprintf(&b, "%T:%q;", v, fmt.Sprint(v))
	}
	return b.String()
}

func keepRows(f *frame.Frame, keep func(i int) bool) int {
	n := f.Len()
	var idx []int
	for i := 0; i < n; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	if len(idx) == n {
		return 0
	}
	// every index comes from [0, n)
	_ = f.Take(idx)
	return n - len(idx)
}

// AutoImpute drops the columns of t's frame whose missing ratio is above
// threshold and imputes the rest, choosing a strategy per column:
//
//	numeric:     <5% missing -> mean, skewed -> median, <20% -> median, else 0
//	categorical: <10% missing -> mode, else "Unknown"
//
// Every imputation is committed through t so it replays on other frames.
// The dropped column names are returned so callers can drop them elsewhere.
func AutoImpute(t *Tracker, threshold float64) ([]string, error) {
	f := t.Frame()
	if f == nil {
		return nil, ErrNoFrame
	}
	n := f.Len()
	if n == 0 {
		return nil, nil
	}
	var dropped []string
	for _, name := range f.Names() {
		vals, _ := f.Column(name)
		missing := frame.MissingCount(vals)
		ratio := float64(missing) / float64(n)
		if ratio > threshold {
			t.log.Info("dropping column", "column", name, "missing_pct", math.Round(ratio*10000)/100)
			dropped = append(dropped, name)
			continue
		}
		if missing == 0 {
			continue
		}
		step, err := chooseImputation(vals, ratio)
		if err != nil {
			return dropped, fmt.Errorf("column %q: %w", name, err)
		}
		t.log.Debug("imputing column", "column", name, "strategy", step.Name())
		if err := t.Commit(name, step); err != nil {
			return dropped, err
		}
	}
	f.Drop(dropped...)
	return dropped, nil
}

func chooseImputation(vals []frame.Value, ratio float64) (Step, error) {
	if !IsNumeric(vals) {
		if ratio < 0.1 {
			return ImputeMode(vals)
		}
		return ImputeConstant("Unknown").Named("impute_unknown"), nil
	}
	nums, err := numeric(vals)
	if err != nil {
		return Step{}, err
	}
	switch {
	case ratio < 0.05:
		return ImputeMean(vals)
	case stats.Skew(nums) > 1.0, ratio < 0.2:
		return ImputeMedian(vals)
	default:
		return ImputeConstant(0.0).Named("impute_zero"), nil
	}
}

// FillComplete commits a median fill (mode for non-numeric columns) on every
// column of t's frame that has no missing cells. The fills change nothing on
// the fitted frame but let a replay fill gaps another population has in
// those columns.
func FillComplete(t *Tracker) error {
	f := t.Frame()
	if f == nil {
		return ErrNoFrame
	}
	for _, name := range f.Names() {
		vals, _ := f.Column(name)
		if len(vals) == 0 || frame.MissingCount(vals) > 0 {
			continue
		}
		var (
			step Step
			err  error
		)
		if IsNumeric(vals) {
			step, err = ImputeMedian(vals)
		} else {
			step, err = ImputeMode(vals)
		}
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		if err := t.Commit(name, step); err != nil {
			return err
		}
	}
	return nil
}
