package stats

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFitted is returned by Transform before a successful Fit.
	ErrNotFitted = errors.New("stats: transformer is not fitted")
	// ErrEmpty is returned when fitting on a matrix without rows or columns.
	ErrEmpty = errors.New("stats: empty matrix")
	// ErrShape is returned when a matrix does not have the fitted width.
	ErrShape = errors.New("stats: column count mismatch")
)

// colScaler holds a per-column shift and scale: x' = (x - shift) / scale.
type colScaler struct {
	shift []float64
	scale []float64
}

func (c *colScaler) fit(X [][]float64, stat func(col []float64) (shift, scale float64)) error {
	if err := checkMatrix(X, -1); err != nil {
		return err
	}
	cols := len(X[0])
	c.shift = make([]float64, cols)
	c.scale = make([]float64, cols)
	for j := 0; j < cols; j++ {
		shift, scale := stat(Column(X, j))
		if scale == 0 {
			scale = 1
		}
		c.shift[j], c.scale[j] = shift, scale
	}
	return nil
}

func (c *colScaler) transform(X [][]float64) ([][]float64, error) {
	if c.shift == nil {
		return nil, ErrNotFitted
	}
	if err := checkMatrix(X, len(c.shift)); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = (v - c.shift[j]) / c.scale[j]
		}
		out[i] = r
	}
	return out, nil
}

func checkMatrix(X [][]float64, width int) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return ErrEmpty
	}
	if width < 0 {
		width = len(X[0])
	}
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), width)
		}
	}
	return nil
}

// StandardScaler standardizes each column to zero mean and unit variance.
// Constant columns are centered only.
type StandardScaler struct {
	colScaler
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

func (s *StandardScaler) Fit(X [][]float64) error {
	return s.fit(X, func(col []float64) (float64, float64) { return Mean(col), Std(col) })
}

func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) { return s.transform(X) }

func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Mean returns the fitted column means.
func (s *StandardScaler) Mean() []float64 { return append([]float64(nil), s.shift...) }

// Std returns the fitted column deviations (1 for constant columns).
func (s *StandardScaler) Std() []float64 { return append([]float64(nil), s.scale...) }

// MinMaxScaler scales each column to [0, 1] over the fitted range.
type MinMaxScaler struct {
	colScaler
}

func NewMinMaxScaler() *MinMaxScaler { return &MinMaxScaler{} }

func (s *MinMaxScaler) Fit(X [][]float64) error {
	return s.fit(X, func(col []float64) (float64, float64) {
		lo, hi := MinMax(col)
		return lo, hi - lo
	})
}

func (s *MinMaxScaler) Transform(X [][]float64) ([][]float64, error) { return s.transform(X) }

// RobustScaler centers on the median and scales by the interquartile range.
type RobustScaler struct {
	colScaler
}

func NewRobustScaler() *RobustScaler { return &RobustScaler{} }

func (s *RobustScaler) Fit(X [][]float64) error {
	return s.fit(X, func(col []float64) (float64, float64) {
		return Median(col), Percentile(col, 75) - Percentile(col, 25)
	})
}

func (s *RobustScaler) Transform(X [][]float64) ([][]float64, error) { return s.transform(X) }
