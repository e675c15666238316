package stats

import "fmt"

// Clipper clips each column to percentile bounds learned at Fit time, so
// the bounds of one population can be applied to another.
type Clipper struct {
	Lower, Upper float64 // percentiles, 0..100

	lows, highs []float64
}

func NewClipper(lower, upper float64) *Clipper {
	return &Clipper{Lower: lower, Upper: upper}
}

func (c *Clipper) Fit(X [][]float64) error {
	if c.Lower < 0 || c.Upper > 100 || c.Lower > c.Upper {
		return fmt.Errorf("stats: invalid clip percentiles [%g, %g]", c.Lower, c.Upper)
	}
	if err := checkMatrix(X, -1); err != nil {
		return err
	}
	cols := len(X[0])
	c.lows = make([]float64, cols)
	c.highs = make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := Column(X, j)
		c.lows[j] = Percentile(col, c.Lower)
		c.highs[j] = Percentile(col, c.Upper)
	}
	return nil
}

func (c *Clipper) Transform(X [][]float64) ([][]float64, error) {
	if c.lows == nil {
		return nil, ErrNotFitted
	}
	if err := checkMatrix(X, len(c.lows)); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = min(max(v, c.lows[j]), c.highs[j])
		}
		out[i] = r
	}
	return out, nil
}
