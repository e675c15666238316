package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean computes the average of a slice. An empty slice has mean 0.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Variance computes the population variance of a slice.
func Variance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, v := stat.PopMeanVariance(x, nil)
	return v
}

// Std computes the population standard deviation of a slice.
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// Skew returns |mean - median| / std, the rough asymmetry measure used to
// choose between mean and median imputation.
func Skew(x []float64) float64 {
	sd := Std(x)
	if sd == 0 {
		return 0
	}
	return math.Abs(Mean(x)-Median(x)) / sd
}

// MinMax returns the minimum and maximum values in the slice.
func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	return floats.Min(x), floats.Max(x)
}

// Sum returns the sum of all elements in the slice.
func Sum(x []float64) float64 { return floats.Sum(x) }

// Median returns the median value of the slice (allocates a copy).
func Median(x []float64) float64 {
	return Percentile(x, 50)
}

// Mode returns the most frequent value; ties go to the value seen first.
func Mode(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	counts := make(map[float64]int, len(x))
	best, mode := 0, x[0]
	for _, v := range x {
		counts[v]++
		if counts[v] > best {
			best, mode = counts[v], v
		}
	}
	return mode
}

// Percentile returns the p-th percentile (0 <= p <= 100) using linear
// interpolation between closest ranks.
func Percentile(x []float64, p float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	switch {
	case p <= 0:
		return cp[0]
	case p >= 100:
		return cp[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	if lower+1 >= n {
		return cp[lower]
	}
	w := rank - float64(lower)
	return cp[lower]*(1-w) + cp[lower+1]*w
}

// Correlation computes the Pearson correlation coefficient. Mismatched or
// constant inputs give 0.
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// Column extracts column j of a row-major matrix.
func Column(X [][]float64, j int) []float64 {
	col := make([]float64, len(X))
	for i, row := range X {
		col[i] = row[j]
	}
	return col
}
