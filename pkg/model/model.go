package model

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

var (
	ErrEmpty     = errors.New("model: empty input")
	ErrShape     = errors.New("model: feature count mismatch")
	ErrNotFitted = errors.New("model: not fitted")
	ErrParam     = errors.New("model: invalid parameter")
)

// Classifier is a binary classifier over 0/1 labels.
type Classifier interface {
	Fit(X [][]float64, y []float64) error
	// PredictProba returns p(y=1) per row.
	PredictProba(X [][]float64) ([]float64, error)
}

// Clusterer is for unsupervised clustering.
type Clusterer interface {
	Fit(X [][]float64) error
	Predict(X [][]float64) ([]int, error) // cluster assignments
}

// Transformer is a preprocessing step: fit on one population, transform any.
type Transformer interface {
	Fit(X [][]float64) error
	Transform(X [][]float64) ([][]float64, error)
}

// checkMatrix validates X is non-empty and rectangular; width < 0 accepts
// the width of the first row.
func checkMatrix(X [][]float64, width int) (int, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return 0, ErrEmpty
	}
	if width < 0 {
		width = len(X[0])
	}
	for i, row := range X {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(row), width)
		}
	}
	return width, nil
}

// parallelRows splits [0, n) into one contiguous chunk per CPU and runs fn
// on each chunk concurrently.
func parallelRows(n int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	per := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * per
		end := min(start+per, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}

// euclidSquared computes the squared Euclidean distance between two vectors.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
