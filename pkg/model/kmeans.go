package model

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
)

// KMeans partitions data points into K clusters using k-means++ seeding
// and Lloyd iterations. Runs with the same Seed are reproducible.
type KMeans struct {
	K       int
	MaxIter int
	Seed    int64

	Centroids  [][]float64
	Inertia    float64 // sum of squared distances to the nearest centroid
	Iterations int
}

// NewKMeans creates a KMeans model with the given K and iteration cap.
func NewKMeans(k, maxIter int, seed int64) *KMeans {
	return &KMeans{K: k, MaxIter: maxIter, Seed: seed}
}

// Fit finds the centroids. Empty clusters keep their previous centroid.
func (m *KMeans) Fit(X [][]float64) error {
	p, err := checkMatrix(X, -1)
	if err != nil {
		return err
	}
	n := len(X)
	if m.K < 1 || m.MaxIter < 1 {
		return fmt.Errorf("%w: k=%d maxIter=%d", ErrParam, m.K, m.MaxIter)
	}
	if n < m.K {
		return fmt.Errorf("%w: %d rows for %d clusters", ErrParam, n, m.K)
	}

	m.Centroids = initCenters(X, m.K, rand.New(rand.NewSource(m.Seed)))
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for m.Iterations = 0; m.Iterations < m.MaxIter; {
		m.Iterations++
		changed := m.assign(X, assign)

		sums := make([][]float64, m.K)
		counts := make([]int, m.K)
		for k := range sums {
			sums[k] = make([]float64, p)
		}
		for i, k := range assign {
			counts[k]++
			for j, v := range X[i] {
				sums[k][j] += v
			}
		}
		for k := range sums {
			if counts[k] == 0 {
				continue
			}
			for j := range sums[k] {
				m.Centroids[k][j] = sums[k][j] / float64(counts[k])
			}
		}
		if !changed {
			break
		}
	}

	m.Inertia = 0
	for _, row := range X {
		m.Inertia += euclidSquared(row, m.Centroids[nearest(row, m.Centroids)])
	}
	return nil
}

// assign updates assign in place and reports whether any row moved.
func (m *KMeans) assign(X [][]float64, assign []int) bool {
	var moved atomic.Bool
	parallelRows(len(X), func(start, end int) {
		for i := start; i < end; i++ {
			best := nearest(X[i], m.Centroids)
			if assign[i] != best {
				assign[i] = best
				moved.Store(true)
			}
		}
	})
	return moved.Load()
}

// Predict assigns each row to its nearest centroid.
func (m *KMeans) Predict(X [][]float64) ([]int, error) {
	if m.Centroids == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkMatrix(X, len(m.Centroids[0])); err != nil {
		return nil, err
	}
	out := make([]int, len(X))
	parallelRows(len(X), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = nearest(X[i], m.Centroids)
		}
	})
	return out, nil
}

func nearest(x []float64, centroids [][]float64) int {
	best, bestD := 0, math.MaxFloat64
	for k, c := range centroids {
		if d := euclidSquared(x, c); d < bestD {
			best, bestD = k, d
		}
	}
	return best
}

// initCenters picks k starting centroids with k-means++ weighting.
func initCenters(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(X)
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), X[rng.Intn(n)]...))

	distSq := make([]float64, n)
	for len(centers) < k {
		total := 0.0
		for i, x := range X {
			distSq[i] = euclidSquared(x, centers[nearest(x, centers)])
			total += distSq[i]
		}
		idx := n - 1
		if total == 0 {
			// fewer distinct points than k: duplicate the first center
			idx = rng.Intn(n)
		} else {
			r := rng.Float64() * total
			cum := 0.0
			for i, d2 := range distSq {
				cum += d2
				if cum >= r && d2 > 0 {
					idx = i
					break
				}
			}
		}
		centers = append(centers, append([]float64(nil), X[idx]...))
	}
	return centers
}
