package model

import (
	"fmt"
	"sort"
)

// KNN classifies 0/1 labels by the mean label of the K nearest training
// rows.
type KNN struct {
	K int
	X [][]float64
	y []float64
}

// NewKNN creates and returns a new KNN model.
func NewKNN(k int) *KNN {
	return &KNN{K: k}
}

// Fit stores the training data.
func (m *KNN) Fit(X [][]float64, y []float64) error {
	if _, err := checkLabels(X, y); err != nil {
		return err
	}
	if m.K < 1 {
		return fmt.Errorf("%w: k=%d", ErrParam, m.K)
	}
	m.X = X
	m.y = append([]float64(nil), y...)
	return nil
}

// PredictProba returns the fraction of positive labels among each row's
// neighbors. Distance ties keep training order.
func (m *KNN) PredictProba(X [][]float64) ([]float64, error) {
	if m.X == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkMatrix(X, len(m.X[0])); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	parallelRows(len(X), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = m.predictSingle(X[i])
		}
	})
	return out, nil
}

// Predict returns 0/1 labels by majority vote; an even split votes 1.
func (m *KNN) Predict(X [][]float64) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return threshold(proba, 0.5), nil
}

func (m *KNN) predictSingle(xi []float64) float64 {
	type pair struct {
		d float64
		v float64
	}
	k := min(m.K, len(m.X))
	nbrs := make([]pair, 0, k+1)
	for j, xj := range m.X {
		d := euclidSquared(xi, xj)
		if len(nbrs) == k && d >= nbrs[k-1].d {
			continue
		}
		// insert after any equal distance to keep training order on ties
		at := sort.Search(len(nbrs), func(a int) bool { return nbrs[a].d > d })
		nbrs = append(nbrs, pair{})
		copy(nbrs[at+1:], nbrs[at:])
		nbrs[at] = pair{d: d, v: m.y[j]}
		if len(nbrs) > k {
			nbrs = nbrs[:k]
		}
	}
	sum := 0.0
	for _, p := range nbrs {
		sum += p.v
	}
	return sum / float64(len(nbrs))
}
