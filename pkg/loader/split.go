// Package loader splits row-major datasets for training and validation.
// Every function takes its random source explicitly so splits are
// reproducible.
package loader

import (
	"fmt"
	"math/rand"
	"sort"
)

// TrainTestSplit splits X, Y into train and test sets by ratio.
func TrainTestSplit(X [][]float64, Y []float64, testRatio float64, rng *rand.Rand) (XTrain, XTest [][]float64, YTrain, YTest []float64) {
	n := len(X)
	indices := rng.Perm(n)
	nTest := int(float64(n) * testRatio)
	for i, idx := range indices {
		if i < nTest {
			XTest = append(XTest, X[idx])
			YTest = append(YTest, Y[idx])
		} else {
			XTrain = append(XTrain, X[idx])
			YTrain = append(YTrain, Y[idx])
		}
	}
	return
}

// KFoldSplit deals a shuffled permutation of n row indices into k folds.
func KFoldSplit(n, k int, rng *rand.Rand) ([][]int, error) {
	if k < 2 || k > n {
		return nil, fmt.Errorf("loader: need 2 <= k <= %d folds, got %d", n, k)
	}
	folds := make([][]int, k)
	for i, idx := range rng.Perm(n) {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds, nil
}

// StratifiedKFoldSplit is KFoldSplit dealing each label separately, so
// every fold keeps roughly the label proportions of y.
func StratifiedKFoldSplit(y []float64, k int, rng *rand.Rand) ([][]int, error) {
	if k < 2 || k > len(y) {
		return nil, fmt.Errorf("loader: need 2 <= k <= %d folds, got %d", len(y), k)
	}
	byLabel := map[float64][]int{}
	for i, v := range y {
		byLabel[v] = append(byLabel[v], i)
	}
	labels := make([]float64, 0, len(byLabel))
	for v := range byLabel {
		labels = append(labels, v)
	}
	sort.Float64s(labels)

	folds := make([][]int, k)
	next := 0
	for _, v := range labels {
		rows := byLabel[v]
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		for _, idx := range rows {
			folds[next%k] = append(folds[next%k], idx)
			next++
		}
	}
	return folds, nil
}

// TrainTest returns the train and test row indices for fold i.
func TrainTest(folds [][]int, i int) (train, test []int) {
	for j, f := range folds {
		if j == i {
			test = append(test, f...)
		} else {
			train = append(train, f...)
		}
	}
	return train, test
}

// Rows gathers the given rows of X and y.
func Rows(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, r := range idx {
		xs[i], ys[i] = X[r], y[r]
	}
	return xs, ys
}
