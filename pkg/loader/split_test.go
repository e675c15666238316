package loader

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range n {
		X[i] = []float64{float64(i)}
		y[i] = float64(i)
	}
	return X, y
}

func TestTrainTestSplit(t *testing.T) {
	X, y := seq(10)
	xtr, xte, ytr, yte := TrainTestSplit(X, y, 0.3, rand.New(rand.NewSource(1)))
	assert.Len(t, xte, 3)
	assert.Len(t, xtr, 7)
	for i := range xte {
		assert.Equal(t, xte[i][0], yte[i], "rows and labels stay paired")
	}
	for i := range xtr {
		assert.Equal(t, xtr[i][0], ytr[i])
	}

	// same seed, same split
	_, again, _, _ := TrainTestSplit(X, y, 0.3, rand.New(rand.NewSource(1)))
	assert.Equal(t, xte, again)
}

func TestKFoldSplit(t *testing.T) {
	folds, err := KFoldSplit(10, 3, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.Len(t, folds, 3)

	var all []int
	for _, f := range folds {
		assert.GreaterOrEqual(t, len(f), 3)
		all = append(all, f...)
	}
	sort.Ints(all)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, all)

	_, err = KFoldSplit(3, 1, rand.New(rand.NewSource(7)))
	assert.Error(t, err)
	_, err = KFoldSplit(3, 4, rand.New(rand.NewSource(7)))
	assert.Error(t, err)
}

func TestStratifiedKFoldSplit(t *testing.T) {
	y := []float64{0, 0, 0, 0, 0, 0, 1, 1, 1}
	folds, err := StratifiedKFoldSplit(y, 3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	for _, f := range folds {
		pos := 0
		for _, i := range f {
			pos += int(y[i])
		}
		assert.Len(t, f, 3)
		assert.Equal(t, 1, pos, "each fold gets one positive")
	}
}

func TestTrainTestAndRows(t *testing.T) {
	folds := [][]int{{0, 3}, {1}, {2}}
	train, test := TrainTest(folds, 0)
	assert.Equal(t, []int{1, 2}, train)
	assert.Equal(t, []int{0, 3}, test)

	X, y := seq(4)
	xs, ys := Rows(X, y, test)
	assert.Equal(t, [][]float64{{0}, {3}}, xs)
	assert.Equal(t, []float64{0, 3}, ys)
}
