package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCA_Line(t *testing.T) {
	X := [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}}
	pca := NewPCA(1, 100, 1)
	require.NoError(t, pca.Fit(X))

	c := pca.Components[0]
	assert.InDelta(t, 1/math.Sqrt(5), c[0], 1e-9)
	assert.InDelta(t, 2/math.Sqrt(5), c[1], 1e-9)
	assert.InDelta(t, 25.0/3.0, pca.Explained[0], 1e-9)
	assert.InDelta(t, 1.0, pca.ExplainedVarianceRatio()[0], 1e-9)

	out, err := pca.Transform([][]float64{{2.5, 5}, {4, 8}})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, out[0][0], 1e-9)
	assert.InDelta(t, 1.5*math.Sqrt(5), out[1][0], 1e-9)
}

func TestPCA_VarianceRatios(t *testing.T) {
	X := [][]float64{{2, 0}, {-2, 0}, {0, 1}, {0, -1}}
	pca := NewPCA(2, 200, 7)
	require.NoError(t, pca.Fit(X))

	assert.InDelta(t, 1.0, pca.Components[0][0], 1e-6)
	assert.InDelta(t, 1.0, math.Abs(pca.Components[1][1]), 1e-6)

	evr := pca.ExplainedVarianceRatio()
	assert.InDelta(t, 0.8, evr[0], 1e-6)
	assert.InDelta(t, 0.2, evr[1], 1e-6)
	cum := pca.CumulativeVarianceRatio()
	assert.InDelta(t, 0.8, cum[0], 1e-6)
	assert.InDelta(t, 1.0, cum[1], 1e-6)

	assert.Equal(t, 1, pca.ComponentsFor(0.75))
	assert.Equal(t, 2, pca.ComponentsFor(0.9))
	assert.Equal(t, 2, pca.ComponentsFor(1.5))
}

func TestPCA_Errors(t *testing.T) {
	assert.ErrorIs(t, NewPCA(1, 10, 0).Fit(nil), ErrEmpty)
	assert.ErrorIs(t, NewPCA(1, 10, 0).Fit([][]float64{{1, 2}}), ErrEmpty)
	assert.ErrorIs(t, NewPCA(3, 10, 0).Fit([][]float64{{1, 2}, {3, 4}}), ErrParam)
	assert.ErrorIs(t, NewPCA(1, 10, 0).Fit([][]float64{{1, 2}, {3}}), ErrShape)

	_, err := NewPCA(1, 10, 0).Transform([][]float64{{1}})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFeatureWeights(t *testing.T) {
	pca := &PCA{Components: [][]float64{{0.1, -0.7, 0.5}}}
	w, err := FeatureWeights(pca, []string{"a", "b", "c"}, 0)
	require.NoError(t, err)
	assert.Equal(t, Weights{{"c", 0.5}, {"a", 0.1}, {"b", -0.7}}, w)

	top, bottom := w.TopBottom(1)
	assert.Equal(t, Weights{{"c", 0.5}}, top)
	assert.Equal(t, Weights{{"b", -0.7}}, bottom)
	top, bottom = w.TopBottom(10)
	assert.Len(t, top, 3)
	assert.Empty(t, bottom)
	top, bottom = w.TopBottom(2)
	assert.Equal(t, Weights{{"c", 0.5}, {"a", 0.1}}, top)
	assert.Equal(t, Weights{{"b", -0.7}}, bottom)

	_, err = FeatureWeights(pca, []string{"a"}, 0)
	assert.ErrorIs(t, err, ErrShape)
	_, err = FeatureWeights(pca, []string{"a", "b", "c"}, 1)
	assert.ErrorIs(t, err, ErrParam)
	_, err = FeatureWeights(&PCA{}, nil, 0)
	assert.ErrorIs(t, err, ErrNotFitted)
}
