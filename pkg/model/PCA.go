package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// PCA via power iteration with deflation for the top-K components.
type PCA struct {
	K        int
	MaxIters int
	Seed     int64

	Means      []float64
	Components [][]float64 // K x p, each a unit vector
	Explained  []float64   // eigenvalues (sample variance along each component)
	TotalVar   float64     // total sample variance of the fitted data
}

// NewPCA creates and returns a new PCA model.
func NewPCA(k, maxIters int, seed int64) *PCA {
	return &PCA{K: k, MaxIters: maxIters, Seed: seed}
}

// Fit computes the top K principal components of X. Each component's sign
// is fixed so its largest absolute loading is positive.
func (pca *PCA) Fit(X [][]float64) error {
	d, err := checkMatrix(X, -1)
	if err != nil {
		return err
	}
	n := len(X)
	if n < 2 {
		return fmt.Errorf("%w: PCA needs at least 2 rows", ErrEmpty)
	}
	if pca.K < 1 || pca.K > d || pca.MaxIters < 1 {
		return fmt.Errorf("%w: k=%d for %d features, maxIters=%d", ErrParam, pca.K, d, pca.MaxIters)
	}

	pca.Means = make([]float64, d)
	for _, row := range X {
		floats.Add(pca.Means, row)
	}
	floats.Scale(1/float64(n), pca.Means)

	Z := make([][]float64, n)
	pca.TotalVar = 0
	for i, row := range X {
		z := make([]float64, d)
		floats.SubTo(z, row, pca.Means)
		pca.TotalVar += floats.Dot(z, z)
		Z[i] = z
	}
	pca.TotalVar /= float64(n - 1)

	rng := rand.New(rand.NewSource(pca.Seed))
	pca.Components = make([][]float64, 0, pca.K)
	pca.Explained = make([]float64, 0, pca.K)
	Zv := make([]float64, n)

	for comp := 0; comp < pca.K; comp++ {
		v := make([]float64, d)
		for j := range v {
			v[j] = rng.Float64()
		}
		v = normalize(v)

		for t := 0; t < pca.MaxIters; t++ {
			project(Z, v, Zv)
			w := make([]float64, d)
			// w = Z^T (Z v), one column block per worker
			parallelRows(d, func(start, end int) {
				for j := start; j < end; j++ {
					s := 0.0
					for i := range Z {
						s += Z[i][j] * Zv[i]
					}
					w[j] = s
				}
			})
			next := normalize(w)
			if floats.Distance(next, v, 2) < 1e-12 {
				v = next
				break
			}
			v = next
		}
		flipSign(v)

		project(Z, v, Zv)
		lam := floats.Dot(Zv, Zv) / float64(n-1)
		pca.Explained = append(pca.Explained, lam)
		pca.Components = append(pca.Components, v)

		// deflate: Z = Z - (Z v) v^T
		parallelRows(n, func(start, end int) {
			for i := start; i < end; i++ {
				floats.AddScaled(Z[i], -Zv[i], v)
			}
		})
	}
	return nil
}

// Transform projects X onto the fitted components.
func (pca *PCA) Transform(X [][]float64) ([][]float64, error) {
	if pca.Components == nil {
		return nil, ErrNotFitted
	}
	d, err := checkMatrix(X, len(pca.Means))
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	parallelRows(len(X), func(start, end int) {
		z := make([]float64, d)
		for i := start; i < end; i++ {
			floats.SubTo(z, X[i], pca.Means)
			t := make([]float64, len(pca.Components))
			for k, c := range pca.Components {
				t[k] = floats.Dot(z, c)
			}
			out[i] = t
		}
	})
	return out, nil
}

// ExplainedVarianceRatio returns each component's share of the total
// variance of the fitted data.
func (pca *PCA) ExplainedVarianceRatio() []float64 {
	out := make([]float64, len(pca.Explained))
	if pca.TotalVar == 0 {
		return out
	}
	floats.ScaleTo(out, 1/pca.TotalVar, pca.Explained)
	return out
}

// CumulativeVarianceRatio returns the running sum of ExplainedVarianceRatio.
func (pca *PCA) CumulativeVarianceRatio() []float64 {
	evr := pca.ExplainedVarianceRatio()
	return floats.CumSum(make([]float64, len(evr)), evr)
}

// ComponentsFor returns the smallest number of components whose cumulative
// explained variance reaches target, or len(Explained) if none does.
func (pca *PCA) ComponentsFor(target float64) int {
	cum := pca.CumulativeVarianceRatio()
	i := sort.SearchFloat64s(cum, target)
	return min(i+1, len(cum))
}

// FeatureWeight is one feature's loading on a principal component.
type FeatureWeight struct {
	Feature string
	Weight  float64
}

// Weights are loadings sorted by descending weight.
type Weights []FeatureWeight

// FeatureWeights maps the loadings of one component back to feature names,
// sorted by descending weight.
func FeatureWeights(pca *PCA, names []string, component int) (Weights, error) {
	if pca.Components == nil {
		return nil, ErrNotFitted
	}
	if component < 0 || component >= len(pca.Components) {
		return nil, fmt.Errorf("%w: component %d of %d", ErrParam, component, len(pca.Components))
	}
	c := pca.Components[component]
	if len(names) != len(c) {
		return nil, fmt.Errorf("%w: %d names for %d loadings", ErrShape, len(names), len(c))
	}
	vals := append([]float64(nil), c...)
	idx := make([]int, len(vals))
	floats.Argsort(vals, idx)
	out := make(Weights, len(idx))
	for i := range idx {
		j := idx[len(idx)-1-i]
		out[i] = FeatureWeight{Feature: names[j], Weight: c[j]}
	}
	return out, nil
}

// TopBottom returns the n largest and n smallest weights. The bottom slice
// keeps descending order and never repeats a weight from top, so it is
// shorter than n when len(w) < 2n.
func (w Weights) TopBottom(n int) (top, bottom Weights) {
	n = min(max(n, 0), len(w))
	return w[:n], w[max(n, len(w)-n):]
}

func project(Z [][]float64, v, out []float64) {
	parallelRows(len(Z), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = floats.Dot(Z[i], v)
		}
	})
}

func flipSign(v []float64) {
	best := 0
	for j := range v {
		if math.Abs(v[j]) > math.Abs(v[best]) {
			best = j
		}
	}
	if v[best] < 0 {
		floats.Scale(-1, v)
	}
}

// normalize returns v scaled to unit length; a zero vector is returned as is.
func normalize(v []float64) []float64 {
	norm := floats.Norm(v, 2)
	if norm == 0 {
		return v
	}
	out := make([]float64, len(v))
	floats.ScaleTo(out, 1/norm, v)
	return out
}
