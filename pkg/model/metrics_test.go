package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROCAUC(t *testing.T) {
	cases := []struct {
		name   string
		y, s   []float64
		expect float64
	}{
		{"perfect", []float64{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}, 1},
		{"reversed", []float64{1, 1, 0, 0}, []float64{0.1, 0.2, 0.8, 0.9}, 0},
		{"mixed", []float64{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8}, 0.75},
		{"all tied", []float64{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5}, 0.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ROCAUC(c.y, c.s)
			require.NoError(t, err)
			assert.InDelta(t, c.expect, got, 1e-12)
		})
	}

	_, err := ROCAUC([]float64{1, 1}, []float64{0.2, 0.3})
	assert.ErrorIs(t, err, ErrSingleClass)
	_, err = ROCAUC([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrShape)
}

func TestClassificationMetrics(t *testing.T) {
	yTrue := []float64{1, 0, 1, 1}
	yPred := []float64{1, 1, 0, 1}
	assert.Equal(t, 0.5, Accuracy(yTrue, yPred))
	assert.Zero(t, Accuracy(nil, nil))

	p, r, f1 := PrecisionRecallF1(yTrue, yPred)
	assert.InDelta(t, 2.0/3.0, p, 1e-12)
	assert.InDelta(t, 2.0/3.0, r, 1e-12)
	assert.InDelta(t, 2.0/3.0, f1, 1e-12)

	p, r, f1 = PrecisionRecallF1([]float64{0}, []float64{0})
	assert.Zero(t, p+r+f1)
}

func TestLogLoss(t *testing.T) {
	assert.InDelta(t, math.Ln2, LogLoss([]float64{1, 0}, []float64{0.5, 0.5}), 1e-12)
	assert.Less(t, LogLoss([]float64{1}, []float64{1}), 1e-9)
	assert.Zero(t, LogLoss(nil, nil))
}
