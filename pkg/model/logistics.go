package model

import (
	"fmt"
	"math"
	"math/rand"

	"segkit/pkg/optim"
)

// LogisticRegression is a binary classifier trained with mini-batch
// gradient descent on the binary cross-entropy loss.
type LogisticRegression struct {
	Lr        float64
	Epochs    int
	BatchSize int     // <= 0 means full batch
	L2        float64 // weight decay
	Seed      int64   // shuffling order

	W []float64
	B float64
}

// NewLogisticRegression returns an untrained model with the given
// hyperparameters.
func NewLogisticRegression(lr float64, epochs, batchSize int) *LogisticRegression {
	return &LogisticRegression{Lr: lr, Epochs: epochs, BatchSize: batchSize}
}

// Fit trains on X with 0/1 labels y. Weights start at zero and rows are
// reshuffled every epoch from Seed.
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	p, err := checkLabels(X, y)
	if err != nil {
		return err
	}
	if m.Lr <= 0 || m.Epochs < 1 {
		return fmt.Errorf("%w: lr=%g epochs=%d", ErrParam, m.Lr, m.Epochs)
	}
	batch := m.BatchSize
	if batch <= 0 || batch > len(X) {
		batch = len(X)
	}

	m.W = make([]float64, p)
	m.B = 0
	opt := optim.NewSGD(m.Lr, m.L2)
	rng := rand.New(rand.NewSource(m.Seed))
	idx := rng.Perm(len(X))
	gW := make([]float64, p)

	for ep := 0; ep < m.Epochs; ep++ {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for start := 0; start < len(idx); start += batch {
			rows := idx[start:min(start+batch, len(idx))]
			clear(gW)
			gb := 0.0
			for _, r := range rows {
				d := (sigmoid(m.score(X[r])) - y[r]) / float64(len(rows))
				for j, v := range X[r] {
					gW[j] += d * v
				}
				gb += d
			}
			opt.Step(m.W, gW)
			opt.StepBias(&m.B, gb)
		}
	}
	return nil
}

func (m *LogisticRegression) score(row []float64) float64 {
	s := m.B
	for j, v := range row {
		s += m.W[j] * v
	}
	return s
}

// PredictProba returns p(y=1) for each row.
func (m *LogisticRegression) PredictProba(X [][]float64) ([]float64, error) {
	if m.W == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkMatrix(X, len(m.W)); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	parallelRows(len(X), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = sigmoid(m.score(X[i]))
		}
	})
	return out, nil
}

// Predict returns 0/1 labels at a 0.5 probability threshold.
func (m *LogisticRegression) Predict(X [][]float64) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return threshold(proba, 0.5), nil
}

// Loss returns the mean binary cross-entropy of the model on X, y.
func (m *LogisticRegression) Loss(X [][]float64, y []float64) (float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return 0, err
	}
	return LogLoss(y, proba), nil
}

func sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func threshold(proba []float64, t float64) []float64 {
	out := make([]float64, len(proba))
	for i, p := range proba {
		if p >= t {
			out[i] = 1
		}
	}
	return out
}

// checkLabels validates a training set with binary 0/1 labels.
func checkLabels(X [][]float64, y []float64) (int, error) {
	p, err := checkMatrix(X, -1)
	if err != nil {
		return 0, err
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", ErrShape, len(X), len(y))
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return 0, fmt.Errorf("%w: label %g at row %d is not 0/1", ErrParam, v, i)
		}
	}
	return p, nil
}
