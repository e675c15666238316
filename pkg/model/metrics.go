package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrSingleClass is returned by ROCAUC when only one class is present.
var ErrSingleClass = errors.New("model: ROC AUC needs both classes")

// Accuracy is the fraction of matching labels.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// PrecisionRecallF1 scores binary 0/1 predictions against the positive class.
func PrecisionRecallF1(yTrue, yPred []float64) (prec, rec, f1 float64) {
	tp, fp, fn := 0, 0, 0
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			tp++
		case yPred[i] == 1 && yTrue[i] == 0:
			fp++
		case yPred[i] == 0 && yTrue[i] == 1:
			fn++
		}
	}
	if tp+fp > 0 {
		prec = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		rec = float64(tp) / float64(tp+fn)
	}
	if prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}

// LogLoss is the mean binary cross-entropy; probabilities are clipped away
// from 0 and 1.
func LogLoss(yTrue, proba []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	s := 0.0
	for i, y := range yTrue {
		p := math.Min(math.Max(proba[i], 1e-12), 1-1e-12)
		s -= y*math.Log(p) + (1-y)*math.Log(1-p)
	}
	return s / float64(len(yTrue))
}

// ROCAUC is the area under the ROC curve of scores against 0/1 labels,
// computed from the Mann-Whitney rank sum with tied scores sharing their
// average rank.
func ROCAUC(yTrue, scores []float64) (float64, error) {
	if len(yTrue) != len(scores) {
		return 0, fmt.Errorf("%w: %d labels, %d scores", ErrShape, len(yTrue), len(scores))
	}
	n := len(scores)
	sorted := append([]float64(nil), scores...)
	idx := make([]int, n)
	floats.Argsort(sorted, idx)

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && sorted[j+1] == sorted[i] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	var pos, neg int
	rankSum := 0.0
	for i, y := range yTrue {
		if y == 1 {
			pos++
			rankSum += ranks[i]
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0, ErrSingleClass
	}
	u := rankSum - float64(pos*(pos+1))/2
	return u / float64(pos*neg), nil
}
