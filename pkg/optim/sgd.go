// Package optim holds the gradient update rules used by the iterative
// classifiers.
package optim

// SGD is plain stochastic gradient descent with optional L2 weight decay.
type SGD struct {
	LearningRate float64
	WeightDecay  float64
}

func NewSGD(lr, weightDecay float64) *SGD {
	return &SGD{LearningRate: lr, WeightDecay: weightDecay}
}

// Step updates weights in place: w -= lr * (g + decay*w).
func (o *SGD) Step(weights, grads []float64) {
	for i := range weights {
		weights[i] -= o.LearningRate * (grads[i] + o.WeightDecay*weights[i])
	}
}

// StepBias updates an unregularized bias term.
func (o *SGD) StepBias(bias *float64, grad float64) {
	*bias -= o.LearningRate * grad
}
