// Package pipeline chains fitted transformers so one population's
// statistics can be applied to another.
package pipeline

import (
	"fmt"

	"segkit/pkg/model"
)

// Step is a named transformer in a Pipeline.
type Step struct {
	Name string
	model.Transformer
}

// Pipeline chains multiple transformers.
type Pipeline struct {
	steps  []Step
	schema *Schema
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Fit fits each step on the output of the previous one.
func (p *Pipeline) Fit(X [][]float64) error {
	_, err := p.FitTransform(X)
	return err
}

// FitTransform fits every step and returns the fully transformed X.
func (p *Pipeline) FitTransform(X [][]float64) ([][]float64, error) {
	for _, s := range p.steps {
		if err := s.Fit(X); err != nil {
			return nil, fmt.Errorf("pipeline: fit %s: %w", s.Name, err)
		}
		var err error
		if X, err = s.Transform(X); err != nil {
			return nil, fmt.Errorf("pipeline: transform %s: %w", s.Name, err)
		}
	}
	return X, nil
}

func (p *Pipeline) Transform(X [][]float64) ([][]float64, error) {
	for _, s := range p.steps {
		var err error
		if X, err = s.Transform(X); err != nil {
			return nil, fmt.Errorf("pipeline: transform %s: %w", s.Name, err)
		}
	}
	return X, nil
}

// Names returns the step names in order.
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.Name
	}
	return out
}

// Step returns the transformer registered under name.
func (p *Pipeline) Step(name string) (model.Transformer, bool) {
	for _, s := range p.steps {
		if s.Name == name {
			return s.Transformer, true
		}
	}
	return nil, false
}
