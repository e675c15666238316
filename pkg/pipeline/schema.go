package pipeline

import (
	"fmt"

	"segkit/pkg/frame"
)

// Schema fixes the feature columns, and their order, that a pipeline is
// fitted on.
type Schema struct {
	FeatureNames []string
}

// NewSchema returns the schema of f restricted to names, or all of f's
// columns when names is empty.
func NewSchema(f *frame.Frame, names ...string) (*Schema, error) {
	if len(names) == 0 {
		names = f.Names()
	}
	for _, n := range names {
		if !f.Has(n) {
			return nil, &frame.ColumnError{Name: n, Err: frame.ErrColumnNotFound}
		}
	}
	return &Schema{FeatureNames: append([]string(nil), names...)}, nil
}

// Matrix extracts the schema's columns from f as a row-major matrix.
func (s *Schema) Matrix(f *frame.Frame) ([][]float64, error) {
	if len(s.FeatureNames) == 0 {
		return nil, fmt.Errorf("pipeline: empty schema")
	}
	return f.Floats(s.FeatureNames...)
}

// FitFrame records the schema of f and fits the pipeline on its matrix.
func (p *Pipeline) FitFrame(f *frame.Frame, names ...string) ([][]float64, error) {
	s, err := NewSchema(f, names...)
	if err != nil {
		return nil, err
	}
	X, err := s.Matrix(f)
	if err != nil {
		return nil, err
	}
	out, err := p.FitTransform(X)
	if err != nil {
		return nil, err
	}
	p.schema = s
	return out, nil
}

// TransformFrame transforms the columns of f named by the fitted schema.
func (p *Pipeline) TransformFrame(f *frame.Frame) ([][]float64, error) {
	if p.schema == nil {
		return nil, fmt.Errorf("pipeline: not fitted on a frame")
	}
	X, err := p.schema.Matrix(f)
	if err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// Schema returns the schema recorded by FitFrame, or nil.
func (p *Pipeline) Schema() *Schema { return p.schema }
